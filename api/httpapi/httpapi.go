// Package httpapi is the node's secondary HTTP surface: liveness and
// Prometheus metrics, fronted by httprouter and wrapped in permissive CORS
// the way the teacher's debug/metrics endpoints are exposed alongside the
// main RPC server.
package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	flog "github.com/ground-x/feedscore/log"
)

var logger = flog.NewModuleLogger(flog.API)

type HealthCheck func() error

func NewServer(addr string, health HealthCheck) *http.Server {
	router := httprouter.New()
	router.GET("/healthz", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if err := health(); err != nil {
			logger.Warn("health check failed", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handler("GET", "/metrics", promhttp.Handler())

	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)

	return &http.Server{Addr: addr, Handler: handler}
}
