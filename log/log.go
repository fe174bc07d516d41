// Package log provides the module-scoped structured logger used across the
// feeds core. It mirrors the teacher's NewModuleLogger convention
// (module-tagged loggers backed by a single process-wide sink) but swaps the
// bespoke handler chain for go.uber.org/zap's SugaredLogger.
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ModuleID tags every logger with the subsystem that produced it so log
// lines can be filtered or have their level raised independently.
type ModuleID int

const (
	FeedsCore ModuleID = iota
	TxPipeline
	KeyRotation
	Storage
	Cache
	Events
	API
	Attachments
	Config
)

var moduleNames = map[ModuleID]string{
	FeedsCore:   "feeds",
	TxPipeline:  "txpipeline",
	KeyRotation: "keyrotation",
	Storage:     "storage",
	Cache:       "cache",
	Events:      "events",
	API:         "api",
	Attachments: "attachments",
	Config:      "config",
}

var (
	mu       sync.RWMutex
	base     *zap.Logger
	levelVar = zap.NewAtomicLevel()
)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = levelVar
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	base = l
}

// Logger is the narrow interface handlers depend on; it keeps the teacher's
// (msg, key, val, key, val...) calling convention.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
}

type moduleLogger struct {
	sugar *zap.SugaredLogger
}

func NewModuleLogger(id ModuleID) Logger {
	mu.RLock()
	b := base
	mu.RUnlock()
	name, ok := moduleNames[id]
	if !ok {
		name = "unknown"
	}
	return &moduleLogger{sugar: b.Sugar().Named(name)}
}

func (m *moduleLogger) Debug(msg string, kv ...interface{}) { m.sugar.Debugw(msg, kv...) }
func (m *moduleLogger) Info(msg string, kv ...interface{})  { m.sugar.Infow(msg, kv...) }
func (m *moduleLogger) Warn(msg string, kv ...interface{})  { m.sugar.Warnw(msg, kv...) }
func (m *moduleLogger) Error(msg string, kv ...interface{}) { m.sugar.Errorw(msg, kv...) }

// ChangeGlobalLogLevel raises or lowers the verbosity ceiling for every
// module logger at once (zapcore.Level: -1 debug .. 2 error).
func ChangeGlobalLogLevel(level zapcore.Level) {
	levelVar.SetLevel(level)
}
