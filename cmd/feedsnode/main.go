// Command feedsnode runs the feeds core as a standalone service: the
// transaction pipeline, key rotation engine, durable storage with its
// overlay cache, the Kafka event publisher, the attachment store and the
// FeedsApi gRPC/HTTP surface, wired the way the teacher's cmd/kcn wires a
// consensus node out of its constituent services.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/ground-x/feedscore/api"
	"github.com/ground-x/feedscore/api/httpapi"
	"github.com/ground-x/feedscore/attachments"
	"github.com/ground-x/feedscore/config"
	"github.com/ground-x/feedscore/events"
	"github.com/ground-x/feedscore/identity"
	"github.com/ground-x/feedscore/keyrotation"
	flog "github.com/ground-x/feedscore/log"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/cache"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/txpipeline/apply"
	"github.com/ground-x/feedscore/txpipeline/content"
	"github.com/ground-x/feedscore/types"
)

var logger = flog.NewModuleLogger(flog.FeedsCore)

var configFlag = cli.StringFlag{
	Name:  "config",
	Usage: "path to the node's TOML configuration file",
}

func main() {
	app := cli.NewApp()
	app.Name = "feedsnode"
	app.Usage = "feeds core messaging node"
	app.Flags = []cli.Flag{configFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logger.Error("feedsnode exited with error", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	durable, err := repo.Open(cfg.Storage.MySQLDSN)
	if err != nil {
		return fmt.Errorf("open durable store: %w", err)
	}
	defer durable.Close()

	overlay, err := cache.New(cfg.Storage.RedisAddr)
	if err != nil {
		return fmt.Errorf("start cache overlay: %w", err)
	}
	storageSvc := storage.NewService(durable, durable.DB(), overlay)

	identityStore := identity.NewMapStore()
	rotationEngine := keyrotation.NewEngine(identityStore, cfg.Feeds.GroupMaxMembers)

	var publisher events.Publisher
	if len(cfg.Events.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.Events.KafkaBrokers)
		if err != nil {
			return fmt.Errorf("start kafka publisher: %w", err)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	attachmentStore := attachments.NewStore(cfg.Attachments.TempDir)

	pipeline := buildPipeline(storageSvc, rotationEngine, publisher, cfg)

	chain := identity.NewStorageBlockchainCache(storageSvc)
	now := func() types.BlockIndex {
		idx, err := chain.LastBlockIndex(context.Background())
		if err != nil {
			logger.Warn("failed to read last block index, defaulting to 0", "err", err)
			return 0
		}
		return idx
	}

	feedsApi := api.NewFeedsApi(storageSvc, pipeline, attachmentStore, cfg.Feeds.MaxMessagesPerResponse, now)
	grpcServer := api.NewGRPCServer(feedsApi)

	lis, err := net.Listen("tcp", cfg.API.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server stopped", "err", err)
		}
	}()

	httpServer := httpapi.NewServer(cfg.API.HTTPAddr, func() error { return nil })
	go func() {
		if err := httpServer.ListenAndServe(); err != nil {
			logger.Info("http server stopped", "err", err)
		}
	}()

	stopOrphanSweep := startOrphanSweep(attachmentStore, cfg.Attachments)

	logger.Info("feedsnode started", "grpc", cfg.API.GRPCAddr, "http", cfg.API.HTTPAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	close(stopOrphanSweep)
	grpcServer.GracefulStop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func buildPipeline(storageSvc *storage.Service, rotation *keyrotation.Engine, publisher events.Publisher, cfg *config.Config) *txpipeline.Pipeline {
	p := txpipeline.New(storageSvc)

	p.RegisterContentHandler(content.NewGroupFeedHandler{})
	p.RegisterContentHandler(content.AddMemberToGroupFeedHandler{})
	p.RegisterContentHandler(content.JoinGroupFeedHandler{CooldownBlocks: cfg.Feeds.RejoinCooldownBlocks})
	p.RegisterContentHandler(content.LeaveGroupFeedHandler{})
	p.RegisterContentHandler(content.BanFromGroupFeedHandler{})
	p.RegisterContentHandler(content.UnbanFromGroupFeedHandler{})
	p.RegisterContentHandler(content.PromoteToAdminHandler{})
	p.RegisterContentHandler(content.BlockMemberHandler{})
	p.RegisterContentHandler(content.UnblockMemberHandler{})
	p.RegisterContentHandler(content.UpdateGroupFeedTitleHandler{})
	p.RegisterContentHandler(content.UpdateGroupFeedDescriptionHandler{})
	p.RegisterContentHandler(content.DeleteGroupFeedHandler{})
	p.RegisterContentHandler(content.GroupFeedKeyRotationHandler{})
	p.RegisterContentHandler(content.NewGroupFeedMessageHandler{GraceBlocks: cfg.Feeds.KeyRotationGraceBlocks})

	p.RegisterTransactionHandler(apply.NewGroupFeedHandler{Rotation: rotation, Publisher: publisher})
	p.RegisterTransactionHandler(apply.AddMemberToGroupFeedHandler{Rotation: rotation})
	p.RegisterTransactionHandler(apply.JoinGroupFeedHandler{Rotation: rotation})
	p.RegisterTransactionHandler(apply.LeaveGroupFeedHandler{Rotation: rotation})
	p.RegisterTransactionHandler(apply.BanFromGroupFeedHandler{Rotation: rotation})
	p.RegisterTransactionHandler(apply.UnbanFromGroupFeedHandler{})
	p.RegisterTransactionHandler(apply.PromoteToAdminHandler{})
	p.RegisterTransactionHandler(apply.BlockMemberHandler{})
	p.RegisterTransactionHandler(apply.UnblockMemberHandler{})
	p.RegisterTransactionHandler(apply.UpdateGroupFeedTitleHandler{})
	p.RegisterTransactionHandler(apply.UpdateGroupFeedDescriptionHandler{})
	p.RegisterTransactionHandler(apply.DeleteGroupFeedHandler{})
	p.RegisterTransactionHandler(apply.GroupFeedKeyRotationHandler{})
	p.RegisterTransactionHandler(apply.NewGroupFeedMessageHandler{Publisher: publisher})

	return p
}

func startOrphanSweep(store *attachments.Store, cfg config.AttachmentsConfig) chan struct{} {
	stop := make(chan struct{})
	if cfg.OrphanCleanupEvery <= 0 {
		return stop
	}
	go func() {
		ticker := time.NewTicker(cfg.OrphanCleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed, err := store.CleanupOrphans(cfg.OrphanCleanupOlderThan)
				if err != nil {
					logger.Warn("orphan cleanup failed", "err", err)
					continue
				}
				if removed > 0 {
					logger.Info("orphan cleanup swept files", "removed", removed)
				}
			case <-stop:
				return
			}
		}
	}()
	return stop
}
