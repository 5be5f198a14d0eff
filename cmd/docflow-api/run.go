package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiserver "github.com/fridadocs/docflow/internal/api_server"
	"github.com/fridadocs/docflow/internal/config"
	"github.com/fridadocs/docflow/internal/extractor"
	"github.com/fridadocs/docflow/internal/service"
	"github.com/fridadocs/docflow/internal/storage"
	"github.com/fridadocs/docflow/internal/store"
	"github.com/fridadocs/docflow/internal/summarizer"
	"github.com/fridadocs/docflow/pkg/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the docflow api",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		st := store.NewStore(db)
		defer st.Close()

		if err := st.InitialMigration(); err != nil {
			zap.S().Fatalw("running initial migration", "error", err)
		}

		backend, err := newStorageBackend(cfg)
		if err != nil {
			zap.S().Fatalw("initializing storage backend", "error", err)
		}
		artifacts := storage.NewStore(backend)

		jobSrv := service.NewJobService(
			st,
			artifacts,
			extractor.NewRegistry(),
			newSummarizer(cfg),
			service.PipelineConfig{
				MaxUploadBytes:    cfg.Pipeline.MaxUploadBytes,
				SupportedFormats:  cfg.Pipeline.SupportedFormats,
				ExtractionTimeout: cfg.Pipeline.ExtractionTimeout,
				SummaryTimeout:    cfg.Pipeline.SummaryTimeout,
				JobTTL:            cfg.Pipeline.JobTTL,
				EvictionInterval:  cfg.Pipeline.EvictionInterval,
			},
		)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		go jobSrv.RunEviction(ctx)

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, jobSrv, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("running api server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating metrics listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("running metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newStorageBackend(cfg *config.Config) (storage.Backend, error) {
	if cfg.Storage.Backend == "minio" {
		return storage.NewMinioBackend(
			storage.WithEndpoint(cfg.Storage.MinioEndpoint),
			storage.WithBucket(cfg.Storage.MinioBucket),
			storage.WithCredentials(cfg.Storage.MinioAccessKey, cfg.Storage.MinioSecretKey),
			storage.WithSSL(cfg.Storage.MinioUseSSL),
		)
	}
	return storage.NewLocalBackend(cfg.Storage.UploadDir)
}

func newSummarizer(cfg *config.Config) summarizer.Summarizer {
	if cfg.Summarizer.APIKey == "" {
		zap.S().Info("no summarizer api key configured, summaries disabled")
		return summarizer.NewDisabled()
	}
	return summarizer.NewClient(summarizer.ClientConfig{
		Model:       cfg.Summarizer.Model,
		APIKey:      cfg.Summarizer.APIKey,
		BaseURL:     cfg.Summarizer.BaseURL,
		Temperature: cfg.Summarizer.Temperature,
	})
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
