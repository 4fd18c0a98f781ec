package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	kafka_impl "post-composer/internal/broker/kafka"
	"post-composer/internal/client/openai"
	"post-composer/internal/config"
	edit_h "post-composer/internal/http-server/handler/edit"
	generation_h "post-composer/internal/http-server/handler/generation"
	image_h "post-composer/internal/http-server/handler/image"
	"post-composer/internal/http-server/router"
	minio_repo "post-composer/internal/repository/image/cloud/minio"
	postgres_repo "post-composer/internal/repository/image/db/postgres"
	"post-composer/internal/usecase/compositor"
	"post-composer/internal/usecase/editor"
	"post-composer/internal/usecase/editstate"
	"post-composer/internal/usecase/generation"
	image_uc "post-composer/internal/usecase/image"
	"post-composer/internal/usecase/processor"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg      *config.Config
	server   *http.Server
	logger   *zlog.Zerolog
	db       *dbpg.DB
	producer *kafka_impl.ProducerClient
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	dbOpts := &dbpg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}

	db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	fileRepo, err := minio_repo.NewMinIORepository(cfg, retries, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	fonts, n, err := compositor.LoadFontBook(cfg.Editor.FontsDir)
	if fonts == nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Editor.FontsDir).Int("loaded", n).Msg("Failed to load extra fonts")
	}
	comp := compositor.New(fonts)

	photosRepo := postgres_repo.NewPhotosRepository(db, retries)
	states := editstate.NewRegistry(photosRepo, logger)
	sessions := editor.NewManager(states, cfg.Editor.CanvasSize)

	producer := kafka_impl.NewProducerClient(cfg.Kafka.Brokers, cfg.Kafka.ExportTopic)
	publisher := kafka_impl.NewExportPublisher(producer, retries)

	proc := processor.NewImageProcessor(comp, fileRepo, cfg.Worker.PacingDelay, logger)
	imageUsecase := image_uc.NewImageUsecase(photosRepo, fileRepo, proc, states, publisher, image_uc.Limits{
		MaxUploadSize: cfg.Export.MaxUploadSize,
		MaxPhotos:     cfg.Export.MaxPhotos,
	}, logger)

	generator := generation.NewGenerator(openai.NewClient(cfg.Generator), logger)

	h := &router.Handler{
		ImageHandler:      image_h.NewImageHandler(imageUsecase, sessions, image_h.Options{
			MaxUploadSize:  cfg.Export.MaxUploadSize,
			DefaultQuality: cfg.Export.DefaultQuality,
		}, logger),
		EditHandler:       edit_h.NewEditHandler(imageUsecase, states, sessions, editor.NewRenderer(comp), logger),
		GenerationHandler: generation_h.NewGenerationHandler(generator, logger),
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      router.SetupRouter(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:      cfg,
		server:   server,
		logger:   logger,
		db:       db,
		producer: producer,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Str("env", a.cfg.Env).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		if a.db != nil && a.db.Master != nil {
			a.db.Master.Close()
		}

		if a.producer != nil {
			a.producer.Close()
		}

		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
