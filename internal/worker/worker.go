package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"post-composer/internal/broker"
	kafka_impl "post-composer/internal/broker/kafka"
	"post-composer/internal/config"
	minio_repo "post-composer/internal/repository/image/cloud/minio"
	postgres_repo "post-composer/internal/repository/image/db/postgres"
	"post-composer/internal/usecase/compositor"
	"post-composer/internal/usecase/processor"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type Worker struct {
	cfg         *config.Config
	logger      *zlog.Zerolog
	db          *dbpg.DB
	consumer    broker.Consumer
	exporter    *Exporter
	concurrency int
	wg          sync.WaitGroup
}

func NewWorker(cfg *config.Config, logger *zlog.Zerolog) (*Worker, error) {
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

	photosRepo := postgres_repo.NewPhotosRepository(db, retries)
	proc := processor.NewImageProcessor(compositor.New(fonts), fileRepo, cfg.Worker.PacingDelay, logger)

	kafkaClient := kafka_impl.NewKafkaClient(cfg)
	publisher := kafka_impl.NewExportPublisher(kafkaClient, retries)

	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.ExportTopic).
		Str("group", cfg.Kafka.GroupID).
		Int("concurrency", concurrency).
		Dur("pacing", cfg.Worker.PacingDelay).
		Msg("Worker configuration")

	return &Worker{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		consumer:    kafkaClient,
		exporter:    NewExporter(photosRepo, storedStates{store: photosRepo}, proc, fileRepo, publisher, logger),
		concurrency: concurrency,
	}, nil
}

func (w *Worker) Run() error {
	w.logger.Info().Int("concurrency", w.concurrency).Msg("Starting worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		w.logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal, stopping worker...")
		cancel()
	}()

	messages := make(chan *broker.Message, w.concurrency*2)
	w.consumer.Start(ctx, messages, w.cfg.DefaultRetryStrategy())

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processWorker(ctx, id, messages)
		}(i)
	}

	w.logger.Info().Msg("Worker started successfully")

	<-ctx.Done()

	w.logger.Info().Msg("Shutting down worker gracefully...")
	w.wg.Wait()

	if w.consumer != nil {
		if err := w.consumer.Close(); err != nil {
			w.logger.Error().Err(err).Msg("Failed to close kafka client")
		}
	}
	if w.db != nil && w.db.Master != nil {
		w.db.Master.Close()
	}

	w.logger.Info().Msg("Worker stopped gracefully")
	return nil
}

func (w *Worker) processWorker(ctx context.Context, id int, messages <-chan *broker.Message) {
	w.logger.Info().Int("worker_id", id).Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Int("worker_id", id).Msg("Worker stopping")
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			start := time.Now()
			if err := w.safeProcessMessage(ctx, id, msg); err != nil {
				w.logger.Error().
					Err(err).
					Int("worker_id", id).
					Int64("offset", msg.Offset).
					Msg("Failed to process message")
				continue
			}

			if err := w.consumer.Commit(ctx, msg); err != nil {
				w.logger.Error().
					Err(err).
					Int("worker_id", id).
					Int64("offset", msg.Offset).
					Msg("Failed to commit message after successful processing")
				continue
			}

			w.logger.Debug().
				Int("worker_id", id).
				Int64("offset", msg.Offset).
				Dur("duration", time.Since(start)).
				Msg("Message processed and committed")
		}
	}
}

func (w *Worker) safeProcessMessage(ctx context.Context, workerID int, msg *broker.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Int("worker_id", workerID).
				Interface("panic", r).
				Int64("offset", msg.Offset).
				Msg("Panic recovered while processing message")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.processMessage(ctx, msg)
}

func (w *Worker) processMessage(ctx context.Context, msg *broker.Message) error {
	task, err := kafka_impl.DecodeExportTask(msg)
	if err != nil {
		w.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to decode export task")
		return err
	}

	w.logger.Info().
		Str("export_id", task.ID).
		Int("images", len(task.ImageIDs)).
		Str("format", string(task.Format)).
		Int64("offset", msg.Offset).
		Msg("Export task started")

	_, err = w.exporter.Run(ctx, task)
	return err
}
