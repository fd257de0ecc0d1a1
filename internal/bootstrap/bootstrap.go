package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-converter/internal/config"
	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
	"github.com/kirillkom/document-converter/internal/core/usecase"
	"github.com/kirillkom/document-converter/internal/infrastructure/engine"
	"github.com/kirillkom/document-converter/internal/infrastructure/executor"
	"github.com/kirillkom/document-converter/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-converter/internal/infrastructure/ragclean"
	"github.com/kirillkom/document-converter/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/document-converter/internal/infrastructure/resilience"
	"github.com/kirillkom/document-converter/internal/infrastructure/staging"
	"github.com/kirillkom/document-converter/internal/infrastructure/storage/localfs"
)

// EngineBuildObserver receives the outcome of every engine construction the
// cache performs. Both metric sets implement it.
type EngineBuildObserver interface {
	RecordEngineBuild(service string, ocr bool, err error)
}

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Jobs      ports.JobReader
	ConvertUC ports.DocumentConverter
	SubmitUC  ports.JobSubmitter
	ProcessUC ports.JobProcessor

	closeFn func()
}

// New wires the full conversion stack. The service name labels engine build
// metrics; observer may be nil.
func New(ctx context.Context, cfg config.Config, service string, observer EngineBuildObserver) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewJobRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	resilienceExec := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilienceExec,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	engineCfg := engine.Config{OCRLanguage: cfg.OCRLanguage}
	factory := ports.EngineFactory(func(ctx context.Context, opts domain.EngineOptions) (ports.Engine, error) {
		built, err := engine.New(ctx, opts, engineCfg)
		if observer != nil {
			observer.RecordEngineBuild(service, opts.OCR, err)
		}
		if err != nil {
			return nil, err
		}
		return built, nil
	})
	engines := engine.NewCache(factory)
	pool := executor.NewPool(cfg.ConversionWorkers)
	tempStore := staging.NewManager(cfg.StagingDir, cfg.StagingPrefix)
	shaper := usecase.NewOutputShaper(ragclean.New())

	convertUC := usecase.NewConvertDocumentUseCase(engines, pool, tempStore, shaper)
	submitUC := usecase.NewSubmitJobUseCase(repo, storage, queue)
	processUC := usecase.NewProcessJobUseCase(repo, storage, tempStore, engines, pool, shaper)

	return &App{
		Config: cfg,
		Queue:  queue,
		Jobs:   repo,

		ConvertUC: convertUC,
		SubmitUC:  submitUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			pool.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
