package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

// ProcessJobUseCase executes one queued conversion on the worker: load the
// job, copy the stored upload into staging, run the same engine pipeline as a
// synchronous request, persist the bundle.
type ProcessJobUseCase struct {
	repo     ports.JobRepository
	storage  ports.ObjectStorage
	staging  ports.TempStore
	engines  ports.EngineProvider
	executor ports.ConversionExecutor
	shaper   *OutputShaper
}

func NewProcessJobUseCase(
	repo ports.JobRepository,
	storage ports.ObjectStorage,
	staging ports.TempStore,
	engines ports.EngineProvider,
	executor ports.ConversionExecutor,
	shaper *OutputShaper,
) *ProcessJobUseCase {
	return &ProcessJobUseCase{
		repo:     repo,
		storage:  storage,
		staging:  staging,
		engines:  engines,
		executor: executor,
		shaper:   shaper,
	}
}

func (uc *ProcessJobUseCase) ProcessByID(ctx context.Context, jobID string) error {
	if err := uc.repo.UpdateStatus(ctx, jobID, domain.JobProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	bundle, err := uc.convertStored(ctx, jobID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, jobID, domain.JobFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveResult(ctx, jobID, *bundle); err != nil {
		return fmt.Errorf("save job result: %w", err)
	}
	if err := uc.repo.UpdateStatus(ctx, jobID, domain.JobDone, ""); err != nil {
		return fmt.Errorf("set status=done: %w", err)
	}
	return nil
}

func (uc *ProcessJobUseCase) convertStored(ctx context.Context, jobID string) (*domain.OutputBundle, error) {
	job, err := uc.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job by id: %w", err)
	}

	reader, err := uc.storage.Open(ctx, job.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored upload: %w", err)
	}
	defer reader.Close()

	staged, err := uc.staging.Stage(ctx, job.Filename, reader)
	if err != nil {
		return nil, err
	}
	defer uc.staging.Release(staged)

	engine, err := uc.engines.Get(ctx, job.Options)
	if err != nil {
		return nil, err
	}

	doc, err := uc.executor.Convert(ctx, engine, staged.Path)
	if err != nil {
		return nil, err
	}

	bundle := uc.shaper.Shape(doc, job.Options)
	return &bundle, nil
}
