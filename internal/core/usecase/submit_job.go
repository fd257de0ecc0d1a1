package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

// SubmitJobUseCase accepts an upload for asynchronous conversion: persist the
// bytes to object storage, create the job record, publish the job id.
type SubmitJobUseCase struct {
	repo    ports.JobRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewSubmitJobUseCase(
	repo ports.JobRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *SubmitJobUseCase {
	return &SubmitJobUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *SubmitJobUseCase) Submit(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
	opts domain.ConversionOptions,
) (*domain.ConversionJob, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("no filename provided"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, storageSafeName(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save upload to object storage: %w", err)
	}

	job := &domain.ConversionJob{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Options:     opts,
		Status:      domain.JobUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job record: %w", err)
	}

	if err := uc.queue.PublishConversionRequested(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("publish conversion request: %w", err)
	}

	return job, nil
}

func storageSafeName(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
