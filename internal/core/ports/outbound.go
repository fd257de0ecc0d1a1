package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-converter/internal/core/domain"
)

// Engine converts one staged document into a structured result. Convert is
// blocking and may run for seconds; callers go through a ConversionExecutor.
type Engine interface {
	Convert(ctx context.Context, path string) (Document, error)
}

// EngineFactory builds an engine for one option set. Construction is expensive
// and must only happen through the EngineProvider.
type EngineFactory func(ctx context.Context, opts domain.EngineOptions) (Engine, error)

// EngineProvider hands out a cached engine matching the requested options,
// rebuilding it when the OCR setting differs from the cached one.
type EngineProvider interface {
	Get(ctx context.Context, opts domain.ConversionOptions) (Engine, error)
}

// Document is the converted result. Every document renders markdown; documents
// that additionally expose their structure implement BlockWalker.
type Document interface {
	RenderMarkdown() string
}

// BlockWalker is the optional structural-walk capability used for table
// flattening and debug traces. Absence degrades to the faithful rendering.
type BlockWalker interface {
	Blocks() []domain.Block
}

// TempStore owns the staging lifecycle of uploaded files. Release never
// escalates failures and tolerates an already-removed file.
type TempStore interface {
	Stage(ctx context.Context, filename string, data io.Reader) (*domain.StagedFile, error)
	Release(staged *domain.StagedFile)
}

// ConversionExecutor runs a blocking engine call off the request path and
// resumes the caller with the result.
type ConversionExecutor interface {
	Convert(ctx context.Context, engine Engine, path string) (Document, error)
}

// TextCleaner is the deterministic RAG cleaning transform.
type TextCleaner interface {
	Clean(text string) string
}

// JobRepository persists and reads conversion job state.
type JobRepository interface {
	Create(ctx context.Context, job *domain.ConversionJob) error
	GetByID(ctx context.Context, id string) (*domain.ConversionJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus, errMessage string) error
	SaveResult(ctx context.Context, id string, bundle domain.OutputBundle) error
}

// ObjectStorage stores uploads for asynchronous jobs.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes conversion job events.
type MessageQueue interface {
	PublishConversionRequested(ctx context.Context, jobID string) error
	SubscribeConversionRequested(ctx context.Context, handler func(context.Context, string) error) error
}
