package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-converter/internal/core/domain"
)

// DocumentConverter is the inbound contract for synchronous conversion.
type DocumentConverter interface {
	HandleConvert(ctx context.Context, filename string, body io.Reader, opts domain.ConversionOptions) (*domain.OutputBundle, error)
}

// JobSubmitter is the inbound contract for asynchronous conversion submission.
type JobSubmitter interface {
	Submit(ctx context.Context, filename, mimeType string, body io.Reader, opts domain.ConversionOptions) (*domain.ConversionJob, error)
}

// JobProcessor is the inbound contract for worker-side job execution.
type JobProcessor interface {
	ProcessByID(ctx context.Context, jobID string) error
}

// JobReader is the inbound read model for job state.
type JobReader interface {
	GetByID(ctx context.Context, id string) (*domain.ConversionJob, error)
}
