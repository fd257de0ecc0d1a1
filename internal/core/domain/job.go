package domain

import "time"

type JobStatus string

const (
	JobUploaded   JobStatus = "uploaded"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// ConversionJob tracks one asynchronous conversion from upload to result.
type ConversionJob struct {
	ID          string            `json:"id"`
	Filename    string            `json:"filename"`
	MimeType    string            `json:"mime_type"`
	StoragePath string            `json:"storage_path"`
	Options     ConversionOptions `json:"options"`
	Status      JobStatus         `json:"status"`
	Markdown    string            `json:"markdown,omitempty"`
	RAGText     string            `json:"rag_text,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
