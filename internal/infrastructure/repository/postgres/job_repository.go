package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/document-converter/internal/core/domain"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *JobRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS conversion_jobs (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	options JSONB NOT NULL DEFAULT '{}'::jsonb,
	status TEXT NOT NULL,
	markdown TEXT NOT NULL DEFAULT '',
	rag_text TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversion_jobs_status ON conversion_jobs(status);
CREATE INDEX IF NOT EXISTS idx_conversion_jobs_created_at ON conversion_jobs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *JobRepository) Create(ctx context.Context, job *domain.ConversionJob) error {
	optsJSON, err := json.Marshal(job.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO conversion_jobs (
	id, filename, mime_type, storage_path, options, status, markdown, rag_text, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		job.ID, job.Filename, job.MimeType, job.StoragePath, optsJSON,
		string(job.Status), job.Markdown, job.RAGText, job.Error, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversion job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ConversionJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, options, status, markdown, rag_text, error_message, created_at, updated_at
FROM conversion_jobs
WHERE id = $1
`, id)

	var job domain.ConversionJob
	var optsRaw []byte
	var status string

	err := row.Scan(
		&job.ID, &job.Filename, &job.MimeType, &job.StoragePath, &optsRaw,
		&status, &job.Markdown, &job.RAGText, &job.Error, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get job", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan conversion job: %w", err)
	}

	if err := json.Unmarshal(optsRaw, &job.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	job.Status = domain.JobStatus(status)
	return &job, nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE conversion_jobs
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrJobNotFound, "update job status", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *JobRepository) SaveResult(ctx context.Context, id string, bundle domain.OutputBundle) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE conversion_jobs
SET markdown = $2, rag_text = $3, updated_at = $4
WHERE id = $1
`, id, bundle.Markdown, bundle.RAGText, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save job result: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrJobNotFound, "save job result", fmt.Errorf("id %s", id))
	}
	return nil
}
