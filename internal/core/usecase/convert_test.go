package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

type fakeDocument struct {
	markdown string
	blocks   []domain.Block
}

func (d *fakeDocument) RenderMarkdown() string {
	return d.markdown
}

func (d *fakeDocument) Blocks() []domain.Block {
	return d.blocks
}

// opaqueDocument has no block walk.
type opaqueDocument struct {
	markdown string
}

func (d opaqueDocument) RenderMarkdown() string { return d.markdown }

type fakeProvider struct {
	engine ports.Engine
	err    error
	calls  int
}

func (f *fakeProvider) Get(context.Context, domain.ConversionOptions) (ports.Engine, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.engine, nil
}

type fakeExecutorEngine struct{}

func (fakeExecutorEngine) Convert(context.Context, string) (ports.Document, error) {
	return nil, errors.New("unused")
}

type fakeExecutor struct {
	doc  ports.Document
	err  error
	path string
}

func (f *fakeExecutor) Convert(_ context.Context, _ ports.Engine, path string) (ports.Document, error) {
	f.path = path
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type fakeTempStore struct {
	staged    int
	released  int
	stageErr  error
	lastPath  string
	lastBytes string
}

func (f *fakeTempStore) Stage(_ context.Context, filename string, data io.Reader) (*domain.StagedFile, error) {
	if f.stageErr != nil {
		return nil, f.stageErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}
	f.staged++
	f.lastPath = "/tmp/staged_" + filename
	f.lastBytes = string(raw)
	return &domain.StagedFile{Path: f.lastPath, Filename: filename, Size: int64(len(raw))}, nil
}

func (f *fakeTempStore) Release(staged *domain.StagedFile) {
	if staged != nil {
		f.released++
	}
}

type identityCleaner struct{}

func (identityCleaner) Clean(text string) string { return strings.TrimSpace(text) }

func newConvertUC(provider *fakeProvider, exec *fakeExecutor, store *fakeTempStore) *ConvertDocumentUseCase {
	return NewConvertDocumentUseCase(provider, exec, store, NewOutputShaper(identityCleaner{}))
}

func TestHandleConvertSuccess(t *testing.T) {
	provider := &fakeProvider{engine: fakeExecutorEngine{}}
	exec := &fakeExecutor{doc: opaqueDocument{markdown: "# hello"}}
	store := &fakeTempStore{}

	bundle, err := newConvertUC(provider, exec, store).HandleConvert(
		context.Background(),
		"report.pdf",
		strings.NewReader("bytes"),
		domain.DefaultConversionOptions(),
	)
	if err != nil {
		t.Fatalf("HandleConvert() error = %v", err)
	}

	if bundle.Markdown != "# hello" {
		t.Fatalf("unexpected markdown %q", bundle.Markdown)
	}
	if bundle.RAGText != bundle.Markdown {
		t.Fatalf("rag_text must equal markdown when rag_clean is off")
	}
	if len(bundle.DebugInfo) != 0 {
		t.Fatalf("debug_info must be empty without debug_mode")
	}
	if exec.path != store.lastPath {
		t.Fatalf("executor got %q, staged at %q", exec.path, store.lastPath)
	}
	if store.released != 1 {
		t.Fatalf("expected exactly one release, got %d", store.released)
	}
}

func TestHandleConvertMissingFilenameSkipsStagingAndEngine(t *testing.T) {
	provider := &fakeProvider{engine: fakeExecutorEngine{}}
	store := &fakeTempStore{}

	_, err := newConvertUC(provider, &fakeExecutor{}, store).HandleConvert(
		context.Background(),
		"   ",
		strings.NewReader("bytes"),
		domain.DefaultConversionOptions(),
	)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if store.staged != 0 {
		t.Fatalf("validation failure must not stage a file")
	}
	if provider.calls != 0 {
		t.Fatalf("validation failure must not touch the engine cache")
	}
}

func TestHandleConvertReleasesStagedFileOnConversionFailure(t *testing.T) {
	provider := &fakeProvider{engine: fakeExecutorEngine{}}
	exec := &fakeExecutor{err: domain.WrapError(domain.ErrConversion, "convert document", errors.New("corrupt file"))}
	store := &fakeTempStore{}

	_, err := newConvertUC(provider, exec, store).HandleConvert(
		context.Background(),
		"corrupt.pdf",
		strings.NewReader("bytes"),
		domain.DefaultConversionOptions(),
	)
	if err == nil {
		t.Fatalf("expected conversion error")
	}
	if !domain.IsKind(err, domain.ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
	if store.released != 1 {
		t.Fatalf("staged file must be released on failure, releases = %d", store.released)
	}
}

func TestHandleConvertReleasesStagedFileOnEngineInitFailure(t *testing.T) {
	provider := &fakeProvider{err: domain.WrapError(domain.ErrEngineInit, "build conversion engine", errors.New("boom"))}
	store := &fakeTempStore{}

	_, err := newConvertUC(provider, &fakeExecutor{}, store).HandleConvert(
		context.Background(),
		"doc.pdf",
		strings.NewReader("bytes"),
		domain.DefaultConversionOptions(),
	)
	if !domain.IsKind(err, domain.ErrEngineInit) {
		t.Fatalf("expected ErrEngineInit, got %v", err)
	}
	if store.staged != 1 || store.released != 1 {
		t.Fatalf("staging lifecycle broken: staged=%d released=%d", store.staged, store.released)
	}
}

func TestHandleConvertStagingFailure(t *testing.T) {
	provider := &fakeProvider{engine: fakeExecutorEngine{}}
	store := &fakeTempStore{stageErr: domain.WrapError(domain.ErrStaging, "write staged file", errors.New("disk full"))}

	_, err := newConvertUC(provider, &fakeExecutor{}, store).HandleConvert(
		context.Background(),
		"doc.pdf",
		strings.NewReader("bytes"),
		domain.DefaultConversionOptions(),
	)
	if !domain.IsKind(err, domain.ErrStaging) {
		t.Fatalf("expected ErrStaging, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("staging failure must not touch the engine cache")
	}
}
