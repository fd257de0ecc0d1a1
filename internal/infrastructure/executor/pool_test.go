package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

type fakeDoc struct{ markdown string }

func (d fakeDoc) RenderMarkdown() string { return d.markdown }

type fakeEngine struct {
	mu      sync.Mutex
	calls   []string
	err     error
	block   chan struct{}
	running atomic.Int32
}

func (e *fakeEngine) Convert(_ context.Context, path string) (ports.Document, error) {
	e.running.Add(1)
	defer e.running.Add(-1)

	e.mu.Lock()
	e.calls = append(e.calls, path)
	e.mu.Unlock()

	if e.block != nil {
		<-e.block
	}
	if e.err != nil {
		return nil, e.err
	}
	return fakeDoc{markdown: "# " + path}, nil
}

func TestConvertReturnsDocument(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	doc, err := pool.Convert(context.Background(), &fakeEngine{}, "/tmp/a.pdf")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if doc.RenderMarkdown() != "# /tmp/a.pdf" {
		t.Fatalf("unexpected document: %q", doc.RenderMarkdown())
	}
}

func TestConvertWrapsEngineErrorAsConversion(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	engine := &fakeEngine{err: errors.New("unsupported format")}
	_, err := pool.Convert(context.Background(), engine, "/tmp/bad.bin")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
}

func TestConvertRunsConcurrentlyAcrossWorkers(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	engine := &fakeEngine{block: make(chan struct{})}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = pool.Convert(context.Background(), engine, "/tmp/x.pdf")
		}()
	}

	deadline := time.After(2 * time.Second)
	for engine.running.Load() != 2 {
		select {
		case <-deadline:
			t.Fatalf("expected two in-flight conversions, got %d", engine.running.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(engine.block)
	wg.Wait()
}

func TestConvertHonorsCancellationWhileQueued(t *testing.T) {
	pool := NewPool(1)
	defer func() {
		go pool.Close()
	}()

	engine := &fakeEngine{block: make(chan struct{})}
	defer close(engine.block)

	// Occupy the only worker.
	go func() {
		_, _ = pool.Convert(context.Background(), engine, "/tmp/busy.pdf")
	}()
	deadline := time.After(2 * time.Second)
	for engine.running.Load() != 1 {
		select {
		case <-deadline:
			t.Fatalf("worker never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.Convert(ctx, engine, "/tmp/queued.pdf")
	if err == nil {
		t.Fatalf("expected queue cancellation error")
	}
	if !domain.IsKind(err, domain.ErrConversion) {
		t.Fatalf("expected ErrConversion wrapping, got %v", err)
	}
}
