package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

type outcome struct {
	doc ports.Document
	err error
}

type task struct {
	ctx    context.Context
	engine ports.Engine
	path   string
	result chan outcome
}

// Pool runs blocking engine calls on a fixed set of workers so request
// handling stays responsive while conversions are in flight. One task is
// submitted per conversion; a submitted task always runs to completion even if
// the requesting client has gone away.
type Pool struct {
	tasks chan task

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 2
	}
	p := &Pool{
		tasks: make(chan task),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		doc, err := t.engine.Convert(t.ctx, t.path)
		if err != nil {
			err = domain.WrapError(domain.ErrConversion, "convert document", err)
		}
		t.result <- outcome{doc: doc, err: err}
	}
}

// Convert submits one conversion and suspends until a worker finishes it.
// Cancellation is honored only while the task is still queued; an in-flight
// conversion is never aborted.
func (p *Pool) Convert(ctx context.Context, engine ports.Engine, path string) (ports.Document, error) {
	if engine == nil {
		return nil, domain.WrapError(domain.ErrConversion, "convert document", fmt.Errorf("nil engine"))
	}

	t := task{
		ctx:    context.WithoutCancel(ctx),
		engine: engine,
		path:   path,
		result: make(chan outcome, 1),
	}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return nil, domain.WrapError(domain.ErrConversion, "queue conversion", ctx.Err())
	}

	out := <-t.result
	if out.err != nil {
		return nil, out.err
	}
	return out.doc, nil
}

// Close stops accepting tasks and waits for in-flight conversions.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
