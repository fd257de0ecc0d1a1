package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

// Cache holds at most one live engine, keyed by the OCR setting it was built
// with. Construction is expensive, so same-option requests share the instance;
// an OCR mismatch discards it and rebuilds. Acquisition is serialized with a
// mutex, so concurrent requests with differing options cannot observe a
// partially replaced engine.
type Cache struct {
	factory ports.EngineFactory

	mu     sync.Mutex
	engine ports.Engine
	ocr    bool
}

func NewCache(factory ports.EngineFactory) *Cache {
	return &Cache{factory: factory}
}

// Get returns the cached engine when the OCR setting matches, otherwise
// rebuilds. A failed build leaves the cache empty so the next request retries
// construction from scratch.
func (c *Cache) Get(ctx context.Context, opts domain.ConversionOptions) (ports.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine != nil && c.ocr == opts.OCREnabled {
		return c.engine, nil
	}

	c.engine = nil
	start := time.Now()
	slog.Info("building conversion engine", "ocr_enabled", opts.OCREnabled)

	built, err := c.factory(ctx, domain.EngineOptions{
		OCR:            opts.OCREnabled,
		TableStructure: true,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrEngineInit, "build conversion engine", err)
	}

	c.engine = built
	c.ocr = opts.OCREnabled
	slog.Info("conversion engine ready",
		"ocr_enabled", opts.OCREnabled,
		"build_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return c.engine, nil
}
