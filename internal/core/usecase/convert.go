package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

// ConvertDocumentUseCase orchestrates one synchronous conversion: validate,
// stage, acquire engine, convert off the request path, shape, release. The
// staged file is released on every exit path.
type ConvertDocumentUseCase struct {
	engines  ports.EngineProvider
	executor ports.ConversionExecutor
	staging  ports.TempStore
	shaper   *OutputShaper
}

func NewConvertDocumentUseCase(
	engines ports.EngineProvider,
	executor ports.ConversionExecutor,
	staging ports.TempStore,
	shaper *OutputShaper,
) *ConvertDocumentUseCase {
	return &ConvertDocumentUseCase{
		engines:  engines,
		executor: executor,
		staging:  staging,
		shaper:   shaper,
	}
}

func (uc *ConvertDocumentUseCase) HandleConvert(
	ctx context.Context,
	filename string,
	body io.Reader,
	opts domain.ConversionOptions,
) (*domain.OutputBundle, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("no filename provided"))
	}

	staged, err := uc.staging.Stage(ctx, filename, body)
	if err != nil {
		return nil, err
	}
	defer uc.staging.Release(staged)

	slog.Info("upload staged", "filename", filename, "bytes", staged.Size)

	engine, err := uc.engines.Get(ctx, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := uc.executor.Convert(ctx, engine, staged.Path)
	if err != nil {
		return nil, err
	}

	bundle := uc.shaper.Shape(doc, opts)
	slog.Info("conversion complete",
		"filename", filename,
		"markdown_chars", len(bundle.Markdown),
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return &bundle, nil
}
