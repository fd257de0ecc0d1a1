package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

// Config carries engine settings that do not key the cache.
type Config struct {
	// OCRLanguage is the tesseract language code, e.g. "eng".
	OCRLanguage string
}

// DefaultEngine is the built-in conversion engine. It dispatches on the file
// extension: PDFs go through native text extraction, spreadsheets through
// sheet extraction, images through OCR (when built with OCR support), and
// plain text passes through.
type DefaultEngine struct {
	opts domain.EngineOptions
	cfg  Config
}

// New constructs the engine eagerly: when OCR is requested, the tesseract
// installation is probed up front so construction failure is reported once at
// build time instead of on every image conversion.
func New(_ context.Context, opts domain.EngineOptions, cfg Config) (*DefaultEngine, error) {
	if cfg.OCRLanguage == "" {
		cfg.OCRLanguage = "eng"
	}
	if opts.OCR {
		langs, err := gosseract.GetAvailableLanguages()
		if err != nil {
			return nil, fmt.Errorf("probe tesseract: %w", err)
		}
		if !containsLanguage(langs, cfg.OCRLanguage) {
			return nil, fmt.Errorf("tesseract language %q not installed", cfg.OCRLanguage)
		}
	}
	return &DefaultEngine{opts: opts, cfg: cfg}, nil
}

func (e *DefaultEngine) Convert(ctx context.Context, path string) (ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.convertPDF(path)
	case ".xlsx", ".xlsm":
		return e.convertSpreadsheet(path)
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		if !e.opts.OCR {
			return nil, fmt.Errorf("image input %q requires OCR, which is disabled", filepath.Base(path))
		}
		return e.convertImage(path)
	case ".md", ".txt":
		return e.convertPlainText(path)
	default:
		return nil, fmt.Errorf("unsupported document format %q", filepath.Ext(path))
	}
}

func containsLanguage(langs []string, lang string) bool {
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}
