package engine

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/kirillkom/document-converter/internal/core/ports"
)

// convertImage runs tesseract over the staged image. A fresh client per call:
// gosseract clients are not safe for concurrent use across pool workers.
func (e *DefaultEngine) convertImage(path string) (ports.Document, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.OCRLanguage); err != nil {
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return nil, fmt.Errorf("set ocr image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("ocr extraction: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("ocr produced no text")
	}
	return &blockDocument{blocks: pageBlocks(text)}, nil
}
