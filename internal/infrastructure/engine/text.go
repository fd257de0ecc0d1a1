package engine

import (
	"fmt"
	"os"

	"github.com/kirillkom/document-converter/internal/core/ports"
)

// convertPlainText passes markdown and text uploads through unchanged. The
// result is opaque on purpose: there is no structure worth walking.
func (e *DefaultEngine) convertPlainText(path string) (ports.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text document: %w", err)
	}
	return &textDocument{content: string(raw)}, nil
}
