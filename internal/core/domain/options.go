package domain

import "fmt"

// TableMode controls how table blocks appear in the rendered output.
type TableMode string

const (
	TableModeMarkdown TableMode = "markdown"
	TableModeList     TableMode = "list"
)

func ParseTableMode(raw string) (TableMode, error) {
	switch TableMode(raw) {
	case TableModeMarkdown, TableModeList:
		return TableMode(raw), nil
	case "":
		return TableModeMarkdown, nil
	default:
		return "", fmt.Errorf("unknown table_mode %q", raw)
	}
}

// ConversionOptions is immutable for the lifetime of one request. OCREnabled
// drives engine selection; the remaining fields drive output shaping only.
type ConversionOptions struct {
	OCREnabled bool      `json:"ocr_enabled"`
	RAGClean   bool      `json:"rag_clean"`
	TableMode  TableMode `json:"table_mode"`
	DebugMode  bool      `json:"debug_mode"`
}

func DefaultConversionOptions() ConversionOptions {
	return ConversionOptions{
		OCREnabled: true,
		RAGClean:   false,
		TableMode:  TableModeMarkdown,
		DebugMode:  false,
	}
}

// EngineOptions is the option set a conversion engine is constructed with.
// TableStructure is fixed to true by the engine cache; only OCR varies per
// request and therefore keys the cache.
type EngineOptions struct {
	OCR            bool
	TableStructure bool
}
