package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

// OutputShaper turns a converted document into the requested output bundle.
// Table flattening and debug extraction are capability checks against the
// document; a document without a block walk degrades to the faithful
// rendering and an empty trace, never failing the request.
type OutputShaper struct {
	cleaner ports.TextCleaner
}

func NewOutputShaper(cleaner ports.TextCleaner) *OutputShaper {
	return &OutputShaper{cleaner: cleaner}
}

func (s *OutputShaper) Shape(doc ports.Document, opts domain.ConversionOptions) domain.OutputBundle {
	markdown := doc.RenderMarkdown()

	if opts.TableMode == domain.TableModeList {
		if walker, ok := doc.(ports.BlockWalker); ok && len(walker.Blocks()) > 0 {
			markdown = renderWithFlattenedTables(walker.Blocks())
		} else {
			slog.Debug("table flattening unavailable, keeping faithful rendering")
		}
	}

	ragText := markdown
	if opts.RAGClean {
		ragText = s.cleaner.Clean(markdown)
	}

	debugInfo := []domain.BlockInfo{}
	if opts.DebugMode {
		if walker, ok := doc.(ports.BlockWalker); ok {
			debugInfo = blockTrace(walker.Blocks())
		} else {
			slog.Debug("debug trace unavailable, returning empty trace")
		}
	}

	return domain.OutputBundle{
		Markdown:  markdown,
		RAGText:   ragText,
		DebugInfo: debugInfo,
	}
}

// renderWithFlattenedTables re-renders the block walk, replacing table blocks
// with plain-text list representations: one "- header: value" line per cell.
func renderWithFlattenedTables(blocks []domain.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Kind != domain.BlockTable {
			if md := b.Markdown(); md != "" {
				parts = append(parts, md)
			}
			continue
		}
		if flat := flattenTable(b.Rows); flat != "" {
			parts = append(parts, flat)
		}
	}
	return strings.Join(parts, "\n\n")
}

func flattenTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	headers := rows[0]

	var sb strings.Builder
	for i, row := range rows[1:] {
		if i > 0 {
			sb.WriteString("\n")
		}
		for col, cell := range row {
			header := fmt.Sprintf("column %d", col+1)
			if col < len(headers) && strings.TrimSpace(headers[col]) != "" {
				header = headers[col]
			}
			sb.WriteString(fmt.Sprintf("- %s: %s\n", header, cell))
		}
	}
	if len(rows) == 1 {
		// Header-only table: keep the headers as a flat list.
		for _, cell := range headers {
			sb.WriteString(fmt.Sprintf("- %s\n", cell))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func blockTrace(blocks []domain.Block) []domain.BlockInfo {
	trace := make([]domain.BlockInfo, 0, len(blocks))
	for i, b := range blocks {
		info := domain.BlockInfo{
			Index: i,
			Kind:  string(b.Kind),
			Chars: len(b.Text),
		}
		if b.Kind == domain.BlockTable {
			info.Rows = len(b.Rows)
			for _, row := range b.Rows {
				if len(row) > info.Cols {
					info.Cols = len(row)
				}
			}
		}
		trace = append(trace, info)
	}
	return trace
}
