package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

func (e *DefaultEngine) convertSpreadsheet(path string) (ports.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("spreadsheet close failed", "path", path, "error", err)
		}
	}()

	var blocks []domain.Block
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		rows = trimEmptyRows(rows)
		if len(rows) == 0 {
			continue
		}

		blocks = append(blocks, domain.Block{
			Kind:  domain.BlockHeading,
			Level: 2,
			Text:  sheet,
		})

		if e.opts.TableStructure {
			blocks = append(blocks, domain.Block{
				Kind: domain.BlockTable,
				Rows: rows,
			})
			continue
		}
		// Without table-structure recognition the sheet degrades to one
		// tab-joined paragraph per row.
		for _, row := range rows {
			blocks = append(blocks, domain.Block{
				Kind: domain.BlockParagraph,
				Text: strings.Join(row, "\t"),
			})
		}
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("spreadsheet contains no data")
	}
	return &blockDocument{blocks: blocks}, nil
}

func trimEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}
