package engine

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

func (e *DefaultEngine) convertPDF(path string) (ports.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var blocks []domain.Block
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("pdf page text extraction failed", "page", i, "error", err)
			continue
		}
		blocks = append(blocks, pageBlocks(text)...)
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("pdf contains no extractable text")
	}
	return &blockDocument{blocks: blocks}, nil
}

// pageBlocks groups a page's plain text into heading and paragraph blocks.
// A short standalone line without terminal punctuation reads as a heading.
func pageBlocks(text string) []domain.Block {
	var blocks []domain.Block
	var paragraph []string

	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		blocks = append(blocks, domain.Block{
			Kind: domain.BlockParagraph,
			Text: strings.Join(paragraph, " "),
		})
		paragraph = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		if looksLikeHeading(line) {
			flush()
			blocks = append(blocks, domain.Block{
				Kind:  domain.BlockHeading,
				Level: 2,
				Text:  line,
			})
			continue
		}
		paragraph = append(paragraph, line)
	}
	flush()
	return blocks
}

func looksLikeHeading(line string) bool {
	if utf8.RuneCountInString(line) >= 64 {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(line)
	if last == '.' || last == ',' || last == ';' || last == ':' {
		return false
	}
	first, _ := utf8.DecodeRuneInString(line)
	return unicode.IsUpper(first) || unicode.IsDigit(first)
}
