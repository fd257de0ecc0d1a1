package domain

import "strings"

type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockTable     BlockKind = "table"
)

// Block is one structural unit of a converted document. Rows is populated for
// table blocks only; the first row holds the column headers when present.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
	Rows  [][]string
}

// BlockInfo is the wire-level debug trace entry for one block.
type BlockInfo struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Chars int    `json:"chars"`
	Rows  int    `json:"rows,omitempty"`
	Cols  int    `json:"cols,omitempty"`
}

// OutputBundle is the response payload of one conversion. Markdown carries the
// rendering for the requested table mode, RAGText is identical to it or a
// cleaned derivative, DebugInfo is empty unless debug mode was requested.
type OutputBundle struct {
	Markdown  string      `json:"markdown"`
	RAGText   string      `json:"rag_text"`
	DebugInfo []BlockInfo `json:"debug_info"`
}

// StagedFile is the on-disk staging copy of one upload, owned by a single
// request and removed on every exit path.
type StagedFile struct {
	Path     string
	Filename string
	Size     int64
}

func (b Block) Markdown() string {
	switch b.Kind {
	case BlockHeading:
		level := b.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return strings.Repeat("#", level) + " " + b.Text
	case BlockTable:
		return renderMarkdownTable(b.Rows)
	default:
		return b.Text
	}
}

// RenderBlocksMarkdown is the faithful rendering shared by engine documents
// and the output shaper.
func RenderBlocksMarkdown(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if md := b.Markdown(); md != "" {
			parts = append(parts, md)
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderMarkdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		sb.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = strings.ReplaceAll(row[i], "|", "\\|")
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|")
	for i := 0; i < width; i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return strings.TrimRight(sb.String(), "\n")
}
