package engine

import "github.com/kirillkom/document-converter/internal/core/domain"

// blockDocument is a converted document with a known structure. It exposes the
// block walk used for table flattening and debug traces.
type blockDocument struct {
	blocks []domain.Block
}

func (d *blockDocument) RenderMarkdown() string {
	return domain.RenderBlocksMarkdown(d.blocks)
}

func (d *blockDocument) Blocks() []domain.Block {
	return d.blocks
}

// textDocument is an opaque passthrough result. It renders markdown but
// deliberately exposes no structure, so shaping falls back to the faithful
// rendering for table mode and returns an empty debug trace.
type textDocument struct {
	content string
}

func (d *textDocument) RenderMarkdown() string {
	return d.content
}
