package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
)

// writePDFFixture assembles a one-page PDF around the given content stream,
// computing xref offsets while writing so the file is structurally valid.
func writePDFFixture(t *testing.T, dir, name, contentStream string) string {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(contentStream), contentStream),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write pdf fixture: %v", err)
	}
	return path
}

func TestConvertPDFExtractsBlocks(t *testing.T) {
	e := newTestEngine(t)

	path := writePDFFixture(t, t.TempDir(), "report.pdf",
		"BT /F1 16 Tf 72 712 Td (Quarterly Report) Tj ET")

	doc, err := e.Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	walker, ok := doc.(ports.BlockWalker)
	if !ok {
		t.Fatalf("pdf document must expose a block walk")
	}
	if len(walker.Blocks()) == 0 {
		t.Fatalf("expected extracted blocks")
	}
	if walker.Blocks()[0].Kind != domain.BlockHeading {
		t.Fatalf("expected heading block first, got %+v", walker.Blocks()[0])
	}

	md := doc.RenderMarkdown()
	if md == "" || !strings.Contains(md, "Quarterly Report") {
		t.Fatalf("expected extracted text in markdown, got %q", md)
	}
}

func TestConvertPDFWithoutTextFails(t *testing.T) {
	e := newTestEngine(t)

	path := writePDFFixture(t, t.TempDir(), "blank.pdf", "")

	_, err := e.Convert(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "no extractable text") {
		t.Fatalf("expected no-extractable-text error, got %v", err)
	}
}

func TestConvertPDFRejectsCorruptFile(t *testing.T) {
	e := newTestEngine(t)

	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 truncated"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := e.Convert(context.Background(), path); err == nil {
		t.Fatalf("expected parse error for corrupt pdf")
	}
}

func TestLooksLikeHeadingHandlesMultiByteRunes(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"Годовой отчёт", true},
		{"Затраты выросли во втором квартале.", false},
		{"Первый раздел:", false},
		{strings.Repeat("О", 70), false},
	}
	for _, tc := range cases {
		if got := looksLikeHeading(tc.line); got != tc.want {
			t.Fatalf("looksLikeHeading(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}
