package ragclean

import (
	"strings"
	"testing"
)

func TestCleanEmptyInput(t *testing.T) {
	if got := New().Clean(""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestCleanRemovesCommentSpans(t *testing.T) {
	cleaner := New()

	in := "before <!-- hidden --> after"
	if got := cleaner.Clean(in); got != "before  after" {
		t.Fatalf("unexpected output %q", got)
	}

	multiline := "start\n<!-- line one\nline two\nline three -->\nend"
	got := cleaner.Clean(multiline)
	if strings.Contains(got, "line one") || strings.Contains(got, "line three") {
		t.Fatalf("comment span survived: %q", got)
	}
	if !strings.Contains(got, "start") || !strings.Contains(got, "end") {
		t.Fatalf("surrounding text lost: %q", got)
	}
}

func TestCleanNonGreedyAcrossMultipleComments(t *testing.T) {
	in := "a <!-- one --> b <!-- two --> c"
	got := New().Clean(in)
	if !strings.Contains(got, "b") {
		t.Fatalf("non-greedy matching failed, text between comments lost: %q", got)
	}
	if strings.Contains(got, "one") || strings.Contains(got, "two") {
		t.Fatalf("comment content survived: %q", got)
	}
}

func TestCleanStripsTrailingWhitespacePerLine(t *testing.T) {
	in := "first line   \nsecond line\t\nthird"
	got := New().Clean(in)
	for _, line := range strings.Split(got, "\n") {
		if line != strings.TrimRight(line, " \t") {
			t.Fatalf("line %q has trailing whitespace", line)
		}
	}
}

func TestCleanCollapsesNewlineRuns(t *testing.T) {
	in := "one\n\n\n\n\ntwo\n\n\nthree"
	got := New().Clean(in)
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("newline run survived: %q", got)
	}
	if got != "one\n\ntwo\n\nthree" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCleanTrimsWholeResult(t *testing.T) {
	in := "\n\n  body  \n\n"
	if got := New().Clean(in); got != "body" {
		t.Fatalf("expected trimmed body, got %q", got)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	cleaner := New()
	inputs := []string{
		"",
		"plain text",
		"a <!-- c --> b  \n\n\n\nend  ",
		"<!-- only a comment -->",
		"trailing spaces   \nand\n\n\n\nruns",
	}
	for _, in := range inputs {
		once := cleaner.Clean(in)
		twice := cleaner.Clean(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
