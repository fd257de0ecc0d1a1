package ragclean

import (
	"regexp"
	"strings"
)

var (
	commentSpans = regexp.MustCompile(`(?s)<!--.*?-->`)
	trailingWS   = regexp.MustCompile(`(?m)[ \t]+$`)
	newlineRuns  = regexp.MustCompile(`\n{3,}`)
)

// Cleaner normalizes rendered markdown for retrieval indexing. The transform
// is total and idempotent: comment spans are removed, per-line trailing
// whitespace is stripped, runs of three or more newlines collapse to two, and
// the whole result is trimmed.
type Cleaner struct{}

func New() Cleaner {
	return Cleaner{}
}

func (Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}
	out := commentSpans.ReplaceAllString(text, "")
	out = trailingWS.ReplaceAllString(out, "")
	out = newlineRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
