package ats

import (
	"strings"
	"testing"
)

func TestHTMLToSummary(t *testing.T) {
	got := htmlToSummary("<h2>About</h2><p>We build <strong>payment</strong> infrastructure.</p>")
	if !strings.Contains(got, "## About") {
		t.Errorf("heading not converted: %q", got)
	}
	if !strings.Contains(got, "**payment**") {
		t.Errorf("emphasis not converted: %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("tags leaked through: %q", got)
	}
}

func TestHTMLToSummaryEmpty(t *testing.T) {
	if got := htmlToSummary("  \n "); got != "" {
		t.Errorf("blank input should yield empty summary, got %q", got)
	}
}

func TestHTMLToSummaryTruncatesOnWordBoundary(t *testing.T) {
	long := "<p>" + strings.Repeat("lorem ipsum dolor ", 300) + "</p>"
	got := htmlToSummary(long)
	if len(got) > summaryLimit {
		t.Errorf("summary length = %d, want <= %d", len(got), summaryLimit)
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("summary should not end mid-separator: %q", got)
	}
}
