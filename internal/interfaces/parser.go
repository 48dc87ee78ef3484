package interfaces

import (
	"context"

	"github.com/ternarybob/pursuit/internal/models"
)

// ATSParser fetches and normalizes postings for one ATS family.
// Implementations derive the API endpoint from the board URL, retry transient
// failures internally, and return jobs with ATS and Company set. Missing
// optional fields are empty strings, never unset.
type ATSParser interface {
	// Tag returns the parser's ATS identifier (e.g. "greenhouse")
	Tag() string
	// Parse fetches all postings on the board. Errors are *ats.TransientError
	// or *ats.PermanentError after internal retries are exhausted.
	Parse(ctx context.Context, company, boardURL string) ([]models.Job, error)
}

// ParserRegistry maps ATS tags to parsers. Adding an ATS means registering a
// new implementation; no other component changes.
type ParserRegistry interface {
	Register(parser ATSParser)
	Get(tag string) (ATSParser, bool)
	DetectATS(boardURL string) string
	Tags() []string
}
