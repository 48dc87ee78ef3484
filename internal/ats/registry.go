package ats

import (
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/pursuit/internal/interfaces"
)

// Registry maps ATS tags to parsers
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]interfaces.ATSParser
}

var _ interfaces.ParserRegistry = (*Registry)(nil)

// NewRegistry creates an empty parser registry
func NewRegistry() *Registry {
	return &Registry{parsers: map[string]interfaces.ATSParser{}}
}

// Register adds a parser under its own tag, replacing any previous one
func (r *Registry) Register(parser interfaces.ATSParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[parser.Tag()] = parser
}

// Get returns the parser for a tag
func (r *Registry) Get(tag string) (interfaces.ATSParser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[tag]
	return p, ok
}

// Tags returns the registered tags, sorted
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.parsers))
	for tag := range r.parsers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// DetectATS guesses the ATS family from a board URL hostname. Returns the
// empty string when no known family matches.
func (r *Registry) DetectATS(boardURL string) string {
	u := strings.ToLower(boardURL)
	switch {
	case strings.Contains(u, "greenhouse.io"):
		return "greenhouse"
	case strings.Contains(u, "lever.co"):
		return "lever"
	case strings.Contains(u, "myworkdayjobs.com"):
		return "workday"
	case strings.Contains(u, "ashbyhq.com"):
		return "ashby"
	case strings.Contains(u, "smartrecruiters.com"):
		return "smartrecruiters"
	}
	return ""
}
