package autofill

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// addButtonTexts are the labels boards put on the control that appends
// another repeatable section entry
var addButtonTexts = []string{
	"Add another",
	"Add Another",
	"+ Add another",
	"Add another experience",
	"Add another education",
	"Add More",
	"Add",
}

// sectionFiller drives the repeatable work-experience and education blocks
// before the main loop runs, so the indexed fields exist and carry answers
// by the time the general pass sees them.
type sectionFiller struct {
	page     interfaces.Page
	detector *Detector
	resolver *Resolver
	filler   *Filler
	logger   arbor.ILogger
}

// fillRepeatable expands the section under pathPrefix until it holds
// `entries` blocks, then resolves and fills every field belonging to it.
// Returns the fields it handled; the engine marks them so the main loop
// skips the overlap.
func (s *sectionFiller) fillRepeatable(ctx context.Context, pathPrefix string, entries int, known map[string]bool, all *[]*models.FormField) []*models.FormField {
	if entries == 0 {
		return nil
	}

	sectionFields := collectSection(*all, pathPrefix)

	// Expand: each click appends one block and re-renders, so rescan after
	// every press
	for maxSectionIndex(sectionFields)+1 < entries {
		if !s.clickAdd(ctx) {
			break
		}
		_ = s.page.WaitStable(ctx, 500*time.Millisecond)
		added, err := s.detector.Scan(ctx, s.page, known)
		if err != nil {
			s.logger.Warn().Err(err).Str("section", pathPrefix).Msg("Rescan after add failed")
			break
		}
		*all = append(*all, added...)
		grown := collectSection(*all, pathPrefix)
		if maxSectionIndex(grown) == maxSectionIndex(sectionFields) {
			// The click did not produce new indexed fields; stop expanding
			break
		}
		sectionFields = grown
	}

	var handled []*models.FormField
	for _, f := range sectionFields {
		s.resolver.Resolve(ctx, f)
		switch f.Status {
		case models.FieldStatusSkipped:
			handled = append(handled, f)
			continue
		case models.FieldStatusNeedsInput:
			continue
		}
		if f.Answer == "" {
			continue
		}
		f.Answer = adaptAnswer(f, f.Answer, s.logger)
		if err := s.filler.Fill(ctx, f); err != nil {
			f.Status = models.FieldStatusError
			f.Error = err.Error()
			s.logger.Warn().Err(err).Str("label", f.Label).Msg("Section fill failed")
			continue
		}
		f.Status = models.FieldStatusFilled
		handled = append(handled, f)
	}
	return handled
}

func (s *sectionFiller) clickAdd(ctx context.Context) bool {
	for _, text := range addButtonTexts {
		if err := s.page.ClickText(ctx, "", "button, a", text); err == nil {
			return true
		}
	}
	return false
}

func collectSection(fields []*models.FormField, pathPrefix string) []*models.FormField {
	var out []*models.FormField
	for _, f := range fields {
		if strings.HasPrefix(f.ProfileKey, pathPrefix) {
			out = append(out, f)
		}
	}
	return out
}

func maxSectionIndex(fields []*models.FormField) int {
	max := -1
	for _, f := range fields {
		parts := strings.Split(f.ProfileKey, ".")
		if len(parts) < 2 {
			continue
		}
		n := 0
		ok := len(parts[1]) > 0
		for _, c := range parts[1] {
			if c < '0' || c > '9' {
				ok = false
				break
			}
			n = n*10 + int(c-'0')
		}
		if ok && n > max {
			max = n
		}
	}
	return max
}
