package autofill

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// suggestionSelector matches rendered autocomplete options across the common
// widget libraries when no aria-controls target identifies the listbox
const suggestionSelector = `[role="option"], .select__option, li[id*="option"]`

// Filler writes resolved answers into page elements, one strategy per field
// type. Errors are returned to the engine, which tags the field and moves on.
type Filler struct {
	page   interfaces.Page
	config *common.AutofillConfig
	logger arbor.ILogger
}

func NewFiller(page interfaces.Page, config *common.AutofillConfig, logger arbor.ILogger) *Filler {
	return &Filler{page: page, config: config, logger: logger}
}

// Fill writes the field's adapted answer into the DOM. The caller has
// already run adaptAnswer; this layer only performs the interaction.
func (fl *Filler) Fill(ctx context.Context, f *models.FormField) error {
	// File inputs are exempt: boards routinely keep them hidden behind an
	// Attach button, and SetFiles works on hidden elements
	if f.Type != models.FieldTypeFile {
		if err := fl.page.WaitVisible(ctx, f.FrameID, f.Selector, fl.config.ElementWaitTimeout); err != nil {
			return err
		}
	}

	answer := f.Answer
	switch f.Type {
	case models.FieldTypePhone:
		// Typed key by key so masked inputs reformat as a human's would
		if err := fl.page.Click(ctx, f.FrameID, f.Selector); err != nil {
			return err
		}
		return fl.page.TypeChars(ctx, f.FrameID, f.Selector, answer, fl.config.TypeKeyDelay)

	case models.FieldTypeSelect:
		return fl.fillSelect(ctx, f, answer)

	case models.FieldTypeAutocomplete:
		return fl.fillAutocomplete(ctx, f, answer)

	case models.FieldTypeCheckbox:
		return fl.fillCheckbox(ctx, f, answer)

	case models.FieldTypeRadio:
		return fl.fillRadio(ctx, f, answer)

	case models.FieldTypeFile:
		return fl.page.SetFiles(ctx, f.FrameID, f.Selector, []string{answer})

	default:
		return fl.page.SetValue(ctx, f.FrameID, f.Selector, answer)
	}
}

// fillSelect drives a native <select>: exact label first, then fuzzy match
// over the option labels, then the first non-empty option so required
// dropdowns never stay blank.
func (fl *Filler) fillSelect(ctx context.Context, f *models.FormField, answer string) error {
	if err := fl.page.SelectByLabel(ctx, f.FrameID, f.Selector, answer); err == nil {
		return nil
	}
	labels, err := fl.page.SelectOptionLabels(ctx, f.FrameID, f.Selector)
	if err != nil {
		return err
	}
	if opt, score := bestOption(answer, labels, 40); opt != "" {
		fl.logger.Debug().Str("label", f.Label).Str("option", opt).Int("score", score).Msg("Fuzzy select match")
		return fl.page.SelectByLabel(ctx, f.FrameID, f.Selector, opt)
	}
	for _, l := range labels {
		if strings.TrimSpace(l) != "" && !isPlaceholderOption(l) {
			fl.logger.Warn().Str("label", f.Label).Str("option", l).Msg("No select match, using first option")
			return fl.page.SelectByLabel(ctx, f.FrameID, f.Selector, l)
		}
	}
	return fmt.Errorf("select %s has no usable options", f.Selector)
}

// fillAutocomplete types the answer and picks the best suggestion. Select2
// widgets need a mousedown on the rendered choice box before the hidden
// search input accepts keys.
func (fl *Filler) fillAutocomplete(ctx context.Context, f *models.FormField, answer string) error {
	minScore := 40
	if isSchoolField(f) {
		// School pickers hold thousands of entries; a weak match is worse
		// than the catch-all
		minScore = 80
	}

	if strings.Contains(f.Selector, "select2") {
		return fl.fillSelect2(ctx, f, answer, minScore)
	}

	if err := fl.page.Click(ctx, f.FrameID, f.Selector); err != nil {
		return err
	}
	if err := fl.page.TypeChars(ctx, f.FrameID, f.Selector, answer, fl.config.TypeKeyDelay); err != nil {
		return err
	}
	if err := fl.page.WaitStable(ctx, fl.config.StableSettle); err != nil {
		return err
	}

	suggestions, err := fl.page.Texts(ctx, f.FrameID, suggestionSelector)
	if err != nil || len(suggestions) == 0 {
		// No visible listbox: commit the typed text
		return fl.page.PressKey(ctx, "Enter")
	}
	opt, score := bestOption(answer, suggestions, minScore)
	if opt == "" {
		if isSchoolField(f) {
			if other, _ := bestOption("Other", suggestions, 80); other != "" {
				opt = other
			}
		}
		if opt == "" {
			fl.logger.Warn().Str("label", f.Label).Int("best_score", score).Msg("No suggestion met score threshold")
			return fl.page.PressKey(ctx, "Escape")
		}
	}
	return fl.clickOptionByText(ctx, f.FrameID, opt)
}

func (fl *Filler) fillSelect2(ctx context.Context, f *models.FormField, answer string, minScore int) error {
	choice := f.Selector + " ~ .select2-container .select2-choice"
	if ok, _ := fl.page.Exists(ctx, f.FrameID, choice); !ok {
		choice = ".select2-choice"
	}
	if err := fl.page.MouseDown(ctx, f.FrameID, choice); err != nil {
		return err
	}
	if err := fl.page.TypeChars(ctx, f.FrameID, ".select2-input", answer, fl.config.TypeKeyDelay); err != nil {
		return err
	}
	if err := fl.page.WaitStable(ctx, fl.config.StableSettle); err != nil {
		return err
	}
	results, err := fl.page.Texts(ctx, f.FrameID, ".select2-results li")
	if err != nil {
		return err
	}
	opt, _ := bestOption(answer, results, minScore)
	if opt == "" && isSchoolField(f) {
		opt, _ = bestOption("Other", results, 80)
	}
	if opt == "" {
		return fl.page.PressKey(ctx, "Escape")
	}
	return fl.clickOptionByText(ctx, f.FrameID, opt)
}

func (fl *Filler) fillCheckbox(ctx context.Context, f *models.FormField, answer string) error {
	want := canonicalYesNo(answer) == "Yes"
	el, err := fl.page.GetElement(ctx, f.FrameID, f.Selector)
	if err != nil {
		return err
	}
	if el.Checked == want {
		return nil
	}
	return fl.page.Click(ctx, f.FrameID, f.Selector)
}

func (fl *Filler) fillRadio(ctx context.Context, f *models.FormField, answer string) error {
	// Radios are detected per input; the field's own label says which
	// choice this element represents
	if optionScore(answer, f.Label) >= 40 {
		return fl.page.Click(ctx, f.FrameID, f.Selector)
	}
	if err := fl.page.ClickText(ctx, f.FrameID, "label", answer); err == nil {
		return nil
	}
	return fl.page.Click(ctx, f.FrameID, f.Selector)
}

// clickOptionByText clicks the visible option whose text matches. The
// browser layer resolves text to an element.
func (fl *Filler) clickOptionByText(ctx context.Context, frameID, text string) error {
	return fl.page.ClickText(ctx, frameID, "", text)
}

// isSchoolField marks pickers where a weak fuzzy match is dangerous
func isSchoolField(f *models.FormField) bool {
	norm := normalizeLabel(f.Label)
	return matchesLabel(norm, "school") || matchesLabel(norm, "university") || matchesLabel(norm, "college")
}

// isPlaceholderOption filters the "Select..." style first entries
func isPlaceholderOption(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	return strings.HasPrefix(l, "select") || strings.HasPrefix(l, "choose") || strings.HasPrefix(l, "please") || l == "--" || l == "-"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
