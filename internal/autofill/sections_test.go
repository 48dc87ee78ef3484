package autofill

import (
	"context"
	"fmt"
	"testing"

	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

func workSectionElements(idx int) []interfaces.ElementInfo {
	return []interfaces.ElementInfo{
		{TagName: "input", InputType: "text", Selector: fmt.Sprintf("#company-name-%d", idx), ID: fmt.Sprintf("company-name-%d", idx), Visible: true},
		{TagName: "input", InputType: "text", Selector: fmt.Sprintf("#job-title-%d", idx), ID: fmt.Sprintf("job-title-%d", idx), Visible: true},
		{TagName: "input", InputType: "text", Selector: fmt.Sprintf("#end-date-month-%d", idx), ID: fmt.Sprintf("end-date-month-%d", idx), Visible: true},
	}
}

func sectionLabels(page *fakePage, idx int) {
	page.labelsByID[fmt.Sprintf("|company-name-%d", idx)] = "Company Name"
	page.labelsByID[fmt.Sprintf("|job-title-%d", idx)] = "Job Title"
	page.labelsByID[fmt.Sprintf("|end-date-month-%d", idx)] = "End Date Month"
}

func TestFillRepeatableExpandsAndFills(t *testing.T) {
	logger := common.GetLogger()
	page := newFakePage()
	for _, el := range workSectionElements(0) {
		page.addElement(el)
	}
	sectionLabels(page, 0)

	// The add control renders the next block
	page.clickTextHook = func(frameID, selector, text string) error {
		if text != "Add another" {
			return fmt.Errorf("no element with text %q", text)
		}
		for _, el := range workSectionElements(1) {
			page.addElement(el)
		}
		sectionLabels(page, 1)
		return nil
	}

	cfg := common.NewDefaultConfig().Autofill
	resolver := newTestResolver(nil, nil)
	detector := NewDetector(logger)
	filler := NewFiller(page, &cfg, logger)
	sf := &sectionFiller{page: page, detector: detector, resolver: resolver, filler: filler, logger: logger}

	ctx := context.Background()
	known := map[string]bool{}
	fields, err := detector.Scan(ctx, page, known)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range fields {
		resolver.Resolve(ctx, f)
	}

	handled := sf.fillRepeatable(ctx, "work_experience.", 2, known, &fields)

	if got := page.values["|#company-name-0"]; got != "Acme Corp" {
		t.Errorf("company 0 = %q, want Acme Corp", got)
	}
	if got := page.values["|#company-name-1"]; got != "Initech" {
		t.Errorf("company 1 = %q, want Initech", got)
	}

	// Current role: end date skipped. Previous role: filled, adapted or raw.
	var end0, end1 *models.FormField
	for _, f := range fields {
		switch f.Selector {
		case "#end-date-month-0":
			end0 = f
		case "#end-date-month-1":
			end1 = f
		}
	}
	if end0 == nil || end0.Status != models.FieldStatusSkipped {
		t.Errorf("current role end date should be skipped, got %+v", end0)
	}
	if end1 == nil || end1.Status != models.FieldStatusFilled {
		t.Errorf("previous role end date should be filled, got %+v", end1)
	}
	if got := page.values["|#end-date-month-1"]; got != "February" {
		t.Errorf("end month 1 = %q, want February", got)
	}

	if len(handled) == 0 {
		t.Error("no fields reported handled")
	}
}

func TestFillRepeatableStopsWhenAddProducesNothing(t *testing.T) {
	logger := common.GetLogger()
	page := newFakePage()
	for _, el := range workSectionElements(0) {
		page.addElement(el)
	}
	sectionLabels(page, 0)

	// Clicks succeed but never render a new block
	page.clickTextHook = func(frameID, selector, text string) error { return nil }

	cfg := common.NewDefaultConfig().Autofill
	resolver := newTestResolver(nil, nil)
	detector := NewDetector(logger)
	sf := &sectionFiller{page: page, detector: detector, resolver: resolver, filler: NewFiller(page, &cfg, logger), logger: logger}

	ctx := context.Background()
	known := map[string]bool{}
	fields, _ := detector.Scan(ctx, page, known)
	for _, f := range fields {
		resolver.Resolve(ctx, f)
	}

	// Must terminate despite the profile wanting three entries
	sf.fillRepeatable(ctx, "work_experience.", 3, known, &fields)

	if got := page.values["|#company-name-0"]; got != "Acme Corp" {
		t.Errorf("company 0 = %q, want Acme Corp", got)
	}
}
