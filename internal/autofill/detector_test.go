package autofill

import (
	"context"
	"testing"

	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

func TestClassifyFiltersNonFillable(t *testing.T) {
	d := NewDetector(common.GetLogger())
	page := newFakePage()
	ctx := context.Background()

	tests := []struct {
		name string
		el   interfaces.ElementInfo
	}{
		{"hidden input", interfaces.ElementInfo{TagName: "input", InputType: "hidden", Visible: false}},
		{"submit", interfaces.ElementInfo{TagName: "input", InputType: "submit", Visible: true}},
		{"button element", interfaces.ElementInfo{TagName: "button", Visible: true}},
		{"invisible text input", interfaces.ElementInfo{TagName: "input", InputType: "text", Visible: false}},
	}
	for _, tt := range tests {
		if got := d.Classify(ctx, page, &tt.el); got != nil {
			t.Errorf("%s: classified as %q, want nil", tt.name, got.Type)
		}
	}
}

func TestClassifyHiddenFileInputAllowed(t *testing.T) {
	d := NewDetector(common.GetLogger())
	page := newFakePage()

	el := interfaces.ElementInfo{TagName: "input", InputType: "file", Selector: "#resume", Visible: false}
	f := d.Classify(context.Background(), page, &el)
	if f == nil || f.Type != models.FieldTypeFile {
		t.Fatalf("hidden file input should classify as file, got %+v", f)
	}
}

func TestClassifyCascade(t *testing.T) {
	d := NewDetector(common.GetLogger())
	page := newFakePage()
	ctx := context.Background()

	tests := []struct {
		name       string
		el         interfaces.ElementInfo
		wantType   models.FieldType
		wantMethod string
	}{
		{
			"native select",
			interfaces.ElementInfo{TagName: "select", Selector: "#state", Visible: true},
			models.FieldTypeSelect, "html",
		},
		{
			"email input",
			interfaces.ElementInfo{TagName: "input", InputType: "email", Selector: "#e", Visible: true},
			models.FieldTypeEmail, "html",
		},
		{
			"tel input",
			interfaces.ElementInfo{TagName: "input", InputType: "tel", Selector: "#p", Visible: true},
			models.FieldTypePhone, "html",
		},
		{
			"aria combobox",
			interfaces.ElementInfo{TagName: "input", InputType: "text", AriaRole: "combobox", Selector: "#loc", Visible: true},
			models.FieldTypeAutocomplete, "aria",
		},
		{
			"aria haspopup listbox",
			interfaces.ElementInfo{TagName: "input", InputType: "text", AriaHasPopup: "listbox", Selector: "#sch", Visible: true},
			models.FieldTypeAutocomplete, "aria",
		},
		{
			"known selector",
			interfaces.ElementInfo{TagName: "input", InputType: "text", Selector: "#first_name", Visible: true},
			models.FieldTypeText, "known_selector",
		},
		{
			"plain text default",
			interfaces.ElementInfo{TagName: "input", InputType: "text", Selector: "#mystery", Visible: true},
			models.FieldTypeText, "default",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := d.Classify(ctx, page, &tt.el)
			if f == nil {
				t.Fatal("classified nil")
			}
			if f.Type != tt.wantType || f.DetectionMethod != tt.wantMethod {
				t.Errorf("got (%q, %q), want (%q, %q)", f.Type, f.DetectionMethod, tt.wantType, tt.wantMethod)
			}
		})
	}
}

func TestClassifyLabelPatternSetsProfileKey(t *testing.T) {
	d := NewDetector(common.GetLogger())
	page := newFakePage()
	page.labelsByID["|fn"] = "First Name"

	el := interfaces.ElementInfo{TagName: "input", InputType: "text", Selector: "#fn", ID: "fn", Visible: true}
	f := d.Classify(context.Background(), page, &el)
	if f == nil {
		t.Fatal("classified nil")
	}
	if f.DetectionMethod != "label_pattern" || f.ProfileKey != "personal.first_name" {
		t.Errorf("got method=%q key=%q", f.DetectionMethod, f.ProfileKey)
	}
	if f.Label != "First Name" {
		t.Errorf("label = %q", f.Label)
	}
}

func TestScanDedupesAcrossCalls(t *testing.T) {
	d := NewDetector(common.GetLogger())
	page := newFakePage()
	page.addElement(interfaces.ElementInfo{TagName: "input", InputType: "text", Selector: "#a", Visible: true})
	page.addElement(interfaces.ElementInfo{TagName: "input", InputType: "text", Selector: "#b", Visible: true})

	known := map[string]bool{}
	first, err := d.Scan(context.Background(), page, known)
	if err != nil || len(first) != 2 {
		t.Fatalf("first scan: %d fields, err=%v", len(first), err)
	}

	second, err := d.Scan(context.Background(), page, known)
	if err != nil || len(second) != 0 {
		t.Fatalf("second scan should be empty, got %d", len(second))
	}

	page.addElement(interfaces.ElementInfo{TagName: "input", InputType: "text", Selector: "#c", Visible: true})
	third, _ := d.Scan(context.Background(), page, known)
	if len(third) != 1 || third[0].Selector != "#c" {
		t.Fatalf("third scan should find only the new element, got %d", len(third))
	}
}

func TestScanCoversFrames(t *testing.T) {
	d := NewDetector(common.GetLogger())
	page := newFakePage()
	page.frames = []string{"gh_iframe"}
	page.addElement(interfaces.ElementInfo{TagName: "input", InputType: "text", Selector: "#main", Visible: true})
	page.addElement(interfaces.ElementInfo{FrameID: "gh_iframe", TagName: "input", InputType: "email", Selector: "#email", Visible: true})

	fields, err := d.Scan(context.Background(), page, map[string]bool{})
	if err != nil || len(fields) != 2 {
		t.Fatalf("got %d fields, err=%v", len(fields), err)
	}
	var frameField *models.FormField
	for _, f := range fields {
		if f.FrameID == "gh_iframe" {
			frameField = f
		}
	}
	if frameField == nil || frameField.Type != models.FieldTypeEmail {
		t.Fatalf("frame field missing or mistyped: %+v", frameField)
	}
}
