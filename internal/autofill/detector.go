package autofill

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// Detector classifies page elements into typed FormFields
type Detector struct {
	logger arbor.ILogger
}

// NewDetector creates a field detector
func NewDetector(logger arbor.ILogger) *Detector {
	return &Detector{logger: logger}
}

// Scan traverses the main document and every nested frame, classifying each
// candidate element. Already-known fields (by frame+selector key) are skipped
// so repeated scans only append.
func (d *Detector) Scan(ctx context.Context, page interfaces.Page, known map[string]bool) ([]*models.FormField, error) {
	frames := []string{""}
	if extra, err := page.Frames(ctx); err == nil {
		frames = append(frames, extra...)
	}

	var fields []*models.FormField
	for _, frameID := range frames {
		elements, err := page.QueryFormElements(ctx, frameID)
		if err != nil {
			d.logger.Debug().Err(err).Str("frame", frameID).Msg("Frame scan failed")
			continue
		}
		for i := range elements {
			el := &elements[i]
			field := d.Classify(ctx, page, el)
			if field == nil {
				continue
			}
			if known[field.Key()] {
				continue
			}
			known[field.Key()] = true
			fields = append(fields, field)
		}
	}
	return fields, nil
}

// Classify assigns (field_type, detection_method) to one element via the
// cascade, and captures the DOM constraints the adapter needs later.
// Returns nil for elements that are not fillable.
func (d *Detector) Classify(ctx context.Context, page interfaces.Page, el *interfaces.ElementInfo) *models.FormField {
	switch el.InputType {
	case "hidden", "submit", "button", "reset", "image":
		return nil
	}
	if el.TagName == "button" {
		return nil
	}
	// Hidden file inputs stay fillable: many boards hide them behind an
	// Attach button
	if !el.Visible && el.InputType != "file" {
		return nil
	}

	field := &models.FormField{
		Selector:     el.Selector,
		ElementID:    el.ID,
		Name:         el.Name,
		FrameID:      el.FrameID,
		Placeholder:  el.Placeholder,
		Pattern:      el.Pattern,
		MaxLength:    el.MaxLength,
		InputType:    el.InputType,
		Required:     el.Required,
		AriaControls: el.AriaControls,
		Status:       models.FieldStatusReady,
	}

	// 1. HTML standard
	switch {
	case el.TagName == "select":
		field.Type = models.FieldTypeSelect
		field.DetectionMethod = "html"
	case el.TagName == "textarea":
		field.Type = models.FieldTypeTextarea
		field.DetectionMethod = "html"
	case el.InputType == "file":
		field.Type = models.FieldTypeFile
		field.DetectionMethod = "html"
	case el.InputType == "checkbox":
		field.Type = models.FieldTypeCheckbox
		field.DetectionMethod = "html"
	case el.InputType == "radio":
		field.Type = models.FieldTypeRadio
		field.DetectionMethod = "html"
	case el.InputType == "email":
		field.Type = models.FieldTypeEmail
		field.DetectionMethod = "html"
	case el.InputType == "tel":
		field.Type = models.FieldTypePhone
		field.DetectionMethod = "html"
	case el.InputType == "date":
		field.Type = models.FieldTypeDate
		field.DetectionMethod = "html"
	}

	// 2. ARIA attributes
	if field.Type == "" {
		switch {
		case el.AriaRole == "combobox",
			el.AriaHasPopup == "true",
			el.AriaHasPopup == "listbox":
			field.Type = models.FieldTypeAutocomplete
			field.DetectionMethod = "aria"
		case el.AriaRole == "listbox":
			field.Type = models.FieldTypeSelect
			field.DetectionMethod = "aria"
		}
	}

	field.Label = deriveLabel(ctx, page, el)

	// 3. Known-selector database
	if field.Type == "" {
		if path, ok := knownSelectors[el.Selector]; ok {
			field.Type = models.FieldTypeText
			field.DetectionMethod = "known_selector"
			field.ProfileKey = path
		}
	}

	// 4. Label pattern database
	if field.Type == "" && field.Label != "" {
		if path, ok := matchProfilePattern(field.Label, el.ID+" "+el.Name); ok {
			field.Type = models.FieldTypeText
			field.DetectionMethod = "label_pattern"
			field.ProfileKey = path
		}
	}

	// 5. Default
	if field.Type == "" {
		field.Type = models.FieldTypeText
		field.DetectionMethod = "default"
	}

	return field
}
