package models

// FieldType classifies a form element for fill handling
type FieldType string

const (
	FieldTypeText         FieldType = "text"
	FieldTypeEmail        FieldType = "email"
	FieldTypePhone        FieldType = "phone"
	FieldTypeTextarea     FieldType = "textarea"
	FieldTypeSelect       FieldType = "select"
	FieldTypeAutocomplete FieldType = "autocomplete"
	FieldTypeCheckbox     FieldType = "checkbox"
	FieldTypeRadio        FieldType = "radio"
	FieldTypeFile         FieldType = "file"
	FieldTypeDate         FieldType = "date"
	FieldTypeHidden       FieldType = "hidden"
	FieldTypeUnknown      FieldType = "unknown"
)

// AnswerSource tags where a field's answer came from
type AnswerSource string

const (
	AnswerSourceProfile AnswerSource = "profile"
	AnswerSourceLearned AnswerSource = "learned"
	AnswerSourceAI      AnswerSource = "ai"
	AnswerSourceHuman   AnswerSource = "human"
	AnswerSourceDefault AnswerSource = "default"
	AnswerSourceNone    AnswerSource = "none"
)

// FieldStatus is the per-field lifecycle within one autofill session
type FieldStatus string

const (
	FieldStatusReady      FieldStatus = "ready"
	FieldStatusFilled     FieldStatus = "filled"
	FieldStatusVerified   FieldStatus = "verified"
	FieldStatusNeedsInput FieldStatus = "needs_input"
	FieldStatusSkipped    FieldStatus = "skipped"
	FieldStatusError      FieldStatus = "error"
)

// FormField is the in-memory record of one form control during an autofill
// session. Fields are ephemeral; nothing here is persisted except what the
// learning step extracts (label -> answer).
type FormField struct {
	// Identity
	Selector  string `json:"selector"`
	ElementID string `json:"element_id"`
	Name      string `json:"name"`
	FrameID   string `json:"frame_id,omitempty"`

	// Classification
	Type            FieldType `json:"field_type"`
	DetectionMethod string    `json:"detection_method"`
	ProfileKey      string    `json:"profile_key,omitempty"`

	// Label and DOM context captured at detection time
	Label        string   `json:"label"`
	Placeholder  string   `json:"placeholder,omitempty"`
	MaxLength    int      `json:"maxlength,omitempty"`
	Pattern      string   `json:"pattern,omitempty"`
	InputType    string   `json:"input_type,omitempty"`
	Required     bool     `json:"required"`
	AriaControls string   `json:"aria_controls,omitempty"`
	Options      []string `json:"options,omitempty"`

	// SearchMode marks autocomplete fields whose option list is filtered by
	// typing rather than enumerated up front (location, school, Select2 search)
	SearchMode bool `json:"search_mode,omitempty"`

	// Resolution
	Answer     string       `json:"answer,omitempty"`
	Source     AnswerSource `json:"answer_source"`
	Confidence float64      `json:"confidence"`

	// Lifecycle
	Status FieldStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// Key returns the field's de-duplication key within a session
func (f *FormField) Key() string {
	return f.FrameID + "|" + f.Selector
}
