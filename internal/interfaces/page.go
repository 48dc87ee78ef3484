package interfaces

import (
	"context"
	"time"
)

// ElementInfo is a snapshot of one DOM element's fill-relevant attributes,
// captured at scan time. FrameID is empty for the main document.
type ElementInfo struct {
	FrameID      string
	Selector     string
	TagName      string // lowercase: input, select, textarea
	InputType    string // the type attribute, lowercase
	ID           string
	Name         string
	Placeholder  string
	Pattern      string
	MaxLength    int
	Required     bool
	Visible      bool
	Checked      bool
	Value        string
	AriaRole     string
	AriaHasPopup string
	AriaLabel    string
	AriaControls string
	AriaInvalid  string
}

// Page abstracts the browser page the autofill engine drives. One Page is
// owned by exactly one engine instance; implementations are not safe for
// concurrent use. The chromedp implementation lives in internal/browser;
// tests inject a scripted fake.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitNetworkIdle(ctx context.Context, timeout time.Duration) error
	WaitStable(ctx context.Context, settle time.Duration) error
	WaitVisible(ctx context.Context, frameID, selector string, timeout time.Duration) error

	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Frames(ctx context.Context) ([]string, error)

	// Scanning
	QueryFormElements(ctx context.Context, frameID string) ([]ElementInfo, error)
	GetElement(ctx context.Context, frameID, selector string) (*ElementInfo, error)
	Exists(ctx context.Context, frameID, selector string) (bool, error)
	Text(ctx context.Context, frameID, selector string) (string, error)
	Texts(ctx context.Context, frameID, selector string) ([]string, error)
	HTML(ctx context.Context, frameID, selector string) (string, error)

	// Label derivation primitives (cascade order decided by the detector)
	LabelForID(ctx context.Context, frameID, elementID string) (string, error)
	ParentLabelText(ctx context.Context, frameID, selector string) (string, error)
	SiblingFieldLabel(ctx context.Context, frameID, selector string) (string, error)
	AncestorLegend(ctx context.Context, frameID, selector string) (string, error)

	// Interaction
	Click(ctx context.Context, frameID, selector string) error
	// ClickText clicks the first visible element whose text equals text,
	// scoped to selector when non-empty
	ClickText(ctx context.Context, frameID, selector, text string) error
	MouseDown(ctx context.Context, frameID, selector string) error
	SetValue(ctx context.Context, frameID, selector, value string) error
	TypeChars(ctx context.Context, frameID, selector, text string, perKey time.Duration) error
	SelectByLabel(ctx context.Context, frameID, selector, label string) error
	SelectOptionLabels(ctx context.Context, frameID, selector string) ([]string, error)
	SetChecked(ctx context.Context, frameID, selector string, checked bool) error
	SetFiles(ctx context.Context, frameID, selector string, paths []string) error
	PressKey(ctx context.Context, key string) error
	Blur(ctx context.Context, frameID, selector string) error
	Value(ctx context.Context, frameID, selector string) (string, error)

	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}
