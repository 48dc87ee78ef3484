package autofill

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/pursuit/internal/interfaces"
)

// fakePage is a scripted in-memory Page. Elements live per frame; writes
// land in values so tests can assert on the final form state.
type fakePage struct {
	url           string
	frames        []string
	elements      map[string][]interfaces.ElementInfo // frameID -> elements
	labelsByID    map[string]string                   // frameID|elementID -> label text
	parentLabels  map[string]string                   // frameID|selector -> label text
	selectOptions map[string][]string                 // frameID|selector -> option labels
	optionTexts   map[string][]string                 // frameID|selector -> rendered option texts
	texts         map[string]string                   // frameID|selector -> text content
	values        map[string]string                   // frameID|selector -> current value
	checked       map[string]bool                     // frameID|selector -> checked
	files         map[string][]string                 // frameID|selector -> file paths
	clicked       []string
	typed         []string
	pressedKeys   []string
	waitedVisible []string

	// clickTextHook scripts ClickText outcomes; nil means no such element
	clickTextHook func(frameID, selector, text string) error
}

func newFakePage() *fakePage {
	return &fakePage{
		elements:      map[string][]interfaces.ElementInfo{},
		labelsByID:    map[string]string{},
		parentLabels:  map[string]string{},
		selectOptions: map[string][]string{},
		optionTexts:   map[string][]string{},
		texts:         map[string]string{},
		values:        map[string]string{},
		checked:       map[string]bool{},
		files:         map[string][]string{},
	}
}

func fkey(frameID, s string) string { return frameID + "|" + s }

func (p *fakePage) addElement(el interfaces.ElementInfo) {
	p.elements[el.FrameID] = append(p.elements[el.FrameID], el)
}

func (p *fakePage) Navigate(ctx context.Context, url string) error { p.url = url; return nil }
func (p *fakePage) WaitNetworkIdle(ctx context.Context, timeout time.Duration) error {
	return nil
}
func (p *fakePage) WaitStable(ctx context.Context, settle time.Duration) error { return nil }
func (p *fakePage) WaitVisible(ctx context.Context, frameID, selector string, timeout time.Duration) error {
	p.waitedVisible = append(p.waitedVisible, fkey(frameID, selector))
	return nil
}
func (p *fakePage) URL(ctx context.Context) (string, error)      { return p.url, nil }
func (p *fakePage) Title(ctx context.Context) (string, error)    { return "", nil }
func (p *fakePage) Frames(ctx context.Context) ([]string, error) { return p.frames, nil }

func (p *fakePage) QueryFormElements(ctx context.Context, frameID string) ([]interfaces.ElementInfo, error) {
	out := make([]interfaces.ElementInfo, len(p.elements[frameID]))
	copy(out, p.elements[frameID])
	for i := range out {
		out[i].Checked = p.checked[fkey(frameID, out[i].Selector)]
	}
	return out, nil
}

func (p *fakePage) GetElement(ctx context.Context, frameID, selector string) (*interfaces.ElementInfo, error) {
	for _, el := range p.elements[frameID] {
		if el.Selector == selector {
			out := el
			out.Checked = p.checked[fkey(frameID, selector)]
			out.Value = p.values[fkey(frameID, selector)]
			return &out, nil
		}
	}
	return nil, fmt.Errorf("no element %s", selector)
}

func (p *fakePage) Exists(ctx context.Context, frameID, selector string) (bool, error) {
	_, ok := p.texts[fkey(frameID, selector)]
	if ok {
		return true, nil
	}
	for _, el := range p.elements[frameID] {
		if el.Selector == selector {
			return true, nil
		}
	}
	return false, nil
}

func (p *fakePage) Text(ctx context.Context, frameID, selector string) (string, error) {
	if t, ok := p.texts[fkey(frameID, selector)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("no text at %s", selector)
}

func (p *fakePage) Texts(ctx context.Context, frameID, selector string) ([]string, error) {
	if ts, ok := p.optionTexts[fkey(frameID, selector)]; ok {
		return ts, nil
	}
	if t, ok := p.texts[fkey(frameID, selector)]; ok {
		return []string{t}, nil
	}
	return nil, nil
}

func (p *fakePage) HTML(ctx context.Context, frameID, selector string) (string, error) {
	return "", nil
}

func (p *fakePage) LabelForID(ctx context.Context, frameID, elementID string) (string, error) {
	if l, ok := p.labelsByID[fkey(frameID, elementID)]; ok {
		return l, nil
	}
	return "", fmt.Errorf("no label for %s", elementID)
}

func (p *fakePage) ParentLabelText(ctx context.Context, frameID, selector string) (string, error) {
	if l, ok := p.parentLabels[fkey(frameID, selector)]; ok {
		return l, nil
	}
	return "", fmt.Errorf("no parent label")
}

func (p *fakePage) SiblingFieldLabel(ctx context.Context, frameID, selector string) (string, error) {
	return "", fmt.Errorf("no sibling label")
}

func (p *fakePage) AncestorLegend(ctx context.Context, frameID, selector string) (string, error) {
	return "", fmt.Errorf("no legend")
}

func (p *fakePage) Click(ctx context.Context, frameID, selector string) error {
	p.clicked = append(p.clicked, fkey(frameID, selector))
	for _, el := range p.elements[frameID] {
		if el.Selector == selector && (el.InputType == "checkbox" || el.InputType == "radio") {
			p.checked[fkey(frameID, selector)] = !p.checked[fkey(frameID, selector)]
			break
		}
	}
	return nil
}

func (p *fakePage) ClickText(ctx context.Context, frameID, selector, text string) error {
	if p.clickTextHook != nil {
		return p.clickTextHook(frameID, selector, text)
	}
	return fmt.Errorf("no element with text %q", text)
}

func (p *fakePage) MouseDown(ctx context.Context, frameID, selector string) error {
	p.clicked = append(p.clicked, fkey(frameID, selector))
	return nil
}

func (p *fakePage) SetValue(ctx context.Context, frameID, selector, value string) error {
	p.values[fkey(frameID, selector)] = value
	return nil
}

func (p *fakePage) TypeChars(ctx context.Context, frameID, selector, text string, perKey time.Duration) error {
	p.typed = append(p.typed, fkey(frameID, selector))
	p.values[fkey(frameID, selector)] += text
	return nil
}

func (p *fakePage) SelectByLabel(ctx context.Context, frameID, selector, label string) error {
	for _, opt := range p.selectOptions[fkey(frameID, selector)] {
		if opt == label {
			p.values[fkey(frameID, selector)] = label
			return nil
		}
	}
	return fmt.Errorf("no option %q", label)
}

func (p *fakePage) SelectOptionLabels(ctx context.Context, frameID, selector string) ([]string, error) {
	opts, ok := p.selectOptions[fkey(frameID, selector)]
	if !ok {
		return nil, fmt.Errorf("not a select: %s", selector)
	}
	return opts, nil
}

func (p *fakePage) SetChecked(ctx context.Context, frameID, selector string, checked bool) error {
	p.checked[fkey(frameID, selector)] = checked
	return nil
}

func (p *fakePage) SetFiles(ctx context.Context, frameID, selector string, paths []string) error {
	p.files[fkey(frameID, selector)] = paths
	return nil
}

func (p *fakePage) PressKey(ctx context.Context, key string) error {
	p.pressedKeys = append(p.pressedKeys, key)
	return nil
}

func (p *fakePage) Blur(ctx context.Context, frameID, selector string) error { return nil }

func (p *fakePage) Value(ctx context.Context, frameID, selector string) (string, error) {
	return p.values[fkey(frameID, selector)], nil
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) { return nil, nil }
func (p *fakePage) Close() error                                   { return nil }
