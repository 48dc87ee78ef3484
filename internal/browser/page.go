package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
)

// Page drives one Chrome tab through chromedp. Frame-scoped operations work
// through the frame's contentDocument, which requires same-origin embeds;
// the hosted ATS boards this targets embed their forms same-origin.
type Page struct {
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
	config          *common.AutofillConfig
	logger          arbor.ILogger
}

// NewPage launches a browser and opens a blank tab
func NewPage(config *common.AutofillConfig, logger arbor.ILogger) (*Page, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", config.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	testCtx, testCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer testCancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("browser failed startup test: %w", err)
	}

	return &Page{
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		allocatorCancel: allocatorCancel,
		config:          config,
		logger:          logger,
	}, nil
}

func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := p.browserCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(p.browserCtx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// docExpr returns the JS expression for the document a frameID refers to
func docExpr(frameID string) string {
	if frameID == "" {
		return "document"
	}
	return fmt.Sprintf("(document.querySelector(%q) || {}).contentDocument", frameID)
}

func (p *Page) eval(ctx context.Context, expr string, out interface{}) error {
	if out == nil {
		var discard json.RawMessage
		out = &discard
	}
	return p.run(ctx, chromedp.Evaluate(expr, out))
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, p.config.PageLoadTimeout)
	defer cancel()
	return p.run(navCtx, chromedp.Navigate(url))
}

// WaitNetworkIdle approximates idle by waiting for readyState complete and a
// quiet period with no in-flight fetches observable from the DOM
func (p *Page) WaitNetworkIdle(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var state string
		if err := p.eval(ctx, "document.readyState", &state); err != nil {
			return err
		}
		if state == "complete" {
			return nil
		}
		if err := sleep(ctx, 200*time.Millisecond); err != nil {
			return err
		}
	}
	return fmt.Errorf("page did not reach readyState complete within %s", timeout)
}

// WaitStable waits until the DOM node count stops changing for the settle
// window. Iframe-heavy boards mutate the tree for a while after load.
func (p *Page) WaitStable(ctx context.Context, settle time.Duration) error {
	const checks = 3
	interval := settle / checks
	if interval < 100*time.Millisecond {
		interval = 100 * time.Millisecond
	}

	var last, stable int
	for i := 0; i < 50; i++ {
		var count int
		if err := p.eval(ctx, "document.getElementsByTagName('*').length", &count); err != nil {
			return err
		}
		if count == last {
			stable++
			if stable >= checks {
				return nil
			}
		} else {
			stable = 0
			last = count
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) WaitVisible(ctx context.Context, frameID, selector string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return false;
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	})()`, docExpr(frameID), selector)
	for time.Now().Before(deadline) {
		var visible bool
		if err := p.eval(ctx, expr, &visible); err == nil && visible {
			return nil
		}
		if err := sleep(ctx, 200*time.Millisecond); err != nil {
			return err
		}
	}
	return fmt.Errorf("element %s not visible within %s", selector, timeout)
}

func (p *Page) URL(ctx context.Context) (string, error) {
	var url string
	err := p.run(ctx, chromedp.Location(&url))
	return url, err
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, chromedp.Title(&title))
	return title, err
}

// Frames returns a CSS selector per same-origin iframe, preferring ids
func (p *Page) Frames(ctx context.Context) ([]string, error) {
	const expr = `Array.from(document.querySelectorAll('iframe')).map((f, i) => {
		if (f.id) return '#' + CSS.escape(f.id);
		return 'iframe:nth-of-type(' + (i + 1) + ')';
	})`
	var frames []string
	if err := p.eval(ctx, expr, &frames); err != nil {
		return nil, err
	}
	return frames, nil
}

// QueryFormElements snapshots every input, select, and textarea in the given
// document with the attributes the detector classifies on
func (p *Page) QueryFormElements(ctx context.Context, frameID string) ([]interfaces.ElementInfo, error) {
	expr := fmt.Sprintf(`(() => {
		const doc = %s;
		if (!doc) return [];
		const sel = (el, i) => {
			if (el.id) return '#' + CSS.escape(el.id);
			if (el.name) return el.tagName.toLowerCase() + '[name="' + el.name + '"]';
			return el.tagName.toLowerCase() + ':nth-of-type(' + (i + 1) + ')';
		};
		return Array.from(doc.querySelectorAll('input, select, textarea')).map((el, i) => {
			const r = el.getBoundingClientRect();
			return {
				selector: sel(el, i),
				tag_name: el.tagName.toLowerCase(),
				input_type: (el.getAttribute('type') || '').toLowerCase(),
				id: el.id || '',
				name: el.name || '',
				placeholder: el.getAttribute('placeholder') || '',
				pattern: el.getAttribute('pattern') || '',
				maxlength: el.maxLength > 0 ? el.maxLength : 0,
				required: el.required || false,
				visible: r.width > 0 && r.height > 0,
				checked: el.checked || false,
				value: el.value || '',
				aria_role: el.getAttribute('role') || '',
				aria_haspopup: el.getAttribute('aria-haspopup') || '',
				aria_label: el.getAttribute('aria-label') || '',
				aria_controls: el.getAttribute('aria-controls') || '',
				aria_invalid: el.getAttribute('aria-invalid') || ''
			};
		});
	})()`, docExpr(frameID))

	var raw []struct {
		Selector     string `json:"selector"`
		TagName      string `json:"tag_name"`
		InputType    string `json:"input_type"`
		ID           string `json:"id"`
		Name         string `json:"name"`
		Placeholder  string `json:"placeholder"`
		Pattern      string `json:"pattern"`
		MaxLength    int    `json:"maxlength"`
		Required     bool   `json:"required"`
		Visible      bool   `json:"visible"`
		Checked      bool   `json:"checked"`
		Value        string `json:"value"`
		AriaRole     string `json:"aria_role"`
		AriaHasPopup string `json:"aria_haspopup"`
		AriaLabel    string `json:"aria_label"`
		AriaControls string `json:"aria_controls"`
		AriaInvalid  string `json:"aria_invalid"`
	}
	if err := p.eval(ctx, expr, &raw); err != nil {
		return nil, err
	}

	elements := make([]interfaces.ElementInfo, 0, len(raw))
	for _, r := range raw {
		elements = append(elements, interfaces.ElementInfo{
			FrameID:      frameID,
			Selector:     r.Selector,
			TagName:      r.TagName,
			InputType:    r.InputType,
			ID:           r.ID,
			Name:         r.Name,
			Placeholder:  r.Placeholder,
			Pattern:      r.Pattern,
			MaxLength:    r.MaxLength,
			Required:     r.Required,
			Visible:      r.Visible,
			Checked:      r.Checked,
			Value:        r.Value,
			AriaRole:     r.AriaRole,
			AriaHasPopup: r.AriaHasPopup,
			AriaLabel:    r.AriaLabel,
			AriaControls: r.AriaControls,
			AriaInvalid:  r.AriaInvalid,
		})
	}
	return elements, nil
}

func (p *Page) GetElement(ctx context.Context, frameID, selector string) (*interfaces.ElementInfo, error) {
	elements, err := p.QueryFormElements(ctx, frameID)
	if err != nil {
		return nil, err
	}
	for i := range elements {
		if elements[i].Selector == selector {
			return &elements[i], nil
		}
	}
	// Selector may not match the generated one; probe directly
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return null;
		return {
			checked: el.checked || false,
			value: el.value || '',
			aria_invalid: el.getAttribute('aria-invalid') || ''
		};
	})()`, docExpr(frameID), selector)
	var probe *struct {
		Checked     bool   `json:"checked"`
		Value       string `json:"value"`
		AriaInvalid string `json:"aria_invalid"`
	}
	if err := p.eval(ctx, expr, &probe); err != nil || probe == nil {
		return nil, fmt.Errorf("element not found: %s", selector)
	}
	return &interfaces.ElementInfo{
		FrameID:     frameID,
		Selector:    selector,
		Checked:     probe.Checked,
		Value:       probe.Value,
		AriaInvalid: probe.AriaInvalid,
	}, nil
}

func (p *Page) Exists(ctx context.Context, frameID, selector string) (bool, error) {
	expr := fmt.Sprintf("!!(%s && %s.querySelector(%q))", docExpr(frameID), docExpr(frameID), selector)
	var ok bool
	err := p.eval(ctx, expr, &ok)
	return ok, err
}

func (p *Page) Text(ctx context.Context, frameID, selector string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		return el ? el.textContent : null;
	})()`, docExpr(frameID), selector)
	var text *string
	if err := p.eval(ctx, expr, &text); err != nil {
		return "", err
	}
	if text == nil {
		return "", fmt.Errorf("no element at %s", selector)
	}
	return *text, nil
}

func (p *Page) Texts(ctx context.Context, frameID, selector string) ([]string, error) {
	expr := fmt.Sprintf(`Array.from(%s.querySelectorAll(%q)).map(el => el.textContent.trim()).filter(t => t)`,
		docExpr(frameID), selector)
	var texts []string
	err := p.eval(ctx, expr, &texts)
	return texts, err
}

func (p *Page) HTML(ctx context.Context, frameID, selector string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		return el ? el.outerHTML : '';
	})()`, docExpr(frameID), selector)
	var html string
	err := p.eval(ctx, expr, &html)
	return html, err
}

func (p *Page) LabelForID(ctx context.Context, frameID, elementID string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const l = %s.querySelector('label[for="' + %q + '"]');
		return l ? l.textContent.trim() : '';
	})()`, docExpr(frameID), elementID)
	var label string
	err := p.eval(ctx, expr, &label)
	return label, err
}

// ParentLabelText returns the direct text of an enclosing <label>, excluding
// nested input text
func (p *Page) ParentLabelText(ctx context.Context, frameID, selector string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return '';
		const label = el.closest('label');
		if (!label) return '';
		return Array.from(label.childNodes)
			.filter(n => n.nodeType === Node.TEXT_NODE)
			.map(n => n.textContent)
			.join(' ')
			.trim() || label.textContent.trim();
	})()`, docExpr(frameID), selector)
	var label string
	err := p.eval(ctx, expr, &label)
	return label, err
}

// SiblingFieldLabel finds the label inside the same div.field wrapper, the
// structure hosted Greenhouse boards use
func (p *Page) SiblingFieldLabel(ctx context.Context, frameID, selector string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return '';
		const wrap = el.closest('div.field, div.form-field, div[class*="field"]');
		if (!wrap) return '';
		const label = wrap.querySelector('label');
		return label ? label.textContent.trim() : '';
	})()`, docExpr(frameID), selector)
	var label string
	err := p.eval(ctx, expr, &label)
	return label, err
}

func (p *Page) AncestorLegend(ctx context.Context, frameID, selector string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return '';
		const fs = el.closest('fieldset');
		if (!fs) return '';
		const legend = fs.querySelector('legend');
		return legend ? legend.textContent.trim() : '';
	})()`, docExpr(frameID), selector)
	var label string
	err := p.eval(ctx, expr, &label)
	return label, err
}

func (p *Page) Click(ctx context.Context, frameID, selector string) error {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return false;
		el.scrollIntoView({block: 'center'});
		el.click();
		return true;
	})()`, docExpr(frameID), selector)
	var ok bool
	if err := p.eval(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element to click at %s", selector)
	}
	return nil
}

func (p *Page) ClickText(ctx context.Context, frameID, selector, text string) error {
	scope := selector
	if scope == "" {
		scope = "button, a, [role=\"option\"], li, label"
	}
	expr := fmt.Sprintf(`(() => {
		const want = %q.trim();
		for (const el of %s.querySelectorAll(%q)) {
			const r = el.getBoundingClientRect();
			if (r.width === 0 || r.height === 0) continue;
			if (el.textContent.trim() === want) {
				el.scrollIntoView({block: 'center'});
				el.click();
				return true;
			}
		}
		return false;
	})()`, text, docExpr(frameID), scope)
	var ok bool
	if err := p.eval(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no visible element with text %q", text)
	}
	return nil
}

// MouseDown dispatches a mousedown event; Select2 opens on mousedown, not
// click
func (p *Page) MouseDown(ctx context.Context, frameID, selector string) error {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return false;
		el.scrollIntoView({block: 'center'});
		el.dispatchEvent(new MouseEvent('mousedown', {bubbles: true, cancelable: true}));
		return true;
	})()`, docExpr(frameID), selector)
	var ok bool
	if err := p.eval(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element at %s", selector)
	}
	return nil
}

// SetValue writes through the native value setter so framework-controlled
// inputs (React) observe the change, then fires input and change events
func (p *Page) SetValue(ctx context.Context, frameID, selector, value string) error {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return false;
		const proto = el.tagName === 'TEXTAREA' ? HTMLTextAreaElement.prototype : HTMLInputElement.prototype;
		const setter = Object.getOwnPropertyDescriptor(proto, 'value');
		if (setter && setter.set) {
			setter.set.call(el, %q);
		} else {
			el.value = %q;
		}
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, docExpr(frameID), selector, value, value)
	var ok bool
	if err := p.eval(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element at %s", selector)
	}
	return nil
}

// TypeChars focuses the element and sends real key events one character at a
// time, letting input masks reformat as they would for a human
func (p *Page) TypeChars(ctx context.Context, frameID, selector, text string, perKey time.Duration) error {
	focus := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return false;
		el.scrollIntoView({block: 'center'});
		el.focus();
		return true;
	})()`, docExpr(frameID), selector)
	var ok bool
	if err := p.eval(ctx, focus, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element at %s", selector)
	}
	for _, r := range text {
		if err := p.run(ctx, chromedp.KeyEvent(string(r))); err != nil {
			return err
		}
		if err := sleep(ctx, perKey); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) SelectByLabel(ctx context.Context, frameID, selector, label string) error {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el || el.tagName !== 'SELECT') return false;
		const want = %q.trim();
		for (const opt of el.options) {
			if (opt.label.trim() === want || opt.textContent.trim() === want) {
				el.value = opt.value;
				el.dispatchEvent(new Event('input', {bubbles: true}));
				el.dispatchEvent(new Event('change', {bubbles: true}));
				return true;
			}
		}
		return false;
	})()`, docExpr(frameID), selector, label)
	var ok bool
	if err := p.eval(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no option labeled %q in %s", label, selector)
	}
	return nil
}

func (p *Page) SelectOptionLabels(ctx context.Context, frameID, selector string) ([]string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el || el.tagName !== 'SELECT') return null;
		return Array.from(el.options).map(o => o.label.trim() || o.textContent.trim());
	})()`, docExpr(frameID), selector)
	var labels []string
	if err := p.eval(ctx, expr, &labels); err != nil {
		return nil, err
	}
	if labels == nil {
		return nil, fmt.Errorf("not a select: %s", selector)
	}
	return labels, nil
}

func (p *Page) SetChecked(ctx context.Context, frameID, selector string, checked bool) error {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (!el) return false;
		if (el.checked !== %t) el.click();
		return true;
	})()`, docExpr(frameID), selector, checked)
	var ok bool
	if err := p.eval(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element at %s", selector)
	}
	return nil
}

func (p *Page) SetFiles(ctx context.Context, frameID, selector string, paths []string) error {
	if frameID != "" {
		selector = frameID + " " + selector
	}
	return p.run(ctx, chromedp.SetUploadFiles(selector, paths))
}

func (p *Page) PressKey(ctx context.Context, key string) error {
	switch key {
	case "Enter":
		return p.run(ctx, chromedp.KeyEvent(kb.Enter))
	case "Escape":
		return p.run(ctx, chromedp.KeyEvent(kb.Escape))
	case "Tab":
		return p.run(ctx, chromedp.KeyEvent(kb.Tab))
	default:
		return p.run(ctx, chromedp.KeyEvent(key))
	}
}

func (p *Page) Blur(ctx context.Context, frameID, selector string) error {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		if (el) el.blur();
		return true;
	})()`, docExpr(frameID), selector)
	return p.eval(ctx, expr, nil)
}

func (p *Page) Value(ctx context.Context, frameID, selector string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s.querySelector(%q);
		return el ? (el.value || '') : '';
	})()`, docExpr(frameID), selector)
	var value string
	err := p.eval(ctx, expr, &value)
	return value, err
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *Page) Close() error {
	p.browserCancel()
	p.allocatorCancel()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ interfaces.Page = (*Page)(nil)
