package autofill

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// SessionSink persists completed session audit records
type SessionSink interface {
	SaveSession(session *models.AutofillSession) error
}

// Engine runs one autofill session against one application page. Phases run
// in a fixed order; per-field failures tag the field and never abort the
// session.
type Engine struct {
	page     interfaces.Page
	detector *Detector
	resolver *Resolver
	filler   *Filler
	learned  interfaces.LearnedDB
	events   interfaces.EventService
	sessions SessionSink
	profile  *models.Profile
	config   *common.AutofillConfig
	logger   arbor.ILogger
}

func NewEngine(page interfaces.Page, profile *models.Profile, resolver *Resolver, learned interfaces.LearnedDB, events interfaces.EventService, sessions SessionSink, config *common.AutofillConfig, logger arbor.ILogger) *Engine {
	return &Engine{
		page:     page,
		detector: NewDetector(logger),
		resolver: resolver,
		filler:   NewFiller(page, config, logger),
		learned:  learned,
		events:   events,
		sessions: sessions,
		profile:  profile,
		config:   config,
		logger:   logger,
	}
}

// Run executes the full session: navigate, detect, resolve, fill, verify,
// learn. The returned session record is also persisted and the fields slice
// reflects final per-field status for the caller's review UI.
func (e *Engine) Run(ctx context.Context, url, profileName, jobID string) (*models.AutofillSession, []*models.FormField, error) {
	session := &models.AutofillSession{
		ID:        common.NewSessionID(),
		URL:       url,
		JobID:     jobID,
		Profile:   profileName,
		StartedAt: time.Now().UTC(),
	}
	e.publish(interfaces.EventAutofillStarted, map[string]interface{}{"session_id": session.ID, "url": url})

	fields, err := e.run(ctx, session)

	session.CompletedAt = time.Now().UTC()
	if err != nil {
		session.Error = err.Error()
	}
	tally(session, fields)
	if e.sessions != nil {
		if saveErr := e.sessions.SaveSession(session); saveErr != nil {
			e.logger.Warn().Err(saveErr).Str("session_id", session.ID).Msg("Session record not persisted")
		}
	}
	e.publish(interfaces.EventAutofillCompleted, map[string]interface{}{
		"session_id": session.ID,
		"filled":     session.Filled,
		"verified":   session.Verified,
		"errors":     session.Errors,
	})
	return session, fields, err
}

func (e *Engine) run(ctx context.Context, session *models.AutofillSession) ([]*models.FormField, error) {
	// Navigate and let the board's embedded frames settle
	if err := e.page.Navigate(ctx, session.URL); err != nil {
		return nil, err
	}
	_ = e.page.WaitNetworkIdle(ctx, e.config.NetworkIdleTimeout)
	_ = e.page.WaitStable(ctx, e.config.StableSettle)

	e.clickApply(ctx)
	e.awaitAuthHandoff(ctx)

	jobInfo := e.extractJobInfo(ctx)
	jobCtx := jobInfo.Title + " at " + jobInfo.Company
	if jobInfo.Description != "" {
		jobCtx += "\n" + jobInfo.Description
	}
	e.resolver.SetJobContext("", jobCtx)

	known := map[string]bool{}
	fields, err := e.detector.Scan(ctx, e.page, known)
	if err != nil {
		return nil, err
	}
	e.logger.Info().Str("session_id", session.ID).Int("fields", len(fields)).Msg("Initial scan complete")

	e.prescanOptions(ctx, fields)

	for _, f := range fields {
		if f.Status == models.FieldStatusReady && f.Answer == "" {
			e.resolver.Resolve(ctx, f)
		}
	}

	// Repeatable sections run before the general loop; their fields get
	// marked so the passes below skip the overlap
	sf := &sectionFiller{page: e.page, detector: e.detector, resolver: e.resolver, filler: e.filler, logger: e.logger}
	handled := sf.fillRepeatable(ctx, "work_experience.", len(e.profile.WorkExperience), known, &fields)
	handled = append(handled, sf.fillRepeatable(ctx, "education.", len(e.profile.Education), known, &fields)...)
	done := map[string]bool{}
	for _, f := range handled {
		done[f.Key()] = true
	}

	e.fillPasses(ctx, session, &fields, known, done)

	e.blurAll(ctx, fields)
	e.verify(ctx, fields)
	e.learn(fields)

	return fields, nil
}

// fillPasses runs the main loop: fill every resolved field, re-scan for
// elements the page revealed, and repeat up to MaxPasses times. The done set
// keeps a field from being filled twice across passes.
func (e *Engine) fillPasses(ctx context.Context, session *models.AutofillSession, fields *[]*models.FormField, known, done map[string]bool) {
	for pass := 1; pass <= e.config.MaxPasses; pass++ {
		filledThisPass := 0
		for _, f := range *fields {
			if done[f.Key()] {
				continue
			}
			switch f.Status {
			case models.FieldStatusSkipped, models.FieldStatusNeedsInput, models.FieldStatusError:
				done[f.Key()] = true
				continue
			}
			if f.Answer == "" {
				e.resolver.Resolve(ctx, f)
				if f.Answer == "" {
					done[f.Key()] = true
					continue
				}
			}
			f.Answer = adaptAnswer(f, f.Answer, e.logger)
			if err := e.filler.Fill(ctx, f); err != nil {
				f.Status = models.FieldStatusError
				f.Error = err.Error()
				e.logger.Warn().Err(err).Str("label", f.Label).Str("selector", f.Selector).Msg("Fill failed")
				done[f.Key()] = true
				continue
			}
			f.Status = models.FieldStatusFilled
			done[f.Key()] = true
			filledThisPass++
		}

		e.publish(interfaces.EventAutofillProgress, map[string]interface{}{
			"session_id": session.ID,
			"pass":       pass,
			"filled":     filledThisPass,
		})

		// Conditional fields appear as earlier answers land
		added, err := e.detector.Scan(ctx, e.page, known)
		if err != nil || len(added) == 0 {
			if filledThisPass == 0 {
				return
			}
			continue
		}
		e.prescanOptions(ctx, added)
		for _, f := range added {
			e.resolver.Resolve(ctx, f)
		}
		*fields = append(*fields, added...)
	}
}

// prescanOptions enumerates option labels for select and autocomplete fields
// up front so the resolver can match against them. Large or search-driven
// pickers are left for the fill step's type-and-match path.
func (e *Engine) prescanOptions(ctx context.Context, fields []*models.FormField) {
	for _, f := range fields {
		if strings.Contains(f.Selector, "select2") {
			if f.Type == models.FieldTypeSelect || f.Type == models.FieldTypeAutocomplete {
				f.SearchMode = true
			}
			continue
		}
		switch f.Type {
		case models.FieldTypeSelect:
			labels, err := e.page.SelectOptionLabels(ctx, f.FrameID, f.Selector)
			if err != nil {
				continue
			}
			e.applyOptionList(f, labels)
		case models.FieldTypeAutocomplete:
			e.prescanAutocomplete(ctx, f)
		}
	}
}

// prescanAutocomplete opens the picker once and reads its rendered options.
// The aria-controls target is the authoritative listbox; class-based
// suggestion selectors are the fallback. Pickers that render nothing until
// the user types are search-backed.
func (e *Engine) prescanAutocomplete(ctx context.Context, f *models.FormField) {
	if err := e.page.Click(ctx, f.FrameID, f.Selector); err != nil {
		return
	}
	_ = e.page.WaitStable(ctx, e.config.StableSettle)

	var labels []string
	if f.AriaControls != "" {
		labels, _ = e.page.Texts(ctx, f.FrameID, "#"+f.AriaControls+` [role="option"]`)
	}
	if len(labels) == 0 {
		labels, _ = e.page.Texts(ctx, f.FrameID, suggestionSelector)
	}
	_ = e.page.PressKey(ctx, "Escape")

	if len(labels) == 0 {
		f.SearchMode = true
		return
	}
	e.applyOptionList(f, labels)
}

// applyOptionList records the enumerated options, or flips the field to
// search mode when the list is too large to be a fixed choice set
func (e *Engine) applyOptionList(f *models.FormField, labels []string) {
	if len(labels) > e.config.PrescanOptionCap {
		f.SearchMode = true
		return
	}
	var opts []string
	for _, l := range labels {
		if !isPlaceholderOption(l) {
			opts = append(opts, strings.TrimSpace(l))
		}
	}
	f.Options = opts
}

// clickApply presses the Apply control when the posting page gates the form
// behind it. Missing button means the form is already visible.
func (e *Engine) clickApply(ctx context.Context) {
	for _, text := range []string{"Apply Now", "Apply for this job", "Apply"} {
		if err := e.page.ClickText(ctx, "", "button, a", text); err == nil {
			_ = e.page.WaitNetworkIdle(ctx, e.config.NetworkIdleTimeout)
			_ = e.page.WaitStable(ctx, e.config.StableSettle)
			return
		}
	}
}

// awaitAuthHandoff pauses while a login or verification wall is visible so a
// human can clear it. Polls until the wall is gone or the page-load timeout
// runs out.
func (e *Engine) awaitAuthHandoff(ctx context.Context) {
	deadline := time.Now().Add(e.config.PageLoadTimeout)
	for time.Now().Before(deadline) {
		if !e.authWallVisible(ctx) {
			return
		}
		e.logger.Info().Msg("Sign-in wall detected, waiting for manual handoff")
		if err := sleepCtx(ctx, 2*time.Second); err != nil {
			return
		}
	}
}

func (e *Engine) authWallVisible(ctx context.Context) bool {
	for _, sel := range []string{`input[type="password"]`, `[data-automation-id="signInContent"]`, `form[action*="login"]`} {
		if ok, _ := e.page.Exists(ctx, "", sel); ok {
			return true
		}
	}
	return false
}

// extractJobInfo pulls the posting title/company/description from the page
// for oracle context. Best effort; empty fields are fine.
func (e *Engine) extractJobInfo(ctx context.Context) *models.JobInfo {
	info := &models.JobInfo{}
	if u, err := e.page.URL(ctx); err == nil {
		info.URL = u
	}
	for _, sel := range []string{"h1.app-title", "h1.posting-headline", `[data-automation-id="jobPostingHeader"]`, "h1"} {
		if t, err := e.page.Text(ctx, "", sel); err == nil && strings.TrimSpace(t) != "" {
			info.Title = strings.TrimSpace(t)
			break
		}
	}
	for _, sel := range []string{".company-name", `[data-qa="company-name"]`} {
		if c, err := e.page.Text(ctx, "", sel); err == nil && strings.TrimSpace(c) != "" {
			info.Company = strings.TrimSpace(c)
			break
		}
	}
	for _, sel := range []string{"#content", ".posting-description", `[data-automation-id="jobPostingDescription"]`} {
		if d, err := e.page.Text(ctx, "", sel); err == nil && strings.TrimSpace(d) != "" {
			if len(d) > 4000 {
				d = d[:4000]
			}
			info.Description = strings.TrimSpace(d)
			break
		}
	}
	return info
}

func (e *Engine) blurAll(ctx context.Context, fields []*models.FormField) {
	for _, f := range fields {
		if f.Status == models.FieldStatusFilled {
			_ = e.page.Blur(ctx, f.FrameID, f.Selector)
		}
	}
	_ = e.page.WaitStable(ctx, e.config.StableSettle)
}

// verify reads back each filled field. Exact or containing match promotes to
// verified; aria-invalid demotes to error. File inputs verify when the chosen
// filename shows near the control, with an opaque-success fallback because
// many uploaders never echo the name.
func (e *Engine) verify(ctx context.Context, fields []*models.FormField) {
	for _, f := range fields {
		if f.Status != models.FieldStatusFilled {
			continue
		}

		if el, err := e.page.GetElement(ctx, f.FrameID, f.Selector); err == nil && el.AriaInvalid == "true" {
			f.Status = models.FieldStatusError
			f.Error = "field flagged aria-invalid after fill"
			continue
		}

		if f.Type == models.FieldTypeFile {
			e.verifyFile(ctx, f)
			continue
		}

		switch f.Type {
		case models.FieldTypeCheckbox, models.FieldTypeRadio:
			if el, err := e.page.GetElement(ctx, f.FrameID, f.Selector); err == nil && el.Checked == (canonicalYesNo(f.Answer) != "No") {
				f.Status = models.FieldStatusVerified
			}
			continue
		}

		value, err := e.page.Value(ctx, f.FrameID, f.Selector)
		if err != nil {
			continue
		}
		got := strings.TrimSpace(value)
		want := strings.TrimSpace(f.Answer)
		if got == "" {
			continue
		}
		if strings.EqualFold(got, want) ||
			strings.Contains(strings.ToLower(got), strings.ToLower(want)) ||
			strings.Contains(strings.ToLower(want), strings.ToLower(got)) {
			f.Status = models.FieldStatusVerified
		}
	}
}

func (e *Engine) verifyFile(ctx context.Context, f *models.FormField) {
	name := f.Answer
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	for _, sel := range []string{".chosen", ".file-name", `[data-qa="uploaded-file"]`} {
		if t, err := e.page.Text(ctx, f.FrameID, sel); err == nil && strings.Contains(t, name) {
			f.Status = models.FieldStatusVerified
			return
		}
	}
	// Upload accepted without echoing the filename; SetFiles reported no
	// error so count it verified
	f.Status = models.FieldStatusVerified
}

// learn persists oracle answers that survived verification, keyed by label,
// so the next session answers them without a model call
func (e *Engine) learn(fields []*models.FormField) {
	if e.learned == nil {
		return
	}
	for _, f := range fields {
		if f.Status != models.FieldStatusVerified || f.Source != models.AnswerSourceAI || f.Label == "" {
			continue
		}
		var err error
		if len(f.Options) > 0 || f.Type == models.FieldTypeSelect || f.Type == models.FieldTypeAutocomplete || f.Type == models.FieldTypeRadio {
			err = e.learned.SaveDropdown(f.Label, f.Answer)
		} else {
			err = e.learned.SaveText(f.Label, f.Answer)
		}
		if err != nil {
			e.logger.Warn().Err(err).Str("label", f.Label).Msg("Learned answer not saved")
		}
	}
}

func (e *Engine) publish(t interfaces.EventType, payload map[string]interface{}) {
	if e.events == nil {
		return
	}
	e.events.Publish(interfaces.Event{Type: t, Timestamp: time.Now().UTC(), Payload: payload})
}

func tally(session *models.AutofillSession, fields []*models.FormField) {
	session.Fields = len(fields)
	for _, f := range fields {
		switch f.Status {
		case models.FieldStatusFilled:
			session.Filled++
		case models.FieldStatusVerified:
			session.Filled++
			session.Verified++
		case models.FieldStatusNeedsInput:
			session.NeedsInput++
		case models.FieldStatusError:
			session.Errors++
		}
		if f.Status == models.FieldStatusVerified && f.Source == models.AnswerSourceAI {
			session.Learned++
		}
	}
}
