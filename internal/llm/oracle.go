package llm

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

// AuditSink receives a record of every oracle call
type AuditSink interface {
	SaveAudit(audit *models.OracleAudit)
}

// Oracle composes prompts for form-filling questions on top of a Provider.
// Callers treat errors and empty responses as a miss; the oracle never
// escalates a provider failure.
type Oracle struct {
	provider Provider
	audit    AuditSink
	enabled  bool
	logger   arbor.ILogger

	// SessionID tags audit records for the active autofill session
	SessionID string
}

var _ interfaces.Oracle = (*Oracle)(nil)

// NewOracle creates an oracle over the given provider. A nil provider or
// enabled=false produces a disabled oracle the resolver skips entirely.
func NewOracle(provider Provider, audit AuditSink, enabled bool, logger arbor.ILogger) *Oracle {
	return &Oracle{
		provider: provider,
		audit:    audit,
		enabled:  enabled && provider != nil,
		logger:   logger,
	}
}

// Enabled reports whether the oracle should be consulted
func (o *Oracle) Enabled() bool { return o.enabled }

const generateSystem = `You are filling out a job application form on behalf of a candidate.
Answer the form question directly and concisely in the first person.
Use only facts from the candidate profile and knowledge base provided.
Do not invent employers, dates, or credentials. Keep answers under 150 words.
Return only the answer text, no preamble.`

// Generate produces a free-text answer to a form question
func (o *Oracle) Generate(ctx context.Context, question, profileContext, kbContext string) (string, error) {
	if !o.enabled {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Form question: %s\n\n", question)
	if profileContext != "" {
		fmt.Fprintf(&b, "Candidate profile:\n%s\n\n", profileContext)
	}
	if kbContext != "" {
		fmt.Fprintf(&b, "Knowledge base:\n%s\n", kbContext)
	}

	answer, err := o.call(ctx, "generate", question, generateSystem, b.String())
	return answer, err
}

const chooseSystem = `You are selecting one option from a dropdown on a job application form.
Reply with the exact text of the single best option, nothing else.`

// ChooseOption picks one of the provided options. The reply is coerced back
// onto the option list; an uncoercible reply is a miss.
func (o *Oracle) ChooseOption(ctx context.Context, question string, options []string, profileContext string) (string, error) {
	if !o.enabled || len(options) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Form question: %s\n\nOptions:\n", question)
	for _, opt := range options {
		fmt.Fprintf(&b, "- %s\n", opt)
	}
	if profileContext != "" {
		fmt.Fprintf(&b, "\nCandidate profile:\n%s\n", profileContext)
	}

	answer, err := o.call(ctx, "choose_option", question, chooseSystem, b.String())
	if err != nil || answer == "" {
		return "", err
	}

	// Coerce onto the option list: exact, case-insensitive, then containment
	for _, opt := range options {
		if answer == opt {
			return opt, nil
		}
	}
	for _, opt := range options {
		if strings.EqualFold(answer, opt) {
			return opt, nil
		}
	}
	lower := strings.ToLower(answer)
	for _, opt := range options {
		ol := strings.ToLower(opt)
		if strings.Contains(lower, ol) || strings.Contains(ol, lower) {
			return opt, nil
		}
	}

	o.logger.Debug().
		Str("question", question).
		Str("reply", answer).
		Msg("Oracle reply did not match any option")
	return "", nil
}

// VisionAnalyzeField analyzes a field screenshot
func (o *Oracle) VisionAnalyzeField(ctx context.Context, image []byte, prompt string) (string, error) {
	if !o.enabled || len(image) == 0 {
		return "", nil
	}

	start := time.Now()
	answer, err := o.provider.CompleteVision(ctx, image, prompt)
	o.record("vision", prompt, answer, err, start)
	if err != nil {
		o.logger.Warn().Err(err).Msg("Oracle vision call failed")
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (o *Oracle) call(ctx context.Context, kind, question, system, user string) (string, error) {
	start := time.Now()
	answer, err := o.provider.Complete(ctx, system, user)
	o.record(kind, question, answer, err, start)
	if err != nil {
		o.logger.Warn().Err(err).Str("question", question).Msg("Oracle call failed")
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (o *Oracle) record(kind, question, answer string, err error, start time.Time) {
	if o.audit == nil {
		return
	}
	audit := &models.OracleAudit{
		ID:        common.NewEventID(),
		SessionID: o.SessionID,
		Provider:  o.provider.Name(),
		Model:     o.provider.Model(),
		Kind:      kind,
		Question:  question,
		Answer:    answer,
		Duration:  time.Since(start).Milliseconds(),
		CreatedAt: time.Now(),
	}
	if err != nil {
		audit.Err = err.Error()
	}
	o.audit.SaveAudit(audit)
}
