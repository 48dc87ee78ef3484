package autofill

import (
	"context"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// Resolver turns detected fields into answers. One resolver serves one
// autofill session: it carries the profile, the learned memory, and the
// session's job context for the oracle.
type Resolver struct {
	profile    *models.Profile
	learned    interfaces.LearnedDB
	oracle     interfaces.Oracle
	decline    string // demographic answer when the profile declines to say
	roleFamily string
	jobContext string
	kbContext  string
	logger     arbor.ILogger
}

func NewResolver(profile *models.Profile, learned interfaces.LearnedDB, oracle interfaces.Oracle, decline string, logger arbor.ILogger) *Resolver {
	return &Resolver{
		profile: profile,
		learned: learned,
		oracle:  oracle,
		decline: decline,
		logger:  logger,
	}
}

// SetJobContext provides the posting context used for oracle prompts and
// role-specific file selection
func (r *Resolver) SetJobContext(roleFamily, jobContext string) {
	r.roleFamily = roleFamily
	r.jobContext = jobContext
}

// SetKnowledge provides the free-form knowledge base rendered into oracle
// prompts for essay-style questions
func (r *Resolver) SetKnowledge(kb string) {
	r.kbContext = kb
}

// Resolve fills in Answer, Source, Confidence, and Status for one field.
// Fields no step can answer end as needs_input rather than error: a human
// finishing the form is the expected path, not a failure.
func (r *Resolver) Resolve(ctx context.Context, f *models.FormField) {
	norm := normalizeLabel(f.Label)

	path := f.ProfileKey
	if path == "" {
		if p, ok := matchProfilePattern(f.Label, f.ElementID+" "+f.Name); ok {
			path = p
			f.ProfileKey = p
		}
	}

	// A current role has no end date to give
	if r.isCurrentRoleEndDate(path) {
		f.Status = models.FieldStatusSkipped
		f.Source = models.AnswerSourceNone
		return
	}

	if f.Type == models.FieldTypeFile {
		r.resolveFile(f)
		return
	}

	if r.resolveLearned(f) {
		return
	}
	if r.resolveProfile(f, path) {
		return
	}
	if r.resolveYesNo(f, norm) {
		return
	}
	if r.resolveDemographic(f, norm) {
		return
	}
	if r.resolveKnownOptions(f, norm) {
		return
	}
	if r.resolveTextDefault(f, norm) {
		return
	}
	if r.resolveOracle(ctx, f) {
		return
	}

	f.Source = models.AnswerSourceNone
	f.Status = models.FieldStatusNeedsInput
}

// isCurrentRoleEndDate reports whether the path targets the end date of a
// work-experience entry the profile marks as current. Education end dates are
// never skipped; finished degrees have them.
func (r *Resolver) isCurrentRoleEndDate(path string) bool {
	if !strings.HasPrefix(path, "work_experience.") {
		return false
	}
	if !strings.HasSuffix(path, ".end_month") && !strings.HasSuffix(path, ".end_year") {
		return false
	}
	parts := strings.Split(path, ".")
	if len(parts) != 3 {
		return false
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 || idx >= len(r.profile.WorkExperience) {
		return false
	}
	return r.profile.WorkExperience[idx].Current
}

func (r *Resolver) resolveFile(f *models.FormField) {
	path := r.profile.ResumeForRole(r.roleFamily)
	if path == "" {
		f.Status = models.FieldStatusNeedsInput
		f.Source = models.AnswerSourceNone
		return
	}
	f.Answer = path
	f.Source = models.AnswerSourceProfile
	f.Confidence = 1.0
}

// Step 1: answers learned from previously verified sessions
func (r *Resolver) resolveLearned(f *models.FormField) bool {
	if r.learned == nil || f.Label == "" {
		return false
	}
	var answer string
	var ok bool
	if r.hasOptions(f) {
		answer, ok = r.learned.GetDropdown(f.Label)
	} else {
		answer, ok = r.learned.GetText(f.Label)
	}
	if !ok {
		return false
	}
	if len(f.Options) > 0 {
		if opt, _ := bestOption(answer, f.Options, 40); opt != "" {
			answer = opt
		}
	}
	f.Answer = answer
	f.Source = models.AnswerSourceLearned
	f.Confidence = 0.9
	return true
}

// Step 2: direct profile values by label pattern or known selector
func (r *Resolver) resolveProfile(f *models.FormField, path string) bool {
	if path == "" {
		return false
	}
	value, ok := r.profile.GetByPath(path)
	if !ok {
		return false
	}
	if len(f.Options) > 0 {
		if opt, _ := bestOption(value, f.Options, 40); opt != "" {
			value = opt
		}
	}
	f.Answer = value
	f.Source = models.AnswerSourceProfile
	f.Confidence = 1.0
	return true
}

// Step 3: yes/no compliance questions
func (r *Resolver) resolveYesNo(f *models.FormField, norm string) bool {
	for _, p := range yesNoPatterns {
		if !matchesLabel(norm, p.pattern) {
			continue
		}
		answer := p.answer
		if p.path != "" {
			if v, ok := r.profile.GetByPath(p.path); ok {
				answer = canonicalYesNo(v)
			}
		}
		if len(f.Options) > 0 {
			if opt, _ := bestOption(answer, f.Options, 40); opt != "" {
				answer = opt
			}
		}
		f.Answer = answer
		f.Source = models.AnswerSourceDefault
		f.Confidence = 0.8
		return true
	}
	return false
}

// Step 4: voluntary self-identification. The profile value wins; absent that
// the configured decline answer is used.
func (r *Resolver) resolveDemographic(f *models.FormField, norm string) bool {
	for _, p := range demographicPatterns {
		if !matchesLabel(norm, p.pattern) {
			continue
		}
		value, ok := r.profile.GetByPath(p.path)
		source := models.AnswerSourceProfile
		if !ok {
			value = r.decline
			source = models.AnswerSourceDefault
		}
		if len(f.Options) > 0 {
			if opt := matchDemographicOption(value, r.decline, f.Options); opt != "" {
				value = opt
			}
		}
		if value == "" {
			return false
		}
		f.Answer = value
		f.Source = source
		f.Confidence = 0.9
		return true
	}
	return false
}

// Step 5: fields whose option list gives the answer away even when no
// pattern matched the label
func (r *Resolver) resolveKnownOptions(f *models.FormField, norm string) bool {
	if len(f.Options) == 0 {
		return false
	}
	if matchesLabel(norm, "country") || matchesLabel(norm, "citizenship") {
		want := r.profile.Personal.Country
		if want == "" {
			want = "United States"
		}
		if opt, _ := bestOption(want, f.Options, 40); opt != "" {
			f.Answer = opt
			f.Source = models.AnswerSourceProfile
			f.Confidence = 0.9
			return true
		}
	}
	if matchesLabel(norm, "state") || matchesLabel(norm, "province") {
		if opt, _ := bestOption(r.profile.Personal.State, f.Options, 40); opt != "" {
			f.Answer = opt
			f.Source = models.AnswerSourceProfile
			f.Confidence = 0.9
			return true
		}
	}
	return false
}

// Step 6: literal last-resort answers for common free-text questions
func (r *Resolver) resolveTextDefault(f *models.FormField, norm string) bool {
	for _, p := range textDefaults {
		if !matchesLabel(norm, p.pattern) {
			continue
		}
		answer := p.answer
		source := models.AnswerSourceDefault
		if p.path != "" {
			if v, ok := r.profile.GetByPath(p.path); ok {
				answer = v
				source = models.AnswerSourceProfile
			}
		}
		if answer == "" {
			continue
		}
		if len(f.Options) > 0 {
			if opt, _ := bestOption(answer, f.Options, 40); opt != "" {
				answer = opt
			}
		}
		f.Answer = answer
		f.Source = source
		f.Confidence = 0.7
		return true
	}
	return false
}

// Step 7: ask the oracle. Dropdown replies are already coerced onto the
// option list by the oracle itself.
func (r *Resolver) resolveOracle(ctx context.Context, f *models.FormField) bool {
	if r.oracle == nil || !r.oracle.Enabled() || f.Label == "" {
		return false
	}
	var answer string
	var err error
	if len(f.Options) > 0 {
		answer, err = r.oracle.ChooseOption(ctx, f.Label, f.Options, r.profileContext())
	} else {
		answer, err = r.oracle.Generate(ctx, f.Label, r.profileContext(), r.kbContext)
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("label", f.Label).Msg("Oracle lookup failed")
		return false
	}
	if answer == "" {
		return false
	}
	f.Answer = answer
	f.Source = models.AnswerSourceAI
	f.Confidence = 0.7
	return true
}

func (r *Resolver) hasOptions(f *models.FormField) bool {
	switch f.Type {
	case models.FieldTypeSelect, models.FieldTypeAutocomplete, models.FieldTypeRadio:
		return true
	}
	return false
}

// profileContext renders the profile facts the oracle may draw on. Job
// context is appended so answers can reference the posting.
func (r *Resolver) profileContext() string {
	var b strings.Builder
	b.WriteString("Candidate: " + r.profile.FullName() + "\n")
	if r.profile.Personal.City != "" {
		b.WriteString("Location: " + r.profile.Personal.City + ", " + r.profile.Personal.State + "\n")
	}
	for _, w := range r.profile.WorkExperience {
		b.WriteString("Experience: " + w.Title + " at " + w.Company)
		if w.Current {
			b.WriteString(" (current)")
		}
		b.WriteString("\n")
	}
	for _, e := range r.profile.Education {
		b.WriteString("Education: " + e.Degree + " in " + e.Discipline + ", " + e.School + "\n")
	}
	if r.jobContext != "" {
		b.WriteString("Job: " + r.jobContext + "\n")
	}
	return b.String()
}

// canonicalYesNo normalizes profile boolean-ish strings to Yes/No
func canonicalYesNo(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "y":
		return "Yes"
	case "no", "false", "n":
		return "No"
	}
	return v
}
