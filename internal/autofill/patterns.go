package autofill

import (
	"regexp"
	"strings"
)

// labelPattern maps a label phrase to a dotted profile path. Patterns are
// evaluated in order with word boundaries: specific phrases must come before
// the generic ones they contain, or the generic entry wins first.
type labelPattern struct {
	pattern string
	path    string // dotted profile path; {N} is replaced by the section index
}

// profilePatterns resolve a derived label to a profile value. Indexed
// patterns ({N}) are tried with the index parsed from the element id/name,
// defaulting to 0.
var profilePatterns = []labelPattern{
	// Specific multi-word phrases first
	{"education start month", "education.{N}.start_month"},
	{"education start year", "education.{N}.start_year"},
	{"education end month", "education.{N}.end_month"},
	{"education end year", "education.{N}.end_year"},
	{"school name", "education.{N}.school"},
	{"degree", "education.{N}.degree"},
	{"discipline", "education.{N}.discipline"},
	{"field of study", "education.{N}.discipline"},

	{"start date month", "work_experience.{N}.start_month"},
	{"start date year", "work_experience.{N}.start_year"},
	{"end date month", "work_experience.{N}.end_month"},
	{"end date year", "work_experience.{N}.end_year"},
	{"start month", "work_experience.{N}.start_month"},
	{"start year", "work_experience.{N}.start_year"},
	{"end month", "work_experience.{N}.end_month"},
	{"end year", "work_experience.{N}.end_year"},
	{"company name", "work_experience.{N}.company"},
	{"employer", "work_experience.{N}.company"},
	{"job title", "work_experience.{N}.title"},

	{"first name", "personal.first_name"},
	{"given name", "personal.first_name"},
	{"last name", "personal.last_name"},
	{"family name", "personal.last_name"},
	{"surname", "personal.last_name"},
	{"full name", "full_name"},
	{"preferred name", "personal.first_name"},
	{"email", "personal.email"},
	{"e mail", "personal.email"},
	{"phone", "personal.phone"},
	{"mobile", "personal.phone"},
	{"street address", "personal.address"},
	{"address line", "personal.address"},
	{"city", "personal.city"},
	{"state", "personal.state"},
	{"province", "personal.state"},
	{"zip", "personal.zip"},
	{"postal code", "personal.zip"},
	{"country", "personal.country"},

	{"linkedin", "links.linkedin"},
	{"github", "links.github"},
	{"portfolio", "links.portfolio"},
	{"website", "links.website"},

	{"current salary", "common_answers.current_salary"},
	{"salary expectation", "common_answers.salary_expectation"},
	{"desired salary", "common_answers.salary_expectation"},
	{"notice period", "common_answers.notice_period"},
	{"how did you hear", "common_answers.source"},
}

// yesNoPattern maps a label phrase to a canonical answer. Ordered: specific
// matchers before generic ones because the generic ones misfire.
type yesNoPattern struct {
	pattern string
	path    string // profile path consulted first, may be empty
	answer  string // canonical fallback answer
}

var yesNoPatterns = []yesNoPattern{
	{"non compete", "", "No"},
	{"noncompete", "", "No"},
	{"previously worked", "", "No"},
	{"worked here before", "", "No"},
	{"currently employed by", "", "No"},
	{"related to anyone", "", "No"},
	{"relative", "", "No"},
	{"18 years", "", "Yes"},
	{"authorized to work", "work_authorization.authorized_us", "Yes"},
	{"legally authorized", "work_authorization.authorized_us", "Yes"},
	{"work authorization", "work_authorization.authorized_us", "Yes"},
	{"require sponsorship", "work_authorization.requires_sponsorship", "No"},
	{"need sponsorship", "work_authorization.requires_sponsorship", "No"},
	{"visa sponsorship", "work_authorization.requires_sponsorship", "No"},
	{"security clearance", "work_authorization.security_clearance", "No"},
	{"background check", "", "Yes"},
	{"drug test", "", "Yes"},
	{"drug screen", "", "Yes"},
	{"willing to relocate", "common_answers.relocate", "No"},
	{"able to commute", "", "Yes"},
	{"remote work", "", "Yes"},
	// Generic matchers last
	{"certify", "", "Yes"},
	{"acknowledge", "", "Yes"},
	{"agree", "", "Yes"},
	{"consent", "", "Yes"},
}

// demographicPattern maps a label phrase to the demographics profile field
type demographicPattern struct {
	pattern string
	path    string
}

var demographicPatterns = []demographicPattern{
	{"hispanic", "demographics.hispanic"},
	{"latino", "demographics.hispanic"},
	{"latinx", "demographics.hispanic"},
	{"gender identity", "demographics.gender"},
	{"gender", "demographics.gender"},
	{"race", "demographics.race"},
	{"ethnicity", "demographics.race"},
	{"veteran", "demographics.veteran"},
	{"military", "demographics.veteran"},
	{"disability", "demographics.disability"},
	{"disabled", "demographics.disability"},
}

// textDefault maps a label phrase to a last-resort literal answer
type textDefault struct {
	pattern string
	path    string // profile path consulted first
	answer  string
}

var textDefaults = []textDefault{
	{"years of experience", "common_answers.years_of_experience", "10+"},
	{"how did you hear", "common_answers.source", "LinkedIn"},
	{"referral", "common_answers.source", "LinkedIn"},
	{"salary", "common_answers.salary_expectation", "Negotiable"},
	{"compensation", "common_answers.salary_expectation", "Negotiable"},
	{"pronouns", "common_answers.pronouns", ""},
	{"notice period", "common_answers.notice_period", "2 weeks"},
	{"available to start", "common_answers.start_availability", "2 weeks from offer"},
}

// knownSelectors maps exact element selectors used by common ATS boards to
// profile paths, bypassing label derivation entirely
var knownSelectors = map[string]string{
	"#first_name":      "personal.first_name",
	"#last_name":       "personal.last_name",
	"#email":           "personal.email",
	"#phone":           "personal.phone",
	"#candidate-email": "personal.email",
	"#candidate-phone": "personal.phone",
	"#job_application_answers_attributes_0_text_value": "links.linkedin",
}

var wordBoundaryCache = map[string]*regexp.Regexp{}

// matchesLabel reports whether the pattern occurs in the label with word
// boundaries. Labels are compared in normalized lowercase.
func matchesLabel(label, pattern string) bool {
	label = strings.ToLower(label)
	re, ok := wordBoundaryCache[pattern]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(pattern) + `\b`)
		wordBoundaryCache[pattern] = re
	}
	return re.MatchString(label)
}

// matchProfilePattern resolves a label against the ordered pattern table.
// idName carries the element id/name so indexed paths pick up the right
// repeatable-section entry.
func matchProfilePattern(label, idName string) (string, bool) {
	norm := normalizeLabel(label)
	if norm == "" {
		return "", false
	}
	for _, p := range profilePatterns {
		if matchesLabel(norm, p.pattern) {
			path := p.path
			if strings.Contains(path, "{N}") {
				idx := 0
				for _, tok := range strings.Fields(idName) {
					if n, ok := trailingIndex(tok); ok {
						idx = n
						break
					}
				}
				path = strings.ReplaceAll(path, "{N}", itoa(idx))
			}
			return path, true
		}
	}
	return "", false
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// normalizeLabel lowercases and strips punctuation so "E-mail*" matches the
// "e mail" pattern
func normalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '!', ':', '-', '_', '(', ')', '"', '\'', ',', '.':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// sectionIndexRE extracts the trailing index from ids like
// "company-name-0" or "start-date-month-2" or "school--1"
var sectionIndexRE = regexp.MustCompile(`[-_](\d+)(?:_\d+)?$`)

// sectionIndex parses the repeatable-section index from an element id or
// name, defaulting to 0
func sectionIndex(field string) int {
	n, _ := trailingIndex(field)
	return n
}

func trailingIndex(field string) (int, bool) {
	m := sectionIndexRE.FindStringSubmatch(field)
	if m == nil {
		return 0, false
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
	}
	return n, true
}
