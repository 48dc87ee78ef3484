package normalize

import (
	"strings"
)

// Role family identifiers
const (
	RoleProduct    = "product"
	RoleTPMProgram = "tpm_program"
	RoleProject    = "project"
	RoleOther      = "other"
)

// negativeKeywords preempt any family match: a title carrying one of these is
// not a role we track regardless of what else it says
var negativeKeywords = []string{
	"engineer", "developer", "sales", "account executive",
	"security", "incident response",
}

var productKeywords = []string{
	"product manager", "product owner", "group product manager",
	"principal product manager", "senior product manager",
	"associate product manager", "gpm", "ppm", "apm",
	"head of product", "director of product", "vp of product",
	"product lead",
}

var tpmKeywords = []string{
	"technical program manager", "tpm", "program manager",
	"delivery manager", "release manager", "implementation manager",
	"implementation lead", "implementation specialist",
	"program lead", "program director",
}

var projectKeywords = []string{
	"project manager", "pmo", "project coordinator",
	"project lead", "project management",
}

// ambiguousLead is classified as tpm_program at reduced confidence; the
// confidence value is configurable
const ambiguousLead = "strategic project lead"

func containsKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if len(kw) <= 3 {
			// Short acronyms need word boundaries to avoid substring hits
			if wordMatch(text, kw) {
				return true
			}
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Role classifies a job title (plus optional description) into a role family
// with a confidence. Negative keywords win over everything.
func Role(title, description string, ambiguousLeadConfidence float64) (string, float64) {
	text := strings.ToLower(title + " " + description)

	if containsKeyword(text, negativeKeywords) {
		return RoleOther, 0.9
	}

	if strings.Contains(text, ambiguousLead) {
		if ambiguousLeadConfidence <= 0 {
			ambiguousLeadConfidence = 0.7
		}
		return RoleTPMProgram, ambiguousLeadConfidence
	}

	if containsKeyword(text, productKeywords) {
		return RoleProduct, 0.9
	}
	if containsKeyword(text, tpmKeywords) {
		return RoleTPMProgram, 0.9
	}
	if containsKeyword(text, projectKeywords) {
		return RoleProject, 0.9
	}

	return RoleOther, 0.5
}
