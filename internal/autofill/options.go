package autofill

import "strings"

// optionScore rates how well an option label matches the desired answer.
// Higher is better; 0 means no relationship.
//
//	100  exact (case-insensitive)
//	 80  answer contained in option
//	 70  option contained in answer
//	 60  two or more shared words
//	 40  one shared word
func optionScore(answer, option string) int {
	a := strings.ToLower(strings.TrimSpace(answer))
	o := strings.ToLower(strings.TrimSpace(option))
	if a == "" || o == "" {
		return 0
	}
	if a == o {
		return 100
	}
	if strings.Contains(o, a) {
		return 80
	}
	if strings.Contains(a, o) {
		return 70
	}

	overlap := 0
	optWords := map[string]bool{}
	for _, w := range strings.Fields(o) {
		optWords[w] = true
	}
	for _, w := range strings.Fields(a) {
		if optWords[w] {
			overlap++
		}
	}
	switch {
	case overlap >= 2:
		return 60
	case overlap == 1:
		return 40
	}
	return 0
}

// bestOption returns the highest-scoring option at or above minScore, along
// with its score. Earlier options win ties.
func bestOption(answer string, options []string, minScore int) (string, int) {
	best, bestScore := "", 0
	for _, opt := range options {
		if s := optionScore(answer, opt); s > bestScore {
			best, bestScore = opt, s
		}
	}
	if bestScore < minScore {
		return "", bestScore
	}
	return best, bestScore
}

// matchDemographicOption maps a profile demographic value (or the decline
// default) onto the option list. Options offering a decline/"prefer not"
// variant are preferred when the desired value itself misses.
func matchDemographicOption(desired, decline string, options []string) string {
	if opt, _ := bestOption(desired, options, 40); opt != "" {
		return opt
	}
	if opt, _ := bestOption(decline, options, 40); opt != "" {
		return opt
	}
	for _, opt := range options {
		lo := strings.ToLower(opt)
		if strings.Contains(lo, "decline") || strings.Contains(lo, "prefer not") ||
			strings.Contains(lo, "don't wish") || strings.Contains(lo, "do not wish") {
			return opt
		}
	}
	return ""
}
