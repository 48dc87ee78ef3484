package normalize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/pursuit/internal/models"
)

// stateCodes maps 2-letter codes to full state names
var stateCodes = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

// stateNames is the reverse index, lowercase full name to code
var stateNames = func() map[string]string {
	m := make(map[string]string, len(stateCodes))
	for code, name := range stateCodes {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// nonUSCountries are keywords that mark a posting as outside the US when they
// appear with word boundaries and the text does not also claim the US
var nonUSCountries = []string{
	"canada", "united kingdom", "uk", "england", "scotland", "ireland",
	"germany", "france", "spain", "portugal", "netherlands", "belgium",
	"switzerland", "austria", "italy", "poland", "czech", "romania",
	"sweden", "norway", "denmark", "finland", "iceland", "estonia",
	"india", "china", "japan", "singapore", "australia", "new zealand",
	"brazil", "mexico", "argentina", "colombia", "chile", "costa rica",
	"israel", "uae", "dubai", "saudi arabia", "south africa", "nigeria",
	"egypt", "philippines", "vietnam", "thailand", "indonesia", "malaysia",
	"south korea", "taiwan", "hong kong", "ontario", "quebec",
	"british columbia", "toronto", "vancouver", "montreal", "london",
	"berlin", "paris", "amsterdam", "dublin", "bangalore", "bengaluru",
	"hyderabad", "pune", "tokyo", "sydney", "melbourne",
}

var (
	remoteUSAPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bremote\s*[-–(,]?\s*(usa?|u\.s\.?a?\.?|united states)\b`),
		regexp.MustCompile(`(?i)\b(usa?|u\.s\.?a?\.?|united states)\s*[-–,(]?\s*remote\b`),
		regexp.MustCompile(`(?i)\bremote\s*\(\s*(usa?|united states)\s*\)`),
	}
	remoteGlobalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bremote\s*[-–(,]?\s*(global|worldwide|anywhere)\b`),
		regexp.MustCompile(`(?i)\b(global|worldwide|anywhere)\s*[-–,(]?\s*remote\b`),
		regexp.MustCompile(`(?i)\bfully\s+remote\b`),
	}
	bareRemote = regexp.MustCompile(`(?i)\bremote\b`)
	// "City, ST" or "City, State Name"
	cityStateRE = regexp.MustCompile(`(?i)^\s*([A-Za-z .'-]+?)\s*,\s*([A-Za-z .]+?)\s*(?:,\s*(?:usa?|united states))?\s*$`)
	tokenSplit  = regexp.MustCompile(`[;|/\n]`)
)

func wordMatch(text, keyword string) bool {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	return re.MatchString(text)
}

func mentionsUS(text string) bool {
	return wordMatch(text, "united states") || wordMatch(text, "usa") || wordMatch(text, "us")
}

// Location parses a free-text location into its structured form.
// Rules apply in order, first match wins per attribute. Multi-state postings
// keep every detected state and expose the alphabetically first as primary.
func Location(raw string) *models.NormalizedLocation {
	loc := &models.NormalizedLocation{Raw: raw}
	text := strings.TrimSpace(raw)
	if text == "" {
		return loc
	}

	// Non-US detection runs against the whole text first
	if !mentionsUS(text) {
		for _, country := range nonUSCountries {
			if wordMatch(text, country) {
				loc.NonUS = true
				if idx := strings.Index(text, ","); idx > 0 {
					loc.City = strings.TrimSpace(text[:idx])
				}
				return loc
			}
		}
	}

	stateSet := map[string]bool{}

	for _, token := range tokenSplit.Split(text, -1) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		matched := false
		for _, re := range remoteUSAPatterns {
			if re.MatchString(token) {
				loc.Remote = true
				loc.RemoteScope = "usa"
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for _, re := range remoteGlobalPatterns {
			if re.MatchString(token) {
				loc.Remote = true
				if loc.RemoteScope == "" {
					loc.RemoteScope = "global"
				}
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if m := cityStateRE.FindStringSubmatch(token); m != nil {
			city, statePart := m[1], m[2]
			if code := resolveState(statePart); code != "" {
				if loc.City == "" {
					loc.City = strings.TrimSpace(city)
				}
				stateSet[code] = true
				continue
			}
		}

		// Bare 2-letter code as its own token
		upper := strings.ToUpper(token)
		if _, ok := stateCodes[upper]; ok && len(token) == 2 {
			stateSet[upper] = true
			continue
		}

		// Full state names embedded anywhere in the token
		lower := strings.ToLower(token)
		for name, code := range stateNames {
			if wordMatch(lower, name) {
				stateSet[code] = true
			}
		}

		// A bare "remote" token with no scope qualifier
		if bareRemote.MatchString(token) {
			loc.Remote = true
		}
	}

	if len(stateSet) > 0 {
		states := make([]string, 0, len(stateSet))
		for code := range stateSet {
			states = append(states, code)
		}
		sort.Strings(states)
		loc.States = states
		loc.State = states[0]
		loc.StateFull = stateCodes[states[0]]
	}

	return loc
}

// resolveState accepts a 2-letter code or a full state name
func resolveState(s string) string {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	if len(upper) == 2 {
		if _, ok := stateCodes[upper]; ok {
			return upper
		}
		return ""
	}
	if code, ok := stateNames[strings.ToLower(s)]; ok {
		return code
	}
	return ""
}
