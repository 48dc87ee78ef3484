package autofill

import (
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/models"
)

// monthNumbers maps month names and common abbreviations to the two-digit
// form. All adaptation paths share this one table.
var monthNumbers = map[string]string{
	"january": "01", "jan": "01",
	"february": "02", "feb": "02",
	"march": "03", "mar": "03",
	"april": "04", "apr": "04",
	"may":  "05",
	"june": "06", "jun": "06",
	"july": "07", "jul": "07",
	"august": "08", "aug": "08",
	"september": "09", "sep": "09", "sept": "09",
	"october": "10", "oct": "10",
	"november": "11", "nov": "11",
	"december": "12", "dec": "12",
}

var yearRE = regexp.MustCompile(`\b(19|20)\d{2}\b`)
var digitsRE = regexp.MustCompile(`\d+`)

// monthNumber returns the 2-digit month for a month-name answer
func monthNumber(answer string) (string, bool) {
	n, ok := monthNumbers[strings.ToLower(strings.TrimSpace(answer))]
	return n, ok
}

// adaptAnswer reshapes a resolved answer to fit the target element's DOM
// constraints: placeholder format hints, maxlength, numeric input types, and
// validation patterns. The answer is returned unchanged when no constraint
// applies.
func adaptAnswer(field *models.FormField, answer string, logger arbor.ILogger) string {
	if answer == "" {
		return answer
	}
	placeholder := strings.TrimSpace(field.Placeholder)

	// Month-name answers against short month slots: "September" -> "09"
	if month, ok := monthNumber(answer); ok {
		switch {
		case placeholder == "MM" || placeholder == "M":
			return month
		case field.MaxLength > 0 && field.MaxLength <= 2:
			return month
		case field.InputType == "number" || field.InputType == "tel":
			return month
		case strings.HasPrefix(field.Pattern, "[0-9]"):
			return month
		}
	}

	// Year slots: keep only the digits the format asks for
	if placeholder == "YYYY" {
		if m := yearRE.FindString(answer); m != "" {
			return m
		}
		if m := digitsRE.FindString(answer); m != "" {
			return m
		}
	}
	if placeholder == "YY" {
		y := answer
		if m := yearRE.FindString(answer); m != "" {
			y = m
		}
		if len(y) >= 2 {
			return y[len(y)-2:]
		}
		return y
	}

	// Numeric-only validation pattern: strip everything but digits
	if strings.HasPrefix(field.Pattern, "[0-9]") {
		if m := digitsRE.FindString(answer); m != "" {
			return m
		}
	}

	// Last resort: the element physically cannot hold the full answer
	if field.MaxLength > 0 && len(answer) > field.MaxLength {
		truncated := answer[:field.MaxLength]
		logger.Warn().
			Str("label", field.Label).
			Int("maxlength", field.MaxLength).
			Msg("Answer truncated to fit element maxlength")
		return truncated
	}

	return answer
}
