package interfaces

import "context"

// Oracle is the narrow LLM contract used by the answer resolver. All methods
// are fallible with no retry at this boundary; callers treat empty or error
// responses as a miss and fall through.
type Oracle interface {
	// Generate produces a bounded free-text answer to a form question
	Generate(ctx context.Context, question, profileContext, kbContext string) (string, error)
	// ChooseOption picks one of the provided options; callers coerce the
	// reply back onto the option list
	ChooseOption(ctx context.Context, question string, options []string, profileContext string) (string, error)
	// VisionAnalyzeField analyzes a field screenshot; implementations without
	// vision support return an empty string
	VisionAnalyzeField(ctx context.Context, image []byte, prompt string) (string, error)
	// Enabled reports whether the oracle should be consulted at all
	Enabled() bool
}

// LearnedDB is the persistent question -> answer memory shared across
// autofill sessions
type LearnedDB interface {
	GetText(question string) (string, bool)
	GetDropdown(question string) (string, bool)
	SaveText(question, answer string) error
	SaveDropdown(question, answer string) error
	Counts() (texts int, dropdowns int)
}
