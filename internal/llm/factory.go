package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
)

// NewProvider creates the configured LLM provider. Provider selection:
// explicit llm.default_provider wins; otherwise the model name prefix decides
// ("claude-*" vs "gemini-*"), falling back to the local server.
func NewProvider(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (Provider, error) {
	name := cfg.LLM.DefaultProvider
	if name == "" {
		name = detectProvider(cfg)
	}

	logger.Info().Str("provider", name).Msg("Initializing LLM provider")

	switch name {
	case "claude":
		return NewClaudeProvider(&cfg.Claude, logger)
	case "gemini":
		return NewGeminiProvider(ctx, &cfg.Gemini, logger)
	case "local":
		return NewLocalProvider(&cfg.Local, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q: must be claude, gemini, or local", name)
	}
}

func detectProvider(cfg *common.Config) string {
	switch {
	case strings.HasPrefix(cfg.Claude.Model, "claude-") && cfg.Claude.APIKey != "":
		return "claude"
	case strings.HasPrefix(cfg.Gemini.Model, "gemini-") && cfg.Gemini.APIKey != "":
		return "gemini"
	}
	return "local"
}
