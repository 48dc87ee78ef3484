package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
)

// ClaudeProvider implements Provider using the Anthropic API
type ClaudeProvider struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	client  *anthropic.Client
	timeout time.Duration
}

var _ Provider = (*ClaudeProvider)(nil)

// NewClaudeProvider creates a Claude provider
func NewClaudeProvider(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or claude.api_key)")
	}
	if config.Model == "" {
		config.Model = "claude-haiku-3-5-20241022"
	}
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	client := anthropic.NewClient(option.WithAPIKey(config.APIKey))

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Claude provider initialized")

	return &ClaudeProvider{
		config:  config,
		logger:  logger,
		client:  &client,
		timeout: timeout,
	}, nil
}

func (p *ClaudeProvider) Name() string  { return "claude" }
func (p *ClaudeProvider) Model() string { return p.config.Model }

func (p *ClaudeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	return p.send(ctx, system, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
	})
}

func (p *ClaudeProvider) CompleteVision(ctx context.Context, image []byte, prompt string) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(image)
	return p.send(ctx, "", []anthropic.MessageParam{
		anthropic.NewUserMessage(
			anthropic.NewImageBlockBase64("image/png", encoded),
			anthropic.NewTextBlock(prompt),
		),
	})
}

func (p *ClaudeProvider) send(ctx context.Context, system string, messages []anthropic.MessageParam) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	maxTokens := p.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if p.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.config.Temperature))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}
	return out.String(), nil
}
