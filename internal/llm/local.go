package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
)

// LocalProvider implements Provider against a llama-server style
// OpenAI-compatible chat endpoint running on localhost. No API key, no
// vision: it is the zero-cost default for option matching and short answers.
type LocalProvider struct {
	config  *common.LocalLLMConfig
	logger  arbor.ILogger
	client  *http.Client
	timeout time.Duration
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider creates a local LLM provider
func NewLocalProvider(config *common.LocalLLMConfig, logger arbor.ILogger) (*LocalProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	logger.Debug().
		Str("base_url", config.BaseURL).
		Str("model", config.Model).
		Msg("Local LLM provider initialized")

	return &LocalProvider{
		config:  config,
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}, nil
}

func (p *LocalProvider) Name() string  { return "local" }
func (p *LocalProvider) Model() string { return p.config.Model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model,omitempty"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Stream    bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *LocalProvider) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []chatMessage{}
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(chatRequest{
		Model:     p.config.Model,
		Messages:  messages,
		MaxTokens: p.config.MaxTokens,
		Stream:    false,
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("local LLM returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode local LLM response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("local LLM error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("local LLM returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// CompleteVision is unsupported locally; the resolver treats the empty
// response as a miss
func (p *LocalProvider) CompleteVision(ctx context.Context, image []byte, prompt string) (string, error) {
	return "", nil
}
