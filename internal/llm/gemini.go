package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider using the Google Gemini API
type GeminiProvider struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini.api_key)")
	}
	if config.Model == "" {
		config.Model = "gemini-3-flash-preview"
	}
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Gemini provider initialized")

	return &GeminiProvider{
		config:  config,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}, nil
}

func (p *GeminiProvider) Name() string  { return "gemini" }
func (p *GeminiProvider) Model() string { return p.config.Model }

func (p *GeminiProvider) Complete(ctx context.Context, system, user string) (string, error) {
	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{genai.NewPartFromText(user)}},
	}
	return p.send(ctx, system, contents)
}

func (p *GeminiProvider) CompleteVision(ctx context.Context, image []byte, prompt string) (string, error) {
	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{
			genai.NewPartFromBytes(image, "image/png"),
			genai.NewPartFromText(prompt),
		}},
	}
	return p.send(ctx, "", contents)
}

func (p *GeminiProvider) send(ctx context.Context, system string, contents []*genai.Content) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{}
	if p.config.Temperature > 0 {
		config.Temperature = genai.Ptr(p.config.Temperature)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := p.client.Models.GenerateContent(timeoutCtx, p.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("no response generated from Gemini API")
	}
	return text, nil
}
