package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/logging"
	"google.golang.org/api/option"
)

// ErrNoAPIKey is returned when a provider client is created without credentials
var ErrNoAPIKey = errors.New("API key is required")

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates free text using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates a JSON document using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the provider model name a tier maps to
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// Option configures a client
type Option func(*GeminiClient)

// WithLogger sets the logger requests are reported to.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *GeminiClient) {
		c.logger = logging.Component(logger, "llm")
	}
}

// NewClient creates the client for config.Provider. Gemini is the only
// provider implemented and is used for unknown values as well.
func NewClient(ctx context.Context, config *Config, apiKey string, opts ...Option) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return NewGeminiClient(ctx, config, apiKey, opts...)
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
	logger logrus.FieldLogger
}

// NewGeminiClient creates a Gemini client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, opts ...Option) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	if config == nil {
		config = DefaultGeminiConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &GeminiClient{
		client: client,
		config: config,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GenerateContent generates free text using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, "")
}

// GenerateJSON asks the model for an application/json response and strips
// any fences or chatter around the document.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, prompt, tier, "application/json")
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, tier ModelTier, mimeType string) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.temperature())
	if c.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	}
	if mimeType != "" {
		model.ResponseMIMEType = mimeType
	}

	log := c.logger.WithFields(logrus.Fields{
		"model":        modelName,
		"tier":         tier,
		"prompt_chars": len(prompt),
	})
	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.WithError(err).Error("LLM request failed")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	fields := usageFields(resp)
	fields["duration"] = time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("LLM response unusable")
		return "", err
	}
	fields["response_chars"] = len(text)
	log.WithFields(fields).Debug("LLM response received")
	return text, nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse joins the text parts of the first candidate. A
// blocked prompt or a candidate stopped for a reason other than a natural
// stop is a *ResponseError.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &ResponseError{Message: "empty response"}
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", &ResponseError{Message: "prompt blocked", Reason: fmt.Sprint(fb.BlockReason)}
	}
	if len(resp.Candidates) == 0 {
		return "", &ResponseError{Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonMaxTokens:
		return "", &ResponseError{Message: "response truncated at the output token limit", Reason: fmt.Sprint(candidate.FinishReason), Truncated: true}
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return "", &ResponseError{Message: "response stopped by the provider", Reason: fmt.Sprint(candidate.FinishReason)}
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &ResponseError{Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", &ResponseError{Message: "no text parts in response"}
	}
	return strings.Join(parts, ""), nil
}

func usageFields(resp *genai.GenerateContentResponse) logrus.Fields {
	fields := logrus.Fields{}
	if resp == nil || resp.UsageMetadata == nil {
		return fields
	}
	fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
	fields["response_tokens"] = resp.UsageMetadata.CandidatesTokenCount
	fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	return fields
}
