package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Prompt is a single-turn completion request that expects a JSON answer.
type Prompt struct {
	System string
	User   string
}

// Completer sends one prompt to a hosted model. Implementations make exactly
// one attempt.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
	Provider() string
	Model() string
}

// NewCompleter builds the client for the configured provider. It returns nil
// when no credential is configured.
func NewCompleter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Completer, error) {
	if !cfg.Delegated() {
		logger.Info("No AI provider credential configured, using rule-based itineraries")
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.APIKey(), cfg.Model(), cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return NewOpenAIClient(openai.DefaultConfig(cfg.APIKey()), cfg.Model(), cfg.Temperature), nil
	}
}

type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, temperature: temperature}, nil
}

func (g *GeminiClient) Provider() string { return config.ProviderGemini }
func (g *GeminiClient) Model() string    { return g.model }

func (g *GeminiClient) Complete(ctx context.Context, p Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	}
	if p.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: p.System}}}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.User), cfg)
	if err != nil {
		return "", err
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIClient takes a full client config so tests can point BaseURL at a fake server.
func NewOpenAIClient(cfg openai.ClientConfig, model string, temperature float32) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model, temperature: temperature}
}

func (o *OpenAIClient) Provider() string { return config.ProviderOpenAI }
func (o *OpenAIClient) Model() string    { return o.model }

func (o *OpenAIClient) Complete(ctx context.Context, p Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if p.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: o.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("openai returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

// Classify maps a provider error onto the failure reasons shown to clients.
func Classify(err error) types.GenerationReason {
	if err == nil {
		return types.GenerationReasonGeneric
	}

	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		code, _ := oaErr.Code.(string)
		switch {
		case oaErr.Type == "insufficient_quota" || code == "insufficient_quota" ||
			code == "rate_limit_exceeded" || oaErr.HTTPStatusCode == http.StatusTooManyRequests:
			return types.GenerationReasonQuota
		case code == "invalid_api_key" || oaErr.HTTPStatusCode == http.StatusUnauthorized:
			return types.GenerationReasonCredential
		}
		return types.GenerationReasonGeneric
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return types.GenerationReasonQuota
		case http.StatusUnauthorized:
			return types.GenerationReasonCredential
		}
	}

	var gErr genai.APIError
	if errors.As(err, &gErr) {
		switch {
		case gErr.Code == http.StatusTooManyRequests || gErr.Status == "RESOURCE_EXHAUSTED":
			return types.GenerationReasonQuota
		case gErr.Code == http.StatusUnauthorized || gErr.Code == http.StatusForbidden ||
			strings.Contains(gErr.Message, "API key not valid"):
			return types.GenerationReasonCredential
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "rate limit"):
		return types.GenerationReasonQuota
	case strings.Contains(msg, "api key") || strings.Contains(msg, "invalid_api_key"):
		return types.GenerationReasonCredential
	}
	return types.GenerationReasonGeneric
}
