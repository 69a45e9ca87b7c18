// Package handlers holds the per-session actions behind the web UI and the
// construction of the model clients they use.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"report_summarizer/core"
	"report_summarizer/llm"
	"report_summarizer/logging"
)

// AIClientConfig holds what an OpenAI-compatible client needs.
type AIClientConfig struct {
	APIKey string

	// BaseURL is the API endpoint; FallbackURL is used when it is empty
	BaseURL     string
	FallbackURL string

	// HTTPClient carries the request timeout
	HTTPClient *http.Client
}

// AIClientFactory builds the language model boundary for the configured provider.
//
// Example:
//
//	factory := handlers.NewAIClientFactory()
//	gen, err := factory.CreateGenerator(ctx, cfg, logger)
type AIClientFactory struct{}

// NewAIClientFactory creates a new AIClientFactory instance.
func NewAIClientFactory() *AIClientFactory {
	return &AIClientFactory{}
}

// CreateClient creates an OpenAI client with the given configuration.
func (f *AIClientFactory) CreateClient(cfg AIClientConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if baseURL := ResolveBaseURL(cfg.BaseURL, cfg.FallbackURL); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}
	return openai.NewClientWithConfig(clientConfig)
}

// CreateGenerator returns a Generator for cfg.Provider wrapped in the
// circuit breaker and per-call timeout.
func (f *AIClientFactory) CreateGenerator(ctx context.Context, cfg *core.Config, logger *logging.Logger) (llm.Generator, error) {
	httpClient := core.GetHTTPClient(cfg)

	var gen llm.Generator
	switch cfg.Provider {
	case core.ProviderOpenAI:
		gen = llm.NewOpenAIGenerator(f.CreateClient(AIClientConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			HTTPClient: httpClient,
		}))
	case core.ProviderAnthropic:
		gen = llm.NewAnthropicGenerator(anthropic.NewClient(
			option.WithAPIKey(cfg.AnthropicAPIKey),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		))
	case core.ProviderGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     cfg.GeminiAPIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		gen = llm.NewGeminiGenerator(client)
	default:
		return nil, core.ErrUnknownProvider(cfg.Provider)
	}

	breakerCfg := llm.DefaultBreakerConfig(cfg.Provider+"-api", cfg.AITimeout)
	return llm.NewBreakerGenerator(gen, breakerCfg, logger.Named("llm")), nil
}

// ResolveBaseURL returns the primary URL if non-empty, otherwise the fallback.
func ResolveBaseURL(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}
