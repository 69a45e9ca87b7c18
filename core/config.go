package core

import (
	"fmt"
	"net/http"
	"net/netip"
	"os"
	"strings"
	"time"
)

// Supported model providers. The provider decides which SDK backs the
// language model boundary; the UI only ever sees the two allowed model names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// defaultModels lists the two selectable models per provider.
// The first entry is the default selection.
var defaultModels = map[string][]string{
	ProviderOpenAI:    {"gpt-4o-mini", "gpt-4o"},
	ProviderAnthropic: {"claude-haiku-4-5", "claude-sonnet-4-5"},
	ProviderGemini:    {"gemini-2.5-flash", "gemini-2.5-pro"},
}

// Config holds all configuration values
type Config struct {
	// Model provider
	Provider        string
	OpenAIAPIKey    string
	OpenAIBaseURL   string // Optional OpenAI-compatible endpoint override
	AnthropicAPIKey string
	GeminiAPIKey    string

	// Model selection
	AllowedModels       []string // Exactly two entries; AllowedModels[0] is the default
	DefaultTemperature  float64
	QuestionTemperature float64
	AITimeout           time.Duration

	// Web UI
	Host          string
	Port          int
	MaxUploadSize int64
	SessionTTL    time.Duration

	// PDF extraction cache lifetime
	PDFCacheTTL time.Duration

	// Throttling of model-calling actions per client
	RateLimitRPS   float64
	RateLimitBurst int

	// Reverse proxies whose X-Forwarded-For and X-Real-IP headers are
	// believed. Empty means the connection address is always the client.
	TrustedProxies []netip.Prefix

	// Optional YAML file overriding the sample report and backup questions
	ContentFile string

	// Logging
	LogFile  string
	LogLevel string
	DevMode  bool
}

// DefaultModel returns the model preselected in the UI.
func (c *Config) DefaultModel() string {
	if len(c.AllowedModels) == 0 {
		return ""
	}
	return c.AllowedModels[0]
}

// IsAllowedModel reports whether model is one of the two selectable models.
func (c *Config) IsAllowedModel(model string) bool {
	for _, m := range c.AllowedModels {
		if m == model {
			return true
		}
	}
	return false
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// Addr returns the host:port the web UI listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. Only the credential for the selected provider is required.
func LoadConfig() (*Config, error) {
	provider := strings.ToLower(GetEnvOrDefault("LLM_PROVIDER", ProviderOpenAI))
	models, known := defaultModels[provider]
	if !known {
		return nil, ErrUnknownProvider(provider)
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		openAIKey = os.Getenv("OPENAI_KEY") // Legacy support
	}
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		geminiKey = os.Getenv("GOOGLE_API_KEY")
	}

	allowed := ParseListEnv("ALLOWED_MODELS")
	if allowed == nil {
		allowed = append([]string(nil), models...)
	}
	if len(allowed) != 2 {
		return nil, ErrInvalidModelList(allowed)
	}

	proxies, err := ParseTrustedProxies(ParseListEnv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Provider:        provider,
		OpenAIAPIKey:    openAIKey,
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    geminiKey,

		AllowedModels:       allowed,
		DefaultTemperature:  ParseFloat64Env("DEFAULT_TEMPERATURE", 0.2),
		QuestionTemperature: ParseFloat64Env("QUESTION_TEMPERATURE", 0.3),
		AITimeout:           ParseDurationEnv("AI_TIMEOUT", 60),

		Host:          GetEnvOrDefault("WEBUI_HOST", "localhost"),
		Port:          ParseIntEnv("WEBUI_PORT", 8501),
		MaxUploadSize: ParseInt64Env("MAX_UPLOAD_MB", 20) << 20,
		SessionTTL:    ParseDurationEnv("SESSION_TTL", 86400),
		PDFCacheTTL:   ParseDurationEnv("PDF_CACHE_TTL", 3600),

		RateLimitRPS:   ParseFloat64Env("RATE_LIMIT_RPS", 1),
		RateLimitBurst: ParseIntEnv("RATE_LIMIT_BURST", 8),
		TrustedProxies: proxies,

		ContentFile: os.Getenv("CONTENT_FILE"),

		LogFile:  GetEnvOrDefault("LOG_FILE", "app.log"),
		LogLevel: os.Getenv("LOG_LEVEL"),
		DevMode:  ParseBoolEnv("DEV_MODE", false),
	}

	if cfg.APIKey() == "" {
		return nil, ErrMissingAuth(provider)
	}
	if cfg.DefaultTemperature < 0 || cfg.DefaultTemperature > 1 {
		return nil, ErrOutOfRange("DEFAULT_TEMPERATURE", "0.0 and 1.0")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, ErrOutOfRange("WEBUI_PORT", "1 and 65535")
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, ErrOutOfRange("MAX_UPLOAD_MB", "1 and 1024")
	}

	return cfg, nil
}

// ParseTrustedProxies turns IPs and CIDR ranges into prefixes. A bare IP
// becomes a single-address prefix.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, ErrInvalidTrustedProxy(entry)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, ErrInvalidTrustedProxy(entry)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// GetHTTPClient returns the HTTP client used for model API calls.
func GetHTTPClient(cfg *Config) *http.Client {
	return &http.Client{
		Timeout: cfg.AITimeout,
	}
}
