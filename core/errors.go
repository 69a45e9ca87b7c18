package core

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing   = "ENV_FILE_MISSING"
	ErrCodeUnknownProvider  = "UNKNOWN_PROVIDER"
	ErrCodeMissingAuth      = "MISSING_AUTH"
	ErrCodeInvalidModelList = "INVALID_MODEL_LIST"
	ErrCodeOutOfRange       = "OUT_OF_RANGE"
	ErrCodeInvalidContent   = "INVALID_CONTENT"
	ErrCodeInvalidProxy     = "INVALID_TRUSTED_PROXY"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy example.env to .env and configure the required values",
	}
}

// ErrUnknownProvider returns an error for an unsupported LLM_PROVIDER value
func ErrUnknownProvider(provider string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnknownProvider,
		Message: fmt.Sprintf("Unknown model provider: %q", provider),
		Action:  "Set LLM_PROVIDER to openai, anthropic or gemini",
	}
}

// ErrMissingAuth returns an error for missing authentication credentials
func ErrMissingAuth(provider string) *ConfigError {
	var action string
	switch provider {
	case ProviderOpenAI:
		action = "Set OPENAI_API_KEY in your .env file"
	case ProviderAnthropic:
		action = "Set ANTHROPIC_API_KEY in your .env file"
	case ProviderGemini:
		action = "Set GEMINI_API_KEY (or GOOGLE_API_KEY) in your .env file"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", provider)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing authentication credentials for %s", provider),
		Action:  action,
	}
}

// ErrInvalidModelList returns an error when ALLOWED_MODELS does not name exactly two models
func ErrInvalidModelList(allowed []string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidModelList,
		Message: fmt.Sprintf("ALLOWED_MODELS must list exactly two models, got %d (%s)", len(allowed), strings.Join(allowed, ", ")),
		Action:  "Set ALLOWED_MODELS to two comma-separated model names, default first (e.g., gpt-4o-mini,gpt-4o)",
	}
}

// ErrOutOfRange returns an error for a numeric setting outside its valid range
func ErrOutOfRange(key, rangeDesc string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("%s is out of range", key),
		Action:  fmt.Sprintf("Set %s to a value between %s", key, rangeDesc),
	}
}

// ErrInvalidContent returns an error for an unreadable or malformed content file
func ErrInvalidContent(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidContent,
		Message: fmt.Sprintf("Invalid content file %s: %s", path, reason),
		Action:  "Fix the YAML in CONTENT_FILE or unset it to use the built-in sample report",
	}
}

// ErrInvalidTrustedProxy returns an error for a TRUSTED_PROXIES entry that is
// neither an IP address nor a CIDR range
func ErrInvalidTrustedProxy(entry string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidProxy,
		Message: fmt.Sprintf("Invalid TRUSTED_PROXIES entry: %q", entry),
		Action:  "List reverse proxy addresses as IPs or CIDR ranges (e.g., 127.0.0.1,10.0.0.0/8)",
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
