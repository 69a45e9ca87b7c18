package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigError_Error(t *testing.T) {
	withAction := &ConfigError{Code: "X", Message: "Port is busy", Action: "Pick another port"}
	if got := withAction.Error(); got != "Port is busy. Pick another port" {
		t.Errorf("Error() = %q", got)
	}

	bare := &ConfigError{Code: "X", Message: "Port is busy"}
	if got := bare.Error(); got != "Port is busy" {
		t.Errorf("Error() without action = %q", got)
	}
}

func TestErrMissingAuth(t *testing.T) {
	tests := []struct {
		provider  string
		expectEnv string
	}{
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderGemini, "GEMINI_API_KEY"},
		{"mistral", "mistral"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			err := ErrMissingAuth(tt.provider)
			if err.Code != ErrCodeMissingAuth {
				t.Errorf("Code = %s, want %s", err.Code, ErrCodeMissingAuth)
			}
			if !strings.Contains(err.Action, tt.expectEnv) {
				t.Errorf("Action %q should mention %s", err.Action, tt.expectEnv)
			}
		})
	}
}

func TestConfigErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		code     string
		contains string
	}{
		{"env file", ErrEnvFileMissing(".env"), ErrCodeEnvFileMissing, ".env"},
		{"provider", ErrUnknownProvider("cohere"), ErrCodeUnknownProvider, "cohere"},
		{"model list", ErrInvalidModelList([]string{"gpt-4o"}), ErrCodeInvalidModelList, "got 1"},
		{"range", ErrOutOfRange("WEBUI_PORT", "1 and 65535"), ErrCodeOutOfRange, "WEBUI_PORT"},
		{"content", ErrInvalidContent("content.yaml", "bad indent"), ErrCodeInvalidContent, "bad indent"},
		{"proxy", ErrInvalidTrustedProxy("proxy.local"), ErrCodeInvalidProxy, "proxy.local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, expected to contain %q", tt.err.Error(), tt.contains)
			}
			if tt.err.Action == "" {
				t.Error("Action should not be empty")
			}
		})
	}
}

func TestIsConfigError(t *testing.T) {
	wrapped := fmt.Errorf("startup: %w", ErrUnknownProvider("x"))
	cfgErr, ok := IsConfigError(wrapped)
	if !ok {
		t.Fatal("IsConfigError() should unwrap a wrapped ConfigError")
	}
	if cfgErr.Code != ErrCodeUnknownProvider {
		t.Errorf("Code = %s", cfgErr.Code)
	}

	if _, ok := IsConfigError(errors.New("plain")); ok {
		t.Error("IsConfigError() should be false for plain errors")
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode() = %q, want empty", got)
	}
	if got := GetErrorCode(wrapped); got != ErrCodeUnknownProvider {
		t.Errorf("GetErrorCode() = %q", got)
	}
}
