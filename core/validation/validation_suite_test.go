package validation

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"report_summarizer/core"
)

func testConfig() *core.Config {
	return &core.Config{
		Provider:      core.ProviderOpenAI,
		OpenAIAPIKey:  "sk-test-1234",
		AllowedModels: []string{"gpt-4o-mini", "gpt-4o"},
		Host:          "127.0.0.1",
		Port:          0,
	}
}

func TestValidationSuite_AllPassed(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=x\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	result := NewValidationSuite().
		WithOutput(&buf).
		WithEnvPath(envPath).
		WithConfigLoader(func() (*core.Config, error) { return testConfig(), nil }).
		Validate()

	if !result.Success {
		t.Fatalf("expected success, got %s: %v", result.Summary(), result.GetFirstError())
	}
	if result.Config == nil || result.Content == nil {
		t.Fatal("Config and Content should be populated")
	}
	if len(result.Steps) != 5 {
		t.Errorf("len(Steps) = %d, want 5", len(result.Steps))
	}

	out := buf.String()
	if !strings.Contains(out, "****1234") {
		t.Error("output should show the masked key")
	}
	if strings.Contains(out, "sk-test-1234") {
		t.Error("output must not contain the full key")
	}
}

func TestValidationSuite_ConfigFailureSkipsDependentChecks(t *testing.T) {
	var buf bytes.Buffer
	result := NewValidationSuite().
		WithOutput(&buf).
		WithEnvPath(filepath.Join(t.TempDir(), "missing.env")).
		WithConfigLoader(func() (*core.Config, error) { return nil, core.ErrMissingAuth(core.ProviderOpenAI) }).
		Validate()

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Steps[0].Status != StepWarning {
		t.Errorf("missing .env should warn, got %s", result.Steps[0].Status)
	}
	if core.GetErrorCode(result.GetFirstError()) != core.ErrCodeMissingAuth {
		t.Errorf("GetFirstError() = %v", result.GetFirstError())
	}
	for _, step := range result.Steps[2:] {
		if step.Status != StepSkipped {
			t.Errorf("step %s = %s, want skipped", step.Name, step.Status)
		}
	}
	if !strings.Contains(buf.String(), "OPENAI_API_KEY") {
		t.Error("output should include the actionable message")
	}
}

func TestValidationSuite_ListenFailure(t *testing.T) {
	suite := NewValidationSuite().
		WithShowProgress(false).
		WithEnvPath(filepath.Join(t.TempDir(), "missing.env")).
		WithConfigLoader(func() (*core.Config, error) { return testConfig(), nil })
	suite.listen = func(string) (net.Listener, error) {
		return nil, errors.New("address already in use")
	}

	result := suite.Validate()
	if result.Success {
		t.Fatal("expected failure when the port is taken")
	}
	last := result.Steps[len(result.Steps)-1]
	if last.Name != "Listen Address" || last.Status != StepFailed {
		t.Errorf("last step = %+v", last)
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":            "****",
		"abc":         "****",
		"sk-abcdefgh": "****efgh",
	}
	for in, want := range tests {
		if got := maskKey(in); got != want {
			t.Errorf("maskKey(%q) = %q, want %q", in, got, want)
		}
	}
}
