package validation

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"report_summarizer/core"
)

// StepStatus represents the status of a validation step.
type StepStatus int

const (
	StepPassed StepStatus = iota
	StepFailed
	StepWarning
	StepSkipped
)

// String returns the string representation of a step status.
func (s StepStatus) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ValidationStep is the outcome of a single startup check.
type ValidationStep struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// SuiteResult is the outcome of a complete startup validation. Config and
// Content are set when the corresponding checks passed.
type SuiteResult struct {
	Steps    []ValidationStep
	Config   *core.Config
	Content  *core.Content
	Duration time.Duration
	Success  bool
}

// ValidationSuite runs the startup checklist and prints it with colored
// status markers.
type ValidationSuite struct {
	output       io.Writer
	envPath      string
	showProgress bool
	loadConfig   func() (*core.Config, error)
	loadContent  func(path string) (*core.Content, error)
	listen       func(addr string) (net.Listener, error)
}

// NewValidationSuite creates a suite that reads the process environment.
func NewValidationSuite() *ValidationSuite {
	return &ValidationSuite{
		output:       os.Stdout,
		envPath:      ".env",
		showProgress: true,
		loadConfig:   core.LoadConfig,
		loadContent:  core.LoadContent,
		listen: func(addr string) (net.Listener, error) {
			return net.Listen("tcp", addr)
		},
	}
}

// WithOutput sets the output writer for progress messages.
func (s *ValidationSuite) WithOutput(w io.Writer) *ValidationSuite {
	s.output = w
	return s
}

// WithEnvPath sets a custom path for the .env file.
func (s *ValidationSuite) WithEnvPath(path string) *ValidationSuite {
	s.envPath = path
	return s
}

// WithShowProgress enables or disables progress output.
func (s *ValidationSuite) WithShowProgress(show bool) *ValidationSuite {
	s.showProgress = show
	return s
}

// WithConfigLoader replaces core.LoadConfig, mainly for tests.
func (s *ValidationSuite) WithConfigLoader(fn func() (*core.Config, error)) *ValidationSuite {
	s.loadConfig = fn
	return s
}

// Validate runs every check in order. Checks that depend on a valid
// configuration are skipped when it failed to load.
func (s *ValidationSuite) Validate() SuiteResult {
	start := time.Now()
	result := SuiteResult{}

	if s.showProgress {
		s.printHeader("Report Summarizer Startup Check")
	}

	result.add(s, s.timed("Environment File", s.checkEnvFile))

	var cfg *core.Config
	result.add(s, s.timed("Configuration", func() ValidationStep {
		var err error
		cfg, err = s.loadConfig()
		if err != nil {
			return ValidationStep{Status: StepFailed, Message: "could not load settings", Error: err}
		}
		return ValidationStep{
			Status:  StepPassed,
			Message: fmt.Sprintf("provider %s, key %s", cfg.Provider, maskKey(cfg.APIKey())),
		}
	}))

	if cfg == nil {
		for _, name := range []string{"Allowed Models", "Content File", "Listen Address"} {
			result.add(s, ValidationStep{Name: name, Status: StepSkipped, Message: "Skipped due to configuration errors"})
		}
		return s.finish(result, start)
	}
	result.Config = cfg

	result.add(s, s.timed("Allowed Models", func() ValidationStep {
		return ValidationStep{
			Status:  StepPassed,
			Message: fmt.Sprintf("%s (default), %s", cfg.AllowedModels[0], cfg.AllowedModels[1]),
		}
	}))

	result.add(s, s.timed("Content File", func() ValidationStep {
		content, err := s.loadContent(cfg.ContentFile)
		if err != nil {
			return ValidationStep{Status: StepFailed, Message: cfg.ContentFile, Error: err}
		}
		result.Content = content
		if cfg.ContentFile == "" {
			return ValidationStep{Status: StepPassed, Message: "using built-in sample report"}
		}
		return ValidationStep{
			Status:  StepPassed,
			Message: fmt.Sprintf("%s (%d backup questions)", cfg.ContentFile, len(content.BackupQuestions)),
		}
	}))

	result.add(s, s.timed("Listen Address", func() ValidationStep {
		ln, err := s.listen(cfg.Addr())
		if err != nil {
			return ValidationStep{Status: StepFailed, Message: cfg.Addr(), Error: err}
		}
		ln.Close()
		return ValidationStep{Status: StepPassed, Message: cfg.Addr()}
	}))

	return s.finish(result, start)
}

// checkEnvFile warns rather than fails: every setting can also come from
// the process environment.
func (s *ValidationSuite) checkEnvFile() ValidationStep {
	info, err := os.Stat(s.envPath)
	switch {
	case err == nil && info.IsDir():
		return ValidationStep{Status: StepFailed, Message: s.envPath, Error: fmt.Errorf("path is a directory, not a file: %s", s.envPath)}
	case err == nil:
		return ValidationStep{Status: StepPassed, Message: s.envPath}
	case errors.Is(err, os.ErrNotExist):
		return ValidationStep{Status: StepWarning, Message: core.ErrEnvFileMissing(s.envPath).Error()}
	default:
		return ValidationStep{Status: StepFailed, Message: s.envPath, Error: err}
	}
}

func (s *ValidationSuite) timed(name string, fn func() ValidationStep) ValidationStep {
	start := time.Now()
	step := fn()
	step.Name = name
	step.Latency = time.Since(start)
	return step
}

func (r *SuiteResult) add(s *ValidationSuite, step ValidationStep) {
	r.Steps = append(r.Steps, step)
	if s.showProgress {
		s.printStep(step)
	}
}

func (s *ValidationSuite) finish(result SuiteResult, start time.Time) SuiteResult {
	result.Duration = time.Since(start)
	result.Success = result.FailedSteps() == 0
	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

// FailedSteps counts steps with StepFailed.
func (r SuiteResult) FailedSteps() int {
	n := 0
	for _, step := range r.Steps {
		if step.Status == StepFailed {
			n++
		}
	}
	return n
}

// GetFirstError returns the first error from failed steps, or nil if all passed.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Summary returns a human-readable summary string.
func (r SuiteResult) Summary() string {
	var sb strings.Builder
	passed := 0
	for _, step := range r.Steps {
		if step.Status == StepPassed {
			passed++
		}
	}
	if r.Success {
		sb.WriteString("Startup check passed: ")
	} else {
		sb.WriteString("Startup check failed: ")
	}
	fmt.Fprintf(&sb, "%d/%d checks passed", passed, len(r.Steps))
	if failed := r.FailedSteps(); failed > 0 {
		fmt.Fprintf(&sb, ", %d failed", failed)
	}
	return sb.String()
}

// maskKey keeps the last four characters of a credential.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func (s *ValidationSuite) printHeader(title string) {
	fmt.Fprintln(s.output)
	color.New(color.FgCyan, color.Bold).Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

func (s *ValidationSuite) printStep(step ValidationStep) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon, clr = "✓", color.New(color.FgGreen)
	case StepFailed:
		icon, clr = "✗", color.New(color.FgRed)
	case StepWarning:
		icon, clr = "!", color.New(color.FgYellow)
	default:
		icon, clr = "○", color.New(color.FgHiBlack)
	}

	clr.Fprintf(s.output, "  %s %s", icon, step.Name)
	if step.Message != "" {
		color.New(color.FgHiBlack).Fprintf(s.output, " - %s", step.Message)
	}
	fmt.Fprintln(s.output)

	if step.Status == StepFailed && step.Error != nil {
		color.New(color.FgRed).Fprintf(s.output, "    └─ %s\n", step.Error.Error())
	}
}

func (s *ValidationSuite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)
	if result.Success {
		color.New(color.FgGreen, color.Bold).Fprintln(s.output, "━━━ "+result.Summary()+" ━━━")
	} else {
		color.New(color.FgRed, color.Bold).Fprintln(s.output, "━━━ "+result.Summary()+" ━━━")
	}
	fmt.Fprintln(s.output)
}
