package core

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/content.yaml
var defaultContentYAML []byte

// Content is the static text the UI offers besides what the user types:
// the sample report and the backup review angles used to top up the
// recommender's list.
type Content struct {
	SampleReport    string   `yaml:"sample_report"`
	BackupQuestions []string `yaml:"backup_questions"`
}

// DefaultContent returns the built-in sample report and backup questions.
func DefaultContent() (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(defaultContentYAML, &c); err != nil {
		return nil, fmt.Errorf("failed to parse built-in content: %w", err)
	}
	return &c, nil
}

// LoadContent returns the built-in content overlaid with the YAML file at
// path. Keys missing from the file keep their built-in values. An empty path
// returns the defaults.
func LoadContent(path string) (*Content, error) {
	c, err := DefaultContent()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrInvalidContent(path, err.Error())
	}

	var override Content
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, ErrInvalidContent(path, err.Error())
	}

	if strings.TrimSpace(override.SampleReport) != "" {
		c.SampleReport = override.SampleReport
	}
	if override.BackupQuestions != nil {
		c.BackupQuestions = cleanQuestions(override.BackupQuestions)
	}
	return c, nil
}

// cleanQuestions trims entries and drops blanks and duplicates.
func cleanQuestions(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, q := range in {
		q = strings.TrimSpace(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
