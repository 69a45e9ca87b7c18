package handlers

import (
	"fmt"
	"math"
	"slices"
)

// temperatureSteps is the number of slider stops per unit: a 0.05 step.
const temperatureSteps = 20

// GenerationOptions are the model settings chosen on the page.
type GenerationOptions struct {
	Model       string
	Temperature float64
}

// ExtractOptions control one PDF extraction.
type ExtractOptions struct {
	MaxPages     int  // 0 extracts every page
	Replace      bool // Overwrite the report with the extracted text
	PreviewChars int  // Clamped to 200..2000; 0 selects 600
}

// ModelPolicy holds the model choices the page may offer.
type ModelPolicy struct {
	Allowed            []string // Allowed[0] is the default model
	DefaultTemperature float64
}

// DefaultModel returns the preselected model.
func (p ModelPolicy) DefaultModel() string {
	if len(p.Allowed) == 0 {
		return ""
	}
	return p.Allowed[0]
}

// Defaults returns the options the page starts with.
func (p ModelPolicy) Defaults() GenerationOptions {
	return GenerationOptions{Model: p.DefaultModel(), Temperature: SnapTemperature(p.DefaultTemperature)}
}

// Normalize replaces a model outside the allowed list with the default and
// snaps the temperature onto the slider grid. The returned message is
// non-empty when the model was replaced.
func (p ModelPolicy) Normalize(opts GenerationOptions) (GenerationOptions, string) {
	var msg string
	if !slices.Contains(p.Allowed, opts.Model) {
		if opts.Model != "" {
			msg = fmt.Sprintf("선택할 수 없는 모델입니다(%s). 기본 모델 %s(으)로 진행합니다.", opts.Model, p.DefaultModel())
		}
		opts.Model = p.DefaultModel()
	}
	if math.IsNaN(opts.Temperature) {
		opts.Temperature = p.DefaultTemperature
	}
	opts.Temperature = SnapTemperature(opts.Temperature)
	return opts, msg
}

// SnapTemperature clamps t to [0, 1] and rounds it to the nearest 0.05.
func SnapTemperature(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return math.Round(t*temperatureSteps) / temperatureSteps
}
