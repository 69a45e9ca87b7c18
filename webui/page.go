package webui

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"report_summarizer/core"
	"report_summarizer/handlers"
	"report_summarizer/pdfprocessor"
	"report_summarizer/webui/static"
)

// Prefs are the page controls that are not session state: model settings
// and PDF options. They travel with every form post and redirect.
type Prefs struct {
	Model        string
	Temperature  float64
	MaxPages     int
	Replace      bool
	PreviewChars int
}

func defaultPrefs(policy handlers.ModelPolicy) Prefs {
	opts := policy.Defaults()
	return Prefs{
		Model:        opts.Model,
		Temperature:  opts.Temperature,
		Replace:      true,
		PreviewChars: pdfprocessor.DefaultPreviewChars,
	}
}

// parsePrefs reads the controls from submitted values. Without the hidden
// "prefs" marker nothing was submitted and defaults are returned.
func parsePrefs(values url.Values, defaults Prefs) Prefs {
	if values.Get("prefs") == "" {
		return defaults
	}
	p := defaults
	if m := values.Get("model"); m != "" {
		p.Model = m
	}
	if t, err := strconv.ParseFloat(values.Get("temperature"), 64); err == nil {
		p.Temperature = handlers.SnapTemperature(t)
	}
	if n, err := strconv.Atoi(values.Get("max_pages")); err == nil {
		p.MaxPages = max(n, 0)
	}
	p.Replace = values.Get("replace") != ""
	if n, err := strconv.Atoi(values.Get("preview")); err == nil {
		p.PreviewChars = pdfprocessor.ClampPreviewChars(n)
	}
	return p
}

// Query encodes p for the redirect after a state change.
func (p Prefs) Query() url.Values {
	v := url.Values{}
	v.Set("prefs", "1")
	v.Set("model", p.Model)
	v.Set("temperature", strconv.FormatFloat(p.Temperature, 'f', 2, 64))
	v.Set("max_pages", strconv.Itoa(p.MaxPages))
	if p.Replace {
		v.Set("replace", "1")
	}
	v.Set("preview", strconv.Itoa(p.PreviewChars))
	return v
}

func (p Prefs) generation() handlers.GenerationOptions {
	return handlers.GenerationOptions{Model: p.Model, Temperature: p.Temperature}
}

func (p Prefs) extraction() handlers.ExtractOptions {
	return handlers.ExtractOptions{MaxPages: p.MaxPages, Replace: p.Replace, PreviewChars: p.PreviewChars}
}

// pageView is the template data.
type pageView struct {
	Prefs       Prefs
	Models      []string
	MaxUploadMB int64

	Report          string
	ReportChars     int
	Questions       []string
	SelectedOrFirst string

	Notices              []handlers.Notice
	Extraction           *handlers.ExtractionView
	Summaries            []handlers.SummaryItem
	PerspectiveSummaries []handlers.SummaryItem
	Perspective          string
}

type tabGroup struct {
	Group string
	Items []handlers.SummaryItem
}

var templateFuncs = template.FuncMap{
	"tabs": func(group string, items []handlers.SummaryItem) tabGroup {
		return tabGroup{Group: group, Items: items}
	},
}

func parsePageTemplate() (*template.Template, error) {
	return template.New("index.html.tmpl").Funcs(templateFuncs).ParseFS(static.Templates(), "index.html.tmpl")
}

func (s *Server) buildView(state core.ReportState, prefs Prefs, out *handlers.Outcome) pageView {
	view := pageView{
		Prefs:       prefs,
		Models:      s.orch.Policy().Allowed,
		MaxUploadMB: s.config.MaxUploadSize >> 20,
		Report:      state.ReportText,
		ReportChars: utf8.RuneCountInString(state.ReportText),
		Questions:   state.Questions,
	}
	if len(state.Questions) > 0 {
		view.SelectedOrFirst = state.Questions[0]
		if state.Selected != "" {
			view.SelectedOrFirst = state.Selected
		}
	}
	if out == nil {
		return view
	}
	view.Notices = out.Notices
	view.Extraction = out.Extraction
	if out.Perspective != "" {
		view.PerspectiveSummaries = out.Summaries
		view.Perspective = out.Perspective
	} else {
		view.Summaries = out.Summaries
	}
	return view
}

// render writes the page with the given status. The template is executed
// into a buffer first so a template error yields a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, view pageView) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, view); err != nil {
		s.logger.Error("page render failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
