package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report_summarizer/core"
	"report_summarizer/logging"
	"report_summarizer/metrics"
)

func testConfig() *core.Config {
	return &core.Config{
		Provider:            core.ProviderOpenAI,
		OpenAIAPIKey:        "sk-test",
		OpenAIBaseURL:       "http://127.0.0.1:1/v1",
		AllowedModels:       []string{"gpt-4o-mini", "gpt-4o"},
		DefaultTemperature:  0.2,
		QuestionTemperature: 0.3,
		AITimeout:           time.Second,
		Host:                "127.0.0.1",
		Port:                8501,
		MaxUploadSize:       1 << 20,
		SessionTTL:          time.Hour,
		PDFCacheTTL:         time.Minute,
		RateLimitRPS:        1,
		RateLimitBurst:      4,
	}
}

func testContent(t *testing.T) *core.Content {
	t.Helper()
	content, err := core.DefaultContent()
	require.NoError(t, err)
	return content
}

func TestBuildAppServesPage(t *testing.T) {
	a, err := buildApp(context.Background(), testConfig(), testContent(t), logging.NewNopLogger(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="gpt-4o-mini" selected>`)
	assert.Contains(t, body, `<option value="gpt-4o">`)
	assert.Equal(t, 1, a.sessions.Count())
}

func TestBuildAppHealthReportsBreaker(t *testing.T) {
	a, err := buildApp(context.Background(), testConfig(), testContent(t), logging.NewNopLogger(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "closed", snap.Breaker)
	assert.Equal(t, "ok", snap.Status)
}

func TestBuildAppServesMetrics(t *testing.T) {
	a, err := buildApp(context.Background(), testConfig(), testContent(t), logging.NewNopLogger(), nil)
	require.NoError(t, err)

	// An empty-report action is recorded without calling the model.
	form := strings.NewReader("prefs=1&report=")
	r := httptest.NewRequest(http.MethodPost, "/summaries", form)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	a.server.Handler().ServeHTTP(httptest.NewRecorder(), r)
	assert.Len(t, a.history.Recent(10), 2, "update_report and summaries")

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_actions_total")
}

func TestBuildAppSampleReport(t *testing.T) {
	content := testContent(t)
	content.SampleReport = "짧은 샘플"
	a, err := buildApp(context.Background(), testConfig(), content, logging.NewNopLogger(), nil)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/sample", strings.NewReader("prefs=1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, r)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	session, err := a.sessions.Get(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "짧은 샘플", session.ReportText())
}

func TestBuildAppRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = "mystery"
	_, err := buildApp(context.Background(), cfg, testContent(t), logging.NewNopLogger(), nil)
	require.Error(t, err)
	assert.Equal(t, core.ExitCodeConfig, core.ExitCodeForError(err))
}
