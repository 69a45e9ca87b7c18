// Package webui serves the single-page report summarizer: an HTML form
// whose buttons post to one route per orchestrator action.
package webui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"report_summarizer/core"
	"report_summarizer/handlers"
	"report_summarizer/logging"
	"report_summarizer/metrics"
)

// Notices produced by the HTTP layer itself.
const (
	msgThrottled      = "요청이 너무 잦습니다. 잠시 후 다시 시도해 주세요."
	msgUploadTooLarge = "업로드한 파일이 너무 큽니다. 최대 %dMB까지 업로드할 수 있습니다."
	msgBadForm        = "요청을 처리할 수 없습니다: %v"
	msgNoFile         = "PDF 파일을 먼저 업로드해 주세요."
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host          string
	Port          int
	MaxUploadSize int64 // Bytes accepted per request, file included

	ReadTimeout  time.Duration
	WriteTimeout time.Duration // Must cover the slowest summary round
	IdleTimeout  time.Duration

	// TrustedProxies may set the client address via X-Forwarded-For or
	// X-Real-IP. Requests from any other peer are keyed by RemoteAddr.
	TrustedProxies []netip.Prefix

	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:          "localhost",
		Port:          8501,
		MaxUploadSize: 20 << 20,
		ReadTimeout:   60 * time.Second,
		WriteTimeout:  3 * time.Minute,
		IdleTimeout:   120 * time.Second,
		LogSkipPaths:  []string{"/health", "/metrics"},
	}
}

// Dependencies are the collaborators the server needs.
type Dependencies struct {
	Orchestrator *handlers.Orchestrator
	Sessions     *SessionStore
	Limiter      *RateLimiter  // Optional
	History      *metrics.Store // Optional; feeds /health
	Metrics      http.Handler   // Optional; served at /metrics

	// BreakerState reports the model API circuit breaker state for /health.
	BreakerState func() string

	// Guard wraps the model-calling routes, e.g. to drain them on shutdown.
	Guard func(http.Handler) http.Handler

	Logger *logging.Logger
}

// Server is the web UI.
type Server struct {
	config   ServerConfig
	orch     *handlers.Orchestrator
	sessions *SessionStore
	limiter  *RateLimiter
	history  *metrics.Store
	metrics  http.Handler
	breaker  func() string
	guard    func(http.Handler) http.Handler
	clientIP *ClientIPExtractor
	logger   *logging.Logger

	page       *template.Template
	handler    http.Handler
	httpServer *http.Server
}

// NewServer builds the server and its routes.
func NewServer(config ServerConfig, deps Dependencies) (*Server, error) {
	if deps.Orchestrator == nil || deps.Sessions == nil {
		return nil, errors.New("webui: orchestrator and session store are required")
	}
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = DefaultServerConfig().MaxUploadSize
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	guard := deps.Guard
	if guard == nil {
		guard = func(h http.Handler) http.Handler { return h }
	}

	page, err := parsePageTemplate()
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	s := &Server{
		config:   config,
		orch:     deps.Orchestrator,
		sessions: deps.Sessions,
		limiter:  deps.Limiter,
		history:  deps.History,
		metrics:  deps.Metrics,
		breaker:  deps.BreakerState,
		guard:    guard,
		clientIP: NewClientIPExtractor(config.TrustedProxies, logger),
		logger:   logger.Named("webui"),
		page:     page,
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = NewLoggingMiddleware(logger, s.clientIP, config.LogSkipPaths...).Handler(mux)

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(config.Host, fmt.Sprint(config.Port)),
		Handler:           s.handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", NewStaticAssetHandler(DefaultStaticAssetConfig()))
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	mux.HandleFunc("POST /reset", s.action(s.doReset))
	mux.HandleFunc("POST /sample", s.action(s.doSample))
	mux.HandleFunc("POST /report", s.action(s.doUpdate))
	mux.HandleFunc("POST /extract", s.action(s.doExtract))
	mux.HandleFunc("POST /select", s.action(s.doSelect))

	mux.Handle("POST /summaries", s.guard(s.throttled(s.action(s.doSummaries))))
	mux.Handle("POST /questions", s.guard(s.throttled(s.action(s.doQuestions))))
	mux.Handle("POST /perspective", s.guard(s.throttled(s.action(s.doPerspective))))
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("web UI listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web UI")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Resolve(w, r)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	prefs := parsePrefs(r.URL.Query(), defaultPrefs(s.orch.Policy()))
	out := s.sessions.TakeFlash(session.ID)
	s.render(w, http.StatusOK, s.buildView(session.Snapshot(), prefs, out))
}

// actionRequest is a parsed form post.
type actionRequest struct {
	r       *http.Request
	session *core.ReportSession
	prefs   Prefs
}

type actionFunc func(req actionRequest) *handlers.Outcome

// action parses the form, runs fn and either redirects (when the session
// changed) or renders the outcome directly.
func (s *Server) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Resolve(w, r)
		if err != nil {
			s.sessionError(w, err)
			return
		}
		prefs := defaultPrefs(s.orch.Policy())

		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			status, msg := http.StatusBadRequest, fmt.Sprintf(msgBadForm, err)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status, msg = http.StatusRequestEntityTooLarge, fmt.Sprintf(msgUploadTooLarge, s.config.MaxUploadSize>>20)
			}
			out := &handlers.Outcome{Notices: []handlers.Notice{{Level: handlers.LevelError, Message: msg}}}
			s.render(w, status, s.buildView(session.Snapshot(), prefs, out))
			return
		}
		prefs = parsePrefs(r.Form, prefs)

		out := fn(actionRequest{r: r, session: session, prefs: prefs})
		if out.Rerender {
			s.sessions.SetFlash(session.ID, out)
			http.Redirect(w, r, "/?"+prefs.Query().Encode(), http.StatusSeeOther)
			return
		}
		s.render(w, http.StatusOK, s.buildView(session.Snapshot(), prefs, out))
	}
}

// throttled rejects model-calling posts beyond the per-client rate with a
// warning page and status 429.
func (s *Server) throttled(next http.HandlerFunc) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter.Allow(s.clientIP.ClientIP(r)) {
			next(w, r)
			return
		}
		session, err := s.sessions.Resolve(w, r)
		if err != nil {
			s.sessionError(w, err)
			return
		}
		s.logger.Warn("request throttled",
			zap.String("path", r.URL.Path),
			zap.String("client", s.clientIP.ClientIP(r)),
			zap.String("request_id", RequestID(r.Context())),
		)
		out := &handlers.Outcome{Notices: []handlers.Notice{{Level: handlers.LevelWarning, Message: msgThrottled}}}
		w.Header().Set("Retry-After", "1")
		s.render(w, http.StatusTooManyRequests, s.buildView(session.Snapshot(), defaultPrefs(s.orch.Policy()), out))
	})
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	s.logger.Error("session unavailable", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// applyReport stores the submitted textarea, when the form carried one,
// so every button acts on what the user currently sees.
func (s *Server) applyReport(req actionRequest) *handlers.Outcome {
	if _, ok := req.r.Form["report"]; !ok {
		return &handlers.Outcome{}
	}
	return s.orch.UpdateReport(req.session, req.r.FormValue("report"))
}

// merge appends the notices of later to first and ORs Rerender.
func merge(first, later *handlers.Outcome) *handlers.Outcome {
	later.Notices = append(first.Notices, later.Notices...)
	later.Rerender = later.Rerender || first.Rerender
	return later
}

func (s *Server) doReset(req actionRequest) *handlers.Outcome {
	return s.orch.Reset(req.session)
}

func (s *Server) doSample(req actionRequest) *handlers.Outcome {
	first := s.applyReport(req)
	out := merge(first, s.orch.LoadSample(req.session))
	// Nothing changed: still redraw so the form reflects the session.
	out.Rerender = true
	return out
}

func (s *Server) doUpdate(req actionRequest) *handlers.Outcome {
	out := s.applyReport(req)
	out.Rerender = true
	return out
}

func (s *Server) doExtract(req actionRequest) *handlers.Outcome {
	first := s.applyReport(req)
	file, _, err := req.r.FormFile("pdf")
	if err != nil {
		out := &handlers.Outcome{}
		out.Notices = []handlers.Notice{{Level: handlers.LevelWarning, Message: msgNoFile}}
		return merge(first, out)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		out := &handlers.Outcome{Notices: []handlers.Notice{{Level: handlers.LevelError, Message: fmt.Sprintf(msgBadForm, err)}}}
		return merge(first, out)
	}
	return merge(first, s.orch.ExtractAndReplace(req.session, data, req.prefs.extraction()))
}

func (s *Server) doSelect(req actionRequest) *handlers.Outcome {
	first := s.applyReport(req)
	return merge(first, s.orch.SelectQuestion(req.session, req.r.FormValue("question")))
}

func (s *Server) doSummaries(req actionRequest) *handlers.Outcome {
	first := s.applyReport(req)
	first.Rerender = false
	return merge(first, s.orch.GenerateSummaries(req.r.Context(), req.session, req.prefs.generation()))
}

func (s *Server) doQuestions(req actionRequest) *handlers.Outcome {
	first := s.applyReport(req)
	first.Rerender = false
	return merge(first, s.orch.GenerateQuestions(req.r.Context(), req.session, req.prefs.generation()))
}

func (s *Server) doPerspective(req actionRequest) *handlers.Outcome {
	first := s.applyReport(req)
	first.Rerender = false
	if q := req.r.FormValue("question"); q != "" {
		if sel := s.orch.SelectQuestion(req.session, q); len(sel.Notices) > 0 {
			return merge(first, sel)
		}
	}
	out := merge(first, s.orch.GeneratePerspectiveSummary(req.r.Context(), req.session, req.prefs.generation()))
	out.Rerender = false
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := metrics.Snapshot{Status: "ok", Actions: map[string]*metrics.ActionStats{}}
	if s.history != nil {
		snap = s.history.Snapshot(10)
		snap.Uptime = FormatDuration(s.history.Uptime())
	}
	if s.breaker != nil {
		snap.Breaker = s.breaker()
		if snap.Breaker == "open" {
			snap.Status = "degraded"
		}
	}
	snap.Sessions = s.sessions.Count()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Warn("health encode failed", zap.Error(err))
	}
}
