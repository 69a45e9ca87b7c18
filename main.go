package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"report_summarizer/core"
	"report_summarizer/core/validation"
	"report_summarizer/handlers"
	"report_summarizer/llm"
	"report_summarizer/logging"
	"report_summarizer/metrics"
	"report_summarizer/pdfprocessor"
	"report_summarizer/shutdown"
	"report_summarizer/summarizer"
	"report_summarizer/webui"
)

// historySize is the number of recent actions kept for /health.
const historySize = 50

func main() {
	if handled, code := handleServiceCommand(os.Args[1:], os.Stdout); handled {
		os.Exit(code)
	}
	if handled, code := runService(); handled {
		os.Exit(code)
	}
	os.Exit(run(nil))
}

// run serves the web UI until a shutdown signal arrives or stop is closed,
// and returns the process exit code.
func run(stop <-chan struct{}) int {
	// Settings may also come from the process environment.
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not loaded: %v\n", err)
	}

	result := validation.NewValidationSuite().Validate()
	if !result.Success {
		return core.ExitCodeForError(result.GetFirstError())
	}
	cfg, content := result.Config, result.Content

	logger, err := logging.NewLogger(cfg.DevMode, cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	logger.Info("configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Strings("models", cfg.AllowedModels),
		zap.Float64("default_temperature", cfg.DefaultTemperature),
		zap.Duration("ai_timeout", cfg.AITimeout),
		zap.String("addr", cfg.Addr()),
		zap.Int64("max_upload_bytes", cfg.MaxUploadSize),
		zap.Float64("rate_limit_rps", cfg.RateLimitRPS),
		zap.Int("trusted_proxies", len(cfg.TrustedProxies)),
		zap.Bool("dev_mode", cfg.DevMode),
	)

	mgr := shutdown.NewManager(logger.Zap())
	app, err := buildApp(mgr.Context(), cfg, content, logger, mgr.Guard)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return core.ExitCodeForError(err)
	}

	mgr.OnShutdown("http-server", shutdown.PriorityServer, app.server.Shutdown)
	mgr.OnShutdown("caches", shutdown.PriorityCaches, func(context.Context) error {
		app.sessions.Flush()
		return nil
	})
	mgr.OnShutdown("logs", shutdown.PriorityLogs, func(context.Context) error {
		// stdout cannot be synced on some platforms; that is not a failure.
		_ = logger.Sync()
		return nil
	})
	mgr.Listen()

	serveErr := make(chan error, 1)
	go func() { serveErr <- app.server.ListenAndServe() }()
	logger.Info("report summarizer ready", zap.String("url", "http://"+cfg.Addr()))

	exitCode := core.ExitCodeSuccess
	select {
	case <-mgr.Context().Done():
		exitCode = core.ExitCodeForSignal(mgr.Signal())
	case <-stop:
		mgr.Stop()
	case err := <-serveErr:
		if err != nil {
			logger.Error("web UI stopped", zap.Error(err))
			exitCode = core.ExitCodeError
		}
		mgr.Stop()
	}

	if err := mgr.Shutdown(); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
		if exitCode == core.ExitCodeSuccess {
			exitCode = core.ExitCodeError
		}
	}
	logger.Info("goodbye", zap.Int("exit_code", exitCode), zap.String("reason", core.ExitCodeName(exitCode)))
	return exitCode
}

// app is the wired application.
type app struct {
	server   *webui.Server
	sessions *webui.SessionStore
	history  *metrics.Store
}

// buildApp wires the model boundary, the summarizing components, the
// orchestrator and the web UI. guard wraps the model-calling routes.
func buildApp(ctx context.Context, cfg *core.Config, content *core.Content, logger *logging.Logger,
	guard func(http.Handler) http.Handler) (*app, error) {
	if content == nil {
		return nil, errors.New("content is required")
	}

	gen, err := handlers.NewAIClientFactory().CreateGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create model client: %w", err)
	}

	recorder := metrics.NewPrometheusRecorder()
	history := metrics.NewStore(historySize, time.Now())

	orch := handlers.NewOrchestrator(handlers.OrchestratorConfig{
		Summarizer:  summarizer.NewSummarizer(gen, recorder, logger),
		Recommender: summarizer.NewRecommender(gen, content.BackupQuestions, cfg.QuestionTemperature, recorder, logger),
		Extractor:   pdfprocessor.NewCachedExtractor(pdfprocessor.NewExtractor(), cfg.PDFCacheTTL, recorder, logger),
		Policy: handlers.ModelPolicy{
			Allowed:            cfg.AllowedModels,
			DefaultTemperature: cfg.DefaultTemperature,
		},
		SampleReport: content.SampleReport,
		Recorder:     recorder,
		History:      history,
		Logger:       logger,
	})

	sessions := webui.NewSessionStore(cfg.SessionTTL)

	serverCfg := webui.DefaultServerConfig()
	serverCfg.Host = cfg.Host
	serverCfg.Port = cfg.Port
	serverCfg.MaxUploadSize = cfg.MaxUploadSize
	serverCfg.TrustedProxies = cfg.TrustedProxies
	// A summary round runs its lengths concurrently, each bounded by AITimeout.
	serverCfg.WriteTimeout = max(serverCfg.WriteTimeout, cfg.AITimeout+30*time.Second)

	deps := webui.Dependencies{
		Orchestrator: orch,
		Sessions:     sessions,
		Limiter:      webui.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		History:      history,
		Metrics:      recorder.Handler(),
		Guard:        guard,
		Logger:       logger,
	}
	if breaker, ok := gen.(*llm.BreakerGenerator); ok {
		deps.BreakerState = func() string { return breaker.State().String() }
	}

	server, err := webui.NewServer(serverCfg, deps)
	if err != nil {
		return nil, err
	}
	return &app{server: server, sessions: sessions, history: history}, nil
}
