package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/rahul4469/toplane-guide/internal/config"
	"github.com/rahul4469/toplane-guide/internal/controllers"
	"github.com/rahul4469/toplane-guide/internal/logging"
	"github.com/rahul4469/toplane-guide/internal/metrics"
	"github.com/rahul4469/toplane-guide/internal/middleware"
	"github.com/rahul4469/toplane-guide/internal/models"
	"github.com/rahul4469/toplane-guide/internal/services"
	"github.com/rahul4469/toplane-guide/internal/views"
	"github.com/rahul4469/toplane-guide/templates"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Setup Services ---------------
	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.New()
	}

	analyzer := services.NewPatchAnalyzer(services.PatchAnalyzerConfig{
		BaseURL:        cfg.Upstream.BaseURL,
		AnalyzeTimeout: cfg.Upstream.AnalyzeTimeout,
		HealthTimeout:  cfg.Upstream.HealthTimeout,
	}, logger, recorder)

	displays := models.NewDisplayService(cfg.Display.MaxVisitors, recorder)

	// Setup Controllers ---------------
	guideTpl, err := views.ParseFS(templates.FS, logger, "pages/guide.gohtml")
	if err != nil {
		return err
	}

	guideCtrl := controllers.NewGuideController(
		displays,
		analyzer,
		controllers.GuideTemplates{Guide: guideTpl},
		controllers.GuideOptions{
			AutoLoad:       cfg.Display.AutoLoad,
			DefaultVersion: cfg.Display.DefaultVersion,
			RefreshSeconds: cfg.Display.RefreshSeconds,
			IsDevelopment:  cfg.IsDevelopment(),
		},
		logger,
	)
	defer guideCtrl.Close()

	healthCtrl := controllers.NewHealthController(analyzer, logger)

	r := routes(cfg, logger, recorder, guideCtrl, healthCtrl)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the Server
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("environment", cfg.Server.Environment),
			zap.String("upstream", cfg.Upstream.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func routes(
	cfg *config.Config,
	logger *zap.Logger,
	recorder *metrics.Recorder,
	guideCtrl *controllers.GuideController,
	healthCtrl *controllers.HealthController,
) http.Handler {
	// CSRF middleware
	csrfMw := csrf.Protect(
		[]byte(cfg.Security.CSRFSecret),
		csrf.Secure(cfg.Security.SecureCookies),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(cfg.Security.TrustedOriginList()),
	)
	vmw := middleware.NewVisitorMiddleware(cfg.Security.VisitorCookieName, cfg.Security.SecureCookies)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observe(logger, recorder))
	r.Use(chimw.Recoverer)

	// ---- Machine Routes ----
	r.Get("/healthz", controllers.HealthCheck)
	r.Get("/health/upstream", healthCtrl.GetUpstreamHealth)
	if recorder != nil {
		r.Method(http.MethodGet, "/metrics", recorder.Handler())
	}

	// ---- Page Routes ----
	r.Group(func(r chi.Router) {
		r.Use(middleware.PlaintextHTTP(!cfg.Security.SecureCookies))
		r.Use(csrfMw)
		r.Use(vmw.SetVisitor)

		r.Get("/", guideCtrl.GetGuide)
		r.Post("/analyze", guideCtrl.PostAnalyze)
		r.Get("/analyze", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		})
	})

	return r
}
