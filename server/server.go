// Package server provides the web frontend for the activity signup board.
//
// The server renders the board on the server side and talks to the
// activities API on behalf of the browser. Each browser session gets its
// own board, so the outcome of a signup or unregister is shown on the page
// the user is redirected to.
//
// # Endpoints
//
//   - GET / - The board: activities, participants, signup form and banner
//   - POST /signup - Signs up an email for an activity
//   - GET /unregister - Asks to confirm removing a participant
//   - POST /unregister - Removes a participant once confirmed
//   - GET /health - Simple health check, returns "ok"
//   - GET /status - Build, uptime and session information as JSON
//   - GET /metrics - Prometheus metrics
//   - GET /config - Returns current configuration as YAML
//   - POST /reload - Reloads configuration from disk
//   - GET /static/ - Stylesheet
//
// The form endpoints and the pages carrying forms are protected by CSRF
// tokens, and the POST form endpoints are rate limited per client address.
//
// # Architecture
//
// Config-derived dependencies (the config itself and the activities API
// client) are swapped atomically on reload. Boards hold a client that
// always forwards to the latest API client, so a reload applies to
// existing sessions on their next request. Listener, session, CSRF, rate
// limit and metrics settings are read once at startup.
//
// # Example
//
//	srv, err := server.New("/etc/signup/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/csrf"
	"github.com/nomis52/signup/activity"
	"github.com/nomis52/signup/banner"
	"github.com/nomis52/signup/board"
	"github.com/nomis52/signup/buildinfo"
	"github.com/nomis52/signup/clients/activityclient"
	"github.com/nomis52/signup/config"
	"github.com/nomis52/signup/logging"
	"github.com/nomis52/signup/metrics"
	"github.com/nomis52/signup/render"
	"github.com/nomis52/signup/server/cron"
	"github.com/nomis52/signup/server/handlers"
	"github.com/nomis52/signup/server/ratelimit"
	"github.com/nomis52/signup/server/session"
	"github.com/nomis52/signup/server/types"
	"golang.org/x/crypto/hkdf"
)

const (
	defaultReadTimeout       = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultShutdownTimeout   = 5 * time.Second

	csrfKeyLen  = 32
	csrfKeyInfo = "signup csrf token key"
)

// serverDeps holds config-derived dependencies that are swapped atomically on reload.
type serverDeps struct {
	config *config.Config
	client *activityclient.Client
}

// Server is the HTTP server for the signup web frontend.
type Server struct {
	configPath string
	addr       string
	watch      bool
	logger     *logging.Logger
	startedAt  time.Time
	hostname   string
	deps       atomic.Pointer[serverDeps]

	registry     *metrics.ScrapeRegistry
	boardMetrics *metrics.BoardMetrics
	pages        *render.HTML
	csrfKey      []byte
	certLoader   *CertLoader
	cronTrigger  *cron.CronTrigger
	refresher    *board.Board
	sessions     *session.Store
	limiter      *ratelimit.Limiter
	httpServer   *http.Server
}

// Option configures a Server.
type Option func(*Server) error

// WithListenAddr overrides the listen address from the config.
func WithListenAddr(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithConfigWatch enables or disables reloading the config when the file
// changes. It is enabled by default.
func WithConfigWatch(enabled bool) Option {
	return func(s *Server) error {
		s.watch = enabled
		return nil
	}
}

// New creates a new Server with the given config path and options.
// It loads the configuration and initializes all dependencies.
func New(configPath string, opts ...Option) (*Server, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := &Server{
		configPath: configPath,
		watch:      true,
		logger:     logger,
		startedAt:  time.Now(),
	}
	if s.hostname, err = os.Hostname(); err != nil {
		s.hostname = "unknown"
	}

	if _, err := s.applyConfig(cfg); err != nil {
		return nil, err
	}

	if s.registry, err = metrics.NewScrapeRegistry(); err != nil {
		return nil, err
	}
	if s.boardMetrics, err = metrics.NewBoardMetrics(s.registry); err != nil {
		return nil, err
	}
	if s.pages, err = render.NewHTML(); err != nil {
		return nil, err
	}
	if s.csrfKey, err = deriveCSRFKey(cfg.CSRF.Secret); err != nil {
		return nil, err
	}
	if cfg.CSRF.Secret == "" {
		logger.Warn("no csrf secret configured, form tokens will not survive a restart")
	}

	if cfg.Listener.TLSEnabled() {
		if s.certLoader, err = NewCertLoader(cfg.Listener.TLSCert, cfg.Listener.TLSKey, logger.Logger); err != nil {
			return nil, err
		}
	}

	if cfg.Metrics.RefreshSchedule != "" {
		s.refresher = board.New(s.apiClient(),
			board.WithLogger(logger.Logger),
			board.WithMetrics(s.boardMetrics),
		)
		s.cronTrigger, err = cron.NewCronTrigger(cfg.Metrics.RefreshSchedule, cron.RunFunc(s.refresher.Refresh), logger.Logger)
		if err != nil {
			return nil, fmt.Errorf("creating cron trigger: %w", err)
		}
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if !cfg.RateLimit.Disabled {
		s.limiter = ratelimit.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst)
	}
	s.sessions = session.New(s.newBoard,
		session.WithIdleTimeout(cfg.Session.IdleTimeout),
		session.WithSecureCookie(cfg.Session.SecureCookies),
		session.WithLogger(logger.Logger),
	)

	return s, nil
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger.Logger
}

// Reload reads the config from disk and rebuilds server dependencies.
// On error the previous config stays in effect.
func (s *Server) Reload() (types.ReloadResult, error) {
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		return types.ReloadResult{}, err
	}
	changed, err := s.applyConfig(cfg)
	if err != nil {
		return types.ReloadResult{}, err
	}
	return types.ReloadResult{APIBaseURL: cfg.API.BaseURL, RestartRequired: changed}, nil
}

// applyConfig swaps in cfg and returns the changed sections that only take
// effect after a restart.
func (s *Server) applyConfig(cfg *config.Config) ([]string, error) {
	client, err := activityclient.New(cfg.API.BaseURL,
		activityclient.WithTimeout(cfg.API.Timeout),
		activityclient.WithLogger(s.logger.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating activities client: %w", err)
	}

	var changed []string
	if old := s.deps.Load(); old != nil {
		if err := s.logger.SetLevel(cfg.Logging.Level); err != nil {
			return nil, err
		}
		changed = restartRequired(old.config, cfg)
		for _, section := range changed {
			s.logger.Warn("config change requires a restart to take effect", "section", section)
		}
	}

	s.deps.Store(&serverDeps{
		config: cfg,
		client: client,
	})

	s.logger.Info("configuration loaded", "config_path", s.configPath, "api", cfg.API.BaseURL)
	return changed, nil
}

// restartRequired lists the config sections that differ between old and
// cfg but are only read at startup.
func restartRequired(old, cfg *config.Config) []string {
	var changed []string
	if old.Listener != cfg.Listener {
		changed = append(changed, "listener")
	}
	if old.Session != cfg.Session {
		changed = append(changed, "session")
	}
	if old.CSRF != cfg.CSRF {
		changed = append(changed, "csrf")
	}
	if old.RateLimit != cfg.RateLimit {
		changed = append(changed, "rate_limit")
	}
	if old.Metrics != cfg.Metrics {
		changed = append(changed, "metrics")
	}
	if old.Logging.Format != cfg.Logging.Format || old.Logging.Output != cfg.Logging.Output || old.Logging.AddSource != cfg.Logging.AddSource {
		changed = append(changed, "logging")
	}
	return changed
}

// Config returns the current configuration.
func (s *Server) Config() *config.Config {
	return s.deps.Load().config
}

// Status reports build, uptime and session information.
func (s *Server) Status() types.Status {
	status := types.Status{
		Server: types.ServerProperties{
			Build:     buildinfo.Get(),
			StartedAt: s.startedAt,
			Hostname:  s.hostname,
		},
		APIBaseURL: s.Config().API.BaseURL,
		Sessions:   s.sessions.Len(),
	}
	if s.cronTrigger != nil {
		next := s.cronTrigger.NextRun()
		status.NextRefresh = &next
	}
	return status
}

// apiClient returns a board.Client that forwards to the latest API client.
func (s *Server) apiClient() board.Client {
	return currentClient{deps: &s.deps}
}

// newBoard creates the board for a new session.
func (s *Server) newBoard() *board.Board {
	return board.New(s.apiClient(),
		board.WithLogger(s.logger.Logger),
		board.WithMetrics(s.boardMetrics),
		board.WithBanner(banner.New(banner.WithHideAfter(s.Config().Banner.HideAfter))),
	)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	logger := s.logger.Logger
	protect := s.csrfMiddleware()
	limit := ratelimit.Middleware(s.limiter, logger)

	mux := http.NewServeMux()

	// Board pages and forms
	mux.Handle("GET /{$}", protect(handlers.NewIndexHandler(logger, s.sessions, s.pages, s, csrf.TemplateField)))
	mux.Handle("POST /signup", limit(protect(handlers.NewSignupHandler(logger, s.sessions))))
	mux.Handle("GET /unregister", protect(handlers.NewUnregisterConfirmHandler(logger, s.pages, s, csrf.TemplateField)))
	mux.Handle("POST /unregister", limit(protect(handlers.NewUnregisterHandler(logger, s.sessions))))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(render.Static())))

	// Operations
	mux.HandleFunc("GET /health", handlers.HandleHealth)
	mux.Handle("GET /status", handlers.NewStatusHandler(s))
	mux.Handle("GET /metrics", s.registry.Handler())
	mux.Handle("GET /config", handlers.NewConfigHandler(logger, s))
	mux.Handle("POST /reload", handlers.NewReloadHandler(logger, s))

	return mux
}

// csrfMiddleware protects form posts with gorilla/csrf. Requests that
// arrive over plain HTTP are marked as such unless the cookies are
// configured Secure, so the referer checks meant for HTTPS do not apply.
func (s *Server) csrfMiddleware() func(http.Handler) http.Handler {
	secure := s.Config().Session.SecureCookies
	protect := csrf.Protect(s.csrfKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailure)),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil && !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func (s *Server) csrfFailure(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("rejected form post", "path", r.URL.Path, "ip", ratelimit.ClientIP(r), "reason", csrf.FailureReason(r))
	http.Error(w, "Forbidden: the form has expired. Reload the page and try again.", http.StatusForbidden)
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done.
// If a refresh schedule is configured, the cron trigger is started too.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	cfg := s.Config()
	addr := s.addr
	if addr == "" {
		addr = cfg.Listener.Addr
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       defaultReadTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
	}
	if s.certLoader != nil {
		s.httpServer.TLSConfig = &tls.Config{
			GetCertificate: s.certLoader.GetCertificate,
			MinVersion:     tls.VersionTLS12,
		}
		if err := s.certLoader.Watch(ctx); err != nil {
			s.logger.Warn("certificate changes will not be picked up", "error", err)
		}
	}

	if s.watch {
		if err := s.watchConfig(ctx); err != nil {
			s.logger.Warn("config changes will not be picked up", "error", err)
		}
	}

	if s.cronTrigger != nil {
		s.logger.Info("starting cron trigger",
			"next_run", s.cronTrigger.NextRun(),
		)
		s.cronTrigger.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", addr,
			"tls", s.certLoader != nil,
			"config_path", s.configPath,
			"version", buildinfo.Get().Version,
		)
		var err error
		if s.certLoader != nil {
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// watchConfig reloads the config when its file changes, until ctx is done.
func (s *Server) watchConfig(ctx context.Context) error {
	return watchFiles(ctx, s.logger.Logger, []string{s.configPath}, watchDebounce, func() {
		s.logger.Info("config file changed, reloading")
		if _, err := s.Reload(); err != nil {
			s.logger.Error("failed to reload configuration", "error", err)
		}
	})
}

// Close stops the background goroutines and releases every session.
func (s *Server) Close() {
	s.sessions.Close()
	if s.limiter != nil {
		s.limiter.Close()
	}
	if s.refresher != nil {
		s.refresher.Close()
	}
}

// deriveCSRFKey stretches secret into a token key. An empty secret yields
// a random key.
func deriveCSRFKey(secret string) ([]byte, error) {
	key := make([]byte, csrfKeyLen)
	if secret == "" {
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate csrf key: %w", err)
		}
		return key, nil
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(csrfKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive csrf key: %w", err)
	}
	return key, nil
}

// currentClient forwards to the API client of the latest config.
type currentClient struct {
	deps *atomic.Pointer[serverDeps]
}

func (c currentClient) List(ctx context.Context) (activity.Catalog, error) {
	return c.deps.Load().client.List(ctx)
}

func (c currentClient) Signup(ctx context.Context, name, email string) (string, error) {
	return c.deps.Load().client.Signup(ctx, name, email)
}

func (c currentClient) Unregister(ctx context.Context, name, email string) (string, error) {
	return c.deps.Load().client.Unregister(ctx, name, email)
}
