// Package api provides the webhook HTTP server and the main wiring logic for
// stroyhub-bot.
//
// It receives Telegram updates on the webhook endpoint, translates them into
// wizard actions, and dispatches them to the wizard engine. It also owns the
// webhook registration lifecycle with Telegram.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Somati-x/stroyhub-bot/internal/catalog"
	"github.com/Somati-x/stroyhub-bot/internal/genai"
	"github.com/Somati-x/stroyhub-bot/internal/session"
	"github.com/Somati-x/stroyhub-bot/internal/telegram"
	"github.com/Somati-x/stroyhub-bot/internal/wizard"
)

// Default server configuration constants.
const (
	// DefaultAddr is the default listen address for the webhook server.
	DefaultAddr = ":8080"
	// DefaultWebhookPath is the path Telegram pushes updates to.
	DefaultWebhookPath = "/webhook"
	// DefaultShutdownTimeout bounds the graceful shutdown of the HTTP server.
	DefaultShutdownTimeout = 10 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string
	WebhookPath string
	PublicURL   string
	SecretToken string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithWebhookPath sets the webhook endpoint path.
func WithWebhookPath(path string) Option {
	return func(o *Opts) {
		o.WebhookPath = path
	}
}

// WithPublicURL sets the externally reachable base URL registered with
// Telegram on startup. When empty, webhook registration is skipped and the
// webhook must be configured out of band.
func WithPublicURL(url string) Option {
	return func(o *Opts) {
		o.PublicURL = url
	}
}

// WithSecretToken sets the secret echoed by Telegram in the
// X-Telegram-Bot-Api-Secret-Token header, used to authenticate webhook calls.
func WithSecretToken(token string) Option {
	return func(o *Opts) {
		o.SecretToken = token
	}
}

// Server handles inbound webhook traffic and dispatches actions to the engine.
type Server struct {
	engine      *wizard.Engine
	tg          *telegram.Client
	opts        Opts
	httpServer  *http.Server
	dispatchCtx context.Context
}

// NewServer builds the webhook server around an already-wired engine.
func NewServer(engine *wizard.Engine, tg *telegram.Client, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.WebhookPath == "" {
		cfg.WebhookPath = DefaultWebhookPath
	}
	return &Server{engine: engine, tg: tg, opts: cfg}
}

// Run assembles all modules from the provided options and serves the webhook
// until SIGINT/SIGTERM. It registers the webhook with Telegram on startup and
// removes it on shutdown.
func Run(tgOpts []telegram.Option, storeOpts []session.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	store, err := session.NewStore(storeOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer store.Close()

	genClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize generation client: %w", err)
	}

	tg, err := telegram.NewClient(tgOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram client: %w", err)
	}

	engine := wizard.NewEngine(catalog.Default(), store, tg, genClient)
	server := NewServer(engine, tg, apiOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}

// Serve starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.dispatchCtx = ctx

	mux := http.NewServeMux()
	mux.HandleFunc(s.opts.WebhookPath, s.webhookHandler)
	mux.HandleFunc("/health", s.healthHandler)

	s.httpServer = &http.Server{Addr: s.opts.Addr, Handler: mux}

	if s.opts.PublicURL != "" {
		webhookURL := strings.TrimSuffix(s.opts.PublicURL, "/") + s.opts.WebhookPath
		if err := s.tg.SetWebhook(ctx, webhookURL, s.opts.SecretToken); err != nil {
			return fmt.Errorf("failed to register webhook: %w", err)
		}
	} else {
		slog.Warn("No public URL configured, skipping webhook registration")
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Webhook server listening", "addr", s.opts.Addr, "path", s.opts.WebhookPath)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("webhook server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down webhook server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if s.opts.PublicURL != "" {
		if err := s.tg.DeleteWebhook(shutdownCtx); err != nil {
			slog.Error("Failed to remove webhook during shutdown", "error", err)
		}
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("webhook server shutdown failed: %w", err)
	}
	return nil
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
