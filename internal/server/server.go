package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sundayezeilo/linkshelf/internal/config"
	"github.com/sundayezeilo/linkshelf/internal/errx"
	"github.com/sundayezeilo/linkshelf/internal/httpx"
	"github.com/sundayezeilo/linkshelf/internal/identity"
	"github.com/sundayezeilo/linkshelf/internal/links"
)

const readinessTimeout = 2 * time.Second

// Server represents the HTTP server with all dependencies.
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	links    *links.Handler
	verifier identity.Verifier
	store    links.Pinger
	server   *http.Server
}

// New creates a new Server instance. store backs the readiness probe.
func New(cfg *config.Config, logger *slog.Logger, handler *links.Handler, verifier identity.Verifier, store links.Pinger) *Server {
	return &Server{
		config:   cfg,
		logger:   logger,
		links:    handler,
		verifier: verifier,
		store:    store,
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.applyMiddleware(s.setupRoutes())
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting http server",
			"addr", s.server.Addr,
			"env", s.config.App.Environment,
			"storage", s.config.App.Storage,
			"auth_provider", s.config.Auth.Provider,
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.shutdownWithTimeout()

	case <-ctx.Done():
		s.logger.Info("context cancelled, stopping server")
		return s.shutdownWithTimeout()
	}
}

func (s *Server) shutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /x/health", s.healthCheckHandler)
	mux.HandleFunc("GET /x/ready", s.readinessHandler)

	mux.HandleFunc("POST /links", s.links.CreateLink)
	mux.HandleFunc("GET /links", s.links.ListLinks)
	mux.HandleFunc("PUT /links", s.links.UpdateCategory)
	mux.HandleFunc("DELETE /links", s.links.DeleteLink)
	mux.HandleFunc("GET /categories", s.links.Categories)

	return mux
}

// applyMiddleware wraps the handler with middleware in the correct order.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	return httpx.Chain(
		httpx.Recovery(s.logger), // Outermost: catch panics
		httpx.RequestID,
		httpx.Logger(s.logger),
		httpx.CORS(s.config.Server.AllowedOrigins),
		identity.Middleware(s.verifier, s.config.Auth.SessionCookie, s.logger),
	)(handler)
}

// healthCheckHandler handles health check requests.
func (s *Server) healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.config.Observability.ServiceName,
		"version": s.config.Observability.ServiceVersion,
	})
}

// readinessHandler reports whether the link store answers.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		kind := errx.KindOf(err)
		s.logger.WarnContext(ctx, "readiness check failed",
			"request_id", httpx.GetRequestID(ctx),
			"error", err.Error(),
			"error_kind", kind,
		)
		httpx.WriteError(w, httpx.ErrorKindToStatus(kind), httpx.ErrorKindToCode(kind), "store unavailable", nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("shutdown timeout exceeded, forcing close")
			return s.server.Close()
		}
		return err
	}

	return nil
}
