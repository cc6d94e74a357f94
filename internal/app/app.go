package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sundayezeilo/linkshelf/internal/config"
	db "github.com/sundayezeilo/linkshelf/internal/db/sqlc"
	"github.com/sundayezeilo/linkshelf/internal/identity"
	"github.com/sundayezeilo/linkshelf/internal/idgen"
	"github.com/sundayezeilo/linkshelf/internal/links"
	"github.com/sundayezeilo/linkshelf/internal/postgres"
	"github.com/sundayezeilo/linkshelf/internal/server"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DBPool  *pgxpool.Pool // nil with the memory storage driver
	Server  *server.Server
	Handler *links.Handler
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := NewLogger(os.Stdout, cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"version", cfg.Observability.ServiceVersion,
	)

	repo, pool, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	verifier, err := setupVerifier(ctx, cfg.Auth)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("failed to set up identity provider: %w", err)
	}

	svc := links.NewService(repo)
	handler := links.NewHandler(links.HandlerConfig{
		Service:    svc,
		Logger:     logger,
		Categories: cfg.App.Categories,
	})

	srv := server.New(cfg, logger, handler, verifier, repo)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"storage", cfg.App.Storage,
		"auth_provider", cfg.Auth.Provider,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DBPool:  pool,
		Server:  srv,
		Handler: handler,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	return nil
}

// LoadEnv loads .env file only in non-production environments.
func LoadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// NewLogger creates a JSON logger writing to w at the given level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

// OpenStorage picks the repository for the configured driver. The pool is
// returned so the caller can close it; it is nil for memory storage.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (links.Repository, *pgxpool.Pool, error) {
	if cfg.App.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return links.NewMemoryRepository(), nil, nil
	}

	dsn := cfg.Database.ConnectionString()

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, dsn, logger); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := postgres.Connect(ctx, dsn, postgres.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := links.NewRepository(db.New(pool), &links.RepositoryConfig{
		IDGenerator: idgen.New(idgen.V7),
		Pinger:      pool,
	})
	return repo, pool, nil
}

func setupVerifier(ctx context.Context, cfg config.AuthConfig) (identity.Verifier, error) {
	switch cfg.Provider {
	case config.AuthProviderFirebase:
		return identity.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile)
	default:
		return identity.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer), nil
	}
}
