package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"

	auth "github.com/Veras-D/auth-lab"
	"github.com/Veras-D/auth-lab/config"
)

type App struct {
	config *config.Config
	bunDB  *bun.DB
	repo   auth.RepositoryManager
	server router.Server[*fiber.App]
	app    *fiber.App
	logger *auth.SlogLogger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := auth.NewSlogLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	if cfg.Debug {
		fmt.Println("======= AUTH LAB CONFIG ======")
		fmt.Println(print.MaybePrettyJSON(cfg.Redacted()))
		fmt.Println("==============================")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// NewApp opens the database, runs migrations and wires every component
func NewApp(ctx context.Context, cfg *config.Config, logger *auth.SlogLogger) (*App, error) {
	db, err := auth.OpenDB(ctx, cfg.DatabaseURL, auth.DBOptions{Debug: cfg.Debug})
	if err != nil {
		return nil, err
	}

	repo := auth.NewRepositoryManager(db, auth.WithRepositoryLogger(logger))
	repo.MustValidate()

	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	sink := auth.NewLoggingActivitySink(logger.With("component", "activity"))

	credentials := auth.NewCredentialStore(repo.Users(),
		auth.WithTransactionManager(repo),
		auth.WithPasswordHasher(auth.NewBcryptHasher(cfg.BcryptCost)),
		auth.WithCredentialsLogger(logger),
	)

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret),
		auth.WithTokenTTL(cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		auth.WithIssuer(cfg.JWTIssuer),
		auth.WithTokenLogger(logger),
	)

	auther := auth.NewAuthenticator(credentials, tokens).
		WithLogger(logger).
		WithActivitySink(sink).
		WithLoginMode(auth.LoginMode(cfg.LoginMode))

	ctrl := auth.NewController(auther, credentials,
		auth.WithControllerLogger(logger),
		auth.WithControllerDebug(cfg.Debug),
		auth.WithControllerActivitySink(sink),
	)

	var app *fiber.App
	server := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		app = auth.NewApp(auth.AppConfig{
			RouteConfig: auth.RouteConfig{
				Prefix:        cfg.APIPrefix,
				AuthRateLimit: cfg.AuthRateLimit,
			},
			CORSOrigins:  cfg.CORSOrigins,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}, ctrl, tokens, logger)
		return app
	})

	return &App{
		config: cfg,
		bunDB:  db,
		repo:   repo,
		server: server,
		app:    app,
		logger: logger,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("server listening", "addr", a.config.Addr(), "login_mode", a.config.LoginMode)
	go a.server.Serve(a.config.Addr())

	<-ctx.Done()

	a.logger.Info("shutting down")
	if err := a.app.ShutdownWithTimeout(a.shutdownTimeout()); err != nil {
		a.logger.Error("server shutdown failed", "error", err)
	}
	a.close()

	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.config.ShutdownTimeout > 0 {
		return a.config.ShutdownTimeout
	}
	return 10 * time.Second
}

func (a *App) close() {
	if err := a.bunDB.Close(); err != nil {
		a.logger.Error("close database failed", "error", err)
	}
}
