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

	"github.com/anonto42/webapps/backend/internal/router"
	"github.com/anonto42/webapps/backend/pkg/ai"
	"github.com/anonto42/webapps/backend/pkg/cache"
	"github.com/anonto42/webapps/backend/pkg/config"
	"github.com/anonto42/webapps/backend/pkg/firebase"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/mailer"
	"github.com/anonto42/webapps/backend/pkg/payments"
	"github.com/anonto42/webapps/backend/pkg/token"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app string) *cobra.Command {
	return &cobra.Command{
		Use:   app,
		Short: "Start the " + app + " API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(app)
		},
	}
}

// bootstrap loads and validates configuration and builds the logger.
func bootstrap(app string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(app)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := logger.New(logger.Options{Mode: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log.With("app", app), nil
}

// openStores connects the database the app runs on.
func openStores(cfg *config.Config, log *logger.Logger) (*config.DB, router.Deps, error) {
	db := config.NewDB(log)
	deps := router.Deps{Config: cfg, Log: log}

	switch cfg.App {
	case "papers":
		gdb, err := db.InitSQL(cfg.SQLDSN)
		if err != nil {
			return db, deps, err
		}
		deps.SQL = gdb
	default:
		client, err := db.InitMongo(cfg.MongoURI)
		if err != nil {
			return db, deps, err
		}
		deps.Mongo = client.Database(cfg.MongoDB)
	}
	return db, deps, nil
}

func runServer(app string) error {
	cfg, log, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, deps, err := openStores(cfg, log)
	defer db.CloseDB()
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	deps.Tokens = token.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	deps.Mailer = mailer.New(ctx, mailer.Config{
		From:         cfg.Mail.From,
		SMTPHost:     cfg.Mail.SMTPHost,
		SMTPPort:     cfg.Mail.SMTPPort,
		SMTPUser:     cfg.Mail.SMTPUser,
		SMTPPassword: cfg.Mail.SMTPPassword,
		AWSRegion:    cfg.Mail.AWSRegion,
		AWSAccessKey: cfg.Mail.AWSAccessKey,
		AWSSecretKey: cfg.Mail.AWSSecretKey,
	}, log)
	deps.Assistant = ai.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel, log)
	deps.Gateway = payments.NewLocalGateway()

	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL, app)
		if err != nil {
			log.Warn("Redis unavailable, running without cache and rate limiting", "error", err)
		} else {
			deps.Cache = c
			defer c.Close()
		}
	}

	if app == "mindspace" && cfg.FirebaseCredentialsPath != "" {
		fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Warn("Failed to initialize Firebase", "error", err)
		} else {
			deps.Firebase = fb.AuthClient
		}
	}

	e := router.New(cfg, log)
	switch app {
	case "mindspace":
		err = router.SetupMindspace(ctx, e, deps)
	case "artisanmart":
		err = router.SetupArtisanmart(ctx, e, deps)
	case "papers":
		err = router.SetupPapers(e, deps)
	}
	if err != nil {
		return fmt.Errorf("failed to set up routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
