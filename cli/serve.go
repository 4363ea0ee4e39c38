package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/config"
	"github.com/pothole-patrol/api-go/middleware"
	"github.com/pothole-patrol/api-go/realtime"
	"github.com/pothole-patrol/api-go/routes"
	"github.com/pothole-patrol/api-go/scheduler"
	"github.com/pothole-patrol/api-go/session"
	"github.com/pothole-patrol/api-go/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sessionCleanupInterval = time.Hour
	shutdownTimeout        = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and serve the front end",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, db, err := config.NewBackend(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		if err := config.Migrate(db); err != nil {
			return err
		}
	}

	var opts []session.Option
	if google := config.NewGoogleConfig(cfg); google != nil {
		opts = append(opts, session.WithGoogle(google))
		logger.Info("google sign-in enabled")
	}
	sessions := session.NewManager(b, session.NewTokenIssuer(cfg.JWTSecret), cfg.SessionTTL, logger, opts...)

	hub := realtime.NewHub(logger)
	deps := routes.Dependencies{Backend: b, Sessions: sessions, Hub: hub, Log: logger}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	if db != nil {
		bridge := realtime.NewPGBridge(db, cfg.DatabaseURL, hub, logger)
		deps.Publisher = bridge
		g.Go(func() error { return bridge.Run(ctx) })
	}
	g.Go(func() error {
		scheduler.RunSessionCleanup(ctx, sessions, sessionCleanupInterval, logger)
		return nil
	})

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	}
	routes.SetupRoutes(r, deps)
	if err := web.Mount(r, cfg.StaticDir, cfg.DevServerURL, logger); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
