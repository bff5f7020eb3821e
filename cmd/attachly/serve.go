package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/config"
	"github.com/sagarc03/attachly/database"
	attachlyhttp "github.com/sagarc03/attachly/http"
	"github.com/sagarc03/attachly/identity"
	"github.com/sagarc03/attachly/metrics"
	"github.com/sagarc03/attachly/objectstore"
	"github.com/sagarc03/attachly/prefs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attachment gateway",
	Long: `Start the attachment gateway HTTP server.

Every request must carry a bearer token accepted by the configured identity
provider. Object storage credentials are read from each user's preferences.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port (env: ATTACHLY_SERVER_PORT)")
	serveCmd.Flags().Bool("metrics", false, "serve Prometheus metrics on /metrics (env: ATTACHLY_SERVER_METRICS)")
	serveCmd.Flags().String("identity", "", "identity provider: jwt, oidc (env: ATTACHLY_IDENTITY_TYPE)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()
	slog.Info("connected to database", "type", cfg.Database.Type)

	auth, err := identity.New(ctx, cfg.Identity)
	if err != nil {
		return fmt.Errorf("create authenticator: %w", err)
	}

	var m *metrics.Metrics
	storeOpts := []objectstore.Option{}
	if cfg.Server.Metrics {
		m = metrics.New()
		storeOpts = append(storeOpts, objectstore.WithObserver(m))
	}

	service := attachly.NewAttachmentService(db.Attachments(), objectstore.New(storeOpts...))

	handlerConfig := attachlyhttp.HandlerConfig{
		Authenticator: auth,
		Resolver:      prefs.NewResolver(db.Preferences()),
		CORS:          cfg.CORS,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Health:        db,
		Metrics:       m,
	}
	handler := attachlyhttp.NewHandler(&handlerConfig, service)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("starting gateway", "addr", server.Addr, "identity", cfg.Identity.Type, "metrics", cfg.Server.Metrics)
	return listenAndServe(ctx, server)
}

// listenAndServe runs server until it fails or SIGINT/SIGTERM arrives, then
// shuts it down gracefully.
func listenAndServe(ctx context.Context, server *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
		return err
	}
	return nil
}
