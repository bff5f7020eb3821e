package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/config"
	"github.com/sagarc03/attachly/devstore"
	"github.com/sagarc03/attachly/filesystem"
	"github.com/sagarc03/attachly/keybackend"
)

var devstoreCmd = &cobra.Command{
	Use:   "devstore",
	Short: "Run a local S3-compatible object store",
	Long: `Run a minimal S3-compatible object store for development. It accepts
PUT, GET, HEAD and DELETE on /{bucket}/{key}, verifies SigV4 signatures
against the configured key pairs and keeps objects below the storage
directory. Point a user's preferences at it with:

  attachly prefs set --user <id> --endpoint http://localhost:9000 ...`,
	RunE: runDevstore,
}

func init() {
	devstoreCmd.Flags().Int("devstore-port", 9000, "listen port (env: ATTACHLY_DEVSTORE_PORT)")
	devstoreCmd.Flags().String("devstore-region", "", "region signatures must be scoped to (env: ATTACHLY_DEVSTORE_REGION)")
	devstoreCmd.Flags().String("storage-path", "", "object directory (default: ./data, env: ATTACHLY_DEVSTORE_STORAGE)")

	rootCmd.AddCommand(devstoreCmd)
}

func runDevstore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	keys, err := keybackend.New(cfg.Devstore.Keys)
	if err != nil {
		return fmt.Errorf("load keys: %w", err)
	}
	if keys.Len() == 0 {
		return errors.New("devstore: no access keys configured (devstore.keys.inline or devstore.keys.file)")
	}

	store, err := filesystem.Open(cfg.Devstore.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	srv := devstore.New(store, attachly.NewSignatureVerifier(cfg.Devstore.Region, keys))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Devstore.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting devstore",
		"addr", server.Addr,
		"storage", cfg.Devstore.Storage,
		"region", cfg.Devstore.Region,
		"keys", keys.Len(),
	)
	return listenAndServe(ctx, server)
}
