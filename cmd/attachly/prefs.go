package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/config"
	"github.com/sagarc03/attachly/database"
	"github.com/sagarc03/attachly/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage users' object storage preferences",
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Write a user's object storage configuration",
	Long: `Write the storage section of a user's preferences. Other preference
keys are preserved. The result is validated the same way the gateway
validates it on every request.`,
	Example: `  attachly prefs set --user 3f9a... \
    --access-key-id AKIA... --secret-access-key ... \
    --region us-east-1 --bucket notes --endpoint s3.amazonaws.com`,
	RunE: runPrefsSet,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a user's object storage configuration with the secret masked",
	RunE:  runPrefsShow,
}

func init() {
	prefsCmd.PersistentFlags().String("user", "", "user ID (required)")
	_ = prefsCmd.MarkPersistentFlagRequired("user")

	prefsSetCmd.Flags().String("access-key-id", "", "access key ID")
	prefsSetCmd.Flags().String("secret-access-key", "", "secret access key")
	prefsSetCmd.Flags().String("region", "", "bucket region")
	prefsSetCmd.Flags().String("bucket", "", "bucket name")
	prefsSetCmd.Flags().String("endpoint", "", "object store endpoint, with or without scheme")
	prefsSetCmd.Flags().Bool("disabled", false, "store the configuration with enabled=false")

	prefsCmd.AddCommand(prefsSetCmd, prefsShowCmd)
	rootCmd.AddCommand(prefsCmd)
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	userID, _ := cmd.Flags().GetString("user")
	disabled, _ := cmd.Flags().GetBool("disabled")
	storage := attachly.StorageConfig{Enabled: !disabled}
	storage.AccessKeyID, _ = cmd.Flags().GetString("access-key-id")
	storage.SecretAccessKey, _ = cmd.Flags().GetString("secret-access-key")
	storage.Region, _ = cmd.Flags().GetString("region")
	storage.BucketName, _ = cmd.Flags().GetString("bucket")
	storage.Endpoint, _ = cmd.Flags().GetString("endpoint")

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	store := db.Preferences()

	existing, err := store.Preferences(ctx, userID)
	if err != nil && !errors.Is(err, attachly.ErrNotFound) {
		return fmt.Errorf("read preferences: %w", err)
	}

	blob, err := prefs.Merge(existing, storage)
	if err != nil {
		return err
	}

	if err := store.SetPreferences(ctx, userID, blob); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}

	if _, err := prefs.Parse(blob); err != nil {
		slog.Warn("preferences saved but storage is not usable", "user", userID, "err", err)
		return nil
	}
	slog.Info("preferences saved", "user", userID, "bucket", storage.BucketName)
	return nil
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	userID, _ := cmd.Flags().GetString("user")

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	storage, err := prefs.NewResolver(db.Preferences()).Resolve(ctx, userID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(prefs.Mask(storage))
}
