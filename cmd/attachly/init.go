package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/attachly/config"
	"github.com/sagarc03/attachly/database"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the attachment and preference tables",
	Long: `Create the attachment and preference tables if they do not exist and
validate their schema. Safe to run repeatedly.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err := db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("database initialized",
		"type", cfg.Database.Type,
		"attachments", cfg.Database.Tables.Attachments,
		"preferences", cfg.Database.Tables.Preferences,
	)
	return nil
}
