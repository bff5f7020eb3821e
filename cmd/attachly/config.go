package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/attachly/config"
)

// loadConfig loads the configuration for cmd and stores it in the
// command's context for the RunE functions.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	files, _ := cmd.Flags().GetStringSlice("config")

	cfg, err := config.Load(files, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return cfg, nil
}
