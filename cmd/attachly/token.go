package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/attachly/config"
	"github.com/sagarc03/attachly/identity"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development bearer token",
	Long: `Issue an HS256 bearer token for a user, signed with the configured
identity.jwt.secret. Only available with the jwt identity provider.`,
	Example: `  attachly-cli upload --token "$(attachly token --user 3f9a...)" 42 ./diagram.png`,
	RunE:    runToken,
}

func init() {
	tokenCmd.Flags().String("user", "", "user ID to put in the token (required)")
	tokenCmd.Flags().Duration("ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	if cfg.Identity.Type != "jwt" {
		return errors.New("token: identity.type must be jwt")
	}

	userID, _ := cmd.Flags().GetString("user")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	auth, err := identity.NewJWT(cfg.Identity.JWT)
	if err != nil {
		return err
	}

	token, err := auth.Issue(userID, ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
