package main

import (
	"encoding/hex"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/config"
	"github.com/sagarc03/attachly/database"
	"github.com/sagarc03/attachly/prefs"
)

var signCmd = &cobra.Command{
	Use:   "sign <key>",
	Short: "Print the SigV4 signing steps for an object request",
	Long: `Sign a request for key with a user's stored credentials and print every
intermediate value: the canonical request, the string to sign, the derived
signing key and the final headers. Compare these with the object store's
error response when it rejects a signature.`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

func init() {
	signCmd.Flags().String("user", "", "user whose preferences hold the credentials (required)")
	signCmd.Flags().String("method", http.MethodPut, "HTTP method: PUT or DELETE")
	signCmd.Flags().String("content-type", "application/octet-stream", "content type sent with PUT")
	signCmd.Flags().String("time", "", "signing time in RFC 3339 (default: now)")
	_ = signCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	key := args[0]
	if !attachly.IsValidKey(key) {
		return fmt.Errorf("invalid object key: %q", key)
	}

	userID, _ := cmd.Flags().GetString("user")
	method, _ := cmd.Flags().GetString("method")
	contentType, _ := cmd.Flags().GetString("content-type")
	at, _ := cmd.Flags().GetString("time")

	method = strings.ToUpper(method)
	if method != http.MethodPut && method != http.MethodDelete {
		return fmt.Errorf("unsupported method: %s", method)
	}

	now := time.Now()
	if at != "" {
		if now, err = time.Parse(time.RFC3339, at); err != nil {
			return fmt.Errorf("parse time: %w", err)
		}
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	storage, err := prefs.NewResolver(db.Preferences()).Resolve(ctx, userID)
	if err != nil {
		return err
	}

	signed, sc := attachly.Sign(method, key, storage, contentType, now)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Canonical request:\n%s\n\n", sc.CanonicalRequest)
	_, _ = fmt.Fprintf(out, "String to sign:\n%s\n\n", sc.StringToSign)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Timestamp:\t%s\n", sc.Timestamp)
	_, _ = fmt.Fprintf(tw, "Date stamp:\t%s\n", sc.DateStamp)
	_, _ = fmt.Fprintf(tw, "Signing key:\t%s\n", hex.EncodeToString(sc.SigningKey))
	_, _ = fmt.Fprintf(tw, "Signature:\t%s\n", sc.Signature)
	_, _ = fmt.Fprintf(tw, "URL:\t%s\n", signed.URL)
	for _, name := range slices.Sorted(maps.Keys(signed.Headers)) {
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", name, signed.Headers[name])
	}
	return tw.Flush()
}
