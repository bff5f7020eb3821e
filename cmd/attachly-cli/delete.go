package main

import (
	"os"

	"github.com/sagarc03/attachly/clientcli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <attachment-id> [attachment-id...]",
	Short: "Delete attachments",
	Long: `Delete one or more attachments. The stored object is removed from your
bucket and the attachment record is deleted.

Examples:
  attachly-cli delete 0b6c3a9e-4d8f-4a51-9c2b-1f6f3e2d7a10
  attachly-cli delete -q $(cat ids.txt)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	formatter := getFormatter()
	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{IDs: args})
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return &exitError{code: 1}
	}

	if err := formatter.FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
