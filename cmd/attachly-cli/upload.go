package main

import (
	"os"

	"github.com/sagarc03/attachly/clientcli"
	"github.com/spf13/cobra"
)

var (
	uploadRecursive   bool
	uploadContentType string
	uploadFilename    string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <note-id> <local-path>",
	Short: "Attach a file to a note",
	Long: `Attach a file to a note. The file is stored in your bucket and the
attachment ID is printed.

Files larger than the gateway's limit (50MB by default) are rejected.

Examples:
  attachly-cli upload 42 ./diagram.png
  attachly-cli upload --filename "Q3 report.pdf" 42 ./report.pdf
  attachly-cli upload -r 42 ./screenshots/`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "attach every file in a directory")
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "override content-type")
	uploadCmd.Flags().StringVar(&uploadFilename, "filename", "", "override the stored filename")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		NoteID:      args[0],
		LocalPath:   args[1],
		Filename:    uploadFilename,
		ContentType: uploadContentType,
		Recursive:   uploadRecursive,
	}

	formatter := getFormatter()
	results, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return &exitError{code: 1}
	}

	if err := formatter.FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
