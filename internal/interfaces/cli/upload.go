package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand(newContainer ContainerFactory) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file attachment to a chat session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := newContainer(cmd)
			if err != nil {
				return err
			}
			if container.Config.ChatflowID == "" {
				return fmt.Errorf("no chatflow configured: set chatflow_id in config or pass --chatflow")
			}
			if sessionID == "" {
				return fmt.Errorf("--session is required for uploads")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			result, err := container.Client.UploadFile(cmd.Context(), container.Config.ChatflowID, sessionID, filepath.Base(args[0]), f)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			fmt.Printf("uploaded: %s\n", result.FileID)
			fmt.Printf("file:      %s\n", container.Client.FileURL(result.FileID))
			fmt.Printf("download:  %s\n", container.Client.DownloadURL(result.FileID))
			fmt.Printf("thumbnail: %s\n", container.Client.ThumbnailURL(result.FileID, 256))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session the attachment belongs to")

	return cmd
}
