package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowchat-ai/flowchat-cli/internal/chat"
	"github.com/flowchat-ai/flowchat-cli/internal/sse"
)

// ChatFlags holds command-line flags for the chat command.
type ChatFlags struct {
	SessionID string
	Live      bool
	Attach    []string
}

// NewChatCommand creates the chat command.
func NewChatCommand(newContainer ContainerFactory) *cobra.Command {
	flags := &ChatFlags{}

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask a chatflow a question and stream the answer",
		Long: `Send a question to the configured chatflow and print the answer as it
streams in. With --live the answer renders in an interactive terminal view
that also shows agent flow progress.

Examples:
  flowchat chat "What is the refund policy?"
  flowchat chat --session 9f2c... "And for enterprise plans?"
  flowchat chat --attach report.pdf "Summarize this document"
  flowchat chat --live "Walk me through the onboarding flow"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := newContainer(cmd)
			if err != nil {
				return err
			}
			if container.Config.ChatflowID == "" {
				return fmt.Errorf("no chatflow configured: set chatflow_id in config or pass --chatflow")
			}

			req := chat.PendingRequest{
				ChatflowID: container.Config.ChatflowID,
				SessionID:  flags.SessionID,
				Question:   args[0],
			}
			for _, path := range flags.Attach {
				upload, err := readUpload(path)
				if err != nil {
					return err
				}
				req.Uploads = append(req.Uploads, upload)
			}

			if flags.Live {
				return runLiveChat(cmd.Context(), container, req)
			}
			return runChat(cmd.Context(), container, req)
		},
	}

	cmd.Flags().StringVar(&flags.SessionID, "session", "", "Session ID to continue (empty starts a new session)")
	cmd.Flags().BoolVar(&flags.Live, "live", false, "Render the answer in an interactive terminal view")
	cmd.Flags().StringSliceVar(&flags.Attach, "attach", nil, "File(s) to attach to the question")

	return cmd
}

// runChat streams the answer straight to stdout, one text fragment at a time.
func runChat(ctx context.Context, container *Container, req chat.PendingRequest) error {
	handler := sse.HandlerFuncs{
		Event: func(ev sse.StreamEvent) {
			switch ev.Kind {
			case sse.EventToken:
				fmt.Print(ev.Text)
			case sse.EventContent:
				fmt.Print(ev.Content.Content)
			case sse.EventAgentFlow:
				container.Logger.Debug().
					Str("flow", ev.AgentFlow.FlowID).
					Str("status", string(ev.AgentFlow.Status)).
					Msg("agent flow")
			case sse.EventNextAgentFlow:
				container.Logger.Debug().
					Str("agent", ev.NextAgentFlow.AgentName).
					Str("status", ev.NextAgentFlow.Status).
					Msg("next agent flow")
			}
		},
		Error: func(err error) {
			if isFatalStreamError(err) {
				return // surfaced by the returned error below
			}
			container.Logger.Warn().Err(err).Msg("stream reported a recoverable error")
		},
	}

	msg, err := container.Client.Chat(ctx, req, handler)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("message failed: %w", err)
	}
	if req.SessionID == "" && msg.SessionID != "" {
		container.Logger.Info().Str("session", msg.SessionID).Msg("session created")
	}
	container.Logger.Debug().
		Dur("took", msg.Time.Delta).
		Int("events", len(msg.LiveEvents)).
		Msg("answer complete")
	return nil
}

func readUpload(path string) (chat.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chat.Upload{}, fmt.Errorf("failed to read attachment %s: %w", path, err)
	}
	return chat.NewFileUpload(filepath.Base(path), mimeForPath(path), data), nil
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return "text/plain"
	case ".json":
		return "application/json"
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// isFatalStreamError distinguishes failures that ended the stream from
// frame-scoped ones that were already reported and absorbed.
func isFatalStreamError(err error) bool {
	var pv *sse.ProtocolViolation
	if errors.As(err, &pv) {
		return pv.Fatal
	}
	var de *sse.DecodeError
	return !errors.As(err, &de)
}
