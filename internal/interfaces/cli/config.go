package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(newContainer ContainerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and modify CLI configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := newContainer(cmd)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(container.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value and save it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := newContainer(cmd)
			if err != nil {
				return err
			}
			cfg := container.Config
			switch args[0] {
			case "server":
				cfg.Server = args[1]
			case "chatflow_id":
				cfg.ChatflowID = args[1]
			case "log_level":
				cfg.LogLevel = args[1]
			default:
				return fmt.Errorf("unknown config key %q (valid: server, chatflow_id, log_level)", args[0])
			}
			if err := cfg.Save(container.ConfigPath); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", args[0], args[1])
			return nil
		},
	})

	return cmd
}
