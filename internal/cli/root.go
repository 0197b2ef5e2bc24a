// Package cli holds the relay's command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags are shared by every subcommand.
type GlobalFlags struct {
	ConfigPath string
}

// NewRootCmd creates the root command. Without a subcommand it runs the relay.
func NewRootCmd() *cobra.Command {
	flags := &GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Discord to Telegram message relay",
		Long: `relay mirrors messages from Discord channels into Telegram chats.
Edits and deletions in Discord are reflected on the Telegram copies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags.ConfigPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "config file path (yaml, json or toml)")

	rootCmd.AddCommand(NewRunCmd(flags))
	rootCmd.AddCommand(NewValidateCmd(flags))

	return rootCmd
}
