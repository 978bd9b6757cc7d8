// Package cfg provides configuration and command-line interface setup for
// MediaVault.
package cfg

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mediavault/internal/app"
	"mediavault/internal/auth"
	"mediavault/internal/contracts"
	"mediavault/internal/domain/keys"
	"mediavault/internal/logging"
)

// Services bundles the constructed application layer for command wiring.
type Services struct {
	Store       contracts.StateStore
	Journal     contracts.Journal
	Auth        *auth.Manager
	Downloader  *app.Downloader
	Transcriber *app.Transcriber
}

var rootCmd = &cobra.Command{
	Use:   "mediavault",
	Short: "MediaVault downloads and transcribes your cloud media library.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return nil
	},
}

// InitCommands initializes all commands and their flags.
func InitCommands(ctx context.Context, s *Services) error {
	rootCmd.PersistentFlags().Int(keys.DebugLevel, 0, "Debug level (0-5)")
	if err := viper.BindPFlag(keys.DebugLevel, rootCmd.PersistentFlags().Lookup(keys.DebugLevel)); err != nil {
		return err
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if lvl := viper.GetInt(keys.DebugLevel); lvl > 0 {
			logging.SetLevel(lvl)
		}
	}

	rootCmd.AddCommand(scanCmd(ctx, s))
	rootCmd.AddCommand(downloadCmd(ctx, s))
	rootCmd.AddCommand(transcribeCmd(ctx, s))
	rootCmd.AddCommand(statusCmd(s))
	rootCmd.AddCommand(historyCmd(s))
	rootCmd.AddCommand(initConfigCmds())
	rootCmd.AddCommand(initStateCmds(s))
	rootCmd.AddCommand(initAuthCmds(s))

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
