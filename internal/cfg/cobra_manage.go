package cfg

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediavault/internal/domain/consts"
	"mediavault/internal/domain/keys"
	"mediavault/internal/logging"
	"mediavault/internal/models"
)

// initConfigCmds groups the configuration subcommands.
func initConfigCmds() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("please specify a subcommand. Use --help to see available subcommands")
		},
	}

	cfgCmd.AddCommand(showConfigCmd())
	cfgCmd.AddCommand(setConfigCmd())

	return cfgCmd
}

// showConfigCmd prints the active configuration document.
func showConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ActiveConfig())
		},
	}
}

// setConfigCmd updates one configuration key and saves the document.
func setConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ActiveConfig()
			if err := applyConfigValue(cfg, args[0], args[1]); err != nil {
				return err
			}
			return SaveAppConfig(cfg)
		},
	}
}

func applyConfigValue(cfg *models.AppConfig, key, value string) error {
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%q wants a boolean, got %q", key, value)
		}
		return b, nil
	}

	switch key {
	case keys.DownloadPath:
		cfg.DownloadPath = value

	case keys.AutoDownload:
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.AutoDownload = b

	case keys.AutoTranscribe:
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.AutoTranscribe = b

	case keys.TranscriptionModel:
		if _, ok := consts.WhisperModels[value]; !ok {
			return fmt.Errorf("unknown model %q, valid: tiny, base, small, medium, large", value)
		}
		cfg.TranscriptionModel = value

	case keys.TranscriptionFormat:
		switch value {
		case consts.FormatTXT, consts.FormatSRT, consts.FormatVTT, consts.FormatBoth:
			cfg.TranscriptionFormat = value
		default:
			return fmt.Errorf("unknown format %q, valid: txt, srt, vtt, both", value)
		}

	case keys.TranscriptionLanguage:
		cfg.TranscriptionLanguage = value

	case keys.DownloadVideos:
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.DownloadVideos = b

	case keys.DownloadDocuments:
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.DownloadDocuments = b

	case keys.DownloadPhotos:
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.DownloadPhotos = b

	case keys.MaxConcurrentDownloads:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%q wants a positive integer, got %q", key, value)
		}
		cfg.MaxConcurrentDownloads = n

	case keys.ExcludePatterns:
		patterns := strings.Split(value, ",")
		for i := range patterns {
			patterns[i] = strings.TrimSpace(patterns[i])
		}
		cfg.ExcludePatterns = patterns

	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}

// initStateCmds groups the state maintenance subcommands.
func initStateCmds(s *Services) *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "State maintenance commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("please specify a subcommand. Use --help to see available subcommands")
		},
	}

	stateCmd.AddCommand(clearStateCmd(s))
	stateCmd.AddCommand(retryErrorsCmd(s))

	return stateCmd
}

// clearStateCmd wipes every record collection. Downloaded files on disk are
// untouched.
func clearStateCmd(s *Services) *cobra.Command {
	var yes bool

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all tracked file records",
		Long:  "Wipe every tracked record so the next scan starts fresh. Files on disk are untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear state without --yes")
			}
			s.Store.ClearAll()
			logging.S("Cleared all tracked records")
			return nil
		},
	}

	clearCmd.Flags().BoolVar(&yes, "yes", false, "Confirm clearing all records")

	return clearCmd
}

// retryErrorsCmd flips errored records back to pending.
func retryErrorsCmd(s *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "retry-errors",
		Short: "Reset errored files for retry",
		Long:  "Flip every errored record back to pending so the next download run retries it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := s.Store.ResetErrors()
			logging.S("Reset %d errored record(s) to pending", n)
			return nil
		},
	}
}

// initAuthCmds groups the credential subcommands.
func initAuthCmds(s *Services) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Credential commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("please specify a subcommand. Use --help to see available subcommands")
		},
	}

	authCmd.AddCommand(authStatusCmd(s))
	authCmd.AddCommand(authReloadCmd(s))

	return authCmd
}

func authStatusCmd(s *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.Auth.Authenticated() {
				fmt.Println("Authenticated.")
			} else {
				fmt.Println("Not authenticated: no valid token file found.")
			}
			return nil
		},
	}
}

// authReloadCmd drops the cached token and source handles so the next
// operation re-reads the token file.
func authReloadCmd(s *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload credentials from the token file",
		RunE: func(cmd *cobra.Command, args []string) error {
			s.Auth.Invalidate()
			s.Downloader.InvalidateSources()
			logging.S("Credentials reloaded")
			return nil
		},
	}
}
