package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/reshetovitsme/discord-telegram-relay/internal/di"
	diagnosticsDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/diagnostics/domain"
	diagnosticsService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/diagnostics/service"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/config"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/logger"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command. It loads the configuration
// and, with --access, checks every pairing against the live APIs.
func NewValidateCmd(flags *GlobalFlags) *cobra.Command {
	var access bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and channel pairings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return err
			}
			printPairings(cmd.OutOrStdout(), cfg)

			if !access {
				return nil
			}
			return checkAccess(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().BoolVar(&access, "access", false, "check bot access to every paired channel and chat")

	return cmd
}

func printPairings(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Configuration OK: %d pairing(s), %s correlation backend\n", len(cfg.ChannelPairs), cfg.CorrelationBackend)
	for _, p := range cfg.ChannelPairs {
		if p.HasThread() {
			fmt.Fprintf(w, "  %s -> %d (thread %d)\n", p.SourceChannelID, p.DestinationChatID, p.DestinationThreadID)
			continue
		}
		fmt.Fprintf(w, "  %s -> %d\n", p.SourceChannelID, p.DestinationChatID)
	}
}

func checkAccess(ctx context.Context, w io.Writer, cfg *config.Config) error {
	closeLog, err := logger.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	injector, err := di.Setup(cfg)
	if err != nil {
		return err
	}
	defer shutdown(injector)

	checker, err := do.Invoke[*diagnosticsService.Checker](injector)
	if err != nil {
		return err
	}

	reports := checker.Check(ctx, cfg.ChannelPairs)
	printReports(w, reports)

	failed := lo.CountBy(reports, func(r diagnosticsDomain.PairingReport) bool { return !r.OK() })
	if failed > 0 {
		return oops.With("failed", failed).Errorf("%d of %d pairing(s) failed the access check", failed, len(reports))
	}
	return nil
}

func printReports(w io.Writer, reports []diagnosticsDomain.PairingReport) {
	for _, r := range reports {
		status := "ok"
		if !r.OK() {
			status = "FAILED"
		}
		fmt.Fprintf(w, "%s -> %d: %s\n", r.Pairing.SourceChannelID, r.Pairing.DestinationChatID, status)

		if r.DiscordErr != nil {
			fmt.Fprintf(w, "  discord: %v\n", r.DiscordErr)
		} else if len(r.Discord.Missing) > 0 {
			fmt.Fprintf(w, "  discord: missing %v\n", r.Discord.Missing)
		}
		if r.TelegramErr != nil {
			fmt.Fprintf(w, "  telegram: %v\n", r.TelegramErr)
		}
		if r.ThreadErr != nil {
			fmt.Fprintf(w, "  thread %d: %v\n", r.Pairing.DestinationThreadID, r.ThreadErr)
		}
	}
}
