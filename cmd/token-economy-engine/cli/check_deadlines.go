package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carbonpledge-labs/token-economy-engine/internal/config"
	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/tracing"
)

// CheckDeadlinesCmd fails every active campaign past its deadline, starting
// from the latest snapshot. Run it only while the server is stopped:
// ./token-economy-engine check-deadlines --config config.yml
func CheckDeadlinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-deadlines",
		Short: "Fail expired campaigns once and store the result (server must be stopped)",
		Args:  cobra.ExactArgs(0),
		RunE:  checkDeadlines,
	}

	return cmd
}

func checkDeadlines(cmd *cobra.Command, args []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}
	if !cfg.Engine.RestoreFromSnapshot {
		return fmt.Errorf("check-deadlines needs engine.restore-from-snapshot enabled")
	}

	srv, _, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	failed, err := srv.CheckDeadlinesOnce(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "failed campaigns: %v\n", failed)
	return nil
}
