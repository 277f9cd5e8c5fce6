package cli

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/carbonpledge-labs/token-economy-engine/internal/config"
)

func InspectConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect-config",
		Short: "Print the parsed configuration and the engine parameters derived from it",
		Args:  cobra.ExactArgs(0),
		RunE:  inspectConfig,
	}
	cmd.Flags().Bool("show-secrets", false, "Print passwords instead of masking them")

	return cmd
}

func inspectConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}
	params, err := cfg.Engine.Params()
	if err != nil {
		return err
	}

	showSecrets, err := cmd.Flags().GetBool("show-secrets")
	if err != nil {
		return err
	}
	if !showSecrets {
		cfg.Db.Password = "***"
		cfg.Queue.QueuePassword = "***"
	}

	printer := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	printer.Fdump(cmd.OutOrStdout(), cfg)
	printer.Fdump(cmd.OutOrStdout(), params)
	return nil
}
