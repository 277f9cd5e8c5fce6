package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/carbonpledge-labs/token-economy-engine/internal/config"
	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/metrics"
	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/tracing"
)

const shutdownTimeout = 30 * time.Second

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the token economy engine",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		return fmt.Errorf("error while loading config file %s: %w", cfgPath, err)
	}

	service, eng, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	if err := service.StartEngineSync(ctx); err != nil {
		return fmt.Errorf("error while starting engine sync: %w", err)
	}
	log.Info().
		Str("max_supply", eng.MaxSupply().String()).
		Uint64("last_seq", eng.LastSeq()).
		Msg("Token economy engine is running")

	<-ctx.Done()
	log.Info().Msg("Shutting down, storing final snapshot")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := service.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error while shutting down: %w", err)
	}
	return nil
}
