package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/internal/auth"
	"github.com/carbonpledge-labs/token-economy-engine/internal/config"
	"github.com/carbonpledge-labs/token-economy-engine/internal/db"
	dbmodel "github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
	"github.com/carbonpledge-labs/token-economy-engine/internal/engine"
	"github.com/carbonpledge-labs/token-economy-engine/internal/queue"
	"github.com/carbonpledge-labs/token-economy-engine/internal/services"
)

// newService wires the engine to its storage and queue. The returned cleanup
// releases the connections.
func newService(ctx context.Context, cfg *config.Config) (*services.Service, *engine.Engine, func(), error) {
	err := dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error while setting up db model: %w", err)
	}

	// create new db client
	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error while creating db client: %w", err)
	}
	if err := dbClient.Ping(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("error while connecting to db: %w", err)
	}

	authorizer, err := auth.NewStaticAuthorizer(cfg.Auth.Roles)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid role table: %w", err)
	}
	params, err := cfg.Engine.Params()
	if err != nil {
		return nil, nil, nil, err
	}
	eng, err := engine.New(params, authorizer)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error while creating engine: %w", err)
	}

	qm, err := queue.NewQueueManager(&cfg.Queue, queue.NewRabbitPublisher(&cfg.Queue))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize queue manager: %w", err)
	}

	cleanup := func() {
		qm.Shutdown()
		if err := dbClient.Disconnect(context.WithoutCancel(ctx)); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("error while disconnecting db client")
		}
	}

	srv := services.NewService(cfg, db.NewDbWithMetrics(dbClient), eng, qm)
	return srv, eng, cleanup, nil
}
