//go:build e2e

package e2etest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/carbonpledge-labs/token-economy-engine/consumer"
	"github.com/carbonpledge-labs/token-economy-engine/e2etest/container"
	"github.com/carbonpledge-labs/token-economy-engine/internal/auth"
	"github.com/carbonpledge-labs/token-economy-engine/internal/config"
	"github.com/carbonpledge-labs/token-economy-engine/internal/db"
	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
	"github.com/carbonpledge-labs/token-economy-engine/internal/engine"
	"github.com/carbonpledge-labs/token-economy-engine/internal/queue"
	"github.com/carbonpledge-labs/token-economy-engine/internal/services"
)

var (
	eventuallyWaitTimeOut = 40 * time.Second
	eventuallyPollTime    = 500 * time.Millisecond
)

const (
	platformAdmin = "platform-admin"
	rewardsBot    = "rewards-bot"
	verifier      = "verifier"
	carbonDesk    = "carbon-desk"
)

type TestManager struct {
	Config         *config.Config
	DbClient       *db.Database
	Engine         *engine.Engine
	Service        *services.Service
	ChangeMessages <-chan amqp.Delivery

	manager  *container.Manager
	amqpConn *amqp.Connection
	qm       *queue.QueueManager
	cancel   context.CancelFunc
}

// StartManager starts MongoDB and RabbitMQ, subscribes a test queue to every
// change and starts the engine host on top of them.
func StartManager(t *testing.T) *TestManager {
	manager, err := container.NewManager(t)
	require.NoError(t, err)

	mongo, err := manager.RunMongoResource(t)
	require.NoError(t, err)
	rabbit, err := manager.RunRabbitMQResource(t)
	require.NoError(t, err)

	cfg := DefaultEngineConfig()
	cfg.Db.Address = fmt.Sprintf("mongodb://localhost:%s/", mongo.GetPort("27017/tcp"))
	cfg.Queue.Url = fmt.Sprintf("localhost:%s", rabbit.GetPort("5672/tcp"))

	ctx := context.Background()
	var dbClient *db.Database
	err = manager.Pool().Retry(func() error {
		dbClient, err = db.New(ctx, cfg.Db)
		if err != nil {
			return err
		}
		return dbClient.Ping(ctx)
	})
	require.NoError(t, err)
	require.NoError(t, model.Setup(ctx, &cfg.Db))

	var conn *amqp.Connection
	err = manager.Pool().Retry(func() error {
		conn, err = amqp.Dial(cfg.Queue.AmqpURL())
		return err
	})
	require.NoError(t, err)

	tm := &TestManager{
		Config:         cfg,
		DbClient:       dbClient,
		ChangeMessages: subscribeToChanges(t, conn, cfg.Queue.Exchange),
		manager:        manager,
		amqpConn:       conn,
	}
	tm.startService(t)
	return tm
}

func subscribeToChanges(t *testing.T, conn *amqp.Connection, exchange string) <-chan amqp.Delivery {
	ch, err := conn.Channel()
	require.NoError(t, err)

	err = ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil)
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "#", exchange, false, nil))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)
	return deliveries
}

// startService builds a fresh engine and host, restoring the latest snapshot.
func (tm *TestManager) startService(t *testing.T) {
	authorizer, err := auth.NewStaticAuthorizer(tm.Config.Auth.Roles)
	require.NoError(t, err)
	params, err := tm.Config.Engine.Params()
	require.NoError(t, err)
	eng, err := engine.New(params, authorizer)
	require.NoError(t, err)

	qm, err := queue.NewQueueManager(&tm.Config.Queue, queue.NewRabbitPublisher(&tm.Config.Queue))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := services.NewService(tm.Config, db.NewDbWithMetrics(tm.DbClient), eng, qm)
	require.NoError(t, srv.StartEngineSync(ctx))

	tm.Engine = eng
	tm.Service = srv
	tm.qm = qm
	tm.cancel = cancel
}

// Restart stops the host gracefully and starts a new one from the stored snapshot.
func (tm *TestManager) Restart(t *testing.T) {
	tm.stopService(t)
	tm.startService(t)
}

func (tm *TestManager) stopService(t *testing.T) {
	tm.cancel()
	require.NoError(t, tm.Service.Shutdown(context.Background()))
	tm.qm.Shutdown()
}

func (tm *TestManager) Stop(t *testing.T) {
	tm.stopService(t)
	require.NoError(t, tm.amqpConn.Close())
	require.NoError(t, tm.DbClient.Disconnect(context.Background()))
	tm.manager.ClearResources()
}

// NextChange waits for the next published change event.
func (tm *TestManager) NextChange(t *testing.T) consumer.ChangeEvent {
	select {
	case msg := <-tm.ChangeMessages:
		var ev consumer.ChangeEvent
		require.NoError(t, json.Unmarshal(msg.Body, &ev))
		require.Equal(t, ev.Type, msg.RoutingKey)
		return ev
	case <-time.After(eventuallyWaitTimeOut):
		t.Fatal("timed out waiting for a change event")
		return consumer.ChangeEvent{}
	}
}

func DefaultEngineConfig() *config.Config {
	return &config.Config{
		Db: config.DbConfig{
			Username: container.MongoUsername,
			Password: container.MongoPassword,
			DbName:   "token-economy-e2e",
		},
		Engine: config.EngineConfig{
			MaxSupply:             "1000000",
			MinimumStakingPeriod:  7 * 24 * time.Hour,
			EarlyWithdrawalFeeBps: 500,
			CrowdfundingFeeBps:    250,
			CarbonFeeBps:          100,
			FeeCollector:          "platform-treasury",
			CarbonFeeCollector:    "carbon-fees",
			ChangeLogRetention:    10_000,
			RestoreFromSnapshot:   true,
		},
		Queue: config.QueueConfig{
			QueueUser:           container.RabbitMQUsername,
			QueuePassword:       container.RabbitMQPassword,
			Exchange:            "token-economy.changes",
			PublishTimeout:      5 * time.Second,
			MsgMaxRetryAttempts: 5,
			RetryInterval:       200 * time.Millisecond,
		},
		Poller: config.PollerConfig{
			DeadlineCheckInterval: time.Hour,
			SnapshotInterval:      time.Hour,
			StatsInterval:         time.Hour,
			ChangeBatchSize:       100,
			SnapshotsToKeep:       2,
		},
		Metrics: config.MetricsConfig{Host: "127.0.0.1", Port: 2112},
		Auth: config.AuthConfig{Roles: map[string][]string{
			"admin":               {platformAdmin},
			"minter":              {platformAdmin},
			"rewards-distributor": {rewardsBot},
			"oracle":              {verifier},
			"project-admin":       {carbonDesk},
		}},
	}
}
