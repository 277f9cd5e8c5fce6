package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carbonpledge-labs/token-economy-engine/internal/config"
)

const (
	ChangeLogCollection        = "change_log"
	SnapshotCollection         = "engine_snapshots"
	LastProcessedSeqCollection = "last_processed_seq"
	OverallStatsCollection     = "overall_stats"
)

// namespaceExistsErrorCode is returned by createCollection for existing collections
const namespaceExistsErrorCode = 48

type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	ChangeLogCollection: {
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "domain", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "actor", Value: 1}}},
	},
	SnapshotCollection: {
		{Keys: bson.D{{Key: "last_seq", Value: -1}}, Unique: true},
	},
	LastProcessedSeqCollection: nil,
	OverallStatsCollection:     nil,
}

// Setup creates the collections and indexes the host needs.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Address).SetAuth(options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}))
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to disconnect setup client")
		}
	}()

	database := client.Database(cfg.DbName)

	for collection, indexes := range collections {
		if err := createCollection(ctx, database, collection); err != nil {
			return err
		}
		for _, idx := range indexes {
			if err := createIndex(ctx, database, collection, idx); err != nil {
				return err
			}
		}
	}

	log.Ctx(ctx).Info().Msg("Collections and indexes created successfully")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) error {
	err := database.CreateCollection(ctx, collectionName)
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == namespaceExistsErrorCode {
		log.Ctx(ctx).Debug().Str("collection", collectionName).Msg("Collection already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
	}
	log.Ctx(ctx).Debug().Str("collection", collectionName).Msg("Collection created")
	return nil
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) error {
	indexModel := mongo.IndexModel{
		Keys:    idx.Keys,
		Options: options.Index().SetUnique(idx.Unique),
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collectionName, err)
	}
	log.Ctx(ctx).Debug().Str("collection", collectionName).Msg("Index created")
	return nil
}
