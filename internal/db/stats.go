package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
)

// UpsertOverallStats updates or inserts overall stats
func (db *Database) UpsertOverallStats(ctx context.Context, stats *model.OverallStatsDocument) error {
	stats.ID = model.OverallStatsID
	if stats.LastUpdated == 0 {
		stats.LastUpdated = time.Now().Unix()
	}

	filter := bson.M{"_id": model.OverallStatsID}
	opts := options.Replace().SetUpsert(true)

	_, err := db.collection(model.OverallStatsCollection).ReplaceOne(ctx, filter, stats, opts)
	return err
}

func (db *Database) GetOverallStats(ctx context.Context) (*model.OverallStatsDocument, error) {
	var stats model.OverallStatsDocument
	err := db.collection(model.OverallStatsCollection).
		FindOne(ctx, bson.M{"_id": model.OverallStatsID}).
		Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.OverallStatsID,
				Message: "overall stats not found",
			}
		}
		return nil, err
	}
	return &stats, nil
}
