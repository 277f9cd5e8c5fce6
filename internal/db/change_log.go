package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

func (db *Database) SaveChangeLogEntry(ctx context.Context, entry types.ChangeLogEntry) error {
	_, err := db.collection(model.ChangeLogCollection).
		InsertOne(ctx, model.FromChangeLogEntry(entry))
	if err != nil {
		if isDuplicateWrite(err) {
			return &DuplicateKeyError{
				Key:     fmt.Sprint(entry.Seq),
				Message: "change log entry already exists",
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetChangeLogEntries(ctx context.Context, after uint64, limit int64) ([]types.ChangeLogEntry, error) {
	filter := bson.M{"_id": bson.M{"$gt": after}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := db.collection(model.ChangeLogCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.ChangeLogDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	entries := make([]types.ChangeLogEntry, 0, len(docs))
	for i := range docs {
		entries = append(entries, docs[i].ToEntry())
	}
	return entries, nil
}
