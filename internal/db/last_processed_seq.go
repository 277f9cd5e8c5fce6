package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
)

func (db *Database) GetLastProcessedSeq(ctx context.Context) (uint64, error) {
	var result model.LastProcessedSeq
	err := db.collection(model.LastProcessedSeqCollection).
		FindOne(ctx, bson.M{}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// If no document exists, return 0
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return result.Seq, nil
}

func (db *Database) UpdateLastProcessedSeq(ctx context.Context, seq uint64) error {
	update := bson.M{"$set": bson.M{"seq": seq}}
	opts := options.Update().SetUpsert(true)
	_, err := db.collection(model.LastProcessedSeqCollection).
		UpdateOne(ctx, bson.M{}, update, opts)
	return err
}
