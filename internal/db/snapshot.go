package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
)

func (db *Database) SaveSnapshot(ctx context.Context, snapshot *model.SnapshotDocument) error {
	_, err := db.collection(model.SnapshotCollection).InsertOne(ctx, snapshot)
	if err != nil {
		if isDuplicateWrite(err) {
			return &DuplicateKeyError{
				Key:     fmt.Sprint(snapshot.LastSeq),
				Message: "snapshot already exists",
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetLatestSnapshot(ctx context.Context) (*model.SnapshotDocument, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "last_seq", Value: -1}})
	res := db.collection(model.SnapshotCollection).FindOne(ctx, bson.M{}, opts)

	var snapshot model.SnapshotDocument
	if err := res.Decode(&snapshot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Message: "no snapshot found",
			}
		}
		return nil, err
	}
	return &snapshot, nil
}

func (db *Database) PruneSnapshots(ctx context.Context, keep int64) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("must keep at least one snapshot, got %d", keep)
	}

	// the oldest snapshot still kept marks the cut-off
	opts := options.FindOne().
		SetSort(bson.D{{Key: "last_seq", Value: -1}}).
		SetSkip(keep - 1).
		SetProjection(bson.M{"last_seq": 1})
	var oldest model.SnapshotDocument
	err := db.collection(model.SnapshotCollection).FindOne(ctx, bson.M{}, opts).Decode(&oldest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	res, err := db.collection(model.SnapshotCollection).
		DeleteMany(ctx, bson.M{"last_seq": bson.M{"$lt": oldest.LastSeq}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
