package db

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

func isDuplicateWrite(err error) bool {
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, e := range writeErr.WriteErrors {
			if mongo.IsDuplicateKeyError(e) {
				return true
			}
		}
	}
	return false
}
