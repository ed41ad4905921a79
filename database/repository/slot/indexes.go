package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the slots collection.
func (repo *MongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Primary listing pattern: a doctor's slots by day.
		{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetName("doctor_day_idx"),
		},
		// Lock lookup at commit time.
		{
			Keys:    bson.D{{Key: "lock.lock_id", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("lock_id_idx"),
		},
		// Sweep pattern: locked slots ordered by expiry.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "lock.expires_at", Value: 1}},
			Options: options.Index().SetName("status_expiry_idx"),
		},
	}

	if _, err := repo.slotColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}
