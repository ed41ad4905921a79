package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medibook/database"
	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSlotRepo implements SlotRepository using MongoDB. It owns both the
// slots and appointments collections so the commit transaction can span them.
type MongoSlotRepo struct {
	slotColl *mongo.Collection
	apptColl *mongo.Collection
}

// NewMongoSlotRepo constructs a new instance of MongoSlotRepo.
func NewMongoSlotRepo() SlotRepository {
	db := database.DB()
	return &MongoSlotRepo{
		slotColl: db.Collection("slots"),
		apptColl: db.Collection("appointments"),
	}
}

func (repo *MongoSlotRepo) Insert(ctx context.Context, slot *models.Slot) error {
	now := time.Now()
	if slot.Status == "" {
		slot.Status = models.SlotStatusAvailable
	}
	slot.CreatedAt = now
	slot.UpdatedAt = now
	if _, err := repo.slotColl.InsertOne(ctx, slot); err != nil {
		return fmt.Errorf("failed to insert slot: %w", err)
	}
	return nil
}

func (repo *MongoSlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	var slot models.Slot
	if err := repo.slotColl.FindOne(ctx, bson.M{"_id": slotID}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("error fetching slot %s: %w", slotID, err)
	}
	return &slot, nil
}

func (repo *MongoSlotRepo) GetByLockID(ctx context.Context, lockID string) (*models.Slot, error) {
	var slot models.Slot
	if err := repo.slotColl.FindOne(ctx, bson.M{"lock.lock_id": lockID}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("error fetching slot by lock %s: %w", lockID, err)
	}
	return &slot, nil
}

func (repo *MongoSlotRepo) ListByDoctor(ctx context.Context, doctorID string) ([]models.Slot, error) {
	cursor, err := repo.slotColl.Find(ctx, bson.M{"doctor_id": doctorID})
	if err != nil {
		return nil, fmt.Errorf("error fetching slots for doctor %s: %w", doctorID, err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding slots: %w", err)
	}
	return slots, nil
}

// AcquireLock is the single indivisible check-and-set on the slot document:
// the filter only matches while status is "available", so no interleaving can
// observe "available" twice between check and set.
func (repo *MongoSlotRepo) AcquireLock(ctx context.Context, slotID string, lock *models.SlotLock) error {
	filter := bson.M{"_id": slotID, "status": models.SlotStatusAvailable}
	update := bson.M{
		"$set": bson.M{
			"status":     models.SlotStatusLocked,
			"lock":       lock,
			"updated_at": time.Now(),
		},
	}

	res, err := repo.slotColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	if res.MatchedCount == 0 {
		// Lost the race or bad identifier; one read to tell the two apart.
		if _, err := repo.GetByID(ctx, slotID); err != nil {
			return err
		}
		return ErrSlotUnavailable
	}
	return nil
}

func (repo *MongoSlotRepo) ReleaseLock(ctx context.Context, lockID string) error {
	filter := bson.M{"status": models.SlotStatusLocked, "lock.lock_id": lockID}
	update := bson.M{
		"$set":   bson.M{"status": models.SlotStatusAvailable, "updated_at": time.Now()},
		"$unset": bson.M{"lock": ""},
	}
	// MatchedCount of zero means the lock was already superseded, swept or
	// consumed; release is idempotent so that is not an error.
	if _, err := repo.slotColl.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}

func (repo *MongoSlotRepo) ReclaimExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":          models.SlotStatusLocked,
		"lock.expires_at": bson.M{"$lte": now},
	}
	update := bson.M{
		"$set":   bson.M{"status": models.SlotStatusAvailable, "updated_at": now},
		"$unset": bson.M{"lock": ""},
	}
	res, err := repo.slotColl.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to reclaim expired locks: %w", err)
	}
	return res.ModifiedCount, nil
}

// CommitBooking performs the three-effect transition as one transaction:
// appointment insert, slot -> booked, lock discarded. The slot update filter
// re-checks that the exact lock is still live, which resolves the race with a
// concurrent sweep-and-relock; the unique index on appointments.slot_id is
// the structural backstop.
func (repo *MongoSlotRepo) CommitBooking(ctx context.Context, lockID string, appt *models.Appointment) error {
	client := repo.slotColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := repo.apptColl.InsertOne(sc, appt); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrBookingConflict
			}
			return fmt.Errorf("insert appointment failed: %w", err)
		}

		filter := bson.M{
			"_id":          appt.SlotID,
			"status":       models.SlotStatusLocked,
			"lock.lock_id": lockID,
		}
		update := bson.M{
			"$set":   bson.M{"status": models.SlotStatusBooked, "updated_at": time.Now()},
			"$unset": bson.M{"lock": ""},
		}

		res, err := repo.slotColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("slot transition failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrBookingConflict
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, ErrBookingConflict) {
			return ErrBookingConflict
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
