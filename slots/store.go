package slots

import (
	"context"
	"errors"
	"fmt"

	"parkwatch/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrSlotNotFound = errors.New("slot not found")

// Store is the persistence the slot services need.
type Store interface {
	All(ctx context.Context) ([]models.ParkingSlot, error)
	Find(ctx context.Context, slotID string) (*models.ParkingSlot, error)
	// SetStatus touches only status and isOccupied and returns the
	// document as it is after the write.
	SetStatus(ctx context.Context, slotID string, status models.SlotStatus) (*models.ParkingSlot, error)
	// Replace drops every slot and inserts the given ones.
	Replace(ctx context.Context, seed []models.ParkingSlot) error
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) All(ctx context.Context) ([]models.ParkingSlot, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []models.ParkingSlot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("decode slots: %w", err)
	}
	for i := range slots {
		slots[i].Normalize()
	}
	return slots, nil
}

func (s *MongoStore) Find(ctx context.Context, slotID string) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	err := s.coll.FindOne(ctx, bson.M{"slotId": slotID}).Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find slot %s: %w", slotID, err)
	}
	slot.Normalize()
	return &slot, nil
}

func (s *MongoStore) SetStatus(ctx context.Context, slotID string, status models.SlotStatus) (*models.ParkingSlot, error) {
	filter := bson.M{"slotId": slotID}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"isOccupied": status.Occupied(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var slot models.ParkingSlot
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update slot %s: %w", slotID, err)
	}
	return &slot, nil
}

func (s *MongoStore) Replace(ctx context.Context, seed []models.ParkingSlot) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}
	if len(seed) == 0 {
		return nil
	}

	docs := make([]interface{}, len(seed))
	for i, slot := range seed {
		docs[i] = slot
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert slots: %w", err)
	}
	return nil
}
