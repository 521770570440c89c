package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Collection names match the existing deployment so a populated
// database works unchanged.
const (
	SlotsCollectionName = "parkingslots"
	UsersCollectionName = "users"

	defaultDatabase = "test"
)

// Store owns the Mongo client and the collections the service uses.
type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
	Slots  *mongo.Collection
	Users  *mongo.Collection
}

// DatabaseName picks the database: an explicit name wins, then the path
// component of the URI, then "test".
func DatabaseName(uri, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	cs, err := connstring.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse MONGO_URI: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return defaultDatabase, nil
}

// Connect dials Mongo, pings it and returns a Store bound to dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	name, err := DatabaseName(uri, dbName)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	return NewStore(client, name), nil
}

func NewStore(client *mongo.Client, dbName string) *Store {
	database := client.Database(dbName)
	return &Store{
		Client: client,
		DB:     database,
		Slots:  database.Collection(SlotsCollectionName),
		Users:  database.Collection(UsersCollectionName),
	}
}

// EnsureIndexes creates the unique indexes the data model relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.Slots.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slotId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create slotId index: %w", err)
	}
	if _, err := s.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
