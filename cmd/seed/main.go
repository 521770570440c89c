package main

import (
	"context"
	"flag"
	"os"
	"time"

	"parkwatch/config"
	"parkwatch/db"
	"parkwatch/logging"
	"parkwatch/models"
	"parkwatch/slots"

	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "JSON array of slots to install instead of the default layout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Error("load config", zap.Error(err))
		os.Exit(1)
	}
	logger := logging.New(cfg.Environment)
	defer logger.Sync()

	if err := run(cfg, *file, logger); err != nil {
		logger.Error("seeding failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, file string, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seed := slots.DefaultSeed
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		if seed, err = slots.LoadSeed(f); err != nil {
			return err
		}
	}

	store, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	logger.Info("connected to MongoDB", zap.String("database", store.DB.Name()))

	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := slots.Seed(ctx, slots.NewMongoStore(store.Slots), seed); err != nil {
		return err
	}

	logger.Info("seeded parking slots", zap.Int("count", len(seed)), zap.Strings("slotIds", slotIDs(seed)))
	return nil
}

func slotIDs(seed []models.ParkingSlot) []string {
	ids := make([]string, len(seed))
	for i, s := range seed {
		ids[i] = s.SlotID
	}
	return ids
}
