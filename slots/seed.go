package slots

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"parkwatch/models"
)

// DefaultSeed is the slot layout installed by the seeding tool.
var DefaultSeed = []models.ParkingSlot{
	{SlotID: "P-1", Location: "CMR", Status: models.StatusAvailable, Type: models.TypeStandard, SensorID: "sensor-1"},
	{SlotID: "P-2", Location: "CMR", Status: models.StatusAvailable, Type: models.TypeStandard, SensorID: "sensor-2"},
	{SlotID: "EV-P1", Location: "CMR", Status: models.StatusAvailable, Type: models.TypeEVCharging, SensorID: "sensor-3"},
	{SlotID: "EV-P2", Location: "CMR", Status: models.StatusAvailable, Type: models.TypeEVCharging, SensorID: "sensor-4"},
}

// LoadSeed reads a JSON array of slots. isOccupied is derived from status
// and any value in the file is ignored.
func LoadSeed(r io.Reader) ([]models.ParkingSlot, error) {
	var seed []models.ParkingSlot
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i := range seed {
		seed[i].Normalize()
	}
	return seed, nil
}

// Seed replaces every slot in the store. The seed is validated as a whole
// before anything is deleted.
func Seed(ctx context.Context, store Store, seed []models.ParkingSlot) error {
	ids := make(map[string]struct{}, len(seed))
	for _, slot := range seed {
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("invalid seed: %w", err)
		}
		if _, dup := ids[slot.SlotID]; dup {
			return fmt.Errorf("invalid seed: duplicate slotId %s", slot.SlotID)
		}
		ids[slot.SlotID] = struct{}{}
	}
	return store.Replace(ctx, seed)
}
