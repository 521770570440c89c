package slots

import (
	"context"

	"parkwatch/models"

	"go.uber.org/zap"
)

// EventSlotUpdated is the real-time event emitted after a sensor update.
const EventSlotUpdated = "slotUpdated"

// Publisher pushes an event to whoever is listening right now. Delivery is
// best effort and nothing is replayed.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// ParkingData is the location-grouped view served to dashboards.
type ParkingData struct {
	Locations    []models.Location               `json:"locations"`
	ParkingSlots map[string][]models.ParkingSlot `json:"parkingSlots"`
}

type Service struct {
	store     Store
	publisher Publisher
	log       *zap.Logger
}

// NewService wires the slot services. publisher may be nil, in which case
// updates are persisted but never broadcast.
func NewService(store Store, publisher Publisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, publisher: publisher, log: log}
}

// ParkingData reads every slot and groups them by location in the order
// they come back from the store.
func (s *Service) ParkingData(ctx context.Context) (*ParkingData, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByLocation(all), nil
}

func GroupByLocation(all []models.ParkingSlot) *ParkingData {
	data := &ParkingData{
		Locations:    []models.Location{},
		ParkingSlots: map[string][]models.ParkingSlot{},
	}
	for _, slot := range all {
		if _, seen := data.ParkingSlots[slot.Location]; !seen {
			data.Locations = append(data.Locations, models.Location{
				Name:  slot.Location,
				Image: models.LocationImage(slot.Location),
			})
		}
		data.ParkingSlots[slot.Location] = append(data.ParkingSlots[slot.Location], slot)
	}
	return data
}

// UpdateSlot records a sensor reading and broadcasts the change. The
// broadcast happens only after the write succeeded.
func (s *Service) UpdateSlot(ctx context.Context, slotID string, occupied bool) (*models.ParkingSlot, error) {
	if slotID == "" {
		return nil, ErrSlotNotFound
	}

	status := models.StatusFromOccupancy(occupied)
	slot, err := s.store.SetStatus(ctx, slotID, status)
	if err != nil {
		return nil, err
	}

	s.log.Info("hardware update", zap.String("slotId", slot.SlotID), zap.String("status", string(status)))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, EventSlotUpdated, slot.Event()); err != nil {
			s.log.Warn("broadcast failed", zap.String("slotId", slot.SlotID), zap.Error(err))
		}
	}
	return slot, nil
}

// Slot looks up a single slot by its identifier.
func (s *Service) Slot(ctx context.Context, slotID string) (*models.ParkingSlot, error) {
	if slotID == "" {
		return nil, ErrSlotNotFound
	}
	return s.store.Find(ctx, slotID)
}
