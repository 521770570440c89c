package slots

import (
	"context"
	"errors"
	"sync"

	"parkwatch/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore keeps slots in insertion order and serializes writes the way a
// single Mongo document would: last write wins.
type memStore struct {
	mu     sync.Mutex
	slots   []models.ParkingSlot
	err     error
	writes  int
	commits []models.SlotStatus
}

func newMemStore(seed ...models.ParkingSlot) *memStore {
	s := &memStore{}
	for _, slot := range seed {
		slot.ID = primitive.NewObjectID()
		slot.Normalize()
		s.slots = append(s.slots, slot)
	}
	return s
}

func (s *memStore) All(ctx context.Context) ([]models.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.ParkingSlot(nil), s.slots...), nil
}

func (s *memStore) Find(ctx context.Context, slotID string) (*models.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, slot := range s.slots {
		if slot.SlotID == slotID {
			found := slot
			return &found, nil
		}
	}
	return nil, ErrSlotNotFound
}

func (s *memStore) SetStatus(ctx context.Context, slotID string, status models.SlotStatus) (*models.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.slots {
		if s.slots[i].SlotID == slotID {
			s.slots[i].Status = status
			s.slots[i].IsOccupied = status.Occupied()
			s.writes++
			s.commits = append(s.commits, status)
			updated := s.slots[i]
			return &updated, nil
		}
	}
	return nil, ErrSlotNotFound
}

func (s *memStore) Replace(ctx context.Context, seed []models.ParkingSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.slots = nil
	for _, slot := range seed {
		slot.ID = primitive.NewObjectID()
		s.slots = append(s.slots, slot)
	}
	return nil
}

// committed returns the statuses written, in commit order.
func (s *memStore) committed() []models.SlotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SlotStatus(nil), s.commits...)
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

type published struct {
	event   string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{event: event, payload: payload})
	return nil
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

var errStoreDown = errors.New("connection refused")

func seedSlots() []models.ParkingSlot {
	return append([]models.ParkingSlot(nil), DefaultSeed...)
}
