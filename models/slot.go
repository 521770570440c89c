package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SlotStatus string

const (
	StatusAvailable   SlotStatus = "Available"
	StatusOccupied    SlotStatus = "Occupied"
	StatusBooked      SlotStatus = "Booked"
	StatusReserved    SlotStatus = "Reserved"
	StatusMaintenance SlotStatus = "Maintenance"
)

func (s SlotStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusBooked, StatusReserved, StatusMaintenance:
		return true
	}
	return false
}

// Occupied reports whether a slot in this status counts as occupied.
func (s SlotStatus) Occupied() bool {
	return s == StatusOccupied
}

// StatusFromOccupancy maps a sensor reading onto a status. Sensors only
// know about presence, so Booked, Reserved and Maintenance never come out.
func StatusFromOccupancy(occupied bool) SlotStatus {
	if occupied {
		return StatusOccupied
	}
	return StatusAvailable
}

type SlotType string

const (
	TypeStandard   SlotType = "Standard"
	TypeEVCharging SlotType = "EV Charging"
	TypeHandicap   SlotType = "Handicap"
)

func (t SlotType) Valid() bool {
	switch t {
	case TypeStandard, TypeEVCharging, TypeHandicap:
		return true
	}
	return false
}

type ParkingSlot struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	SlotID     string             `json:"slotId" bson:"slotId"`
	Location   string             `json:"location" bson:"location"`
	Status     SlotStatus         `json:"status" bson:"status"`
	Type       SlotType           `json:"type" bson:"type"`
	SensorID   string             `json:"sensorId,omitempty" bson:"sensorId,omitempty"`
	IsOccupied bool               `json:"isOccupied" bson:"isOccupied"`
}

// Validate checks required fields, enum membership and that isOccupied
// agrees with status.
func (p ParkingSlot) Validate() error {
	switch {
	case p.SlotID == "":
		return fmt.Errorf("slotId is required")
	case p.Location == "":
		return fmt.Errorf("slot %s: location is required", p.SlotID)
	case !p.Status.Valid():
		return fmt.Errorf("slot %s: invalid status %q", p.SlotID, p.Status)
	case !p.Type.Valid():
		return fmt.Errorf("slot %s: invalid type %q", p.SlotID, p.Type)
	case p.IsOccupied != p.Status.Occupied():
		return fmt.Errorf("slot %s: isOccupied=%t disagrees with status %s", p.SlotID, p.IsOccupied, p.Status)
	}
	return nil
}

// Normalize re-derives IsOccupied from Status.
func (p *ParkingSlot) Normalize() {
	p.IsOccupied = p.Status.Occupied()
}

// SlotEvent is the payload broadcast to viewers when a slot changes.
type SlotEvent struct {
	ID         primitive.ObjectID `json:"_id"`
	SlotID     string             `json:"slotId"`
	Location   string             `json:"location"`
	Status     SlotStatus         `json:"status"`
	IsOccupied bool               `json:"isOccupied"`
}

func (p ParkingSlot) Event() SlotEvent {
	return SlotEvent{
		ID:         p.ID,
		SlotID:     p.SlotID,
		Location:   p.Location,
		Status:     p.Status,
		IsOccupied: p.IsOccupied,
	}
}

type Location struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// LocationImage returns the image path shown for a location,
// e.g. "Main Gate" -> "images/main_gate.jpeg".
func LocationImage(name string) string {
	return "images/" + strings.ReplaceAll(strings.ToLower(name), " ", "_") + ".jpeg"
}
