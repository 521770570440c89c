package slots

import (
	"context"
	"errors"
	"net/http"
	"time"

	"parkwatch/models"
	"parkwatch/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

type Handlers struct {
	svc     *Service
	log     *zap.Logger
	baseURL string
}

func NewHandlers(svc *Service, log *zap.Logger, publicBaseURL string) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{svc: svc, log: log, baseURL: publicBaseURL}
}

// GetParkingData serves every slot grouped by location.
func (h *Handlers) GetParkingData(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.svc.ParkingData(ctx)
	if err != nil {
		h.log.Error("fetch parking data", zap.Error(err))
		utils.RespondWithServerError(w, "Server error fetching parking data.", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, data)
}

type sensorUpdate struct {
	SlotID     string           `json:"slotId"`
	IsOccupied models.Occupancy `json:"isOccupied"`
}

// SensorUpdate ingests a hardware occupancy report.
func (h *Handlers) SensorUpdate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in sensorUpdate
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	slot, err := h.svc.UpdateSlot(ctx, in.SlotID, bool(in.IsOccupied))
	if errors.Is(err, ErrSlotNotFound) {
		h.log.Warn("hardware update for unknown slotId", zap.String("slotId", in.SlotID))
		utils.RespondWithMessage(w, http.StatusNotFound, "Slot ID not found in database.")
		return
	}
	if err != nil {
		h.log.Error("sensor update", zap.String("slotId", in.SlotID), zap.Error(err))
		utils.RespondWithServerError(w, "Server error", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":     "Slot status updated successfully",
		"updatedSlot": slot,
	})
}
