package slots

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"parkwatch/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const qrSize = 256

// SlotURL is the link printed on a slot's signage.
func SlotURL(baseURL, slotID string) string {
	return baseURL + "/slots/" + url.PathEscape(slotID)
}

// SlotQR renders a PNG QR code pointing at the slot's page.
func (h *Handlers) SlotQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("slotId")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	slot, err := h.svc.Slot(ctx, slotID)
	if errors.Is(err, ErrSlotNotFound) {
		utils.RespondWithMessage(w, http.StatusNotFound, "Slot ID not found in database.")
		return
	}
	if err != nil {
		h.log.Error("lookup slot for qr", zap.String("slotId", slotID), zap.Error(err))
		utils.RespondWithServerError(w, "Server error", err)
		return
	}

	png, err := qrcode.Encode(SlotURL(h.baseURL, slot.SlotID), qrcode.Medium, qrSize)
	if err != nil {
		utils.RespondWithServerError(w, "Failed to generate QR code", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
