package slots

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"parkwatch/models"
	"parkwatch/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

// LocationSummary counts slots per state for one location.
type LocationSummary struct {
	Name      string
	Total     int
	Available int
	Occupied  int
	Other     int
}

func Summarize(data *ParkingData) []LocationSummary {
	out := make([]LocationSummary, 0, len(data.Locations))
	for _, loc := range data.Locations {
		sum := LocationSummary{Name: loc.Name}
		for _, slot := range data.ParkingSlots[loc.Name] {
			sum.Total++
			switch slot.Status {
			case models.StatusAvailable:
				sum.Available++
			case models.StatusOccupied:
				sum.Occupied++
			default:
				sum.Other++
			}
		}
		out = append(out, sum)
	}
	return out
}

// RenderOccupancyReport writes a one-page PDF table of per-location counts.
func RenderOccupancyReport(summaries []LocationSummary, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Parking Occupancy Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, "Generated "+generated.UTC().Format(time.RFC1123))
	pdf.Ln(12)

	widths := []float64{70, 25, 30, 30, 25}
	pdf.SetFont("Arial", "B", 11)
	for i, head := range []string{"Location", "Total", "Available", "Occupied", "Other"} {
		pdf.CellFormat(widths[i], 8, head, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	for _, s := range summaries {
		pdf.CellFormat(widths[0], 8, s.Name, "1", 0, "L", false, 0, "")
		for i, n := range []int{s.Total, s.Available, s.Occupied, s.Other} {
			pdf.CellFormat(widths[i+1], 8, fmt.Sprint(n), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OccupancyReport serves the PDF report for all locations.
func (h *Handlers) OccupancyReport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.svc.ParkingData(ctx)
	if err != nil {
		h.log.Error("fetch parking data for report", zap.Error(err))
		utils.RespondWithServerError(w, "Server error fetching parking data.", err)
		return
	}

	pdf, err := RenderOccupancyReport(Summarize(data), time.Now())
	if err != nil {
		utils.RespondWithServerError(w, "Failed to generate PDF", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=occupancy-report.pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
