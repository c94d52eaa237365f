package handlers

import (
	"log"
	"net/http"

	"delivery-log-service/internal/api/dto"
	"delivery-log-service/internal/ports"
)

// DeliveryHandler exposes read-only access to the logged deliveries.
type DeliveryHandler struct {
	Repo ports.DeliveryRepository
}

func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	recs, err := h.Repo.ListDeliveries(r.Context())
	if err != nil {
		log.Printf("list deliveries failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDeliveriesResponse{
		Deliveries: make([]dto.DeliveryResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		res.Deliveries = append(res.Deliveries, dto.DeliveryResponse{
			Date:        rec.Date,
			SenderID:    rec.SenderID,
			ClientIndex: rec.ClientIndex,
			Quantity:    rec.Quantity,
			FeedType:    rec.FeedType,
			Price:       rec.Price,
			Location:    rec.Location,
			Notes:       rec.Notes,
			Reminders:   rec.Reminders,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
