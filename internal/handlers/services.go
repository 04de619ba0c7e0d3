package handlers

import (
	"net/http"
	"time"

	"barbershop/internal/models"
)

type serviceResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           string    `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

func toServiceResponses(services []models.Service) []serviceResponse {
	out := make([]serviceResponse, 0, len(services))
	for _, svc := range services {
		out = append(out, serviceResponse{
			ID:              svc.ID,
			Name:            svc.Name,
			Description:     svc.Description,
			Price:           valueToMoney(svc.PriceMinor),
			DurationMinutes: svc.DurationMinutes,
			CreatedAt:       svc.CreatedAt,
		})
	}
	return out
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load services")
		return
	}
	respondJSON(w, http.StatusOK, toServiceResponses(services))
}
