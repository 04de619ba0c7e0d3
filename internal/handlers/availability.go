package handlers

import (
	"net/http"

	"barbershop/internal/validator"
)

func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	staffID := r.URL.Query().Get("staff_id")
	date := r.URL.Query().Get("date")
	if staffID == "" {
		respondError(w, http.StatusBadRequest, "staff_id is required")
		return
	}
	if err := validator.ValidateDate(date); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	slots, err := h.resolver.AvailableSlots(r.Context(), staffID, date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to resolve availability")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"date":  date,
		"slots": slots,
	})
}

func (h *Handler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	staffID := r.URL.Query().Get("staff_id")
	if staffID == "" {
		respondError(w, http.StatusBadRequest, "staff_id is required")
		return
	}
	days, err := h.resolver.AvailableDates(r.Context(), staffID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to resolve availability")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"days": days})
}
