package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"barbershop/internal/booking"
	"barbershop/internal/middleware"
	"barbershop/internal/models"
	"barbershop/internal/schedule"
	"barbershop/internal/services"
	"barbershop/internal/validator"

	"github.com/go-chi/chi/v5"
)

type bookingResponse struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id"`
	StaffID     string     `json:"staff_id"`
	ServiceID   string     `json:"service_id"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Price       string     `json:"price"`
	Commission  string     `json:"commission"`
	StaffNet    string     `json:"staff_net"`
	Status      string     `json:"status"`
	Reason      *string    `json:"cancel_reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func toBookingResponse(b models.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		ClientID:    b.ClientID,
		StaffID:     b.StaffID,
		ServiceID:   b.ServiceID,
		Date:        b.Date,
		Time:        b.SlotTime,
		Price:       valueToMoney(b.PriceMinor),
		Commission:  valueToMoney(b.Commission),
		StaffNet:    valueToMoney(b.StaffNet),
		Status:      b.Status,
		Reason:      b.CancelReason,
		CreatedAt:   b.CreatedAt,
		CompletedAt: b.CompletedAt,
		CancelledAt: b.CancelledAt,
	}
}

func toBookingResponses(bookings []models.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

type createBookingRequest struct {
	StaffID   string `json:"staff_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.StaffID == "" || req.ServiceID == "" {
		respondError(w, http.StatusBadRequest, "staff_id and service_id are required")
		return
	}
	if err := validator.ValidateDate(req.Date); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateSlotTime(req.Time); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.booking.Reserve(r.Context(), services.ReserveRequest{
		ClientID:  userID,
		StaffID:   req.StaffID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
		SlotTime:  req.Time,
	})
	if err != nil {
		respondBookingError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toBookingResponse(created))
}

func (h *Handler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.RoleFromContext(r.Context())
	summary, err := h.booking.Complete(r.Context(), services.CompleteRequest{
		BookingID: chi.URLParam(r, "id"),
		ActorID:   userID,
		ActorRole: role,
	})
	if err != nil {
		respondBookingError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"staff_net":  valueToMoney(summary.StaffNet),
		"commission": valueToMoney(summary.Commission),
	})
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.RoleFromContext(r.Context())
	var req cancelBookingRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	summary, err := h.booking.Cancel(r.Context(), services.CancelRequest{
		BookingID: chi.URLParam(r, "id"),
		ActorID:   userID,
		ActorRole: role,
		Reason:    req.Reason,
	})
	if err != nil {
		respondBookingError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"refund":      valueToMoney(summary.Refund),
		"fee":         valueToMoney(summary.Fee),
		"fee_applied": summary.FeeApplied,
	})
}

func (h *Handler) ListActiveBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	bookings, err := h.bookings.ListActiveByClient(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load bookings")
		return
	}
	respondJSON(w, http.StatusOK, toBookingResponses(bookings))
}

func (h *Handler) ListBookingHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parseLimitOffset(r, 20)
	bookings, err := h.bookings.ListHistoryByClient(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load history")
		return
	}
	respondJSON(w, http.StatusOK, toBookingResponses(bookings))
}

func (h *Handler) StaffDayBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	date := r.URL.Query().Get("date")
	if err := validator.ValidateDate(date); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookings, err := h.bookings.ListByStaffDate(r.Context(), userID, date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load bookings")
		return
	}
	respondJSON(w, http.StatusOK, toBookingResponses(bookings))
}

func respondBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSelfBooking):
		respondError(w, http.StatusBadRequest, "self_booking_not_allowed")
	case errors.Is(err, services.ErrPastSlot):
		respondError(w, http.StatusBadRequest, "past_slot")
	case errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, schedule.ErrInvalidTime):
		respondError(w, http.StatusBadRequest, "invalid_slot")
	case errors.Is(err, services.ErrServiceNotFound):
		respondError(w, http.StatusNotFound, "service_not_found")
	case errors.Is(err, services.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "insufficient_funds")
	case errors.Is(err, services.ErrSlotTaken):
		respondError(w, http.StatusConflict, "slot_taken")
	case errors.Is(err, services.ErrBookingNotFound):
		respondError(w, http.StatusNotFound, "booking_not_found")
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, booking.ErrAlreadyCompleted):
		respondError(w, http.StatusConflict, "already_completed")
	case errors.Is(err, booking.ErrAlreadyCancelled):
		respondError(w, http.StatusConflict, "already_cancelled")
	default:
		respondError(w, http.StatusInternalServerError, "booking_operation_failed")
	}
}
