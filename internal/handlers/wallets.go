package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"barbershop/internal/middleware"
	"barbershop/internal/models"
	"barbershop/internal/services"
)

func (h *Handler) WalletBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	balance, err := h.wallet.Balance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrWalletNotFound) {
			respondError(w, http.StatusNotFound, "wallet_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load balance")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"balance": valueToMoney(balance)})
}

type topUpRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) WalletTopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	balance, err := h.wallet.TopUp(r.Context(), userID, amountMinor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, "invalid_amount")
		case errors.Is(err, services.ErrTopUpBelowMinimum):
			respondError(w, http.StatusBadRequest, "topup_below_minimum")
		default:
			respondError(w, http.StatusInternalServerError, "topup_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"balance": valueToMoney(balance)})
}

type ledgerEntryResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Amount        string    `json:"amount"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

func toLedgerEntryResponses(entries []models.LedgerEntry) []ledgerEntryResponse {
	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ledgerEntryResponse{
			ID:            entry.ID,
			Kind:          entry.Kind,
			Amount:        valueToMoney(entry.Amount),
			BalanceBefore: valueToMoney(entry.BalanceBefore),
			BalanceAfter:  valueToMoney(entry.BalanceAfter),
			Description:   entry.Description,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return out
}

func (h *Handler) WalletTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parseLimitOffset(r, 50)
	entries, err := h.wallet.Entries(r.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, services.ErrWalletNotFound) {
			respondError(w, http.StatusNotFound, "wallet_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, toLedgerEntryResponses(entries))
}
