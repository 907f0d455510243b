package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/AlenaMolokova/escort/internal/middleware"
	"github.com/AlenaMolokova/escort/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CompleteHandler struct {
	payout PayoutService
}

func NewCompleteHandler(payout PayoutService) *CompleteHandler {
	return &CompleteHandler{payout: payout}
}

func (h *CompleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerID(r)
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderRef := chi.URLParam(r, "orderID")

	if err := h.payout.Complete(r.Context(), orderRef, workerID); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Order %s completed by worker %d", orderRef, workerID)
	w.WriteHeader(http.StatusOK)
}

type RateHandler struct {
	payout PayoutService
}

func NewRateHandler(payout PayoutService) *RateHandler {
	return &RateHandler{payout: payout}
}

func (h *RateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	orderRef := chi.URLParam(r, "orderID")

	var req struct {
		Rating int32 `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	share, err := h.payout.Rate(r.Context(), orderRef, req.Rating)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Order %s rated %d, share %s", orderRef, req.Rating, share.StringFixed(2))
	utils.WriteJSON(w, http.StatusOK, map[string]string{"share": share.StringFixed(2)})
}

// CreditHandler is the admin balance top-up.
type CreditHandler struct {
	payout PayoutService
}

func NewCreditHandler(payout PayoutService) *CreditHandler {
	return &CreditHandler{payout: payout}
}

func (h *CreditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID int64           `json:"worker_id"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.payout.AdminCredit(r.Context(), req.WorkerID, req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Credited %s to worker %d", req.Amount.StringFixed(2), req.WorkerID)
	w.WriteHeader(http.StatusOK)
}
