package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/AlenaMolokova/escort/internal/middleware"
	"github.com/AlenaMolokova/escort/internal/utils"
	"github.com/go-chi/chi/v5"
)

type applicationResponse struct {
	WorkerID      int64     `json:"worker_id"`
	SquadID       int64     `json:"squad_id"`
	GameAccountID string    `json:"game_account_id"`
	AppliedAt     time.Time `json:"applied_at"`
}

type JoinHandler struct {
	pool PoolService
}

func NewJoinHandler(pool PoolService) *JoinHandler {
	return &JoinHandler{pool: pool}
}

func (h *JoinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerID(r)
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderRef := chi.URLParam(r, "orderID")

	roster, err := h.pool.Join(r.Context(), orderRef, workerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]applicationResponse, 0, len(roster))
	for _, a := range roster {
		resp = append(resp, applicationResponse{
			WorkerID:      a.WorkerID,
			SquadID:       a.SquadID,
			GameAccountID: a.GameAccountID,
			AppliedAt:     a.AppliedAt,
		})
	}

	log.Printf("Worker %d applied to order %s (%d applicants)", workerID, orderRef, len(resp))
	utils.WriteJSON(w, http.StatusOK, resp)
}

type WithdrawHandler struct {
	pool PoolService
}

func NewWithdrawHandler(pool PoolService) *WithdrawHandler {
	return &WithdrawHandler{pool: pool}
}

func (h *WithdrawHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerID(r)
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderRef := chi.URLParam(r, "orderID")

	if err := h.pool.Withdraw(r.Context(), orderRef, workerID); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Worker %d withdrew from order %s", workerID, orderRef)
	w.WriteHeader(http.StatusOK)
}

type ConfirmHandler struct {
	pool PoolService
}

func NewConfirmHandler(pool PoolService) *ConfirmHandler {
	return &ConfirmHandler{pool: pool}
}

func (h *ConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerID(r)
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderRef := chi.URLParam(r, "orderID")

	assigned, err := h.pool.Confirm(r.Context(), orderRef, workerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Order %s confirmed by worker %d, %d assignments", orderRef, workerID, assigned)
	utils.WriteJSON(w, http.StatusOK, map[string]int{"assigned": assigned})
}
