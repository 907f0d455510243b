package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/AlenaMolokova/escort/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// AssignWorkerHandler puts a worker into a squad, moving them out of any
// previous one.
type AssignWorkerHandler struct {
	directory DirectoryService
}

func NewAssignWorkerHandler(directory DirectoryService) *AssignWorkerHandler {
	return &AssignWorkerHandler{directory: directory}
}

func (h *AssignWorkerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID  int64  `json:"worker_id"`
		SquadName string `json:"squad_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.directory.AssignToSquad(r.Context(), req.WorkerID, req.SquadName); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Worker %d assigned to squad %q", req.WorkerID, req.SquadName)
	w.WriteHeader(http.StatusOK)
}

type RemoveWorkerHandler struct {
	directory DirectoryService
}

func NewRemoveWorkerHandler(directory DirectoryService) *RemoveWorkerHandler {
	return &RemoveWorkerHandler{directory: directory}
}

func (h *RemoveWorkerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, err := strconv.ParseInt(chi.URLParam(r, "workerID"), 10, 64)
	if err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid worker id")
		return
	}

	if err := h.directory.RemoveWorker(r.Context(), workerID); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Worker %d removed", workerID)
	w.WriteHeader(http.StatusOK)
}

type ListWorkersHandler struct {
	directory DirectoryService
}

func NewListWorkersHandler(directory DirectoryService) *ListWorkersHandler {
	return &ListWorkersHandler{directory: directory}
}

func (h *ListWorkersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workers, err := h.directory.ListWorkers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	type workerItem struct {
		WorkerID    int64           `json:"worker_id"`
		DisplayName string          `json:"display_name"`
		Balance     decimal.Decimal `json:"balance"`
		Reputation  int64           `json:"reputation"`
		Banned      bool            `json:"banned,omitempty"`
	}
	resp := make([]workerItem, 0, len(workers))
	for _, wk := range workers {
		resp = append(resp, workerItem{
			WorkerID:    wk.ID,
			DisplayName: wk.DisplayName,
			Balance:     wk.Balance,
			Reputation:  wk.Reputation,
			Banned:      wk.Banned,
		})
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// RestrictHandler sets or clears a worker's ban and restriction timestamps.
type RestrictHandler struct {
	directory DirectoryService
}

func NewRestrictHandler(directory DirectoryService) *RestrictHandler {
	return &RestrictHandler{directory: directory}
}

func (h *RestrictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, err := strconv.ParseInt(chi.URLParam(r, "workerID"), 10, 64)
	if err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid worker id")
		return
	}

	var req struct {
		Banned          bool       `json:"banned"`
		BannedUntil     *time.Time `json:"banned_until"`
		RestrictedUntil *time.Time `json:"restricted_until"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var bannedUntil, restrictedUntil time.Time
	if req.BannedUntil != nil {
		bannedUntil = *req.BannedUntil
	}
	if req.RestrictedUntil != nil {
		restrictedUntil = *req.RestrictedUntil
	}

	if err := h.directory.Restrict(r.Context(), workerID, req.Banned, bannedUntil, restrictedUntil); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Updated restrictions for worker %d (banned=%v)", workerID, req.Banned)
	w.WriteHeader(http.StatusOK)
}
