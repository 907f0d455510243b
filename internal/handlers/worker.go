package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/AlenaMolokova/escort/internal/middleware"
	"github.com/AlenaMolokova/escort/internal/utils"
	"github.com/shopspring/decimal"
)

type RegisterHandler struct {
	directory DirectoryService
}

func NewRegisterHandler(directory DirectoryService) *RegisterHandler {
	return &RegisterHandler{directory: directory}
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerID(r)
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = "Unknown"
	}

	worker, err := h.directory.Register(r.Context(), workerID, req.DisplayName)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Worker %d (%s) registered", worker.ID, worker.DisplayName)
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"worker_id":    worker.ID,
		"display_name": worker.DisplayName,
	})
}

type GameAccountHandler struct {
	directory DirectoryService
}

func NewGameAccountHandler(directory DirectoryService) *GameAccountHandler {
	return &GameAccountHandler{directory: directory}
}

func (h *GameAccountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerID(r)
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		GameAccountID string `json:"game_account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.directory.SetGameAccount(r.Context(), workerID, req.GameAccountID); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Worker %d set game account id", workerID)
	w.WriteHeader(http.StatusOK)
}

type RulesHandler struct {
	directory DirectoryService
}

func NewRulesHandler(directory DirectoryService) *RulesHandler {
	return &RulesHandler{directory: directory}
}

func (h *RulesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerID(r)
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.directory.AcceptRules(r.Context(), workerID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type profileResponse struct {
	WorkerID        int64           `json:"worker_id"`
	DisplayName     string          `json:"display_name"`
	GameAccountID   string          `json:"game_account_id,omitempty"`
	Squad           string          `json:"squad,omitempty"`
	Balance         decimal.Decimal `json:"balance"`
	Reputation      int64           `json:"reputation"`
	CompletedOrders int64           `json:"completed_orders"`
	AverageRating   float64         `json:"average_rating"`
	RulesAccepted   bool            `json:"rules_accepted"`
}

type ProfileHandler struct {
	directory DirectoryService
}

func NewProfileHandler(directory DirectoryService) *ProfileHandler {
	return &ProfileHandler{directory: directory}
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerID(r)
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	worker, squadName, err := h.directory.Profile(r.Context(), workerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := profileResponse{
		WorkerID:        worker.ID,
		DisplayName:     worker.DisplayName,
		Squad:           squadName,
		Balance:         worker.Balance,
		Reputation:      worker.Reputation,
		CompletedOrders: worker.CompletedOrders,
		RulesAccepted:   worker.RulesAccepted,
	}
	if worker.GameAccountID.Valid {
		resp.GameAccountID = worker.GameAccountID.String
	}
	if worker.RatingCount > 0 {
		resp.AverageRating = float64(worker.RatingSum) / float64(worker.RatingCount)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
