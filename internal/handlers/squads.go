package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/AlenaMolokova/escort/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CreateSquadHandler struct {
	directory DirectoryService
}

func NewCreateSquadHandler(directory DirectoryService) *CreateSquadHandler {
	return &CreateSquadHandler{directory: directory}
}

func (h *CreateSquadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	squad, err := h.directory.CreateSquad(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Squad %q created with id %d", squad.Name, squad.ID)
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"squad_id": squad.ID,
		"name":     squad.Name,
	})
}

type ListSquadsHandler struct {
	directory DirectoryService
}

func NewListSquadsHandler(directory DirectoryService) *ListSquadsHandler {
	return &ListSquadsHandler{directory: directory}
}

func (h *ListSquadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	squads, err := h.directory.ListSquads(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	type squadItem struct {
		SquadID       int64   `json:"squad_id"`
		Name          string  `json:"name"`
		MemberCount   int     `json:"member_count"`
		AverageRating float64 `json:"average_rating"`
	}
	resp := make([]squadItem, 0, len(squads))
	for _, s := range squads {
		item := squadItem{SquadID: s.ID, Name: s.Name, MemberCount: s.MemberCount}
		if s.RatingCount > 0 {
			item.AverageRating = float64(s.RatingSum) / float64(s.RatingCount)
		}
		resp = append(resp, item)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

type SquadStatsHandler struct {
	directory DirectoryService
}

func NewSquadStatsHandler(directory DirectoryService) *SquadStatsHandler {
	return &SquadStatsHandler{directory: directory}
}

func (h *SquadStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	squadID, err := strconv.ParseInt(chi.URLParam(r, "squadID"), 10, 64)
	if err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid squad id")
		return
	}

	stats, err := h.directory.SquadStats(r.Context(), squadID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, struct {
		Name            string          `json:"name"`
		MemberCount     int             `json:"member_count"`
		CompletedOrders int64           `json:"completed_orders"`
		TotalEarnings   decimal.Decimal `json:"total_earnings"`
	}{stats.Name, stats.MemberCount, stats.CompletedOrders, stats.TotalEarnings})
}

type SquadMembersHandler struct {
	directory DirectoryService
}

func NewSquadMembersHandler(directory DirectoryService) *SquadMembersHandler {
	return &SquadMembersHandler{directory: directory}
}

func (h *SquadMembersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	squadID, err := strconv.ParseInt(chi.URLParam(r, "squadID"), 10, 64)
	if err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid squad id")
		return
	}

	members, err := h.directory.SquadMembers(r.Context(), squadID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	type memberItem struct {
		WorkerID      int64  `json:"worker_id"`
		DisplayName   string `json:"display_name"`
		GameAccountID string `json:"game_account_id,omitempty"`
	}
	resp := make([]memberItem, 0, len(members))
	for _, m := range members {
		item := memberItem{WorkerID: m.ID, DisplayName: m.DisplayName}
		if m.GameAccountID.Valid {
			item.GameAccountID = m.GameAccountID.String
		}
		resp = append(resp, item)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
