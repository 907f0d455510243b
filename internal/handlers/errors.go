package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/AlenaMolokova/escort/internal/usecase"
	"github.com/AlenaMolokova/escort/internal/utils"
)

// writeDomainError maps the engine's error taxonomy to HTTP statuses.
// Unrecognized errors are infrastructure failures: logged and returned as 500
// so the caller can retry the whole operation.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrWorkerNotFound),
		errors.Is(err, usecase.ErrSquadNotFound),
		errors.Is(err, usecase.ErrOrderNotFound):
		utils.WriteJSONError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, usecase.ErrDuplicateOrder),
		errors.Is(err, usecase.ErrDuplicateSquad),
		errors.Is(err, usecase.ErrAlreadyApplied),
		errors.Is(err, usecase.ErrNotApplied),
		errors.Is(err, usecase.ErrAlreadyRated),
		errors.Is(err, usecase.ErrOrderTaken),
		errors.Is(err, usecase.ErrOrderNotPending),
		errors.Is(err, usecase.ErrOrderNotInProgress),
		errors.Is(err, usecase.ErrOrderNotCompleted),
		errors.Is(err, usecase.ErrSquadFull),
		errors.Is(err, usecase.ErrSquadTooSmall),
		errors.Is(err, usecase.ErrPoolFull),
		errors.Is(err, usecase.ErrNotEnoughApplicants):
		utils.WriteJSONError(w, http.StatusConflict, err.Error())

	case errors.Is(err, usecase.ErrBanned),
		errors.Is(err, usecase.ErrRestricted),
		errors.Is(err, usecase.ErrRulesNotAccepted),
		errors.Is(err, usecase.ErrNoGameAccount),
		errors.Is(err, usecase.ErrNoSquad),
		errors.Is(err, usecase.ErrNotAssigned):
		utils.WriteJSONError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrInvalidRating),
		errors.Is(err, usecase.ErrEmptyGameAccount),
		errors.Is(err, usecase.ErrEmptySquadName),
		errors.Is(err, usecase.ErrEmptyOrderRef):
		utils.WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		log.Printf("Internal error: %v", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
