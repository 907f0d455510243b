package usecase

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain errors surfaced by the engine. Every rejection maps to one of
// these; infrastructure failures pass through wrapped and are the only kind
// a caller should retry (from the top, the status checks make re-entry safe).
var (
	ErrWorkerNotFound = errors.New("worker not found")
	ErrSquadNotFound  = errors.New("squad not found")
	ErrOrderNotFound  = errors.New("order not found")

	ErrDuplicateOrder = errors.New("order already exists")
	ErrDuplicateSquad = errors.New("squad already exists")

	ErrSquadFull           = errors.New("squad already has the maximum number of members")
	ErrSquadTooSmall       = errors.New("squad has fewer members than required for an order")
	ErrPoolFull            = errors.New("application limit for this order reached")
	ErrNotEnoughApplicants = errors.New("not enough applicants to confirm the order")

	ErrOrderNotPending    = errors.New("order is not pending")
	ErrOrderNotInProgress = errors.New("order is not in progress")
	ErrOrderNotCompleted  = errors.New("order is not completed")
	ErrOrderTaken         = errors.New("order already taken by another squad")

	ErrAlreadyApplied = errors.New("worker already applied to this order")
	ErrNotApplied     = errors.New("worker has not applied to this order")
	ErrAlreadyRated   = errors.New("order already rated")
	ErrNotAssigned    = errors.New("worker is not assigned to this order")

	ErrBanned           = errors.New("worker is banned")
	ErrRestricted       = errors.New("worker is restricted")
	ErrRulesNotAccepted = errors.New("worker has not accepted the rules")
	ErrNoGameAccount    = errors.New("game account id is not set")
	ErrNoSquad          = errors.New("worker is not in a squad")

	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrEmptyGameAccount   = errors.New("game account id must not be empty")
	ErrEmptySquadName     = errors.New("squad name must not be empty")
	ErrEmptyOrderRef      = errors.New("order id must not be empty")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
