package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlenaMolokova/escort/internal/constants"
	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/AlenaMolokova/escort/internal/notify"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Notifier delivers notification intents fire-and-forget; implementations
// must never return delivery failures to the engine. Callers pass a context
// detached from request cancellation so a client disconnect does not abort
// delivery of an already-committed state change.
type Notifier interface {
	Send(ctx context.Context, intents []notify.Intent)
}

// Directory owns worker and squad records and gates every mutating engine
// call. The clock is injected so ban and restriction expiry can be tested.
type Directory struct {
	workers  models.WorkerStorage
	squads   models.SquadStorage
	notifier Notifier
	now      func() time.Time
}

func NewDirectory(workers models.WorkerStorage, squads models.SquadStorage, notifier Notifier, now func() time.Time) *Directory {
	return &Directory{workers: workers, squads: squads, notifier: notifier, now: now}
}

// Register creates the worker on first contact; repeat calls are no-ops.
func (d *Directory) Register(ctx context.Context, workerID int64, displayName string) (models.Worker, error) {
	if err := d.workers.CreateWorker(ctx, workerID, displayName); err != nil {
		return models.Worker{}, fmt.Errorf("failed to create worker: %w", err)
	}
	worker, err := d.workers.GetWorker(ctx, workerID)
	if err != nil {
		return models.Worker{}, fmt.Errorf("failed to load worker: %w", err)
	}
	return worker, nil
}

func (d *Directory) SetGameAccount(ctx context.Context, workerID int64, accountID string) error {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return ErrEmptyGameAccount
	}
	err := d.workers.UpdateGameAccountID(ctx, workerID, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrWorkerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update game account id: %w", err)
	}
	return nil
}

func (d *Directory) AcceptRules(ctx context.Context, workerID int64) error {
	err := d.workers.SetRulesAccepted(ctx, workerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrWorkerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to accept rules: %w", err)
	}
	return nil
}

// AssignToSquad moves the worker into the named squad, leaving any previous
// squad. A full squad (6 members not counting the worker) rejects the move.
func (d *Directory) AssignToSquad(ctx context.Context, workerID int64, squadName string) error {
	squad, err := d.squads.GetSquadByName(ctx, squadName)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSquadNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find squad: %w", err)
	}

	if _, err := d.workers.GetWorker(ctx, workerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWorkerNotFound
		}
		return fmt.Errorf("failed to load worker: %w", err)
	}

	err = d.workers.AssignWorkerSquad(ctx, workerID, squad.ID, constants.SquadMaxMembers)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSquadFull
	}
	if err != nil {
		return fmt.Errorf("failed to assign worker to squad: %w", err)
	}

	d.notifier.Send(context.WithoutCancel(ctx), []notify.Intent{
		notify.ToWorker(workerID, fmt.Sprintf("You joined squad %q", squad.Name)),
		notify.ToAdmins(fmt.Sprintf("Worker %d joined squad %q", workerID, squad.Name)),
	})
	return nil
}

func (d *Directory) RemoveWorker(ctx context.Context, workerID int64) error {
	err := d.workers.DeleteWorker(ctx, workerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrWorkerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	d.notifier.Send(context.WithoutCancel(ctx), []notify.Intent{
		notify.ToAdmins(fmt.Sprintf("Worker %d removed", workerID)),
	})
	return nil
}

// Gate checks whether the worker may participate in orders and returns the
// worker record for further precondition checks. Permanent ban outranks a
// timed ban, which outranks a restriction, which outranks the rules check.
// Read-only profile queries do not go through Gate.
func (d *Directory) Gate(ctx context.Context, workerID int64) (models.Worker, error) {
	worker, err := d.workers.GetWorker(ctx, workerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Worker{}, ErrWorkerNotFound
	}
	if err != nil {
		return models.Worker{}, fmt.Errorf("failed to load worker: %w", err)
	}

	now := d.now()
	switch {
	case worker.Banned:
		return models.Worker{}, ErrBanned
	case worker.BannedUntil.Valid && worker.BannedUntil.Time.After(now):
		return models.Worker{}, fmt.Errorf("%w until %s", ErrBanned, worker.BannedUntil.Time.Format(time.RFC3339))
	case worker.RestrictedUntil.Valid && worker.RestrictedUntil.Time.After(now):
		return models.Worker{}, fmt.Errorf("%w until %s", ErrRestricted, worker.RestrictedUntil.Time.Format(time.RFC3339))
	case !worker.RulesAccepted:
		return models.Worker{}, ErrRulesNotAccepted
	}
	return worker, nil
}

// Profile is a read path: it works for banned and restricted workers too.
func (d *Directory) Profile(ctx context.Context, workerID int64) (models.Worker, string, error) {
	worker, err := d.workers.GetWorker(ctx, workerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Worker{}, "", ErrWorkerNotFound
	}
	if err != nil {
		return models.Worker{}, "", fmt.Errorf("failed to load worker: %w", err)
	}

	var squadName string
	if worker.SquadID.Valid {
		squad, err := d.squads.GetSquad(ctx, worker.SquadID.Int64)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return models.Worker{}, "", fmt.Errorf("failed to load squad: %w", err)
		}
		squadName = squad.Name
	}
	return worker, squadName, nil
}

func (d *Directory) CreateSquad(ctx context.Context, name string) (models.Squad, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Squad{}, ErrEmptySquadName
	}
	squad, err := d.squads.CreateSquad(ctx, name)
	if isUniqueViolation(err) {
		return models.Squad{}, ErrDuplicateSquad
	}
	if err != nil {
		return models.Squad{}, fmt.Errorf("failed to create squad: %w", err)
	}
	d.notifier.Send(context.WithoutCancel(ctx), []notify.Intent{
		notify.ToAdmins(fmt.Sprintf("New squad %q created", squad.Name)),
	})
	return squad, nil
}

func (d *Directory) ListSquads(ctx context.Context) ([]models.SquadSummary, error) {
	return d.squads.ListSquads(ctx)
}

func (d *Directory) SquadStats(ctx context.Context, squadID int64) (models.SquadStats, error) {
	stats, err := d.squads.GetSquadStats(ctx, squadID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SquadStats{}, ErrSquadNotFound
	}
	if err != nil {
		return models.SquadStats{}, fmt.Errorf("failed to load squad stats: %w", err)
	}
	return stats, nil
}

func (d *Directory) SquadMembers(ctx context.Context, squadID int64) ([]models.Worker, error) {
	if _, err := d.squads.GetSquad(ctx, squadID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSquadNotFound
		}
		return nil, fmt.Errorf("failed to load squad: %w", err)
	}
	return d.squads.ListSquadMembers(ctx, squadID)
}

func (d *Directory) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	return d.workers.ListWorkers(ctx)
}

// Restrict sets the worker's ban and restriction state; zero times clear it.
func (d *Directory) Restrict(ctx context.Context, workerID int64, banned bool, bannedUntil, restrictedUntil time.Time) error {
	err := d.workers.SetWorkerRestrictions(ctx, workerID, banned,
		pgtype.Timestamptz{Time: bannedUntil, Valid: !bannedUntil.IsZero()},
		pgtype.Timestamptz{Time: restrictedUntil, Valid: !restrictedUntil.IsZero()})
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrWorkerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update restrictions: %w", err)
	}
	return nil
}
