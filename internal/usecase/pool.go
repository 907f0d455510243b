package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlenaMolokova/escort/internal/constants"
	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/AlenaMolokova/escort/internal/notify"
	"github.com/jackc/pgx/v5"
)

// Gatekeeper is the Directory check every mutating call goes through.
type Gatekeeper interface {
	Gate(ctx context.Context, workerID int64) (models.Worker, error)
}

// ConfirmEngine resolves the application pool for an order into durable
// assignments.
type ConfirmEngine interface {
	ConfirmOrder(ctx context.Context, order models.Order) (int, error)
}

// Pool collects join requests for pending orders. Applications are
// transient: the pool is cleared atomically when the order is confirmed.
type Pool struct {
	gate     Gatekeeper
	orders   models.OrderStorage
	apps     models.ApplicationStorage
	engine   ConfirmEngine
	notifier Notifier
	now      func() time.Time
}

func NewPool(gate Gatekeeper, orders models.OrderStorage, apps models.ApplicationStorage, engine ConfirmEngine, notifier Notifier, now func() time.Time) *Pool {
	return &Pool{gate: gate, orders: orders, apps: apps, engine: engine, notifier: notifier, now: now}
}

// Join files an application for a pending order and returns the updated
// roster in join order. The insert itself re-checks the pool cap and the
// order status, so a join racing a confirm either lands before the pool is
// cleared or is rejected, never half-applied.
func (p *Pool) Join(ctx context.Context, orderRef string, workerID int64) ([]models.Application, error) {
	worker, err := p.gate.Gate(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !worker.GameAccountID.Valid || worker.GameAccountID.String == "" {
		return nil, ErrNoGameAccount
	}
	if !worker.SquadID.Valid {
		return nil, ErrNoSquad
	}

	order, err := p.getOrder(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.StatusPending {
		return nil, ErrOrderNotPending
	}

	app := models.Application{
		OrderID:       order.ID,
		WorkerID:      worker.ID,
		SquadID:       worker.SquadID.Int64,
		GameAccountID: worker.GameAccountID.String,
		AppliedAt:     p.now(),
	}
	err = p.apps.CreateApplication(ctx, app, constants.PoolMaxApplicants)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyApplied
	}
	if errors.Is(err, pgx.ErrNoRows) {
		// The conditional insert matched nothing: either the pool is at
		// capacity or the order left pending in the meantime.
		current, rerr := p.getOrder(ctx, orderRef)
		if rerr == nil && current.Status != constants.StatusPending {
			return nil, ErrOrderNotPending
		}
		return nil, ErrPoolFull
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	roster, err := p.apps.ListApplications(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	p.notifier.Send(context.WithoutCancel(ctx), []notify.Intent{
		notify.ToSquad(worker.SquadID.Int64, fmt.Sprintf("%s applied to order #%s (%d/%d applicants)",
			worker.DisplayName, order.ExternalID, len(roster), constants.PoolMaxApplicants)),
	})
	return roster, nil
}

// Withdraw removes the caller's own application; other applicants are
// unaffected.
func (p *Pool) Withdraw(ctx context.Context, orderRef string, workerID int64) error {
	if _, err := p.gate.Gate(ctx, workerID); err != nil {
		return err
	}
	order, err := p.getOrder(ctx, orderRef)
	if err != nil {
		return err
	}

	err = p.apps.DeleteApplication(ctx, order.ID, workerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotApplied
	}
	if err != nil {
		return fmt.Errorf("failed to withdraw application: %w", err)
	}
	return nil
}

// Confirm resolves the pool for an order. The roster read, winner selection
// and quorum checks happen inside the engine's store transaction together
// with the status transition, so a join or withdraw racing this call either
// lands before the roster is read or is rejected; no snapshot is taken here.
func (p *Pool) Confirm(ctx context.Context, orderRef string, workerID int64) (int, error) {
	if _, err := p.gate.Gate(ctx, workerID); err != nil {
		return 0, err
	}
	order, err := p.getOrder(ctx, orderRef)
	if err != nil {
		return 0, err
	}
	if order.Status != constants.StatusPending {
		return 0, ErrOrderNotPending
	}

	return p.engine.ConfirmOrder(ctx, order)
}

func (p *Pool) getOrder(ctx context.Context, orderRef string) (models.Order, error) {
	order, err := p.orders.GetOrderByExternalID(ctx, orderRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}
