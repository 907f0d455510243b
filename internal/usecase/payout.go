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
	"github.com/shopspring/decimal"
)

var payoutRate = decimal.RequireFromString(constants.PayoutRate)

// Engine converts won application sets into assignments and, once an order
// is rated, splits the earnings and updates reputation. It is the only code
// path besides the explicit admin credit that writes balances.
type Engine struct {
	gate        Gatekeeper
	orders      models.OrderStorage
	assignments models.AssignmentStorage
	workers     models.WorkerStorage
	notifier    Notifier
	now         func() time.Time
}

func NewEngine(gate Gatekeeper, orders models.OrderStorage, assignments models.AssignmentStorage, workers models.WorkerStorage, notifier Notifier, now func() time.Time) *Engine {
	return &Engine{gate: gate, orders: orders, assignments: assignments, workers: workers, notifier: notifier, now: now}
}

// ConfirmOrder transitions the order pending -> in_progress. The store reads
// the roster, picks the first applicant's squad as the winner, discards
// cross-squad applications, creates the assignments and clears the pool in
// one transaction holding the order row lock. Losing the transition race
// surfaces as ErrOrderTaken.
func (e *Engine) ConfirmOrder(ctx context.Context, order models.Order) (int, error) {
	res, err := e.orders.ConfirmOrder(ctx, order.ID, constants.PoolMinApplicants, constants.SquadMinForOrder)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return 0, ErrOrderTaken
	case errors.Is(err, models.ErrNotEnoughApplicants):
		return 0, ErrNotEnoughApplicants
	case errors.Is(err, models.ErrSquadTooSmall):
		return 0, ErrSquadTooSmall
	case err != nil:
		return 0, fmt.Errorf("failed to confirm order: %w", err)
	}

	gameIDs := make([]string, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		gameIDs = append(gameIDs, a.GameAccountID)
	}

	e.notifier.Send(context.WithoutCancel(ctx), []notify.Intent{
		notify.ToSquad(res.SquadID, fmt.Sprintf("Order #%s confirmed! Amount: %s. Game accounts: %s",
			order.ExternalID, order.Amount.StringFixed(2), strings.Join(gameIDs, ", "))),
		notify.ToAdmins(fmt.Sprintf("Order #%s taken by squad %d with %d workers",
			order.ExternalID, res.SquadID, len(res.Assignments))),
	})
	return len(res.Assignments), nil
}

// Complete marks an in-progress order as done. Only a worker holding an
// assignment for the order may complete it. Money is not touched here;
// payout happens when the customer rates the order.
func (e *Engine) Complete(ctx context.Context, orderRef string, workerID int64) error {
	if _, err := e.gate.Gate(ctx, workerID); err != nil {
		return err
	}

	order, err := e.orders.GetOrderByExternalID(ctx, orderRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order.Status != constants.StatusInProgress {
		return ErrOrderNotInProgress
	}

	if _, err := e.assignments.GetAssignment(ctx, order.ID, workerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotAssigned
		}
		return fmt.Errorf("failed to load assignment: %w", err)
	}

	err = e.orders.CompleteOrder(ctx, order.ID, e.now())
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotInProgress
	}
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}

	intents := []notify.Intent{
		notify.ToAdmins(fmt.Sprintf("Order #%s completed by worker %d", order.ExternalID, workerID)),
	}
	if order.SquadID.Valid {
		intents = append(intents, notify.ToSquad(order.SquadID.Int64,
			fmt.Sprintf("Order #%s marked as completed, waiting for the customer rating", order.ExternalID)))
	}
	e.notifier.Send(context.WithoutCancel(ctx), intents)
	return nil
}

// Rate finalizes a completed order with a customer rating of 1-5. Every
// assigned worker gets the rating added to reputation and rating aggregates
// and an even share of 95% of the order amount; the squad's rating aggregate
// grows by one entry. The whole effect is one transaction, and a repeat call
// fails because the order is no longer in completed status.
func (e *Engine) Rate(ctx context.Context, orderRef string, rating int32) (decimal.Decimal, error) {
	if rating < constants.MinRating || rating > constants.MaxRating {
		return decimal.Zero, ErrInvalidRating
	}

	order, err := e.orders.GetOrderByExternalID(ctx, orderRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrOrderNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load order: %w", err)
	}
	if order.Status == constants.StatusRated {
		return decimal.Zero, ErrAlreadyRated
	}
	if order.Status != constants.StatusCompleted {
		return decimal.Zero, ErrOrderNotCompleted
	}

	assignments, err := e.assignments.ListAssignments(ctx, order.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list assignments: %w", err)
	}

	share := decimal.Zero
	workerIDs := make([]int64, 0, len(assignments))
	for _, a := range assignments {
		workerIDs = append(workerIDs, a.WorkerID)
	}
	if len(workerIDs) > 0 {
		share = order.Amount.Mul(payoutRate).
			Div(decimal.NewFromInt(int64(len(workerIDs)))).
			RoundDown(2)
	}

	err = e.orders.RateOrder(ctx, order.ID, rating, order.SquadID, workerIDs, share)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrAlreadyRated
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to rate order: %w", err)
	}

	intents := []notify.Intent{
		notify.ToAdmins(fmt.Sprintf("Order #%s rated %d stars", order.ExternalID, rating)),
	}
	if order.SquadID.Valid {
		intents = append(intents, notify.ToSquad(order.SquadID.Int64,
			fmt.Sprintf("Order #%s rated %d stars, %s credited to each of %d workers",
				order.ExternalID, rating, share.StringFixed(2), len(workerIDs))))
	}
	e.notifier.Send(context.WithoutCancel(ctx), intents)
	return share, nil
}

// AdminCredit is the one balance write outside the payout transaction: an
// explicit admin top-up.
func (e *Engine) AdminCredit(ctx context.Context, workerID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	err := e.workers.CreditWorkerBalance(ctx, workerID, amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrWorkerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}

	e.notifier.Send(context.WithoutCancel(ctx), []notify.Intent{
		notify.ToWorker(workerID, fmt.Sprintf("Your balance was credited with %s", amount.StringFixed(2))),
		notify.ToAdmins(fmt.Sprintf("Balance of worker %d credited with %s", workerID, amount.StringFixed(2))),
	})
	return nil
}
