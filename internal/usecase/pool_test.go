package usecase

import (
	"context"
	"testing"

	"github.com/AlenaMolokova/escort/internal/constants"
	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/AlenaMolokova/escort/internal/testutils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func eligibleWorker(id, squadID int64) models.Worker {
	return models.Worker{
		ID:            id,
		DisplayName:   "Worker",
		GameAccountID: pgtype.Text{String: "PUBG-1", Valid: true},
		SquadID:       pgtype.Int8{Int64: squadID, Valid: true},
		RulesAccepted: true,
	}
}

func pendingOrder(id int64, ref string) models.Order {
	return models.Order{
		ID:         id,
		ExternalID: ref,
		Amount:     decimal.NewFromInt(1000),
		Status:     constants.StatusPending,
	}
}

type poolMocks struct {
	gate     *testutils.MockGatekeeper
	orders   *testutils.MockOrderStorage
	apps     *testutils.MockApplicationStorage
	engine   *testutils.MockConfirmEngine
	notifier *testutils.MockNotifier
}

func newTestPool() (*Pool, poolMocks) {
	m := poolMocks{
		gate:     new(testutils.MockGatekeeper),
		orders:   new(testutils.MockOrderStorage),
		apps:     new(testutils.MockApplicationStorage),
		engine:   new(testutils.MockConfirmEngine),
		notifier: new(testutils.MockNotifier),
	}
	p := NewPool(m.gate, m.orders, m.apps, m.engine, m.notifier, fixedClock)
	return p, m
}

func TestJoin_Success(t *testing.T) {
	p, m := newTestPool()
	ctx := context.Background()

	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(pendingOrder(10, "123"), nil)
	m.apps.On("CreateApplication", mock.Anything, mock.Anything, constants.PoolMaxApplicants).Return(nil)
	m.apps.On("ListApplications", mock.Anything, int64(10)).Return([]models.Application{
		{OrderID: 10, WorkerID: 1, SquadID: 3, GameAccountID: "PUBG-1", AppliedAt: testNow},
	}, nil)
	m.notifier.On("Send", mock.Anything, mock.Anything).Return()

	roster, err := p.Join(ctx, "123", 1)
	assert.NoError(t, err)
	assert.Len(t, roster, 1)
	assert.Equal(t, int64(1), roster[0].WorkerID)
	m.apps.AssertExpectations(t)
}

func TestJoin_NoGameAccount(t *testing.T) {
	p, m := newTestPool()
	worker := eligibleWorker(1, 3)
	worker.GameAccountID = pgtype.Text{}
	m.gate.On("Gate", mock.Anything, int64(1)).Return(worker, nil)

	_, err := p.Join(context.Background(), "123", 1)
	assert.ErrorIs(t, err, ErrNoGameAccount)
}

func TestJoin_NoSquad(t *testing.T) {
	p, m := newTestPool()
	worker := eligibleWorker(1, 3)
	worker.SquadID = pgtype.Int8{}
	m.gate.On("Gate", mock.Anything, int64(1)).Return(worker, nil)

	_, err := p.Join(context.Background(), "123", 1)
	assert.ErrorIs(t, err, ErrNoSquad)
}

func TestJoin_OrderNotPending(t *testing.T) {
	p, m := newTestPool()
	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)
	order := pendingOrder(10, "123")
	order.Status = constants.StatusInProgress
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(order, nil)

	_, err := p.Join(context.Background(), "123", 1)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestJoin_AlreadyApplied(t *testing.T) {
	p, m := newTestPool()
	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(pendingOrder(10, "123"), nil)
	m.apps.On("CreateApplication", mock.Anything, mock.Anything, constants.PoolMaxApplicants).
		Return(&pgconn.PgError{Code: "23505"})

	_, err := p.Join(context.Background(), "123", 1)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestJoin_PoolFull(t *testing.T) {
	p, m := newTestPool()
	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(pendingOrder(10, "123"), nil)
	m.apps.On("CreateApplication", mock.Anything, mock.Anything, constants.PoolMaxApplicants).
		Return(pgx.ErrNoRows)

	_, err := p.Join(context.Background(), "123", 1)
	assert.ErrorIs(t, err, ErrPoolFull)
}

func TestJoin_RacedWithConfirm(t *testing.T) {
	p, m := newTestPool()
	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)

	// First read sees pending, the insert loses to a concurrent confirm and
	// the re-read sees in_progress.
	taken := pendingOrder(10, "123")
	taken.Status = constants.StatusInProgress
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(pendingOrder(10, "123"), nil).Once()
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(taken, nil).Once()
	m.apps.On("CreateApplication", mock.Anything, mock.Anything, constants.PoolMaxApplicants).
		Return(pgx.ErrNoRows)

	_, err := p.Join(context.Background(), "123", 1)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestWithdraw_NotApplied(t *testing.T) {
	p, m := newTestPool()
	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(pendingOrder(10, "123"), nil)
	m.apps.On("DeleteApplication", mock.Anything, int64(10), int64(1)).Return(pgx.ErrNoRows)

	err := p.Withdraw(context.Background(), "123", 1)
	assert.ErrorIs(t, err, ErrNotApplied)
}

func TestWithdraw_Success(t *testing.T) {
	p, m := newTestPool()
	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(pendingOrder(10, "123"), nil)
	m.apps.On("DeleteApplication", mock.Anything, int64(10), int64(1)).Return(nil)

	err := p.Withdraw(context.Background(), "123", 1)
	assert.NoError(t, err)
}

func TestConfirm_Success(t *testing.T) {
	p, m := newTestPool()
	order := pendingOrder(10, "123")

	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(order, nil)
	m.engine.On("ConfirmOrder", mock.Anything, order).Return(2, nil)

	assigned, err := p.Confirm(context.Background(), "123", 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, assigned)
	m.engine.AssertExpectations(t)

	// The roster must only be read inside the store transaction: a pool-level
	// snapshot would let a withdraw committing before the transition still get
	// its worker assigned and paid.
	m.apps.AssertNotCalled(t, "ListApplications", mock.Anything, int64(10))
}

func TestConfirm_NotEnoughApplicants(t *testing.T) {
	p, m := newTestPool()
	order := pendingOrder(10, "123")
	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(order, nil)
	m.engine.On("ConfirmOrder", mock.Anything, order).Return(0, ErrNotEnoughApplicants)

	_, err := p.Confirm(context.Background(), "123", 1)
	assert.ErrorIs(t, err, ErrNotEnoughApplicants)
}

func TestConfirm_OrderNotPending(t *testing.T) {
	p, m := newTestPool()
	m.gate.On("Gate", mock.Anything, int64(1)).Return(eligibleWorker(1, 3), nil)
	order := pendingOrder(10, "123")
	order.Status = constants.StatusCompleted
	m.orders.On("GetOrderByExternalID", mock.Anything, "123").Return(order, nil)

	_, err := p.Confirm(context.Background(), "123", 1)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}
