package usecase

import (
	"context"
	"testing"

	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/AlenaMolokova/escort/internal/testutils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestOrders() (*Orders, *testutils.MockOrderStorage, *testutils.MockNotifier) {
	storage := new(testutils.MockOrderStorage)
	notifier := new(testutils.MockNotifier)
	return NewOrders(storage, notifier), storage, notifier
}

func TestIngest_Success(t *testing.T) {
	o, storage, notifier := newTestOrders()
	amount := decimal.NewFromInt(1000)

	storage.On("CreateOrder", mock.Anything, "123", "Erangel, squad carry",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(amount) })).
		Return(pendingOrder(10, "123"), nil)
	notifier.On("Send", mock.Anything, mock.Anything).Return()

	order, err := o.Ingest(context.Background(), " 123 ", "Erangel, squad carry", amount)
	assert.NoError(t, err)
	assert.Equal(t, "123", order.ExternalID)
	storage.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestIngest_NotifiesAfterClientDisconnect(t *testing.T) {
	o, storage, notifier := newTestOrders()
	amount := decimal.NewFromInt(1000)

	storage.On("CreateOrder", mock.Anything, "123", "", mock.Anything).
		Return(pendingOrder(10, "123"), nil)
	// The notification context must survive cancellation of the request
	// context: the order is already committed.
	notifier.On("Send", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Ingest(ctx, "123", "", amount)
	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestIngest_Duplicate(t *testing.T) {
	o, storage, _ := newTestOrders()

	storage.On("CreateOrder", mock.Anything, "123", "", mock.Anything).
		Return(models.Order{}, &pgconn.PgError{Code: "23505"})

	_, err := o.Ingest(context.Background(), "123", "", decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestIngest_EmptyRef(t *testing.T) {
	o, _, _ := newTestOrders()

	_, err := o.Ingest(context.Background(), "   ", "", decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, ErrEmptyOrderRef)
}

func TestIngest_InvalidAmount(t *testing.T) {
	o, _, _ := newTestOrders()

	_, err := o.Ingest(context.Background(), "123", "", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = o.Ingest(context.Background(), "123", "", decimal.NewFromInt(-50))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestListPending(t *testing.T) {
	o, storage, _ := newTestOrders()

	storage.On("ListPendingOrders", mock.Anything).Return([]models.Order{
		pendingOrder(10, "123"),
		pendingOrder(11, "124"),
	}, nil)

	orders, err := o.ListPending(context.Background())
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestGet_NotFound(t *testing.T) {
	o, storage, _ := newTestOrders()

	storage.On("GetOrderByExternalID", mock.Anything, "999").Return(models.Order{}, pgx.ErrNoRows)

	_, err := o.Get(context.Background(), "999")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
