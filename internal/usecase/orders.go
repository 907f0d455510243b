package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/AlenaMolokova/escort/internal/notify"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Orders is the ingestion and query surface of the order store. Orders are
// append-only: they are never deleted, only status-transitioned.
type Orders struct {
	storage  models.OrderStorage
	notifier Notifier
}

func NewOrders(storage models.OrderStorage, notifier Notifier) *Orders {
	return &Orders{storage: storage, notifier: notifier}
}

// Ingest records a new order in pending status. Re-sending the same external
// id is rejected, which makes ingestion retries idempotent.
func (o *Orders) Ingest(ctx context.Context, externalID, customerInfo string, amount decimal.Decimal) (models.Order, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return models.Order{}, ErrEmptyOrderRef
	}
	if !amount.IsPositive() {
		return models.Order{}, ErrInvalidAmount
	}

	order, err := o.storage.CreateOrder(ctx, externalID, customerInfo, amount)
	if isUniqueViolation(err) {
		return models.Order{}, ErrDuplicateOrder
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	o.notifier.Send(context.WithoutCancel(ctx), []notify.Intent{
		notify.ToAdmins(fmt.Sprintf("New order #%s added: %s, customer: %s",
			order.ExternalID, order.Amount.StringFixed(2), order.CustomerInfo)),
	})
	return order, nil
}

func (o *Orders) ListPending(ctx context.Context) ([]models.Order, error) {
	return o.storage.ListPendingOrders(ctx)
}

func (o *Orders) WorkerOrders(ctx context.Context, workerID int64) ([]models.Order, error) {
	return o.storage.ListOrdersByWorker(ctx, workerID)
}

func (o *Orders) Get(ctx context.Context, externalID string) (models.Order, error) {
	order, err := o.storage.GetOrderByExternalID(ctx, externalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}
