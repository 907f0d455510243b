package handlers

import (
	"context"
	"time"

	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/shopspring/decimal"
)

type DirectoryService interface {
	Register(ctx context.Context, workerID int64, displayName string) (models.Worker, error)
	SetGameAccount(ctx context.Context, workerID int64, accountID string) error
	AcceptRules(ctx context.Context, workerID int64) error
	AssignToSquad(ctx context.Context, workerID int64, squadName string) error
	RemoveWorker(ctx context.Context, workerID int64) error
	Profile(ctx context.Context, workerID int64) (models.Worker, string, error)
	CreateSquad(ctx context.Context, name string) (models.Squad, error)
	ListSquads(ctx context.Context) ([]models.SquadSummary, error)
	SquadStats(ctx context.Context, squadID int64) (models.SquadStats, error)
	SquadMembers(ctx context.Context, squadID int64) ([]models.Worker, error)
	ListWorkers(ctx context.Context) ([]models.Worker, error)
	Restrict(ctx context.Context, workerID int64, banned bool, bannedUntil, restrictedUntil time.Time) error
}

type OrderService interface {
	Ingest(ctx context.Context, externalID, customerInfo string, amount decimal.Decimal) (models.Order, error)
	ListPending(ctx context.Context) ([]models.Order, error)
	WorkerOrders(ctx context.Context, workerID int64) ([]models.Order, error)
}

type PoolService interface {
	Join(ctx context.Context, orderRef string, workerID int64) ([]models.Application, error)
	Withdraw(ctx context.Context, orderRef string, workerID int64) error
	Confirm(ctx context.Context, orderRef string, workerID int64) (int, error)
}

type PayoutService interface {
	Complete(ctx context.Context, orderRef string, workerID int64) error
	Rate(ctx context.Context, orderRef string, rating int32) (decimal.Decimal, error)
	AdminCredit(ctx context.Context, workerID int64, amount decimal.Decimal) error
}
