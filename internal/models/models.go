package models

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Confirmation failures the order store distinguishes beyond a lost
// status-transition race.
var (
	ErrNotEnoughApplicants = errors.New("not enough applicants")
	ErrSquadTooSmall       = errors.New("winning squad below the order quorum")
)

type Worker struct {
	ID              int64
	DisplayName     string
	GameAccountID   pgtype.Text
	SquadID         pgtype.Int8
	Balance         decimal.Decimal
	Reputation      int64
	CompletedOrders int64
	RatingSum       int64
	RatingCount     int64
	Banned          bool
	BannedUntil     pgtype.Timestamptz
	RestrictedUntil pgtype.Timestamptz
	RulesAccepted   bool
}

type Squad struct {
	ID          int64
	Name        string
	RatingSum   int64
	RatingCount int64
	CreatedAt   pgtype.Timestamptz
}

// SquadSummary is a squad with its current member count, for listings.
type SquadSummary struct {
	Squad
	MemberCount int
}

type SquadStats struct {
	Name            string
	MemberCount     int
	CompletedOrders int64
	TotalEarnings   decimal.Decimal
}

type Order struct {
	ID           int64
	ExternalID   string
	CustomerInfo string
	Amount       decimal.Decimal
	Status       string
	SquadID      pgtype.Int8
	CompletedAt  pgtype.Timestamptz
	Rating       int32
	CreatedAt    pgtype.Timestamptz
}

// Application is a transient join request for a pending order. It captures
// the worker's squad and game account at the time of joining; join order is
// significant, the first applicant's squad wins the order.
type Application struct {
	OrderID       int64
	WorkerID      int64
	SquadID       int64
	GameAccountID string
	AppliedAt     time.Time
}

// Assignment durably binds a worker to a confirmed order.
type Assignment struct {
	OrderID       int64
	WorkerID      int64
	GameAccountID string
}

// ConfirmResult reports a successful confirmation: the squad that won the
// order and the assignments created for it.
type ConfirmResult struct {
	SquadID     int64
	Assignments []Assignment
}

// SelectWinningSquad resolves an application roster given in join order: the
// squad of the earliest applicant wins, applications from other squads are
// discarded.
func SelectWinningSquad(applicants []Application) (int64, []Application) {
	if len(applicants) == 0 {
		return 0, nil
	}
	winner := applicants[0].SquadID
	var survivors []Application
	for _, a := range applicants {
		if a.SquadID == winner {
			survivors = append(survivors, a)
		}
	}
	return winner, survivors
}

type WorkerStorage interface {
	CreateWorker(ctx context.Context, workerID int64, displayName string) error
	GetWorker(ctx context.Context, workerID int64) (Worker, error)
	ListWorkers(ctx context.Context) ([]Worker, error)
	UpdateGameAccountID(ctx context.Context, workerID int64, accountID string) error
	AssignWorkerSquad(ctx context.Context, workerID, squadID int64, maxMembers int) error
	DeleteWorker(ctx context.Context, workerID int64) error
	SetWorkerRestrictions(ctx context.Context, workerID int64, banned bool, bannedUntil, restrictedUntil pgtype.Timestamptz) error
	SetRulesAccepted(ctx context.Context, workerID int64) error
	CreditWorkerBalance(ctx context.Context, workerID int64, amount decimal.Decimal) error
}

type SquadStorage interface {
	CreateSquad(ctx context.Context, name string) (Squad, error)
	GetSquad(ctx context.Context, squadID int64) (Squad, error)
	GetSquadByName(ctx context.Context, name string) (Squad, error)
	ListSquads(ctx context.Context) ([]SquadSummary, error)
	ListSquadMembers(ctx context.Context, squadID int64) ([]Worker, error)
	GetSquadStats(ctx context.Context, squadID int64) (SquadStats, error)
}

type OrderStorage interface {
	CreateOrder(ctx context.Context, externalID, customerInfo string, amount decimal.Decimal) (Order, error)
	GetOrderByExternalID(ctx context.Context, externalID string) (Order, error)
	ListPendingOrders(ctx context.Context) ([]Order, error)
	ListOrdersByWorker(ctx context.Context, workerID int64) ([]Order, error)
	ConfirmOrder(ctx context.Context, orderID int64, minApplicants, minSquadMembers int) (ConfirmResult, error)
	CompleteOrder(ctx context.Context, orderID int64, completedAt time.Time) error
	RateOrder(ctx context.Context, orderID int64, rating int32, squadID pgtype.Int8, workerIDs []int64, share decimal.Decimal) error
}

type ApplicationStorage interface {
	CreateApplication(ctx context.Context, app Application, maxApplicants int) error
	DeleteApplication(ctx context.Context, orderID, workerID int64) error
	ListApplications(ctx context.Context, orderID int64) ([]Application, error)
}

type AssignmentStorage interface {
	GetAssignment(ctx context.Context, orderID, workerID int64) (Assignment, error)
	ListAssignments(ctx context.Context, orderID int64) ([]Assignment, error)
}
