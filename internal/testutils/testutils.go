package testutils

import (
	"context"
	"time"

	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/AlenaMolokova/escort/internal/notify"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockWorkerStorage struct {
	mock.Mock
}

func (m *MockWorkerStorage) CreateWorker(ctx context.Context, workerID int64, displayName string) error {
	args := m.Called(ctx, workerID, displayName)
	return args.Error(0)
}

func (m *MockWorkerStorage) GetWorker(ctx context.Context, workerID int64) (models.Worker, error) {
	args := m.Called(ctx, workerID)
	return args.Get(0).(models.Worker), args.Error(1)
}

func (m *MockWorkerStorage) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Worker), args.Error(1)
}

func (m *MockWorkerStorage) UpdateGameAccountID(ctx context.Context, workerID int64, accountID string) error {
	args := m.Called(ctx, workerID, accountID)
	return args.Error(0)
}

func (m *MockWorkerStorage) AssignWorkerSquad(ctx context.Context, workerID, squadID int64, maxMembers int) error {
	args := m.Called(ctx, workerID, squadID, maxMembers)
	return args.Error(0)
}

func (m *MockWorkerStorage) DeleteWorker(ctx context.Context, workerID int64) error {
	args := m.Called(ctx, workerID)
	return args.Error(0)
}

func (m *MockWorkerStorage) SetWorkerRestrictions(ctx context.Context, workerID int64, banned bool, bannedUntil, restrictedUntil pgtype.Timestamptz) error {
	args := m.Called(ctx, workerID, banned, bannedUntil, restrictedUntil)
	return args.Error(0)
}

func (m *MockWorkerStorage) SetRulesAccepted(ctx context.Context, workerID int64) error {
	args := m.Called(ctx, workerID)
	return args.Error(0)
}

func (m *MockWorkerStorage) CreditWorkerBalance(ctx context.Context, workerID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, workerID, amount)
	return args.Error(0)
}

type MockSquadStorage struct {
	mock.Mock
}

func (m *MockSquadStorage) CreateSquad(ctx context.Context, name string) (models.Squad, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.Squad), args.Error(1)
}

func (m *MockSquadStorage) GetSquad(ctx context.Context, squadID int64) (models.Squad, error) {
	args := m.Called(ctx, squadID)
	return args.Get(0).(models.Squad), args.Error(1)
}

func (m *MockSquadStorage) GetSquadByName(ctx context.Context, name string) (models.Squad, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.Squad), args.Error(1)
}

func (m *MockSquadStorage) ListSquads(ctx context.Context) ([]models.SquadSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.SquadSummary), args.Error(1)
}

func (m *MockSquadStorage) ListSquadMembers(ctx context.Context, squadID int64) ([]models.Worker, error) {
	args := m.Called(ctx, squadID)
	return args.Get(0).([]models.Worker), args.Error(1)
}

func (m *MockSquadStorage) GetSquadStats(ctx context.Context, squadID int64) (models.SquadStats, error) {
	args := m.Called(ctx, squadID)
	return args.Get(0).(models.SquadStats), args.Error(1)
}

type MockOrderStorage struct {
	mock.Mock
}

func (m *MockOrderStorage) CreateOrder(ctx context.Context, externalID, customerInfo string, amount decimal.Decimal) (models.Order, error) {
	args := m.Called(ctx, externalID, customerInfo, amount)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *MockOrderStorage) GetOrderByExternalID(ctx context.Context, externalID string) (models.Order, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *MockOrderStorage) ListPendingOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderStorage) ListOrdersByWorker(ctx context.Context, workerID int64) ([]models.Order, error) {
	args := m.Called(ctx, workerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderStorage) ConfirmOrder(ctx context.Context, orderID int64, minApplicants, minSquadMembers int) (models.ConfirmResult, error) {
	args := m.Called(ctx, orderID, minApplicants, minSquadMembers)
	return args.Get(0).(models.ConfirmResult), args.Error(1)
}

func (m *MockOrderStorage) CompleteOrder(ctx context.Context, orderID int64, completedAt time.Time) error {
	args := m.Called(ctx, orderID, completedAt)
	return args.Error(0)
}

func (m *MockOrderStorage) RateOrder(ctx context.Context, orderID int64, rating int32, squadID pgtype.Int8, workerIDs []int64, share decimal.Decimal) error {
	args := m.Called(ctx, orderID, rating, squadID, workerIDs, share)
	return args.Error(0)
}

type MockApplicationStorage struct {
	mock.Mock
}

func (m *MockApplicationStorage) CreateApplication(ctx context.Context, app models.Application, maxApplicants int) error {
	args := m.Called(ctx, app, maxApplicants)
	return args.Error(0)
}

func (m *MockApplicationStorage) DeleteApplication(ctx context.Context, orderID, workerID int64) error {
	args := m.Called(ctx, orderID, workerID)
	return args.Error(0)
}

func (m *MockApplicationStorage) ListApplications(ctx context.Context, orderID int64) ([]models.Application, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.Application), args.Error(1)
}

type MockAssignmentStorage struct {
	mock.Mock
}

func (m *MockAssignmentStorage) GetAssignment(ctx context.Context, orderID, workerID int64) (models.Assignment, error) {
	args := m.Called(ctx, orderID, workerID)
	return args.Get(0).(models.Assignment), args.Error(1)
}

func (m *MockAssignmentStorage) ListAssignments(ctx context.Context, orderID int64) ([]models.Assignment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.Assignment), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, intents []notify.Intent) {
	m.Called(ctx, intents)
}

type MockGatekeeper struct {
	mock.Mock
}

func (m *MockGatekeeper) Gate(ctx context.Context, workerID int64) (models.Worker, error) {
	args := m.Called(ctx, workerID)
	return args.Get(0).(models.Worker), args.Error(1)
}

type MockConfirmEngine struct {
	mock.Mock
}

func (m *MockConfirmEngine) ConfirmOrder(ctx context.Context, order models.Order) (int, error) {
	args := m.Called(ctx, order)
	return args.Int(0), args.Error(1)
}
