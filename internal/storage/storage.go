package storage

import (
	"context"
	"errors"
	"time"

	"github.com/AlenaMolokova/escort/internal/constants"
	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) (*Storage, error) {
	if db == nil {
		return nil, errors.New("database pool is nil")
	}
	return &Storage{db: db}, nil
}

const workerColumns = `id, display_name, game_account_id, squad_id, balance, reputation,
	completed_orders, rating_sum, rating_count, banned, banned_until, restricted_until, rules_accepted`

func scanWorker(row pgx.Row) (models.Worker, error) {
	var w models.Worker
	err := row.Scan(&w.ID, &w.DisplayName, &w.GameAccountID, &w.SquadID, &w.Balance,
		&w.Reputation, &w.CompletedOrders, &w.RatingSum, &w.RatingCount,
		&w.Banned, &w.BannedUntil, &w.RestrictedUntil, &w.RulesAccepted)
	return w, err
}

func (s *Storage) CreateWorker(ctx context.Context, workerID int64, displayName string) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO workers (id, display_name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING",
		workerID, displayName)
	return err
}

func (s *Storage) GetWorker(ctx context.Context, workerID int64) (models.Worker, error) {
	row := s.db.QueryRow(ctx, "SELECT "+workerColumns+" FROM workers WHERE id = $1", workerID)
	return scanWorker(row)
}

func (s *Storage) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	rows, err := s.db.Query(ctx, "SELECT "+workerColumns+" FROM workers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []models.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (s *Storage) UpdateGameAccountID(ctx context.Context, workerID int64, accountID string) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE workers SET game_account_id = $1 WHERE id = $2", accountID, workerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AssignWorkerSquad moves the worker into the squad, rejecting the move when
// the squad already holds maxMembers other workers. The squad row lock keeps
// the member count stable while it is checked, so two concurrent moves into
// an almost-full squad cannot both pass. No rows updated means either an
// unknown worker or a full squad; callers disambiguate.
func (s *Storage) AssignWorkerSquad(ctx context.Context, workerID, squadID int64, maxMembers int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked int64
	if err := tx.QueryRow(ctx,
		"SELECT id FROM squads WHERE id = $1 FOR UPDATE", squadID).Scan(&locked); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE workers SET squad_id = $2
		WHERE id = $1
		  AND (SELECT COUNT(*) FROM workers w2 WHERE w2.squad_id = $2 AND w2.id <> $1) < $3`,
		workerID, squadID, maxMembers)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func (s *Storage) DeleteWorker(ctx context.Context, workerID int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM workers WHERE id = $1", workerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Storage) SetWorkerRestrictions(ctx context.Context, workerID int64, banned bool, bannedUntil, restrictedUntil pgtype.Timestamptz) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE workers SET banned = $1, banned_until = $2, restricted_until = $3 WHERE id = $4",
		banned, bannedUntil, restrictedUntil, workerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Storage) SetRulesAccepted(ctx context.Context, workerID int64) error {
	tag, err := s.db.Exec(ctx, "UPDATE workers SET rules_accepted = TRUE WHERE id = $1", workerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Storage) CreditWorkerBalance(ctx context.Context, workerID int64, amount decimal.Decimal) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE workers SET balance = balance + $1 WHERE id = $2", amount, workerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Storage) CreateSquad(ctx context.Context, name string) (models.Squad, error) {
	var sq models.Squad
	err := s.db.QueryRow(ctx,
		"INSERT INTO squads (name) VALUES ($1) RETURNING id, name, rating_sum, rating_count, created_at",
		name).Scan(&sq.ID, &sq.Name, &sq.RatingSum, &sq.RatingCount, &sq.CreatedAt)
	return sq, err
}

func (s *Storage) GetSquad(ctx context.Context, squadID int64) (models.Squad, error) {
	var sq models.Squad
	err := s.db.QueryRow(ctx,
		"SELECT id, name, rating_sum, rating_count, created_at FROM squads WHERE id = $1",
		squadID).Scan(&sq.ID, &sq.Name, &sq.RatingSum, &sq.RatingCount, &sq.CreatedAt)
	return sq, err
}

func (s *Storage) GetSquadByName(ctx context.Context, name string) (models.Squad, error) {
	var sq models.Squad
	err := s.db.QueryRow(ctx,
		"SELECT id, name, rating_sum, rating_count, created_at FROM squads WHERE name = $1",
		name).Scan(&sq.ID, &sq.Name, &sq.RatingSum, &sq.RatingCount, &sq.CreatedAt)
	return sq, err
}

func (s *Storage) ListSquads(ctx context.Context) ([]models.SquadSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.id, s.name, s.rating_sum, s.rating_count, s.created_at,
		       (SELECT COUNT(*) FROM workers w WHERE w.squad_id = s.id) AS member_count
		FROM squads s ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var squads []models.SquadSummary
	for rows.Next() {
		var sq models.SquadSummary
		if err := rows.Scan(&sq.ID, &sq.Name, &sq.RatingSum, &sq.RatingCount, &sq.CreatedAt, &sq.MemberCount); err != nil {
			return nil, err
		}
		squads = append(squads, sq)
	}
	return squads, rows.Err()
}

func (s *Storage) ListSquadMembers(ctx context.Context, squadID int64) ([]models.Worker, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+workerColumns+" FROM workers WHERE squad_id = $1 ORDER BY id", squadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []models.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (s *Storage) GetSquadStats(ctx context.Context, squadID int64) (models.SquadStats, error) {
	var st models.SquadStats
	err := s.db.QueryRow(ctx, `
		SELECT s.name, COUNT(w.id),
		       COALESCE(SUM(w.completed_orders), 0),
		       COALESCE(SUM(w.balance), 0)
		FROM squads s
		LEFT JOIN workers w ON w.squad_id = s.id
		WHERE s.id = $1
		GROUP BY s.id`, squadID).
		Scan(&st.Name, &st.MemberCount, &st.CompletedOrders, &st.TotalEarnings)
	return st, err
}

const orderColumns = "id, external_id, customer_info, amount, status, squad_id, completed_at, rating, created_at"

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.ExternalID, &o.CustomerInfo, &o.Amount, &o.Status,
		&o.SquadID, &o.CompletedAt, &o.Rating, &o.CreatedAt)
	return o, err
}

func (s *Storage) CreateOrder(ctx context.Context, externalID, customerInfo string, amount decimal.Decimal) (models.Order, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO orders (external_id, customer_info, amount)
		VALUES ($1, $2, $3)
		RETURNING `+orderColumns, externalID, customerInfo, amount)
	return scanOrder(row)
}

func (s *Storage) GetOrderByExternalID(ctx context.Context, externalID string) (models.Order, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE external_id = $1", externalID)
	return scanOrder(row)
}

func (s *Storage) ListPendingOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE status = $1 ORDER BY created_at",
		constants.StatusPending)
}

func (s *Storage) ListOrdersByWorker(ctx context.Context, workerID int64) ([]models.Order, error) {
	return s.listOrders(ctx, `
		SELECT o.id, o.external_id, o.customer_info, o.amount, o.status, o.squad_id,
		       o.completed_at, o.rating, o.created_at
		FROM orders o
		JOIN assignments a ON a.order_id = o.id
		WHERE a.worker_id = $1
		ORDER BY o.created_at`, workerID)
}

func (s *Storage) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ConfirmOrder resolves the application pool and performs the pending ->
// in_progress transition as one unit: roster read, winner selection, member
// quorum check, assignment creation and pool clearing all happen inside a
// transaction that holds the order row lock. Joins and withdraws take the
// same lock, so the roster read here is exactly the roster that gets
// assigned. A lost transition race surfaces as pgx.ErrNoRows.
func (s *Storage) ConfirmOrder(ctx context.Context, orderID int64, minApplicants, minSquadMembers int) (models.ConfirmResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.ConfirmResult{}, err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID).Scan(&status); err != nil {
		return models.ConfirmResult{}, err
	}
	if status != constants.StatusPending {
		return models.ConfirmResult{}, pgx.ErrNoRows
	}

	applicants, err := listApplications(ctx, tx, orderID)
	if err != nil {
		return models.ConfirmResult{}, err
	}
	if len(applicants) < minApplicants {
		return models.ConfirmResult{}, models.ErrNotEnoughApplicants
	}

	squadID, survivors := models.SelectWinningSquad(applicants)

	var members int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM workers WHERE squad_id = $1", squadID).Scan(&members); err != nil {
		return models.ConfirmResult{}, err
	}
	if members < minSquadMembers {
		return models.ConfirmResult{}, models.ErrSquadTooSmall
	}

	if _, err := tx.Exec(ctx,
		"UPDATE orders SET status = $1, squad_id = $2 WHERE id = $3",
		constants.StatusInProgress, squadID, orderID); err != nil {
		return models.ConfirmResult{}, err
	}

	assignments := make([]models.Assignment, 0, len(survivors))
	for _, a := range survivors {
		if _, err := tx.Exec(ctx,
			"INSERT INTO assignments (order_id, worker_id, game_account_id) VALUES ($1, $2, $3)",
			orderID, a.WorkerID, a.GameAccountID); err != nil {
			return models.ConfirmResult{}, err
		}
		if _, err := tx.Exec(ctx,
			"UPDATE workers SET completed_orders = completed_orders + 1 WHERE id = $1",
			a.WorkerID); err != nil {
			return models.ConfirmResult{}, err
		}
		assignments = append(assignments, models.Assignment{
			OrderID:       orderID,
			WorkerID:      a.WorkerID,
			GameAccountID: a.GameAccountID,
		})
	}

	if _, err := tx.Exec(ctx, "DELETE FROM applications WHERE order_id = $1", orderID); err != nil {
		return models.ConfirmResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.ConfirmResult{}, err
	}
	return models.ConfirmResult{SquadID: squadID, Assignments: assignments}, nil
}

func (s *Storage) CompleteOrder(ctx context.Context, orderID int64, completedAt time.Time) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE orders SET status = $1, completed_at = $2 WHERE id = $3 AND status = $4",
		constants.StatusCompleted,
		pgtype.Timestamptz{Time: completedAt, Valid: true},
		orderID, constants.StatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RateOrder finalizes an order: completed -> rated, reputation and rating
// aggregates for every assigned worker and the owning squad, and the even
// payout share credited to each worker. All in one transaction; the status
// check makes repeat calls lose with pgx.ErrNoRows.
func (s *Storage) RateOrder(ctx context.Context, orderID int64, rating int32, squadID pgtype.Int8, workerIDs []int64, share decimal.Decimal) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE orders SET status = $1, rating = $2 WHERE id = $3 AND status = $4",
		constants.StatusRated, rating, orderID, constants.StatusCompleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if len(workerIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE workers
			SET reputation = reputation + $1,
			    rating_sum = rating_sum + $1,
			    rating_count = rating_count + 1,
			    balance = balance + $2
			WHERE id = ANY($3)`, rating, share, workerIDs); err != nil {
			return err
		}
	}

	if squadID.Valid {
		if _, err := tx.Exec(ctx,
			"UPDATE squads SET rating_sum = rating_sum + $1, rating_count = rating_count + 1 WHERE id = $2",
			rating, squadID.Int64); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// CreateApplication inserts a join request while the order is still pending
// and the pool is below maxApplicants. The order row lock serializes joins
// against a concurrent confirm: a join either lands before the confirm reads
// the roster or observes the committed non-pending status, never in between.
// Cap reached and order no longer pending both report pgx.ErrNoRows; the
// caller re-reads the order to tell them apart. A duplicate (order, worker)
// pair surfaces as a unique violation.
func (s *Storage) CreateApplication(ctx context.Context, app models.Application, maxApplicants int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM orders WHERE id = $1 FOR UPDATE", app.OrderID).Scan(&status); err != nil {
		return err
	}
	if status != constants.StatusPending {
		return pgx.ErrNoRows
	}

	var count int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM applications WHERE order_id = $1", app.OrderID).Scan(&count); err != nil {
		return err
	}
	if count >= maxApplicants {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO applications (order_id, worker_id, squad_id, game_account_id, applied_at)
		VALUES ($1, $2, $3, $4, $5)`,
		app.OrderID, app.WorkerID, app.SquadID, app.GameAccountID, app.AppliedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteApplication takes the order row lock before removing the row, so a
// withdraw cannot slip between a confirm's roster read and its assignment
// writes.
func (s *Storage) DeleteApplication(ctx context.Context, orderID, workerID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked int64
	if err := tx.QueryRow(ctx,
		"SELECT id FROM orders WHERE id = $1 FOR UPDATE", orderID).Scan(&locked); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		"DELETE FROM applications WHERE order_id = $1 AND worker_id = $2", orderID, workerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listApplications(ctx context.Context, q querier, orderID int64) ([]models.Application, error) {
	rows, err := q.Query(ctx, `
		SELECT order_id, worker_id, squad_id, game_account_id, applied_at
		FROM applications WHERE order_id = $1
		ORDER BY applied_at, worker_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.OrderID, &a.WorkerID, &a.SquadID, &a.GameAccountID, &a.AppliedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (s *Storage) ListApplications(ctx context.Context, orderID int64) ([]models.Application, error) {
	return listApplications(ctx, s.db, orderID)
}

func (s *Storage) GetAssignment(ctx context.Context, orderID, workerID int64) (models.Assignment, error) {
	var a models.Assignment
	err := s.db.QueryRow(ctx,
		"SELECT order_id, worker_id, game_account_id FROM assignments WHERE order_id = $1 AND worker_id = $2",
		orderID, workerID).Scan(&a.OrderID, &a.WorkerID, &a.GameAccountID)
	return a, err
}

func (s *Storage) ListAssignments(ctx context.Context, orderID int64) ([]models.Assignment, error) {
	rows, err := s.db.Query(ctx,
		"SELECT order_id, worker_id, game_account_id FROM assignments WHERE order_id = $1 ORDER BY worker_id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.OrderID, &a.WorkerID, &a.GameAccountID); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
