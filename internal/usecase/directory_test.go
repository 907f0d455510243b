package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/AlenaMolokova/escort/internal/testutils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestDirectory(workers *testutils.MockWorkerStorage, squads *testutils.MockSquadStorage, notifier *testutils.MockNotifier) *Directory {
	return NewDirectory(workers, squads, notifier, fixedClock)
}

func TestRegister_Idempotent(t *testing.T) {
	workers := new(testutils.MockWorkerStorage)
	d := newTestDirectory(workers, new(testutils.MockSquadStorage), new(testutils.MockNotifier))

	ctx := context.Background()
	workers.On("CreateWorker", mock.Anything, int64(7), "Alice").Return(nil)
	workers.On("GetWorker", mock.Anything, int64(7)).Return(models.Worker{ID: 7, DisplayName: "Alice"}, nil)

	worker, err := d.Register(ctx, 7, "Alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), worker.ID)

	worker, err = d.Register(ctx, 7, "Alice")
	assert.NoError(t, err)
	assert.Equal(t, "Alice", worker.DisplayName)
	workers.AssertExpectations(t)
}

func TestGate_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		worker  models.Worker
		wantErr error
	}{
		{
			name:    "permanent ban outranks everything",
			worker:  models.Worker{ID: 1, Banned: true, RulesAccepted: true},
			wantErr: ErrBanned,
		},
		{
			name: "timed ban still active",
			worker: models.Worker{
				ID:            1,
				BannedUntil:   pgtype.Timestamptz{Time: testNow.Add(time.Hour), Valid: true},
				RulesAccepted: true,
			},
			wantErr: ErrBanned,
		},
		{
			name: "restriction still active",
			worker: models.Worker{
				ID:              1,
				RestrictedUntil: pgtype.Timestamptz{Time: testNow.Add(time.Hour), Valid: true},
				RulesAccepted:   true,
			},
			wantErr: ErrRestricted,
		},
		{
			name:    "rules not accepted",
			worker:  models.Worker{ID: 1},
			wantErr: ErrRulesNotAccepted,
		},
		{
			name: "expired ban and restriction allow",
			worker: models.Worker{
				ID:              1,
				BannedUntil:     pgtype.Timestamptz{Time: testNow.Add(-time.Hour), Valid: true},
				RestrictedUntil: pgtype.Timestamptz{Time: testNow.Add(-time.Minute), Valid: true},
				RulesAccepted:   true,
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workers := new(testutils.MockWorkerStorage)
			d := newTestDirectory(workers, new(testutils.MockSquadStorage), new(testutils.MockNotifier))
			workers.On("GetWorker", mock.Anything, int64(1)).Return(tt.worker, nil)

			_, err := d.Gate(context.Background(), 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGate_WorkerNotFound(t *testing.T) {
	workers := new(testutils.MockWorkerStorage)
	d := newTestDirectory(workers, new(testutils.MockSquadStorage), new(testutils.MockNotifier))
	workers.On("GetWorker", mock.Anything, int64(99)).Return(models.Worker{}, pgx.ErrNoRows)

	_, err := d.Gate(context.Background(), 99)
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}

func TestAssignToSquad_SquadFull(t *testing.T) {
	workers := new(testutils.MockWorkerStorage)
	squads := new(testutils.MockSquadStorage)
	d := newTestDirectory(workers, squads, new(testutils.MockNotifier))

	squads.On("GetSquadByName", mock.Anything, "Alpha").Return(models.Squad{ID: 3, Name: "Alpha"}, nil)
	workers.On("GetWorker", mock.Anything, int64(7)).Return(models.Worker{ID: 7}, nil)
	workers.On("AssignWorkerSquad", mock.Anything, int64(7), int64(3), 6).Return(pgx.ErrNoRows)

	err := d.AssignToSquad(context.Background(), 7, "Alpha")
	assert.ErrorIs(t, err, ErrSquadFull)
}

func TestAssignToSquad_SquadNotFound(t *testing.T) {
	squads := new(testutils.MockSquadStorage)
	d := newTestDirectory(new(testutils.MockWorkerStorage), squads, new(testutils.MockNotifier))

	squads.On("GetSquadByName", mock.Anything, "Ghost").Return(models.Squad{}, pgx.ErrNoRows)

	err := d.AssignToSquad(context.Background(), 7, "Ghost")
	assert.ErrorIs(t, err, ErrSquadNotFound)
}

func TestAssignToSquad_Success(t *testing.T) {
	workers := new(testutils.MockWorkerStorage)
	squads := new(testutils.MockSquadStorage)
	notifier := new(testutils.MockNotifier)
	d := newTestDirectory(workers, squads, notifier)

	squads.On("GetSquadByName", mock.Anything, "Alpha").Return(models.Squad{ID: 3, Name: "Alpha"}, nil)
	workers.On("GetWorker", mock.Anything, int64(7)).Return(models.Worker{ID: 7}, nil)
	workers.On("AssignWorkerSquad", mock.Anything, int64(7), int64(3), 6).Return(nil)
	notifier.On("Send", mock.Anything, mock.Anything).Return()

	err := d.AssignToSquad(context.Background(), 7, "Alpha")
	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestSetGameAccount_Empty(t *testing.T) {
	d := newTestDirectory(new(testutils.MockWorkerStorage), new(testutils.MockSquadStorage), new(testutils.MockNotifier))

	err := d.SetGameAccount(context.Background(), 7, "   ")
	assert.ErrorIs(t, err, ErrEmptyGameAccount)
}

func TestSetGameAccount_WorkerNotFound(t *testing.T) {
	workers := new(testutils.MockWorkerStorage)
	d := newTestDirectory(workers, new(testutils.MockSquadStorage), new(testutils.MockNotifier))
	workers.On("UpdateGameAccountID", mock.Anything, int64(7), "PUBG-42").Return(pgx.ErrNoRows)

	err := d.SetGameAccount(context.Background(), 7, "PUBG-42")
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}

func TestCreateSquad_Duplicate(t *testing.T) {
	squads := new(testutils.MockSquadStorage)
	d := newTestDirectory(new(testutils.MockWorkerStorage), squads, new(testutils.MockNotifier))
	squads.On("CreateSquad", mock.Anything, "Alpha").Return(models.Squad{}, &pgconn.PgError{Code: "23505"})

	_, err := d.CreateSquad(context.Background(), "Alpha")
	assert.ErrorIs(t, err, ErrDuplicateSquad)
}

func TestRemoveWorker_NotFound(t *testing.T) {
	workers := new(testutils.MockWorkerStorage)
	d := newTestDirectory(workers, new(testutils.MockSquadStorage), new(testutils.MockNotifier))
	workers.On("DeleteWorker", mock.Anything, int64(99)).Return(pgx.ErrNoRows)

	err := d.RemoveWorker(context.Background(), 99)
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}
