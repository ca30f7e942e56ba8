package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestMatchUpsertInsertsAndScansKeys(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db, zap.NewNop())

	confirmedAt := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	createdAt := confirmedAt.Add(time.Second)
	match := &models.PromiseMatch{
		PromiseID:   1,
		ActionID:    100,
		Similarity:  0.91,
		Outcome:     models.OutcomeKept,
		Method:      models.MethodAutomatic,
		Explanation: "auto-matched",
		ConfirmedAt: &confirmedAt,
	}

	mock.ExpectQuery(`(?s)INSERT INTO promise_matches.+ON CONFLICT \(promise_id, action_id\) DO UPDATE`).
		WithArgs(int64(1), int64(100), 0.91, models.OutcomeKept, models.MethodAutomatic, "auto-matched", confirmedAt, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(55), createdAt))

	require.NoError(t, repo.Upsert(match))
	assert.Equal(t, int64(55), match.ID)
	assert.Equal(t, createdAt, match.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The conditional upsert returns no row when an existing manual confirmation
// blocks the overwrite. That outcome is silence, not an error.
func TestMatchUpsertToleratesBlockedOverwrite(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db, zap.NewNop())

	match := &models.PromiseMatch{PromiseID: 1, ActionID: 100, Outcome: models.OutcomePending, Method: models.MethodManual}

	mock.ExpectQuery(`INSERT INTO promise_matches`).
		WillReturnError(sql.ErrNoRows)

	require.NoError(t, repo.Upsert(match))
	assert.Zero(t, match.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchGetByPromisesShortCircuitsOnEmptyInput(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db, zap.NewNop())

	matches, err := repo.GetByPromises(nil)
	require.NoError(t, err)
	assert.Nil(t, matches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchGetByPromisesScansRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db, zap.NewNop())

	confirmedAt := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "promise_id", "action_id", "similarity", "outcome", "method",
		"explanation", "confirmed_at", "disputed", "created_at",
	}).AddRow(int64(1), int64(10), int64(100), 0.91, models.OutcomeKept, models.MethodAutomatic,
		"auto-matched", confirmedAt, false, confirmedAt).
		AddRow(int64(2), int64(11), int64(101), 0.55, models.OutcomePending, models.MethodManual,
			"queued", nil, false, confirmedAt)

	mock.ExpectQuery(`FROM promise_matches WHERE promise_id = ANY\(\$1\)`).
		WillReturnRows(rows)

	matches, err := repo.GetByPromises([]int64{10, 11})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.True(t, matches[0].Confirmed())
	assert.False(t, matches[1].Confirmed())
	assert.Nil(t, matches[1].ConfirmedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountPendingReview(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM promise_matches WHERE confirmed_at IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountPendingReview()
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
