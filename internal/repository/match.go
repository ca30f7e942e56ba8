package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"backend/internal/models"
)

type MatchRepository interface {
	// Upsert writes a match keyed by (promise_id, action_id). Re-running the
	// batch processor updates the same row instead of duplicating it. A match
	// that a reviewer has already confirmed is never overwritten by an
	// automatic re-run.
	Upsert(match *models.PromiseMatch) error
	// GetByPromises is the bulk read used by the batch consistency
	// calculator.
	GetByPromises(promiseIDs []int64) ([]models.PromiseMatch, error)
	CountPendingReview() (int, error)
}

type matchRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewMatchRepository(db *sqlx.DB, logger *zap.Logger) MatchRepository {
	return &matchRepository{db: db, logger: logger}
}

func (r *matchRepository) Upsert(match *models.PromiseMatch) error {
	query := `INSERT INTO promise_matches (promise_id, action_id, similarity, outcome, method, explanation, confirmed_at, disputed)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (promise_id, action_id) DO UPDATE
	          SET similarity  = EXCLUDED.similarity,
	              outcome     = EXCLUDED.outcome,
	              method      = EXCLUDED.method,
	              explanation = EXCLUDED.explanation,
	              confirmed_at = EXCLUDED.confirmed_at
	          WHERE promise_matches.method = 'automatic' OR promise_matches.confirmed_at IS NULL
	          RETURNING id, created_at`
	row := r.db.QueryRowx(query, match.PromiseID, match.ActionID, match.Similarity,
		match.Outcome, match.Method, match.Explanation, match.ConfirmedAt, match.Disputed)
	if err := row.Scan(&match.ID, &match.CreatedAt); err != nil {
		// The conditional update returns no row when a manual confirmation
		// blocked the overwrite; that is not an error.
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	return nil
}

func (r *matchRepository) GetByPromises(promiseIDs []int64) ([]models.PromiseMatch, error) {
	if len(promiseIDs) == 0 {
		return nil, nil
	}
	var matches []models.PromiseMatch
	query := `SELECT id, promise_id, action_id, similarity, outcome, method, explanation, confirmed_at, disputed, created_at
	          FROM promise_matches WHERE promise_id = ANY($1)`
	err := r.db.Select(&matches, query, pq.Array(promiseIDs))
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) CountPendingReview() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM promise_matches WHERE confirmed_at IS NULL AND disputed = FALSE`
	err := r.db.Get(&count, query)
	return count, err
}
