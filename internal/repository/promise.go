package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"backend/internal/models"
)

type PromiseRepository interface {
	GetByID(id int64) (*models.Promise, error)
	// GetPendingActionable returns the politician's actionable promises that
	// still await verification, oldest declaration first.
	GetPendingActionable(politicianID int64, limit int) ([]models.Promise, error)
	// GetByPoliticians is the bulk read used by the batch consistency
	// calculator: one query regardless of how many politicians are passed.
	GetByPoliticians(politicianIDs []int64) ([]models.Promise, error)
}

type promiseRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPromiseRepository(db *sqlx.DB, logger *zap.Logger) PromiseRepository {
	return &promiseRepository{db: db, logger: logger}
}

const promiseColumns = `id, politician_id, text, category, declared_at, is_actionable,
	verification_status, confidence, created_at`

func (r *promiseRepository) GetByID(id int64) (*models.Promise, error) {
	var p models.Promise
	err := r.db.Get(&p, `SELECT `+promiseColumns+` FROM promises WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promiseRepository) GetPendingActionable(politicianID int64, limit int) ([]models.Promise, error) {
	var promises []models.Promise
	query := `SELECT ` + promiseColumns + ` FROM promises
	          WHERE politician_id = $1 AND is_actionable = TRUE AND verification_status = $2
	          ORDER BY declared_at ASC
	          LIMIT $3`
	err := r.db.Select(&promises, query, politicianID, models.PromiseStatusPending, limit)
	if err != nil {
		return nil, err
	}
	return promises, nil
}

func (r *promiseRepository) GetByPoliticians(politicianIDs []int64) ([]models.Promise, error) {
	if len(politicianIDs) == 0 {
		return nil, nil
	}
	var promises []models.Promise
	query := `SELECT ` + promiseColumns + ` FROM promises WHERE politician_id = ANY($1)`
	err := r.db.Select(&promises, query, pq.Array(politicianIDs))
	if err != nil {
		return nil, err
	}
	return promises, nil
}
