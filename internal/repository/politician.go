package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type PoliticianRepository interface {
	GetByID(id int64) (*models.Politician, error)
	GetActiveIDs(limit int) ([]int64, error)
	// AdjustCredibility adds delta to the politician's running credibility
	// score in one statement, clamped to [floor, ceiling], and returns the
	// new value.
	AdjustCredibility(id int64, delta, floor, ceiling float64) (float64, error)
}

type politicianRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPoliticianRepository(db *sqlx.DB, logger *zap.Logger) PoliticianRepository {
	return &politicianRepository{db: db, logger: logger}
}

func (r *politicianRepository) GetByID(id int64) (*models.Politician, error) {
	var p models.Politician
	query := `SELECT id, name, first_name, last_name, party, position, political_orientation,
	                 credibility_score, total_votes, positive_votes, negative_votes,
	                 trending_score, is_active, created_at, updated_at
	          FROM politicians WHERE id = $1`
	err := r.db.Get(&p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *politicianRepository) GetActiveIDs(limit int) ([]int64, error) {
	var ids []int64
	query := `SELECT id FROM politicians WHERE is_active = TRUE ORDER BY id LIMIT $1`
	err := r.db.Select(&ids, query, limit)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *politicianRepository) AdjustCredibility(id int64, delta, floor, ceiling float64) (float64, error) {
	var newScore float64
	query := `UPDATE politicians
	          SET credibility_score = LEAST($4, GREATEST($3, credibility_score + $2)),
	              updated_at = NOW()
	          WHERE id = $1
	          RETURNING credibility_score`
	err := r.db.QueryRowx(query, id, delta, floor, ceiling).Scan(&newScore)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return newScore, nil
}
