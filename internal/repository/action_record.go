package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"backend/internal/models"
)

type ActionRecordRepository interface {
	// GetByPolitician returns the politician's most recent action records,
	// capped so matching cost stays bounded.
	GetByPolitician(politicianID int64, limit int) ([]models.ActionRecord, error)
	// GetByPoliticians is the bulk read used by the batch consistency
	// calculator.
	GetByPoliticians(politicianIDs []int64) ([]models.ActionRecord, error)
	// Upsert writes one record keyed by (politician_id, external_ref) so the
	// authority sync can be re-run safely. Returns true when a new row was
	// created.
	Upsert(record *models.ActionRecord) (bool, error)
}

type actionRecordRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewActionRecordRepository(db *sqlx.DB, logger *zap.Logger) ActionRecordRepository {
	return &actionRecordRepository{db: db, logger: logger}
}

const actionColumns = `id, politician_id, action_type, description, category, position,
	action_date, external_ref, created_at`

func (r *actionRecordRepository) GetByPolitician(politicianID int64, limit int) ([]models.ActionRecord, error) {
	var records []models.ActionRecord
	query := `SELECT ` + actionColumns + ` FROM action_records
	          WHERE politician_id = $1
	          ORDER BY action_date DESC
	          LIMIT $2`
	err := r.db.Select(&records, query, politicianID, limit)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *actionRecordRepository) GetByPoliticians(politicianIDs []int64) ([]models.ActionRecord, error) {
	if len(politicianIDs) == 0 {
		return nil, nil
	}
	var records []models.ActionRecord
	query := `SELECT ` + actionColumns + ` FROM action_records WHERE politician_id = ANY($1)`
	err := r.db.Select(&records, query, pq.Array(politicianIDs))
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *actionRecordRepository) Upsert(record *models.ActionRecord) (bool, error) {
	// Records are immutable once ingested; conflicts only refresh nothing and
	// report that the row already existed.
	query := `INSERT INTO action_records (politician_id, action_type, description, category, position, action_date, external_ref)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (politician_id, external_ref) DO NOTHING
	          RETURNING id, created_at`
	err := r.db.QueryRowx(query, record.PoliticianID, record.ActionType, record.Description,
		record.Category, record.Position, record.ActionDate, record.ExternalRef).
		Scan(&record.ID, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil // conflict, nothing inserted
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
