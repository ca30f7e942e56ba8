package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type ConsistencyScoreRepository interface {
	Get(politicianID int64) (*models.ConsistencyScore, error)
	// UpsertAll writes every computed row in one statement, keyed by
	// politician_id. Idempotent: re-running a batch overwrites in place.
	UpsertAll(scores []models.ConsistencyScore) error
}

type consistencyScoreRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewConsistencyScoreRepository(db *sqlx.DB, logger *zap.Logger) ConsistencyScoreRepository {
	return &consistencyScoreRepository{db: db, logger: logger}
}

func (r *consistencyScoreRepository) Get(politicianID int64) (*models.ConsistencyScore, error) {
	var score models.ConsistencyScore
	query := `SELECT politician_id, overall_score, kept_count, broken_count, partial_count, pending_count,
	                 attendance_rate, activity_score, data_quality, calculated_at
	          FROM consistency_scores WHERE politician_id = $1`
	err := r.db.Get(&score, query, politicianID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (r *consistencyScoreRepository) UpsertAll(scores []models.ConsistencyScore) error {
	if len(scores) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(scores))
	valueArgs := make([]interface{}, 0, len(scores)*10)
	for i, s := range scores {
		base := i * 10
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10))
		valueArgs = append(valueArgs, s.PoliticianID, s.OverallScore, s.KeptCount, s.BrokenCount,
			s.PartialCount, s.PendingCount, s.AttendanceRate, s.ActivityScore, s.DataQuality, s.CalculatedAt)
	}

	query := `INSERT INTO consistency_scores
	          (politician_id, overall_score, kept_count, broken_count, partial_count, pending_count,
	           attendance_rate, activity_score, data_quality, calculated_at)
	          VALUES ` + strings.Join(valueStrings, ", ") + `
	          ON CONFLICT (politician_id) DO UPDATE
	          SET overall_score   = EXCLUDED.overall_score,
	              kept_count      = EXCLUDED.kept_count,
	              broken_count    = EXCLUDED.broken_count,
	              partial_count   = EXCLUDED.partial_count,
	              pending_count   = EXCLUDED.pending_count,
	              attendance_rate = EXCLUDED.attendance_rate,
	              activity_score  = EXCLUDED.activity_score,
	              data_quality    = EXCLUDED.data_quality,
	              calculated_at   = EXCLUDED.calculated_at`
	_, err := r.db.Exec(query, valueArgs...)
	return err
}
