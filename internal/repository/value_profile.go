package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type ValueProfileRepository interface {
	Get(politicianID int64) (*models.ValueProfile, error)
	// Upsert writes one profile keyed by politician_id, themes and flags
	// serialized as JSON.
	Upsert(profile *models.ValueProfile) error
}

type valueProfileRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewValueProfileRepository(db *sqlx.DB, logger *zap.Logger) ValueProfileRepository {
	return &valueProfileRepository{db: db, logger: logger}
}

func (r *valueProfileRepository) Get(politicianID int64) (*models.ValueProfile, error) {
	var profile models.ValueProfile
	query := `SELECT politician_id, themes, flags, authenticity_score, calculated_at
	          FROM value_profiles WHERE politician_id = $1`
	err := r.db.Get(&profile, query, politicianID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(profile.ThemesRaw, &profile.Themes); err != nil {
		return nil, fmt.Errorf("failed to decode themes: %w", err)
	}
	if len(profile.FlagsRaw) > 0 {
		if err := json.Unmarshal(profile.FlagsRaw, &profile.Flags); err != nil {
			return nil, fmt.Errorf("failed to decode flags: %w", err)
		}
	}
	return &profile, nil
}

func (r *valueProfileRepository) Upsert(profile *models.ValueProfile) error {
	themes, err := json.Marshal(profile.Themes)
	if err != nil {
		return fmt.Errorf("failed to encode themes: %w", err)
	}
	flags, err := json.Marshal(profile.Flags)
	if err != nil {
		return fmt.Errorf("failed to encode flags: %w", err)
	}

	query := `INSERT INTO value_profiles (politician_id, themes, flags, authenticity_score, calculated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (politician_id) DO UPDATE
	          SET themes             = EXCLUDED.themes,
	              flags              = EXCLUDED.flags,
	              authenticity_score = EXCLUDED.authenticity_score,
	              calculated_at      = EXCLUDED.calculated_at`
	_, err = r.db.Exec(query, profile.PoliticianID, themes, flags, profile.AuthenticityScore, profile.CalculatedAt)
	return err
}
