package repository

import (
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type CredibilityEventRepository interface {
	// Append inserts one history row. The table is append-only; there is no
	// update or delete path.
	Append(event *models.CredibilityEvent) error
	GetByPolitician(politicianID int64, limit int) ([]models.CredibilityEvent, error)
}

type credibilityEventRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCredibilityEventRepository(db *sqlx.DB, logger *zap.Logger) CredibilityEventRepository {
	return &credibilityEventRepository{db: db, logger: logger}
}

func (r *credibilityEventRepository) Append(event *models.CredibilityEvent) error {
	event.SourcesRaw = strings.Join(event.Sources, ",")
	query := `INSERT INTO credibility_events (politician_id, promise_id, outcome, delta, sources, confidence, importance, description)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at`
	return r.db.QueryRowx(query, event.PoliticianID, event.PromiseID, event.Outcome, event.Delta,
		event.SourcesRaw, event.Confidence, event.Importance, event.Description).
		Scan(&event.ID, &event.CreatedAt)
}

func (r *credibilityEventRepository) GetByPolitician(politicianID int64, limit int) ([]models.CredibilityEvent, error) {
	var events []models.CredibilityEvent
	query := `SELECT id, politician_id, promise_id, outcome, delta, sources, confidence, importance, description, created_at
	          FROM credibility_events
	          WHERE politician_id = $1
	          ORDER BY created_at DESC
	          LIMIT $2`
	err := r.db.Select(&events, query, politicianID, limit)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].SourcesRaw != "" {
			events[i].Sources = strings.Split(events[i].SourcesRaw, ",")
		}
	}
	return events, nil
}
