package authority

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"backend/internal/models"
	"backend/internal/repository"
)

// SyncResult reports one ingestion run for one politician. An unreachable
// upstream is not an error: the run reports zero new records and existing
// scores stay untouched.
type SyncResult struct {
	PoliticianID  int64  `json:"politician_id"`
	Fetched       int    `json:"fetched"`
	Added         int    `json:"added"`
	UpstreamError string `json:"upstream_error,omitempty"`
}

// Syncer pulls action records from the upstream authority into the store.
type Syncer struct {
	client         *Client
	actionRepo     repository.ActionRecordRepository
	politicianRepo repository.PoliticianRepository
	logger         *zap.Logger
	lookback       time.Duration
}

func NewSyncer(client *Client, actionRepo repository.ActionRecordRepository, politicianRepo repository.PoliticianRepository, logger *zap.Logger) *Syncer {
	return &Syncer{
		client:         client,
		actionRepo:     actionRepo,
		politicianRepo: politicianRepo,
		logger:         logger,
		lookback:       365 * 24 * time.Hour,
	}
}

// SyncPolitician fetches and stores the politician's recent votes and
// activities. Malformed upstream records are skipped, never fatal.
func (s *Syncer) SyncPolitician(ctx context.Context, politicianID int64) (*SyncResult, error) {
	if _, err := s.politicianRepo.GetByID(politicianID); err != nil {
		return nil, err
	}

	result := &SyncResult{PoliticianID: politicianID}
	since := time.Now().Add(-s.lookback)
	ref := strconv.FormatInt(politicianID, 10)

	var records []Record
	votes, err := s.client.FetchVotes(ctx, ref, since)
	if err != nil {
		result.UpstreamError = err.Error()
	} else {
		records = append(records, votes...)
	}
	activities, err := s.client.FetchActivities(ctx, ref, since)
	if err != nil {
		result.UpstreamError = err.Error()
	} else {
		records = append(records, activities...)
	}
	result.Fetched = len(records)

	for _, rec := range records {
		if rec.ExternalRef == "" || rec.Description == "" {
			s.logger.Warn("Skipping malformed upstream record",
				zap.Int64("politician_id", politicianID), zap.String("external_ref", rec.ExternalRef))
			continue
		}
		action := &models.ActionRecord{
			PoliticianID: politicianID,
			ActionType:   MapActionType(rec.Type),
			Description:  rec.Description,
			Category:     mapCategory(rec.Category),
			Position:     rec.Position,
			ActionDate:   rec.Date,
			ExternalRef:  rec.ExternalRef,
		}
		created, err := s.actionRepo.Upsert(action)
		if err != nil {
			s.logger.Error("Failed to store action record", zap.Error(err),
				zap.Int64("politician_id", politicianID), zap.String("external_ref", rec.ExternalRef))
			continue
		}
		if created {
			result.Added++
		}
	}

	s.logger.Info("Authority sync finished",
		zap.Int64("politician_id", politicianID),
		zap.Int("fetched", result.Fetched),
		zap.Int("added", result.Added))
	return result, nil
}

func mapCategory(upstream string) models.ThemeCategory {
	theme := models.ThemeCategory(upstream)
	for _, known := range models.AllThemes {
		if theme == known {
			return theme
		}
	}
	return models.ThemeOther
}
