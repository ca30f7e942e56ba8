package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"backend/internal/config"
	"backend/internal/matching"
	"backend/internal/repository"
)

// ErrInvalidInput marks malformed identifiers and similar caller mistakes.
var ErrInvalidInput = errors.New("invalid input")

// MatchAllReport summarizes a run across every active politician. A failing
// politician never aborts the run; it is tallied and the error retained.
type MatchAllReport struct {
	RunID           string           `json:"run_id"`
	Processed       int              `json:"processed"`
	Failed          int              `json:"failed"`
	AutoMatched     int              `json:"auto_matched"`
	QueuedForReview int              `json:"queued_for_review"`
	Skipped         int              `json:"skipped"`
	Errors          map[int64]string `json:"errors,omitempty"`
}

type MatchingService interface {
	// MatchPolitician runs the batch processor for one politician,
	// optionally narrowed to a single promise or a lower confidence floor.
	MatchPolitician(ctx context.Context, politicianID int64, opts matching.RunOptions) (*matching.RunResult, error)
	// MatchAll applies the same per-politician semantics across every active
	// politician, bounded by the configured soft cap and concurrency limit.
	MatchAll(ctx context.Context) (*MatchAllReport, error)
}

type matchingService struct {
	processor      *matching.Processor
	politicianRepo repository.PoliticianRepository
	locks          *PoliticianLocks
	cfg            config.ScoringConfig
	logger         *zap.Logger
}

func NewMatchingService(
	processor *matching.Processor,
	politicianRepo repository.PoliticianRepository,
	locks *PoliticianLocks,
	cfg config.ScoringConfig,
	logger *zap.Logger,
) MatchingService {
	return &matchingService{
		processor:      processor,
		politicianRepo: politicianRepo,
		locks:          locks,
		cfg:            cfg,
		logger:         logger,
	}
}

func (s *matchingService) MatchPolitician(ctx context.Context, politicianID int64, opts matching.RunOptions) (*matching.RunResult, error) {
	if politicianID <= 0 {
		return nil, fmt.Errorf("%w: politician id %d", ErrInvalidInput, politicianID)
	}
	if _, err := s.politicianRepo.GetByID(politicianID); err != nil {
		return nil, fmt.Errorf("failed to load politician: %w", err)
	}

	unlock := s.locks.Lock(politicianID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.processor.Run(politicianID, opts)
}

func (s *matchingService) MatchAll(ctx context.Context) (*MatchAllReport, error) {
	ids, err := s.politicianRepo.GetActiveIDs(s.cfg.MaxPoliticiansPerRun)
	if err != nil {
		return nil, fmt.Errorf("failed to list politicians: %w", err)
	}

	report := &MatchAllReport{
		RunID:  uuid.NewString(),
		Errors: make(map[int64]string),
	}
	var mu sync.Mutex

	// Politicians are independent; a bounded errgroup fans the runs out
	// while the keyed locks keep each politician's run exclusive.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			unlock := s.locks.Lock(id)
			result, err := s.processor.Run(id, matching.RunOptions{})
			unlock()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Errors[id] = err.Error()
				s.logger.Error("Matching failed for politician", zap.Error(err), zap.Int64("politician_id", id))
				return nil // keep the batch going
			}
			report.Processed++
			report.AutoMatched += result.AutoMatched
			report.QueuedForReview += result.QueuedForReview
			report.Skipped += result.Skipped
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	s.logger.Info("Match-all run finished",
		zap.String("run_id", report.RunID),
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed),
		zap.Int("auto_matched", report.AutoMatched),
		zap.Int("queued_for_review", report.QueuedForReview))
	return report, nil
}
