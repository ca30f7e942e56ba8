package matching

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"
)

var (
	ErrPromiseNotActionable = errors.New("promise is not actionable")
	ErrPromiseNotOwned      = errors.New("promise does not belong to politician")
)

// RunResult summarizes one matching run for one politician.
type RunResult struct {
	RunID           string `json:"run_id"`
	PoliticianID    int64  `json:"politician_id"`
	AutoMatched     int    `json:"auto_matched"`
	QueuedForReview int    `json:"queued_for_review"`
	Skipped         int    `json:"skipped"`
}

// RunOptions narrows a matching run.
type RunOptions struct {
	PromiseID     *int64   // match only this promise
	MinConfidence *float64 // override of the low threshold
}

// Processor cross-products a politician's pending promises against its action
// records, keeps the best match per promise and persists the ones above the
// confidence thresholds. Safe to re-run: matches upsert on the
// (promise, action) pair.
type Processor struct {
	matcher     *Matcher
	promiseRepo repository.PromiseRepository
	actionRepo  repository.ActionRecordRepository
	matchRepo   repository.MatchRepository
	cfg         config.ScoringConfig
	logger      *zap.Logger
	now         func() time.Time
}

func NewProcessor(
	matcher *Matcher,
	promiseRepo repository.PromiseRepository,
	actionRepo repository.ActionRecordRepository,
	matchRepo repository.MatchRepository,
	cfg config.ScoringConfig,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		matcher:     matcher,
		promiseRepo: promiseRepo,
		actionRepo:  actionRepo,
		matchRepo:   matchRepo,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Run matches one politician's pending actionable promises against its action
// records. A failing promise is skipped, never fatal to the run.
func (p *Processor) Run(politicianID int64, opts RunOptions) (*RunResult, error) {
	result := &RunResult{
		RunID:        uuid.NewString(),
		PoliticianID: politicianID,
	}

	promises, err := p.loadPromises(politicianID, opts)
	if err != nil {
		return nil, err
	}

	actions, err := p.actionRepo.GetByPolitician(politicianID, p.cfg.MaxActionsPerRun)
	if err != nil {
		return nil, fmt.Errorf("failed to load action records: %w", err)
	}

	if len(promises) == 0 || len(actions) == 0 {
		p.logger.Info("Nothing to match",
			zap.String("run_id", result.RunID),
			zap.Int64("politician_id", politicianID),
			zap.Int("promises", len(promises)),
			zap.Int("actions", len(actions)))
		return result, nil
	}

	lowThreshold := p.cfg.LowThreshold
	if opts.MinConfidence != nil {
		lowThreshold = clamp01(*opts.MinConfidence)
	}

	for _, promise := range promises {
		if strings.TrimSpace(promise.Text) == "" {
			result.Skipped++
			continue
		}

		best, bestSim := p.bestMatch(&promise, actions)
		if best == nil {
			result.Skipped++
			continue
		}

		switch {
		case bestSim.Score >= p.cfg.HighThreshold:
			if err := p.writeAutoMatch(&promise, best, bestSim); err != nil {
				p.logger.Error("Failed to persist auto match", zap.Error(err),
					zap.String("run_id", result.RunID), zap.Int64("promise_id", promise.ID))
				result.Skipped++
				continue
			}
			result.AutoMatched++
		case bestSim.Score >= lowThreshold:
			if err := p.writeReviewMatch(&promise, best, bestSim, "keyword similarity"); err != nil {
				p.logger.Error("Failed to persist review match", zap.Error(err),
					zap.String("run_id", result.RunID), zap.Int64("promise_id", promise.ID))
				result.Skipped++
				continue
			}
			result.QueuedForReview++
		case bestSim.CategoryMatch && len(bestSim.SharedTokens) > 0:
			// Promises are broad policy statements and action descriptions
			// are narrow technical text, so lexical overlap is often weak.
			// A shared category with any token overlap is still worth a
			// reviewer's time. Known limitation of keyword matching.
			if err := p.writeReviewMatch(&promise, best, bestSim, "shared theme category"); err != nil {
				p.logger.Error("Failed to persist category-fallback match", zap.Error(err),
					zap.String("run_id", result.RunID), zap.Int64("promise_id", promise.ID))
				result.Skipped++
				continue
			}
			result.QueuedForReview++
		default:
			result.Skipped++
		}
	}

	p.logger.Info("Matching run finished",
		zap.String("run_id", result.RunID),
		zap.Int64("politician_id", politicianID),
		zap.Int("auto_matched", result.AutoMatched),
		zap.Int("queued_for_review", result.QueuedForReview),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (p *Processor) loadPromises(politicianID int64, opts RunOptions) ([]models.Promise, error) {
	if opts.PromiseID != nil {
		promise, err := p.promiseRepo.GetByID(*opts.PromiseID)
		if err != nil {
			return nil, fmt.Errorf("failed to load promise: %w", err)
		}
		if promise.PoliticianID != politicianID {
			return nil, ErrPromiseNotOwned
		}
		if !promise.IsActionable {
			return nil, ErrPromiseNotActionable
		}
		return []models.Promise{*promise}, nil
	}

	promises, err := p.promiseRepo.GetPendingActionable(politicianID, p.cfg.MaxPromisesPerRun)
	if err != nil {
		return nil, fmt.Errorf("failed to load promises: %w", err)
	}
	return promises, nil
}

// bestMatch returns the highest-scoring action for the promise.
func (p *Processor) bestMatch(promise *models.Promise, actions []models.ActionRecord) (*models.ActionRecord, Similarity) {
	var best *models.ActionRecord
	var bestSim Similarity
	for i := range actions {
		action := &actions[i]
		if strings.TrimSpace(action.Description) == "" {
			continue
		}
		sim := p.matcher.Compare(promise.Text, promise.Category, action.Description, action.Category)
		if best == nil || sim.Score > bestSim.Score {
			best = action
			bestSim = sim
		}
	}
	return best, bestSim
}

func (p *Processor) writeAutoMatch(promise *models.Promise, action *models.ActionRecord, sim Similarity) error {
	now := p.now()
	match := &models.PromiseMatch{
		PromiseID:   promise.ID,
		ActionID:    action.ID,
		Similarity:  sim.Score,
		Outcome:     outcomeFromPosition(action.Position),
		Method:      models.MethodAutomatic,
		Explanation: fmt.Sprintf("auto-matched by keyword similarity (%.2f), shared terms: %s", sim.Score, strings.Join(sim.SharedTokens, ", ")),
		ConfirmedAt: &now,
	}
	return p.matchRepo.Upsert(match)
}

func (p *Processor) writeReviewMatch(promise *models.Promise, action *models.ActionRecord, sim Similarity, reason string) error {
	match := &models.PromiseMatch{
		PromiseID:   promise.ID,
		ActionID:    action.ID,
		Similarity:  sim.Score,
		Outcome:     models.OutcomePending,
		Method:      models.MethodManual,
		Explanation: fmt.Sprintf("queued for manual review, candidate by %s (%.2f), shared terms: %s", reason, sim.Score, strings.Join(sim.SharedTokens, ", ")),
	}
	return p.matchRepo.Upsert(match)
}

// outcomeFromPosition derives the auto-confirmed outcome from the action's
// recorded position: a vote in favor keeps the promise, a vote against breaks
// it, anything else only partially follows through.
func outcomeFromPosition(position string) string {
	switch position {
	case models.PositionFor:
		return models.OutcomeKept
	case models.PositionAgainst:
		return models.OutcomeBroken
	default:
		return models.OutcomePartial
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
