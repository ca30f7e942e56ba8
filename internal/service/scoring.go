package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"
	"backend/internal/scoring"
)

// ScoreAllReport summarizes a batch score or profile recomputation.
type ScoreAllReport struct {
	RunID     string           `json:"run_id"`
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
	Errors    map[int64]string `json:"errors,omitempty"`
}

type ScoringService interface {
	CalculateScore(ctx context.Context, politicianID int64) (*models.ConsistencyScore, error)
	CalculateAllScores(ctx context.Context) (*ScoreAllReport, error)
	CalculateProfile(ctx context.Context, politicianID int64) (*models.ValueProfile, error)
	CalculateAllProfiles(ctx context.Context) (*ScoreAllReport, error)
	// ApplyVerification finalizes one verification decision: mutates the
	// politician's credibility score and appends to the audit history.
	ApplyVerification(ctx context.Context, politicianID int64, promiseID *int64, v scoring.Verification) (*scoring.ApplyResult, error)
	GetScore(politicianID int64) (*models.ConsistencyScore, error)
	GetProfile(politicianID int64) (*models.ValueProfile, error)
}

type scoringService struct {
	calculator     *scoring.Calculator
	profiler       *scoring.Profiler
	credibility    *scoring.CredibilityScorer
	politicianRepo repository.PoliticianRepository
	promiseRepo    repository.PromiseRepository
	matchRepo      repository.MatchRepository
	actionRepo     repository.ActionRecordRepository
	scoreRepo      repository.ConsistencyScoreRepository
	profileRepo    repository.ValueProfileRepository
	locks          *PoliticianLocks
	cfg            config.ScoringConfig
	logger         *zap.Logger
}

func NewScoringService(
	calculator *scoring.Calculator,
	profiler *scoring.Profiler,
	credibility *scoring.CredibilityScorer,
	politicianRepo repository.PoliticianRepository,
	promiseRepo repository.PromiseRepository,
	matchRepo repository.MatchRepository,
	actionRepo repository.ActionRecordRepository,
	scoreRepo repository.ConsistencyScoreRepository,
	profileRepo repository.ValueProfileRepository,
	locks *PoliticianLocks,
	cfg config.ScoringConfig,
	logger *zap.Logger,
) ScoringService {
	return &scoringService{
		calculator:     calculator,
		profiler:       profiler,
		credibility:    credibility,
		politicianRepo: politicianRepo,
		promiseRepo:    promiseRepo,
		matchRepo:      matchRepo,
		actionRepo:     actionRepo,
		scoreRepo:      scoreRepo,
		profileRepo:    profileRepo,
		locks:          locks,
		cfg:            cfg,
		logger:         logger,
	}
}

func (s *scoringService) CalculateScore(ctx context.Context, politicianID int64) (*models.ConsistencyScore, error) {
	if politicianID <= 0 {
		return nil, fmt.Errorf("%w: politician id %d", ErrInvalidInput, politicianID)
	}
	unlock := s.locks.Lock(politicianID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.calculator.CalculateOne(politicianID)
}

// CalculateAllScores recomputes every active politician's consistency score
// with a constant number of bulk reads and one bulk write. Locks are taken in
// ascending ID order so concurrent single-politician calls cannot deadlock
// against the batch.
func (s *scoringService) CalculateAllScores(ctx context.Context) (*ScoreAllReport, error) {
	ids, err := s.politicianRepo.GetActiveIDs(s.cfg.MaxPoliticiansPerRun)
	if err != nil {
		return nil, fmt.Errorf("failed to list politicians: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	unlocks := make([]func(), 0, len(ids))
	for _, id := range ids {
		unlocks = append(unlocks, s.locks.Lock(id))
	}
	defer func() {
		for _, unlock := range unlocks {
			unlock()
		}
	}()

	report := &ScoreAllReport{RunID: uuid.NewString(), Errors: make(map[int64]string)}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	scores, err := s.calculator.CalculateBatch(ids)
	if err != nil {
		// The bulk path failed as a whole; nothing was written.
		return report, err
	}
	report.Processed = len(scores)

	s.logger.Info("Score-all run finished",
		zap.String("run_id", report.RunID), zap.Int("processed", report.Processed))
	return report, nil
}

func (s *scoringService) CalculateProfile(ctx context.Context, politicianID int64) (*models.ValueProfile, error) {
	if politicianID <= 0 {
		return nil, fmt.Errorf("%w: politician id %d", ErrInvalidInput, politicianID)
	}
	unlock := s.locks.Lock(politicianID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.profiler.CalculateOne(politicianID)
}

// CalculateAllProfiles builds one batch context and recomputes every profile
// from it. A politician whose profile fails to persist is tallied and the run
// continues.
func (s *scoringService) CalculateAllProfiles(ctx context.Context) (*ScoreAllReport, error) {
	ids, err := s.politicianRepo.GetActiveIDs(s.cfg.MaxPoliticiansPerRun)
	if err != nil {
		return nil, fmt.Errorf("failed to list politicians: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	unlocks := make([]func(), 0, len(ids))
	for _, id := range ids {
		unlocks = append(unlocks, s.locks.Lock(id))
	}
	defer func() {
		for _, unlock := range unlocks {
			unlock()
		}
	}()

	report := &ScoreAllReport{RunID: uuid.NewString(), Errors: make(map[int64]string)}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	bc, err := scoring.BuildBatchContext(s.promiseRepo, s.matchRepo, s.actionRepo, ids)
	if err != nil {
		return report, err
	}

	for _, id := range ids {
		profile := s.profiler.Compute(bc, id)
		if err := s.profileRepo.Upsert(profile); err != nil {
			report.Failed++
			report.Errors[id] = err.Error()
			s.logger.Error("Failed to persist value profile", zap.Error(err), zap.Int64("politician_id", id))
			continue
		}
		report.Processed++
	}

	s.logger.Info("Profile-all run finished",
		zap.String("run_id", report.RunID),
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *scoringService) ApplyVerification(ctx context.Context, politicianID int64, promiseID *int64, v scoring.Verification) (*scoring.ApplyResult, error) {
	if politicianID <= 0 {
		return nil, fmt.Errorf("%w: politician id %d", ErrInvalidInput, politicianID)
	}
	unlock := s.locks.Lock(politicianID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.credibility.Apply(politicianID, promiseID, v)
}

func (s *scoringService) GetScore(politicianID int64) (*models.ConsistencyScore, error) {
	return s.scoreRepo.Get(politicianID)
}

func (s *scoringService) GetProfile(politicianID int64) (*models.ValueProfile, error) {
	return s.profileRepo.Get(politicianID)
}
