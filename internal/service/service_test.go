package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/matching"
	"backend/internal/models"
	"backend/internal/repository"
	"backend/internal/scoring"
)

type memPoliticianRepo struct {
	active []int64
	score  float64
}

func (m *memPoliticianRepo) GetByID(id int64) (*models.Politician, error) {
	for _, known := range m.active {
		if known == id {
			return &models.Politician{ID: id, IsActive: true}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPoliticianRepo) GetActiveIDs(limit int) ([]int64, error) {
	if len(m.active) > limit {
		return m.active[:limit], nil
	}
	return m.active, nil
}

func (m *memPoliticianRepo) AdjustCredibility(id int64, delta, floor, ceiling float64) (float64, error) {
	m.score += delta
	if m.score < floor {
		m.score = floor
	}
	if m.score > ceiling {
		m.score = ceiling
	}
	return m.score, nil
}

type memPromiseRepo struct {
	promises []models.Promise
	failFor  int64 // politician whose reads fail
}

var errStorage = errors.New("storage unavailable")

func (m *memPromiseRepo) GetByID(id int64) (*models.Promise, error) {
	for i := range m.promises {
		if m.promises[i].ID == id {
			p := m.promises[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPromiseRepo) GetPendingActionable(politicianID int64, limit int) ([]models.Promise, error) {
	if m.failFor != 0 && politicianID == m.failFor {
		return nil, errStorage
	}
	out := make([]models.Promise, 0)
	for _, p := range m.promises {
		if p.PoliticianID == politicianID && p.IsActionable {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPromiseRepo) GetByPoliticians(politicianIDs []int64) ([]models.Promise, error) {
	out := make([]models.Promise, 0)
	for _, p := range m.promises {
		for _, id := range politicianIDs {
			if p.PoliticianID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

type memActionRepo struct {
	actions []models.ActionRecord
}

func (m *memActionRepo) GetByPolitician(politicianID int64, limit int) ([]models.ActionRecord, error) {
	out := make([]models.ActionRecord, 0)
	for _, a := range m.actions {
		if a.PoliticianID == politicianID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memActionRepo) GetByPoliticians(politicianIDs []int64) ([]models.ActionRecord, error) {
	out := make([]models.ActionRecord, 0)
	for _, a := range m.actions {
		for _, id := range politicianIDs {
			if a.PoliticianID == id {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

func (m *memActionRepo) Upsert(record *models.ActionRecord) (bool, error) {
	m.actions = append(m.actions, *record)
	return true, nil
}

type memMatchRepo struct {
	matches []models.PromiseMatch
}

func (m *memMatchRepo) Upsert(match *models.PromiseMatch) error {
	m.matches = append(m.matches, *match)
	return nil
}

func (m *memMatchRepo) GetByPromises(promiseIDs []int64) ([]models.PromiseMatch, error) {
	out := make([]models.PromiseMatch, 0)
	for _, match := range m.matches {
		for _, id := range promiseIDs {
			if match.PromiseID == id {
				out = append(out, match)
				break
			}
		}
	}
	return out, nil
}

func (m *memMatchRepo) CountPendingReview() (int, error) { return 0, nil }

type memScoreRepo struct {
	byPolitician map[int64]models.ConsistencyScore
}

func (m *memScoreRepo) Get(politicianID int64) (*models.ConsistencyScore, error) {
	if s, ok := m.byPolitician[politicianID]; ok {
		return &s, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memScoreRepo) UpsertAll(scores []models.ConsistencyScore) error {
	if m.byPolitician == nil {
		m.byPolitician = make(map[int64]models.ConsistencyScore)
	}
	for _, s := range scores {
		m.byPolitician[s.PoliticianID] = s
	}
	return nil
}

type memProfileRepo struct {
	byPolitician map[int64]*models.ValueProfile
}

func (m *memProfileRepo) Get(politicianID int64) (*models.ValueProfile, error) {
	if p, ok := m.byPolitician[politicianID]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memProfileRepo) Upsert(profile *models.ValueProfile) error {
	if m.byPolitician == nil {
		m.byPolitician = make(map[int64]*models.ValueProfile)
	}
	m.byPolitician[profile.PoliticianID] = profile
	return nil
}

type memEventRepo struct {
	events []models.CredibilityEvent
}

func (m *memEventRepo) Append(event *models.CredibilityEvent) error {
	m.events = append(m.events, *event)
	return nil
}

func (m *memEventRepo) GetByPolitician(politicianID int64, limit int) ([]models.CredibilityEvent, error) {
	return m.events, nil
}

type serviceFixture struct {
	politicians *memPoliticianRepo
	promises    *memPromiseRepo
	actions     *memActionRepo
	matches     *memMatchRepo
	scores      *memScoreRepo
	profiles    *memProfileRepo
	events      *memEventRepo
	matching    MatchingService
	scoring     ScoringService
}

func newServiceFixture(active []int64) *serviceFixture {
	cfg := config.DefaultScoring()
	logger := zap.NewNop()
	f := &serviceFixture{
		politicians: &memPoliticianRepo{active: active, score: 100},
		promises:    &memPromiseRepo{},
		actions:     &memActionRepo{},
		matches:     &memMatchRepo{},
		scores:      &memScoreRepo{},
		profiles:    &memProfileRepo{},
		events:      &memEventRepo{},
	}
	locks := NewPoliticianLocks()

	processor := matching.NewProcessor(matching.NewMatcher(cfg), f.promises, f.actions, f.matches, cfg, logger)
	f.matching = NewMatchingService(processor, f.politicians, locks, cfg, logger)

	calculator := scoring.NewCalculator(f.promises, f.matches, f.actions, f.scores, cfg, logger)
	profiler := scoring.NewProfiler(f.promises, f.matches, f.actions, f.profiles, cfg, logger)
	credibility := scoring.NewCredibilityScorer(f.politicians, f.events, cfg, logger)
	f.scoring = NewScoringService(calculator, profiler, credibility,
		f.politicians, f.promises, f.matches, f.actions, f.scores, f.profiles, locks, cfg, logger)
	return f
}

func (f *serviceFixture) seedMatchable(politicianID int64, text string) {
	promiseID := politicianID * 100
	f.promises.promises = append(f.promises.promises, models.Promise{
		ID: promiseID, PoliticianID: politicianID, Text: text,
		Category: models.ThemeEconomic, IsActionable: true,
		VerificationStatus: models.PromiseStatusPending,
		DeclaredAt:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	f.actions.actions = append(f.actions.actions, models.ActionRecord{
		ID: promiseID + 1, PoliticianID: politicianID, ActionType: models.ActionTypeVote,
		Description: text, Category: models.ThemeEconomic, Position: models.PositionFor,
	})
}

func TestMatchPoliticianValidation(t *testing.T) {
	f := newServiceFixture([]int64{1})

	_, err := f.matching.MatchPolitician(context.Background(), 0, matching.RunOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.matching.MatchPolitician(context.Background(), 404, matching.RunOptions{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMatchAllTalliesAcrossPoliticians(t *testing.T) {
	f := newServiceFixture([]int64{1, 2, 3})
	f.seedMatchable(1, "supprimer la redevance audiovisuelle")
	f.seedMatchable(2, "doubler le budget des hopitaux publics")
	f.promises.failFor = 3

	report, err := f.matching.MatchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.AutoMatched)
	assert.Contains(t, report.Errors[3], "storage unavailable")
	assert.NotEmpty(t, report.RunID)
	assert.Len(t, f.matches.matches, 2)
}

func TestCalculateAllScoresWritesEveryPolitician(t *testing.T) {
	f := newServiceFixture([]int64{2, 1})
	f.seedMatchable(1, "supprimer la redevance audiovisuelle")

	report, err := f.scoring.CalculateAllScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 0, report.Failed)

	score, err := f.scoring.GetScore(1)
	require.NoError(t, err)
	assert.Equal(t, 1, score.PendingCount)

	score, err = f.scoring.GetScore(2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.OverallScore)
}

func TestCalculateAllProfilesWritesEveryPolitician(t *testing.T) {
	f := newServiceFixture([]int64{1, 2})
	f.seedMatchable(1, "supprimer la redevance audiovisuelle")

	report, err := f.scoring.CalculateAllProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)

	profile, err := f.scoring.GetProfile(1)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Themes[models.ThemeEconomic].PromiseCount)
}

func TestApplyVerificationRoundTrip(t *testing.T) {
	f := newServiceFixture([]int64{1})

	promiseID := int64(100)
	result, err := f.scoring.ApplyVerification(context.Background(), 1, &promiseID, scoring.Verification{
		Outcome:    models.OutcomeKept,
		Importance: scoring.ImportanceHigh,
		Confidence: 1,
		Sources:    []string{"scrutin 1243"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.Delta)
	assert.Equal(t, 105.0, result.NewScore)
	require.Len(t, f.events.events, 1)

	_, err = f.scoring.ApplyVerification(context.Background(), 0, nil, scoring.Verification{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBatchRunsRespectCanceledContext(t *testing.T) {
	f := newServiceFixture([]int64{1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.scoring.CalculateAllScores(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
