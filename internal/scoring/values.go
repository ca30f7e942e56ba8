package scoring

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"
)

// Flag severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
)

// ProfileRule inspects a computed profile and raises anomaly flags. Rules are
// a table so new heuristics slot in without touching the profile data shape.
type ProfileRule struct {
	Name     string
	Evaluate func(cfg config.ScoringConfig, profile *models.ValueProfile, promises []models.Promise, now time.Time) []models.ProfileFlag
}

var profileRules = []ProfileRule{
	{Name: "greenwashing", Evaluate: greenwashingRule},
	{Name: "priority_shift", Evaluate: priorityShiftRule},
}

// Profiler aggregates a politician's promises by theme and flags thematic
// inconsistency.
type Profiler struct {
	promiseRepo repository.PromiseRepository
	matchRepo   repository.MatchRepository
	actionRepo  repository.ActionRecordRepository
	profileRepo repository.ValueProfileRepository
	cfg         config.ScoringConfig
	logger      *zap.Logger
	now         func() time.Time
}

func NewProfiler(
	promiseRepo repository.PromiseRepository,
	matchRepo repository.MatchRepository,
	actionRepo repository.ActionRecordRepository,
	profileRepo repository.ValueProfileRepository,
	cfg config.ScoringConfig,
	logger *zap.Logger,
) *Profiler {
	return &Profiler{
		promiseRepo: promiseRepo,
		matchRepo:   matchRepo,
		actionRepo:  actionRepo,
		profileRepo: profileRepo,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// CalculateOne recomputes and persists one politician's value profile.
func (p *Profiler) CalculateOne(politicianID int64) (*models.ValueProfile, error) {
	bc, err := BuildBatchContext(p.promiseRepo, p.matchRepo, p.actionRepo, []int64{politicianID})
	if err != nil {
		return nil, err
	}
	profile := p.Compute(bc, politicianID)
	if err := p.profileRepo.Upsert(profile); err != nil {
		return nil, fmt.Errorf("failed to persist value profile: %w", err)
	}
	return profile, nil
}

// Compute derives the profile for one politician from grouped batch data.
func (p *Profiler) Compute(bc *BatchContext, politicianID int64) *models.ValueProfile {
	now := p.now()
	promises := bc.Promises(politicianID)

	profile := &models.ValueProfile{
		PoliticianID: politicianID,
		Themes:       make(map[models.ThemeCategory]models.ThemeStats, len(models.AllThemes)),
		Flags:        []models.ProfileFlag{},
		CalculatedAt: now,
	}

	for _, theme := range models.AllThemes {
		profile.Themes[theme] = models.ThemeStats{Category: theme}
	}

	for _, promise := range promises {
		theme := promise.Category
		if _, known := profile.Themes[theme]; !known {
			theme = models.ThemeOther
		}
		stats := profile.Themes[theme]
		stats.PromiseCount++
		switch bc.AuthoritativeOutcome(promise.ID) {
		case models.OutcomeKept:
			stats.KeptCount++
		case models.OutcomeBroken:
			stats.BrokenCount++
		case models.OutcomePartial:
			stats.PartialCount++
		}
		profile.Themes[theme] = stats
	}

	total := len(promises)
	for theme, stats := range profile.Themes {
		if total > 0 {
			// Attention is a share of this politician's own promises, not of
			// any global total.
			stats.AttentionScore = round2(float64(stats.PromiseCount) / float64(total) * 100)
		}
		adjudicated := stats.KeptCount + stats.BrokenCount + stats.PartialCount
		if adjudicated > 0 {
			raw := (float64(stats.KeptCount)*100 + float64(stats.PartialCount)*50) / float64(adjudicated)
			stats.ConsistencyScore = round2(clamp(raw, 0, 100))
		}
		profile.Themes[theme] = stats
	}

	for _, rule := range profileRules {
		profile.Flags = append(profile.Flags, rule.Evaluate(p.cfg, profile, promises, now)...)
	}

	profile.AuthenticityScore = authenticityScore(profile)
	return profile
}

// greenwashingRule flags a theme with high promise volume but poor
// follow-through.
func greenwashingRule(cfg config.ScoringConfig, profile *models.ValueProfile, _ []models.Promise, _ time.Time) []models.ProfileFlag {
	var flags []models.ProfileFlag
	for _, theme := range models.AllThemes {
		stats := profile.Themes[theme]
		adjudicated := stats.KeptCount + stats.BrokenCount + stats.PartialCount
		if stats.PromiseCount >= cfg.GreenwashingMinPromises &&
			adjudicated > 0 &&
			stats.ConsistencyScore < cfg.GreenwashingMaxConsistency {
			flags = append(flags, models.ProfileFlag{
				Rule:     "greenwashing",
				Category: theme,
				Severity: SeverityMedium,
				Description: fmt.Sprintf("%d promises in %s but a consistency score of %.0f",
					stats.PromiseCount, theme, stats.ConsistencyScore),
			})
		}
	}
	return flags
}

// priorityShiftRule flags a theme whose attention share moved sharply between
// the promises declared in the last twelve months and the older ones.
func priorityShiftRule(cfg config.ScoringConfig, _ *models.ValueProfile, promises []models.Promise, now time.Time) []models.ProfileFlag {
	cutoff := now.AddDate(-1, 0, 0)
	recent := make(map[models.ThemeCategory]int)
	older := make(map[models.ThemeCategory]int)
	var recentTotal, olderTotal int
	for _, promise := range promises {
		if promise.DeclaredAt.After(cutoff) {
			recent[promise.Category]++
			recentTotal++
		} else {
			older[promise.Category]++
			olderTotal++
		}
	}
	// Both windows need enough volume for shares to mean anything.
	if recentTotal < 3 || olderTotal < 3 {
		return nil
	}

	var flags []models.ProfileFlag
	for _, theme := range models.AllThemes {
		recentShare := float64(recent[theme]) / float64(recentTotal) * 100
		olderShare := float64(older[theme]) / float64(olderTotal) * 100
		shift := recentShare - olderShare
		if shift < 0 {
			shift = -shift
		}
		if shift >= cfg.PriorityShiftThreshold {
			flags = append(flags, models.ProfileFlag{
				Rule:     "priority_shift",
				Category: theme,
				Severity: SeverityLow,
				Description: fmt.Sprintf("attention on %s moved from %.0f%% to %.0f%% of declared promises within a year",
					theme, olderShare, recentShare),
			})
		}
	}
	return flags
}

// authenticityScore is the promise-weighted mean of theme consistency across
// adjudicated themes, less ten points per raised flag, clamped to [0,100].
func authenticityScore(profile *models.ValueProfile) float64 {
	var weighted, weight float64
	for _, stats := range profile.Themes {
		if stats.KeptCount+stats.BrokenCount+stats.PartialCount == 0 {
			continue
		}
		weighted += stats.ConsistencyScore * float64(stats.PromiseCount)
		weight += float64(stats.PromiseCount)
	}
	if weight == 0 {
		return 0
	}
	score := weighted/weight - 10*float64(len(profile.Flags))
	return round2(clamp(score, 0, 100))
}
