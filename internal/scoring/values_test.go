package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"
)

type stubProfileRepo struct {
	saved []*models.ValueProfile
}

func (s *stubProfileRepo) Get(politicianID int64) (*models.ValueProfile, error) {
	return nil, repository.ErrNotFound
}

func (s *stubProfileRepo) Upsert(profile *models.ValueProfile) error {
	s.saved = append(s.saved, profile)
	return nil
}

func newTestProfiler(promises *stubPromiseRepo, matches *stubMatchRepo, profiles *stubProfileRepo) *Profiler {
	p := NewProfiler(promises, matches, &stubActionRepo{}, profiles, config.DefaultScoring(), zap.NewNop())
	p.now = func() time.Time { return testNow }
	return p
}

// themedSet builds promises of the given categories, all declared at the same
// time, optionally with confirmed outcomes (empty string leaves one pending).
func themedSet(politicianID int64, declaredAt time.Time, entries []struct {
	cat     models.ThemeCategory
	outcome string
}) ([]models.Promise, []models.PromiseMatch) {
	promises := make([]models.Promise, 0, len(entries))
	matches := make([]models.PromiseMatch, 0, len(entries))
	for i, e := range entries {
		id := politicianID*1000 + int64(i)
		promises = append(promises, themedPromise(id, politicianID, e.cat, declaredAt))
		if e.outcome != "" {
			matches = append(matches, confirmedMatch(id, id+500, e.outcome, testNow.AddDate(0, -1, 0)))
		}
	}
	return promises, matches
}

type themed = struct {
	cat     models.ThemeCategory
	outcome string
}

func TestProfileAttentionSharesSumToHundred(t *testing.T) {
	promises, matches := themedSet(1, testNow.AddDate(0, -3, 0), []themed{
		{models.ThemeEconomic, ""}, {models.ThemeEconomic, ""},
		{models.ThemeEconomic, ""}, {models.ThemeEconomic, ""},
		{models.ThemeEnvironmental, ""}, {models.ThemeEnvironmental, ""}, {models.ThemeEnvironmental, ""},
		{models.ThemeSocial, ""}, {models.ThemeSocial, ""}, {models.ThemeSocial, ""},
	})
	profiles := &stubProfileRepo{}
	profiler := newTestProfiler(&stubPromiseRepo{promises: promises}, &stubMatchRepo{matches: matches}, profiles)

	profile, err := profiler.CalculateOne(1)
	require.NoError(t, err)
	require.Len(t, profile.Themes, len(models.AllThemes))

	assert.Equal(t, 40.0, profile.Themes[models.ThemeEconomic].AttentionScore)
	assert.Equal(t, 30.0, profile.Themes[models.ThemeEnvironmental].AttentionScore)
	assert.Equal(t, 30.0, profile.Themes[models.ThemeSocial].AttentionScore)

	var sum float64
	for _, stats := range profile.Themes {
		sum += stats.AttentionScore
	}
	assert.InDelta(t, 100.0, sum, 0.05)
	require.Len(t, profiles.saved, 1)
	assert.Equal(t, testNow, profile.CalculatedAt)
}

func TestProfileThemeConsistency(t *testing.T) {
	promises, matches := themedSet(1, testNow.AddDate(0, -3, 0), []themed{
		{models.ThemeJustice, models.OutcomeKept},
		{models.ThemeJustice, models.OutcomeBroken},
		{models.ThemeJustice, models.OutcomePartial},
		{models.ThemeJustice, ""},
	})
	profiler := newTestProfiler(&stubPromiseRepo{promises: promises}, &stubMatchRepo{matches: matches}, &stubProfileRepo{})

	profile, err := profiler.CalculateOne(1)
	require.NoError(t, err)

	stats := profile.Themes[models.ThemeJustice]
	assert.Equal(t, 4, stats.PromiseCount)
	assert.Equal(t, 1, stats.KeptCount)
	assert.Equal(t, 1, stats.BrokenCount)
	assert.Equal(t, 1, stats.PartialCount)
	// (100 + 50) / 3 adjudicated; the pending promise stays out.
	assert.Equal(t, 50.0, stats.ConsistencyScore)
}

func TestGreenwashingFlag(t *testing.T) {
	promises, matches := themedSet(1, testNow.AddDate(0, -3, 0), []themed{
		{models.ThemeEnvironmental, models.OutcomeBroken},
		{models.ThemeEnvironmental, models.OutcomeBroken},
		{models.ThemeEnvironmental, models.OutcomeBroken},
		{models.ThemeEnvironmental, models.OutcomePartial},
	})
	profiler := newTestProfiler(&stubPromiseRepo{promises: promises}, &stubMatchRepo{matches: matches}, &stubProfileRepo{})

	profile, err := profiler.CalculateOne(1)
	require.NoError(t, err)

	require.Len(t, profile.Flags, 1)
	flag := profile.Flags[0]
	assert.Equal(t, "greenwashing", flag.Rule)
	assert.Equal(t, models.ThemeEnvironmental, flag.Category)
	assert.Equal(t, SeverityMedium, flag.Severity)
}

func TestGreenwashingNeedsVolumeAndAdjudication(t *testing.T) {
	// Two broken promises: poor follow-through but below the volume floor.
	promises, matches := themedSet(1, testNow.AddDate(0, -3, 0), []themed{
		{models.ThemeEnvironmental, models.OutcomeBroken},
		{models.ThemeEnvironmental, models.OutcomeBroken},
	})
	profiler := newTestProfiler(&stubPromiseRepo{promises: promises}, &stubMatchRepo{matches: matches}, &stubProfileRepo{})
	profile, err := profiler.CalculateOne(1)
	require.NoError(t, err)
	assert.Empty(t, profile.Flags)

	// Four promises but nothing adjudicated yet: a zero consistency score
	// from missing evidence is not greenwashing.
	promises, matches = themedSet(2, testNow.AddDate(0, -3, 0), []themed{
		{models.ThemeEnvironmental, ""}, {models.ThemeEnvironmental, ""},
		{models.ThemeEnvironmental, ""}, {models.ThemeEnvironmental, ""},
	})
	profiler = newTestProfiler(&stubPromiseRepo{promises: promises}, &stubMatchRepo{matches: matches}, &stubProfileRepo{})
	profile, err = profiler.CalculateOne(2)
	require.NoError(t, err)
	assert.Empty(t, profile.Flags)
}

func TestPriorityShiftFlag(t *testing.T) {
	older, _ := themedSet(1, testNow.AddDate(-2, 0, 0), []themed{
		{models.ThemeEconomic, ""}, {models.ThemeEconomic, ""},
		{models.ThemeSocial, ""}, {models.ThemeSocial, ""},
	})
	recent, _ := themedSet(2, testNow.AddDate(0, -3, 0), []themed{
		{models.ThemeEconomic, ""}, {models.ThemeEconomic, ""},
		{models.ThemeEnvironmental, ""}, {models.ThemeEnvironmental, ""},
	})
	for i := range recent {
		recent[i].PoliticianID = 1
	}
	profiler := newTestProfiler(&stubPromiseRepo{promises: append(older, recent...)}, &stubMatchRepo{}, &stubProfileRepo{})

	profile, err := profiler.CalculateOne(1)
	require.NoError(t, err)

	flagged := make(map[models.ThemeCategory]bool)
	for _, flag := range profile.Flags {
		require.Equal(t, "priority_shift", flag.Rule)
		assert.Equal(t, SeverityLow, flag.Severity)
		flagged[flag.Category] = true
	}
	// Social dropped from half the promises to none, environmental appeared
	// from nowhere; economic held steady.
	assert.True(t, flagged[models.ThemeSocial])
	assert.True(t, flagged[models.ThemeEnvironmental])
	assert.False(t, flagged[models.ThemeEconomic])
}

func TestPriorityShiftNeedsBothWindows(t *testing.T) {
	// All promises recent: no older window to compare against.
	promises, _ := themedSet(1, testNow.AddDate(0, -3, 0), []themed{
		{models.ThemeEconomic, ""}, {models.ThemeEconomic, ""},
		{models.ThemeEnvironmental, ""}, {models.ThemeEnvironmental, ""},
	})
	profiler := newTestProfiler(&stubPromiseRepo{promises: promises}, &stubMatchRepo{}, &stubProfileRepo{})

	profile, err := profiler.CalculateOne(1)
	require.NoError(t, err)
	assert.Empty(t, profile.Flags)
}

func TestProfileUnknownCategoryFoldsToOther(t *testing.T) {
	promise := themedPromise(1, 1, models.ThemeCategory("quantum"), testNow.AddDate(0, -3, 0))
	profiler := newTestProfiler(&stubPromiseRepo{promises: []models.Promise{promise}}, &stubMatchRepo{}, &stubProfileRepo{})

	profile, err := profiler.CalculateOne(1)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Themes[models.ThemeOther].PromiseCount)
}

func TestAuthenticityScore(t *testing.T) {
	profile := &models.ValueProfile{
		Themes: map[models.ThemeCategory]models.ThemeStats{
			models.ThemeEconomic: {PromiseCount: 4, KeptCount: 4, ConsistencyScore: 100},
			models.ThemeEnvironmental: {PromiseCount: 2, BrokenCount: 2, ConsistencyScore: 0},
			// Nothing adjudicated: excluded from the weighted mean.
			models.ThemeSocial: {PromiseCount: 5},
		},
	}
	assert.Equal(t, 66.67, authenticityScore(profile))

	profile.Flags = []models.ProfileFlag{{Rule: "greenwashing"}, {Rule: "priority_shift"}}
	assert.Equal(t, 46.67, authenticityScore(profile))

	empty := &models.ValueProfile{Themes: map[models.ThemeCategory]models.ThemeStats{}}
	assert.Equal(t, 0.0, authenticityScore(empty))
}
