package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"
)

// Importance tiers for a verification event.
const (
	ImportanceLow      = "low"
	ImportanceMedium   = "medium"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"
)

var (
	ErrUnknownOutcome    = errors.New("unknown outcome")
	ErrUnknownImportance = errors.New("unknown importance tier")
)

// Verification is one finalized verification decision for a promise.
type Verification struct {
	Outcome     string   `json:"outcome"`    // kept, broken or partial
	Sources     []string `json:"sources"`    // corroborating verification sources
	Confidence  float64  `json:"confidence"` // 0-1, clamped on input
	Importance  string   `json:"importance"` // low, medium, high, critical
	PromiseText string   `json:"promise_text"`
}

// ApplyResult reports what a verification did to the politician's running
// score.
type ApplyResult struct {
	Delta       float64 `json:"delta"`
	NewScore    float64 `json:"new_score"`
	Description string  `json:"description"`
}

// CredibilityScorer converts verification events into signed credibility
// deltas. Score is a pure function over its input and the configured tables;
// Apply additionally mutates the politician's running score and appends one
// immutable history row.
type CredibilityScorer struct {
	politicianRepo repository.PoliticianRepository
	eventRepo      repository.CredibilityEventRepository
	cfg            config.ScoringConfig
	logger         *zap.Logger
}

func NewCredibilityScorer(
	politicianRepo repository.PoliticianRepository,
	eventRepo repository.CredibilityEventRepository,
	cfg config.ScoringConfig,
	logger *zap.Logger,
) *CredibilityScorer {
	return &CredibilityScorer{
		politicianRepo: politicianRepo,
		eventRepo:      eventRepo,
		cfg:            cfg,
		logger:         logger,
	}
}

// Score computes the signed point delta for one verification:
// base(outcome, importance) x source multiplier x confidence, negative for a
// broken promise. Confidence outside [0,1] is clamped, never rejected.
func (s *CredibilityScorer) Score(v Verification) (float64, error) {
	magnitudes, ok := s.cfg.BaseMagnitudes[v.Outcome]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOutcome, v.Outcome)
	}
	base, ok := magnitudes[v.Importance]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownImportance, v.Importance)
	}

	// Sign comes from outcome polarity alone; the table holds magnitudes.
	delta := math.Abs(base) * s.sourceMultiplier(len(uniqueSources(v.Sources))) * clamp(v.Confidence, 0, 1)
	if v.Outcome == models.OutcomeBroken {
		delta = -delta
	}
	return delta, nil
}

// Describe renders a short factual sentence about the verification. It states
// what was declared and what the records show, and never characterizes the
// politician.
func (s *CredibilityScorer) Describe(v Verification) string {
	sources := "no corroborating source"
	if n := len(uniqueSources(v.Sources)); n == 1 {
		sources = "1 corroborating source"
	} else if n > 1 {
		sources = fmt.Sprintf("%d corroborating sources", n)
	}

	switch v.Outcome {
	case models.OutcomeKept:
		return fmt.Sprintf("declared %q; subsequent action records are consistent with this declaration (%s)", v.PromiseText, sources)
	case models.OutcomeBroken:
		return fmt.Sprintf("declared %q; subsequent action records show no consistent follow-through (%s)", v.PromiseText, sources)
	default:
		return fmt.Sprintf("declared %q; subsequent action records show partial follow-through (%s)", v.PromiseText, sources)
	}
}

// Apply scores the verification, adds the delta to the politician's running
// credibility score (clamped to the configured bounds) and appends the
// history row. History is append-only and never rewritten.
func (s *CredibilityScorer) Apply(politicianID int64, promiseID *int64, v Verification) (*ApplyResult, error) {
	delta, err := s.Score(v)
	if err != nil {
		return nil, err
	}
	description := s.Describe(v)

	newScore, err := s.politicianRepo.AdjustCredibility(politicianID, delta, s.cfg.CredibilityFloor, s.cfg.CredibilityCeiling)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust credibility score: %w", err)
	}

	event := &models.CredibilityEvent{
		PoliticianID: politicianID,
		PromiseID:    promiseID,
		Outcome:      v.Outcome,
		Delta:        delta,
		Sources:      uniqueSources(v.Sources),
		Confidence:   clamp(v.Confidence, 0, 1),
		Importance:   v.Importance,
		Description:  description,
	}
	if err := s.eventRepo.Append(event); err != nil {
		return nil, fmt.Errorf("failed to append credibility event: %w", err)
	}

	s.logger.Info("Credibility event applied",
		zap.Int64("politician_id", politicianID),
		zap.String("outcome", v.Outcome),
		zap.Float64("delta", delta),
		zap.Float64("new_score", newScore))

	return &ApplyResult{Delta: delta, NewScore: newScore, Description: description}, nil
}

// sourceMultiplier looks up the corroboration multiplier, treating counts
// beyond the table as the highest configured tier and zero sources as a
// single one.
func (s *CredibilityScorer) sourceMultiplier(count int) float64 {
	if count < 1 {
		count = 1
	}
	if m, ok := s.cfg.SourceMultipliers[count]; ok {
		return m
	}
	best := 1.0
	bestCount := 0
	for c, m := range s.cfg.SourceMultipliers {
		if c <= count && c > bestCount {
			best = m
			bestCount = c
		}
	}
	return best
}

func uniqueSources(sources []string) []string {
	seen := make(map[string]struct{}, len(sources))
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}
