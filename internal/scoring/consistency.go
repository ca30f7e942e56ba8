package scoring

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"
)

// Data-quality saturation points and weights: a politician with 5 promises,
// 50 votes and 10 other recorded activities has fully trustworthy evidence
// volume.
const (
	dqPromiseSaturation  = 5.0
	dqVoteSaturation     = 50.0
	dqActivitySaturation = 10.0
	dqPromiseWeight      = 0.5
	dqVoteWeight         = 0.3
	dqActivityWeight     = 0.2
)

// Legislative-activity weights.
var activityWeights = map[string]float64{
	models.ActionTypeBill:      10,
	models.ActionTypeAmendment: 5,
	models.ActionTypeDebate:    2,
	models.ActionTypeQuestion:  1,
}

// Calculator derives consistency scores from confirmed match outcomes and
// activity records. The batch path reads in bulk once and computes per
// politician in memory.
type Calculator struct {
	promiseRepo repository.PromiseRepository
	matchRepo   repository.MatchRepository
	actionRepo  repository.ActionRecordRepository
	scoreRepo   repository.ConsistencyScoreRepository
	cfg         config.ScoringConfig
	logger      *zap.Logger
	now         func() time.Time
}

func NewCalculator(
	promiseRepo repository.PromiseRepository,
	matchRepo repository.MatchRepository,
	actionRepo repository.ActionRecordRepository,
	scoreRepo repository.ConsistencyScoreRepository,
	cfg config.ScoringConfig,
	logger *zap.Logger,
) *Calculator {
	return &Calculator{
		promiseRepo: promiseRepo,
		matchRepo:   matchRepo,
		actionRepo:  actionRepo,
		scoreRepo:   scoreRepo,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// CalculateOne recomputes and persists the score for a single politician. A
// politician with no promises or no confirmed matches still yields a
// well-formed zero-valued row.
func (c *Calculator) CalculateOne(politicianID int64) (*models.ConsistencyScore, error) {
	bc, err := BuildBatchContext(c.promiseRepo, c.matchRepo, c.actionRepo, []int64{politicianID})
	if err != nil {
		return nil, err
	}
	score := c.Compute(bc, politicianID)
	if err := c.scoreRepo.UpsertAll([]models.ConsistencyScore{score}); err != nil {
		return nil, fmt.Errorf("failed to persist consistency score: %w", err)
	}
	return &score, nil
}

// CalculateBatch recomputes scores for the given politicians using exactly
// three bulk reads and one bulk upsert, regardless of batch size. Results are
// identical to running CalculateOne per politician.
func (c *Calculator) CalculateBatch(politicianIDs []int64) ([]models.ConsistencyScore, error) {
	if len(politicianIDs) == 0 {
		return nil, nil
	}

	bc, err := BuildBatchContext(c.promiseRepo, c.matchRepo, c.actionRepo, politicianIDs)
	if err != nil {
		return nil, err
	}

	scores := make([]models.ConsistencyScore, 0, len(politicianIDs))
	for _, id := range politicianIDs {
		scores = append(scores, c.Compute(bc, id))
	}

	if err := c.scoreRepo.UpsertAll(scores); err != nil {
		return nil, fmt.Errorf("failed to persist consistency scores: %w", err)
	}

	c.logger.Info("Consistency batch computed", zap.Int("politicians", len(scores)))
	return scores, nil
}

// Compute applies the scoring formulas to one politician's grouped data. Pure
// with respect to the database; deterministic for a given context.
func (c *Calculator) Compute(bc *BatchContext, politicianID int64) models.ConsistencyScore {
	score := models.ConsistencyScore{
		PoliticianID: politicianID,
		CalculatedAt: c.now(),
	}

	for _, promise := range bc.Promises(politicianID) {
		switch bc.AuthoritativeOutcome(promise.ID) {
		case models.OutcomeKept:
			score.KeptCount++
		case models.OutcomeBroken:
			score.BrokenCount++
		case models.OutcomePartial:
			score.PartialCount++
		default:
			// Not yet adjudicated: counted, but excluded from the score
			// denominator.
			score.PendingCount++
		}
	}

	adjudicated := score.KeptCount + score.BrokenCount + score.PartialCount
	if adjudicated > 0 {
		raw := (float64(score.KeptCount)*100 + float64(score.PartialCount)*50) / float64(adjudicated)
		score.OverallScore = round2(clamp(raw, 0, 100))
	}

	actions := bc.Actions(politicianID)
	score.AttendanceRate = round2(attendanceRate(actions))
	score.ActivityScore = round2(activityScore(actions, c.cfg.ActivityMax))
	score.DataQuality = round2(dataQuality(len(bc.Promises(politicianID)), actions))

	return score
}

// attendanceRate is the share of scheduled votes where the politician
// actually voted or abstained in person, as a percentage. Zero when no votes
// are recorded.
func attendanceRate(actions []models.ActionRecord) float64 {
	var total, attended int
	for _, a := range actions {
		if a.ActionType != models.ActionTypeVote {
			continue
		}
		total++
		if a.Position != models.PositionAbsent {
			attended++
		}
	}
	if total == 0 {
		return 0
	}
	return clamp(float64(attended)/float64(total)*100, 0, 100)
}

// activityScore is the weighted legislative activity normalized against the
// assumed maximum and clamped to 100.
func activityScore(actions []models.ActionRecord, activityMax float64) float64 {
	var weighted float64
	for _, a := range actions {
		weighted += activityWeights[a.ActionType]
	}
	if activityMax <= 0 {
		return 0
	}
	return clamp(weighted/activityMax*100, 0, 100)
}

// dataQuality signals how much evidence backs the headline score, not the
// score itself. Weighted average of three saturating ratios in [0,1].
func dataQuality(promiseCount int, actions []models.ActionRecord) float64 {
	var votes, activities int
	for _, a := range actions {
		if a.ActionType == models.ActionTypeVote {
			votes++
		} else {
			activities++
		}
	}
	q := dqPromiseWeight*saturate(float64(promiseCount)/dqPromiseSaturation) +
		dqVoteWeight*saturate(float64(votes)/dqVoteSaturation) +
		dqActivityWeight*saturate(float64(activities)/dqActivitySaturation)
	return clamp(q, 0, 1)
}

func saturate(ratio float64) float64 {
	if ratio > 1 {
		return 1
	}
	if ratio < 0 {
		return 0
	}
	return ratio
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
