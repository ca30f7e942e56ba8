package scoring

import (
	"fmt"

	"backend/internal/models"
	"backend/internal/repository"
)

// BatchContext holds everything needed to score a set of politicians, fetched
// with exactly three bulk reads and grouped in memory. Building one context
// per run replaces the per-politician query pattern: the number of database
// round-trips stays constant no matter how many politicians are in the batch.
type BatchContext struct {
	promisesByPolitician map[int64][]models.Promise
	matchesByPromise     map[int64][]models.PromiseMatch
	actionsByPolitician  map[int64][]models.ActionRecord
}

// BuildBatchContext issues the three bulk reads for the given politician IDs:
// all their promises, all matches for those promises, all their action
// records.
func BuildBatchContext(
	promiseRepo repository.PromiseRepository,
	matchRepo repository.MatchRepository,
	actionRepo repository.ActionRecordRepository,
	politicianIDs []int64,
) (*BatchContext, error) {
	bc := &BatchContext{
		promisesByPolitician: make(map[int64][]models.Promise),
		matchesByPromise:     make(map[int64][]models.PromiseMatch),
		actionsByPolitician:  make(map[int64][]models.ActionRecord),
	}

	promises, err := promiseRepo.GetByPoliticians(politicianIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk-read promises: %w", err)
	}
	promiseIDs := make([]int64, 0, len(promises))
	for _, p := range promises {
		bc.promisesByPolitician[p.PoliticianID] = append(bc.promisesByPolitician[p.PoliticianID], p)
		promiseIDs = append(promiseIDs, p.ID)
	}

	matches, err := matchRepo.GetByPromises(promiseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk-read matches: %w", err)
	}
	for _, m := range matches {
		bc.matchesByPromise[m.PromiseID] = append(bc.matchesByPromise[m.PromiseID], m)
	}

	actions, err := actionRepo.GetByPoliticians(politicianIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk-read action records: %w", err)
	}
	for _, a := range actions {
		bc.actionsByPolitician[a.PoliticianID] = append(bc.actionsByPolitician[a.PoliticianID], a)
	}

	return bc, nil
}

// Promises returns the politician's promises; nil when there are none.
func (bc *BatchContext) Promises(politicianID int64) []models.Promise {
	return bc.promisesByPolitician[politicianID]
}

// Actions returns the politician's action records; nil when there are none.
func (bc *BatchContext) Actions(politicianID int64) []models.ActionRecord {
	return bc.actionsByPolitician[politicianID]
}

// AuthoritativeOutcome returns the outcome that counts for scoring a promise:
// the latest non-disputed confirmed match wins; earlier confirmations and
// disputed rows are history. Returns OutcomePending when nothing confirmed
// stands.
func (bc *BatchContext) AuthoritativeOutcome(promiseID int64) string {
	var latest *models.PromiseMatch
	matches := bc.matchesByPromise[promiseID]
	for i := range matches {
		m := &matches[i]
		if !m.Confirmed() {
			continue
		}
		if latest == nil || m.ConfirmedAt.After(*latest.ConfirmedAt) {
			latest = m
		}
	}
	if latest == nil {
		return models.OutcomePending
	}
	return latest.Outcome
}
