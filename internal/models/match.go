package models

import "time"

// Match outcomes.
const (
	OutcomeKept    = "kept"
	OutcomeBroken  = "broken"
	OutcomePartial = "partial"
	OutcomePending = "pending"
)

// Match verification methods.
const (
	MethodAutomatic = "automatic"
	MethodManual    = "manual"
)

// PromiseMatch represents a candidate or confirmed pairing between one promise
// and one action record, stored in the 'promise_matches' table. The pair
// (promise_id, action_id) is unique; re-running the matcher upserts in place.
// At most one confirmed non-disputed match is authoritative per promise; the
// latest confirmation wins and earlier rows are kept as history.
type PromiseMatch struct {
	ID          int64      `db:"id" json:"id"`
	PromiseID   int64      `db:"promise_id" json:"promise_id"`
	ActionID    int64      `db:"action_id" json:"action_id"`
	Similarity  float64    `db:"similarity" json:"similarity"` // 0-1
	Outcome     string     `db:"outcome" json:"outcome"`
	Method      string     `db:"method" json:"method"`
	Explanation string     `db:"explanation" json:"explanation"`
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"` // nil until confirmed
	Disputed    bool       `db:"disputed" json:"disputed"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Confirmed reports whether this match has been adjudicated (automatically or
// by a reviewer) and still stands.
func (m *PromiseMatch) Confirmed() bool {
	return m.ConfirmedAt != nil && !m.Disputed && m.Outcome != OutcomePending
}
