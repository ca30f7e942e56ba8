package models

import "time"

// Action record types.
const (
	ActionTypeVote      = "vote"
	ActionTypeBill      = "bill"
	ActionTypeAmendment = "amendment"
	ActionTypeDebate    = "debate"
	ActionTypeQuestion  = "question"
)

// Recorded positions for an action.
const (
	PositionFor     = "for"
	PositionAgainst = "against"
	PositionAbstain = "abstain"
	PositionAbsent  = "absent"
)

// ActionRecord represents a recorded official act by a politician, stored in
// the 'action_records' table. Immutable once ingested.
type ActionRecord struct {
	ID           int64         `db:"id" json:"id"`
	PoliticianID int64         `db:"politician_id" json:"politician_id"`
	ActionType   string        `db:"action_type" json:"action_type"`
	Description  string        `db:"description" json:"description"`
	Category     ThemeCategory `db:"category" json:"category"`
	Position     string        `db:"position" json:"position"` // empty for non-vote actions
	ActionDate   time.Time     `db:"action_date" json:"action_date"`
	ExternalRef  string        `db:"external_ref" json:"external_ref"` // upstream dossier/scrutin reference
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}
