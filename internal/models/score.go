package models

import "time"

// ConsistencyScore is the derived per-politician score row, stored in the
// 'consistency_scores' table. Fully recomputed on every run and upserted by
// politician_id; never patched incrementally.
type ConsistencyScore struct {
	PoliticianID      int64     `db:"politician_id" json:"politician_id"`
	OverallScore      float64   `db:"overall_score" json:"overall_score"` // 0-100
	KeptCount         int       `db:"kept_count" json:"kept_count"`
	BrokenCount       int       `db:"broken_count" json:"broken_count"`
	PartialCount      int       `db:"partial_count" json:"partial_count"`
	PendingCount      int       `db:"pending_count" json:"pending_count"`
	AttendanceRate    float64   `db:"attendance_rate" json:"attendance_rate"`       // 0-100
	ActivityScore     float64   `db:"activity_score" json:"activity_score"`         // 0-100
	DataQuality       float64   `db:"data_quality" json:"data_quality"`             // 0-1, evidence volume behind the score
	CalculatedAt      time.Time `db:"calculated_at" json:"calculated_at"`
}

// CredibilityEvent is one append-only row of credibility history, stored in
// the 'credibility_events' table. Rows are never updated or deleted.
type CredibilityEvent struct {
	ID           int64     `db:"id" json:"id"`
	PoliticianID int64     `db:"politician_id" json:"politician_id"`
	PromiseID    *int64    `db:"promise_id" json:"promise_id,omitempty"`
	Outcome      string    `db:"outcome" json:"outcome"`
	Delta        float64   `db:"delta" json:"delta"`
	Sources      []string  `db:"-" json:"sources"`
	SourcesRaw   string    `db:"sources" json:"-"` // comma-joined for storage
	Confidence   float64   `db:"confidence" json:"confidence"`
	Importance   string    `db:"importance" json:"importance"`
	Description  string    `db:"description" json:"description"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
