package models

import "time"

// ThemeStats aggregates a politician's promises within one theme category.
type ThemeStats struct {
	Category         ThemeCategory `json:"category"`
	PromiseCount     int           `json:"promise_count"`
	KeptCount        int           `json:"kept_count"`
	BrokenCount      int           `json:"broken_count"`
	PartialCount     int           `json:"partial_count"`
	ConsistencyScore float64       `json:"consistency_score"` // 0-100, same formula as the overall score
	AttentionScore   float64       `json:"attention_score"`   // share of this politician's own promises, 0-100
}

// ProfileFlag is an anomaly raised by a profile rule.
type ProfileFlag struct {
	Rule        string        `json:"rule"`
	Category    ThemeCategory `json:"category"`
	Severity    string        `json:"severity"`
	Description string        `json:"description"`
}

// ValueProfile is the derived per-politician theme breakdown, stored in the
// 'value_profiles' table with themes and flags serialized as JSON. Recomputed
// wholesale per run and upserted by politician_id.
type ValueProfile struct {
	PoliticianID      int64                        `db:"politician_id" json:"politician_id"`
	Themes            map[ThemeCategory]ThemeStats `db:"-" json:"themes"`
	Flags             []ProfileFlag                `db:"-" json:"flags"`
	AuthenticityScore float64                      `db:"authenticity_score" json:"authenticity_score"` // 0-100
	ThemesRaw         []byte                       `db:"themes" json:"-"`
	FlagsRaw          []byte                       `db:"flags" json:"-"`
	CalculatedAt      time.Time                    `db:"calculated_at" json:"calculated_at"`
}
