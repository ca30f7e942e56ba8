package models

import "time"

// ThemeCategory is the fixed enumeration of promise themes.
type ThemeCategory string

const (
	ThemeEconomic      ThemeCategory = "economic"
	ThemeSocial        ThemeCategory = "social"
	ThemeEnvironmental ThemeCategory = "environmental"
	ThemeSecurity      ThemeCategory = "security"
	ThemeHealthcare    ThemeCategory = "healthcare"
	ThemeEducation     ThemeCategory = "education"
	ThemeJustice       ThemeCategory = "justice"
	ThemeImmigration   ThemeCategory = "immigration"
	ThemeForeignPolicy ThemeCategory = "foreign_policy"
	ThemeOther         ThemeCategory = "other"
)

// AllThemes lists every theme category. Iteration order is fixed so that
// derived profiles are stable across runs.
var AllThemes = []ThemeCategory{
	ThemeEconomic,
	ThemeSocial,
	ThemeEnvironmental,
	ThemeSecurity,
	ThemeHealthcare,
	ThemeEducation,
	ThemeJustice,
	ThemeImmigration,
	ThemeForeignPolicy,
	ThemeOther,
}

// Verification statuses for a promise.
const (
	PromiseStatusPending       = "pending"
	PromiseStatusVerified      = "verified"
	PromiseStatusDisputed      = "disputed"
	PromiseStatusNonActionable = "non_actionable"
)

// Promise represents a claim attributed to a politician, stored in the
// 'promises' table. Created by ingestion, mutated only by the verification
// workflow.
type Promise struct {
	ID                 int64         `db:"id" json:"id"`
	PoliticianID       int64         `db:"politician_id" json:"politician_id"`
	Text               string        `db:"text" json:"text"`
	Category           ThemeCategory `db:"category" json:"category"`
	DeclaredAt         time.Time     `db:"declared_at" json:"declared_at"`
	IsActionable       bool          `db:"is_actionable" json:"is_actionable"`
	VerificationStatus string        `db:"verification_status" json:"verification_status"`
	Confidence         float64       `db:"confidence" json:"confidence"` // extraction confidence, 0-1
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
}
