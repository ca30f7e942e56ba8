package models

import "time"

// Politician represents a tracked public figure stored in the 'politicians' table.
type Politician struct {
	ID                   int64     `db:"id" json:"id"`
	Name                 string    `db:"name" json:"name"`
	FirstName            string    `db:"first_name" json:"first_name"`
	LastName             string    `db:"last_name" json:"last_name"`
	Party                string    `db:"party" json:"party"`
	Position             string    `db:"position" json:"position"`
	PoliticalOrientation string    `db:"political_orientation" json:"political_orientation"`
	CredibilityScore     float64   `db:"credibility_score" json:"credibility_score"` // 0-200, new politicians start at 100
	TotalVotes           int       `db:"total_votes" json:"total_votes"`
	PositiveVotes        int       `db:"positive_votes" json:"positive_votes"`
	NegativeVotes        int       `db:"negative_votes" json:"negative_votes"`
	TrendingScore        float64   `db:"trending_score" json:"trending_score"`
	IsActive             bool      `db:"is_active" json:"is_active"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}
