package dto

import "github.com/google/uuid"

// LeaderboardEntry is derived, never authoritative: it is regenerated from
// analytics records and user data on every refresh.
type LeaderboardEntry struct {
	Rank          int       `json:"rank"`
	UserID        uuid.UUID `json:"user_id"`
	Username      string    `json:"username"`
	WPM           float64   `json:"wpm"`
	Accuracy      float64   `json:"accuracy"`
	WeightedScore float64   `json:"weighted_score"`
}
