package dto

import "time"

type SubmitResultInput struct {
	WPM           float64    `json:"wpm" binding:"gte=0"`
	Accuracy      float64    `json:"accuracy" binding:"gte=0,lte=100"`
	TestTimings   float64    `json:"test_timings" binding:"gte=0"`
	MaxStreak     int        `json:"max_streak" binding:"gte=0"`
	LastTestTaken *time.Time `json:"last_test_taken,omitempty"`
}

// PublicSummary is the reduced, non-sensitive projection served for a
// username lookup.
type PublicSummary struct {
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	WPM       float64 `json:"wpm"`
	Accuracy  float64 `json:"accuracy"`
	TotalPar  int     `json:"total_par"`
}
