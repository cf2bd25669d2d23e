package entity

import "time"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Passage is one typing-test text.
type Passage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Difficulty string    `gorm:"size:20;index;not null" json:"difficulty"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	WordCount  int       `gorm:"not null" json:"word_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
}
