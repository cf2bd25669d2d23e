package bootstrap

import (
	"log"
	"strings"

	"anoa.com/typingarena/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.AnalyticsRecord{},
		&entity.Passage{},
	)
}

// SeedPassages loads a starter set of typing texts so a fresh database can
// serve tests immediately. Skipped when any passages already exist.
func SeedPassages(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Passage{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Passages already seeded, skipping")
		return nil
	}

	texts := map[string][]string{
		entity.DifficultyEasy: {
			"The quick brown fox jumps over the lazy dog.",
			"A small stream ran past the old stone mill.",
			"She put the red book back on the top shelf.",
		},
		entity.DifficultyMedium: {
			"Practice does not make perfect; perfect practice makes perfect, and every keystroke counts toward that goal.",
			"The lighthouse keeper climbed the spiral staircase twice a day, carrying oil for the great lamp above the rocks.",
			"Morning fog settled over the harbor while the fishing boats waited for the tide to turn before heading out.",
		},
		entity.DifficultyHard: {
			"Quantifiable improvements in typing accuracy emerge only when deliberate, rhythmically-consistent practice supplants hurried, error-prone bursts of speed.",
			"The archaeologist's meticulous catalogue — 4,217 fragments, each photographed, weighed & cross-referenced — vindicated decades of painstaking excavation.",
			"\"Efficiency,\" she remarked dryly, \"isn't about typing 120 WPM; it's about never needing to retype the 40 you already managed.\"",
		},
	}

	var passages []entity.Passage
	for difficulty, list := range texts {
		for _, text := range list {
			passages = append(passages, entity.Passage{
				Difficulty: difficulty,
				Text:       text,
				WordCount:  len(strings.Fields(text)),
			})
		}
	}

	if err := db.Create(&passages).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d passages", len(passages))
	return nil
}
