package service

import (
	"math"

	"anoa.com/typingarena/internal/entity"
)

// round2 is the single rounding policy for stored and displayed stats:
// half away from zero, 2 decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MergeSubmission folds one test result into the rolling daily history and
// returns the updated list. The caller supplies today's date; this function
// never reads the wall clock.
//
// If the final entry is for today, its cumulative averages are recomputed
// incrementally from the prior mean and count. Otherwise a fresh entry is
// appended, evicting the oldest entry once the window holds
// entity.MaxProgressEntries days — strictly FIFO, gaps between dates do not
// matter.
func MergeSubmission(progress entity.ProgressList, today entity.DayDate, wpm, accuracy float64) entity.ProgressList {
	if n := len(progress); n > 0 && progress[n-1].Date.Equal(today) {
		last := &progress[n-1]
		newCount := last.Count + 1
		last.WPM = round2((last.WPM*float64(last.Count) + wpm) / float64(newCount))
		last.Accuracy = round2((last.Accuracy*float64(last.Count) + accuracy) / float64(newCount))
		last.Count = newCount
		return progress
	}

	if len(progress) >= entity.MaxProgressEntries {
		progress = progress[len(progress)-entity.MaxProgressEntries+1:]
	}

	return append(progress, entity.DailyEntry{
		Date:     today,
		WPM:      round2(wpm),
		Accuracy: round2(accuracy),
		Count:    1,
	})
}
