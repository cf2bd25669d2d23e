package service

import (
	"testing"
	"time"

	"anoa.com/typingarena/internal/entity"
)

func day(y int, m time.Month, d int) entity.DayDate {
	return entity.DayDate{Year: y, Month: m, Day: d}
}

func TestMergeSubmission_EmptyProgress(t *testing.T) {
	today := day(2026, time.August, 23)

	got := MergeSubmission(entity.ProgressList{}, today, 85, 95)

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	e := got[0]
	if !e.Date.Equal(today) {
		t.Errorf("date = %v, want %v", e.Date, today)
	}
	if e.WPM != 85 || e.Accuracy != 95 || e.Count != 1 {
		t.Errorf("entry = %+v, want wpm=85 acc=95 count=1", e)
	}
}

func TestMergeSubmission_SameDayCumulativeAverage(t *testing.T) {
	today := day(2026, time.August, 23)

	progress := MergeSubmission(entity.ProgressList{}, today, 85, 95)
	progress = MergeSubmission(progress, today, 90, 98)

	if len(progress) != 1 {
		t.Fatalf("len = %d, want 1", len(progress))
	}
	e := progress[0]
	if e.WPM != 87.5 {
		t.Errorf("wpm = %v, want 87.5", e.WPM)
	}
	if e.Accuracy != 96.5 {
		t.Errorf("accuracy = %v, want 96.5", e.Accuracy)
	}
	if e.Count != 2 {
		t.Errorf("count = %d, want 2", e.Count)
	}
}

func TestMergeSubmission_ThirdSameDaySubmission(t *testing.T) {
	today := day(2026, time.August, 23)

	progress := MergeSubmission(entity.ProgressList{}, today, 85, 95)
	progress = MergeSubmission(progress, today, 90, 98)
	progress = MergeSubmission(progress, today, 88, 97)

	e := progress[0]
	if e.WPM != 87.67 {
		t.Errorf("wpm = %v, want 87.67", e.WPM)
	}
	if e.Accuracy != 96.67 {
		t.Errorf("accuracy = %v, want 96.67", e.Accuracy)
	}
	if e.Count != 3 {
		t.Errorf("count = %d, want 3", e.Count)
	}
}

func TestMergeSubmission_NewDayAppends(t *testing.T) {
	d1 := day(2026, time.August, 22)
	d2 := day(2026, time.August, 23)

	progress := MergeSubmission(entity.ProgressList{}, d1, 80, 90)
	progress = MergeSubmission(progress, d2, 100, 99)

	if len(progress) != 2 {
		t.Fatalf("len = %d, want 2", len(progress))
	}
	if !progress[0].Date.Equal(d1) || !progress[1].Date.Equal(d2) {
		t.Errorf("dates = %v, %v; want %v, %v", progress[0].Date, progress[1].Date, d1, d2)
	}
	if progress[0].WPM != 80 {
		t.Errorf("older entry mutated: wpm = %v, want 80", progress[0].WPM)
	}
	if progress[1].Count != 1 {
		t.Errorf("new entry count = %d, want 1", progress[1].Count)
	}
}

func TestMergeSubmission_RollingWindowEvictsOldest(t *testing.T) {
	progress := entity.ProgressList{}
	for i := 1; i <= entity.MaxProgressEntries; i++ {
		progress = MergeSubmission(progress, day(2026, time.August, i), float64(50+i), 90)
	}
	if len(progress) != entity.MaxProgressEntries {
		t.Fatalf("setup len = %d, want %d", len(progress), entity.MaxProgressEntries)
	}
	oldest := progress[0].Date
	kept := make([]entity.DailyEntry, len(progress)-1)
	copy(kept, progress[1:])

	newDay := day(2026, time.August, 20)
	progress = MergeSubmission(progress, newDay, 120, 99)

	if len(progress) != entity.MaxProgressEntries {
		t.Fatalf("len = %d, want %d", len(progress), entity.MaxProgressEntries)
	}
	for _, e := range progress {
		if e.Date.Equal(oldest) {
			t.Errorf("oldest entry %v still present after eviction", oldest)
		}
	}
	if !progress[len(progress)-1].Date.Equal(newDay) {
		t.Errorf("last date = %v, want %v", progress[len(progress)-1].Date, newDay)
	}
	for i, e := range progress[:len(progress)-1] {
		if e != kept[i] {
			t.Errorf("entry %d changed during eviction: got %+v, want %+v", i, e, kept[i])
		}
	}
}

func TestMergeSubmission_EvictionIgnoresDateGaps(t *testing.T) {
	// A full window whose oldest entry is months old still evicts strictly
	// by position, not by age relative to the window.
	progress := entity.ProgressList{{Date: day(2026, time.January, 1), WPM: 40, Accuracy: 80, Count: 1}}
	for i := 1; i < entity.MaxProgressEntries; i++ {
		progress = append(progress, entity.DailyEntry{Date: day(2026, time.August, i), WPM: 60, Accuracy: 90, Count: 1})
	}

	progress = MergeSubmission(progress, day(2026, time.August, 23), 70, 95)

	if progress[0].Date.Equal(day(2026, time.January, 1)) {
		t.Error("stale oldest entry survived eviction")
	}
	if len(progress) != entity.MaxProgressEntries {
		t.Errorf("len = %d, want %d", len(progress), entity.MaxProgressEntries)
	}
}

func TestMergeSubmission_RoundsToTwoDecimals(t *testing.T) {
	today := day(2026, time.August, 23)

	progress := MergeSubmission(entity.ProgressList{}, today, 100, 100)
	progress = MergeSubmission(progress, today, 100, 99)
	progress = MergeSubmission(progress, today, 100, 99)

	// mean accuracy = 298/3 = 99.333... → 99.33
	if progress[0].Accuracy != 99.33 {
		t.Errorf("accuracy = %v, want 99.33", progress[0].Accuracy)
	}
}
