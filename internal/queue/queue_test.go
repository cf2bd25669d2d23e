package queue

import (
	"testing"
	"time"
)

func TestScore_HigherPriorityPopsFirst(t *testing.T) {
	now := time.Now()

	// A high-priority job enqueued later must still score below (pop
	// before) a low-priority job enqueued earlier.
	high := Score(PriorityHigh, now.Add(time.Hour))
	low := Score(PriorityLow, now)

	if high >= low {
		t.Errorf("high-priority score %v not below low-priority score %v", high, low)
	}
}

func TestScore_FIFOWithinPriority(t *testing.T) {
	now := time.Now()

	first := Score(PriorityNormal, now)
	second := Score(PriorityNormal, now.Add(time.Millisecond))

	if first >= second {
		t.Errorf("earlier job score %v not below later job score %v", first, second)
	}
}

func TestScore_AllPriorityPairsOrdered(t *testing.T) {
	now := time.Now()
	priorities := []int{PriorityLow, PriorityNormal, PriorityHigh}

	for i := 0; i < len(priorities)-1; i++ {
		lower := Score(priorities[i], now)
		higher := Score(priorities[i+1], now)
		if higher >= lower {
			t.Errorf("priority %d score %v not below priority %d score %v",
				priorities[i+1], higher, priorities[i], lower)
		}
	}
}
