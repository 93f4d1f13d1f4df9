package srs

import (
	"testing"
	"time"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNextReview_IntervalLadder(t *testing.T) {
	r := NextReview(0, 2.5, 4, now)
	if r.IntervalDays != 1 {
		t.Errorf("First review: expected interval 1, got %d", r.IntervalDays)
	}

	r = NextReview(1, 2.5, 4, now)
	if r.IntervalDays != 6 {
		t.Errorf("Second review: expected interval 6, got %d", r.IntervalDays)
	}

	// quality 4 keeps ease at 2.5; round(6 * 2.5) = 15
	r = NextReview(6, 2.5, 4, now)
	if r.IntervalDays != 15 {
		t.Errorf("Third review: expected interval 15, got %d", r.IntervalDays)
	}
}

func TestNextReview_FailureResetsInterval(t *testing.T) {
	for quality := 0; quality < 3; quality++ {
		r := NextReview(30, 2.5, quality, now)
		if r.IntervalDays != 1 {
			t.Errorf("Quality %d: expected interval reset to 1, got %d", quality, r.IntervalDays)
		}
	}
}

func TestNextReview_EaseUpdates(t *testing.T) {
	// Perfect recall: ease + 0.1
	r := NextReview(6, 2.5, 5, now)
	if r.EaseFactor != 2.6 {
		t.Errorf("Quality 5: expected ease 2.6, got %v", r.EaseFactor)
	}

	// Quality 4 leaves ease unchanged: 0.1 - 1*(0.08+0.02) = 0
	r = NextReview(6, 2.5, 4, now)
	if r.EaseFactor != 2.5 {
		t.Errorf("Quality 4: expected ease 2.5, got %v", r.EaseFactor)
	}

	// Blackout drags ease down hard but never below the floor.
	r = NextReview(6, 1.4, 0, now)
	if r.EaseFactor != MinEaseFactor {
		t.Errorf("Quality 0: expected ease clamped to %v, got %v", MinEaseFactor, r.EaseFactor)
	}
}

func TestNextReview_EaseCeiling(t *testing.T) {
	r := NextReview(6, 3.0, 5, now)
	if r.EaseFactor != MaxEaseFactor {
		t.Errorf("Expected ease capped at %v, got %v", MaxEaseFactor, r.EaseFactor)
	}
}

func TestNextReview_IntervalCap(t *testing.T) {
	r := NextReview(300, 2.5, 4, now)
	if r.IntervalDays != MaxIntervalDays {
		t.Errorf("Expected interval capped at %d, got %d", MaxIntervalDays, r.IntervalDays)
	}
}

func TestNextReview_BoundsHoldEverywhere(t *testing.T) {
	for interval := 0; interval <= 400; interval += 7 {
		for quality := 0; quality <= 5; quality++ {
			for _, ease := range []float64{1.3, 1.8, 2.5, 3.0} {
				r := NextReview(interval, ease, quality, now)
				if r.EaseFactor < MinEaseFactor || r.EaseFactor > MaxEaseFactor {
					t.Fatalf("NextReview(%d,%v,%d): ease %v out of range", interval, ease, quality, r.EaseFactor)
				}
				if r.IntervalDays < 1 || r.IntervalDays > MaxIntervalDays {
					t.Fatalf("NextReview(%d,%v,%d): interval %d out of range", interval, ease, quality, r.IntervalDays)
				}
			}
		}
	}
}

func TestNextReview_Timestamp(t *testing.T) {
	r := NextReview(1, 2.5, 4, now)
	want := now.AddDate(0, 0, 6)
	if !r.NextReview.Equal(want) {
		t.Errorf("Expected next review %v, got %v", want, r.NextReview)
	}
}

func TestQuality(t *testing.T) {
	cases := []struct {
		name    string
		correct bool
		spent   int
		avg     float64
		want    int
	}{
		{"incorrect", false, 10, 30, 0},
		{"correct faster than average", true, 20, 30, 5},
		{"correct much slower than average", true, 70, 30, 3},
		{"correct near average", true, 35, 30, 4},
		{"correct with no history", true, 25, 0, 4},
		{"correct with no timing", true, 0, 30, 4},
	}
	for _, tc := range cases {
		if got := Quality(tc.correct, tc.spent, tc.avg); got != tc.want {
			t.Errorf("%s: expected quality %d, got %d", tc.name, tc.want, got)
		}
	}
}
