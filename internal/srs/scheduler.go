// Package srs implements an SM-2 style spaced repetition scheduler. The ease
// factor and interval math follows the classic algorithm; intervals are capped
// so a record can never be pushed more than a year out.
package srs

import (
	"math"
	"time"
)

const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
	InitialEaseFactor = 2.5
	MaxIntervalDays   = 365
)

// Review is the scheduler's output for one answer.
type Review struct {
	IntervalDays int
	EaseFactor   float64
	NextReview   time.Time
}

// NextReview applies one SM-2 update.
//
// Ease: EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), clamped to
// [MinEaseFactor, MaxEaseFactor]. Interval: quality < 3 resets to 1 day;
// otherwise 0→1, 1→6, then round(interval × EF'), capped at MaxIntervalDays.
func NextReview(intervalDays int, easeFactor float64, quality int, now time.Time) Review {
	if quality < 0 {
		quality = 0
	}
	if quality > 5 {
		quality = 5
	}
	if easeFactor < MinEaseFactor {
		easeFactor = InitialEaseFactor
	}

	q := float64(quality)
	ease := easeFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}
	if ease > MaxEaseFactor {
		ease = MaxEaseFactor
	}

	var interval int
	switch {
	case quality < 3:
		interval = 1
	case intervalDays == 0:
		interval = 1
	case intervalDays == 1:
		interval = 6
	default:
		interval = int(math.Round(float64(intervalDays) * ease))
	}
	if interval < 1 {
		interval = 1
	}
	if interval > MaxIntervalDays {
		interval = MaxIntervalDays
	}

	return Review{
		IntervalDays: interval,
		EaseFactor:   ease,
		NextReview:   now.AddDate(0, 0, interval),
	}
}

// Quality derives the 0-5 answer-quality signal from correctness and the
// response time relative to the learner's historical average. A correct answer
// faster than average rates 5; much slower than average rates 3; otherwise 4.
// Incorrect answers rate 0.
func Quality(isCorrect bool, timeSpentSeconds int, avgTimeSeconds float64) int {
	if !isCorrect {
		return 0
	}
	if avgTimeSeconds <= 0 || timeSpentSeconds <= 0 {
		return 4
	}
	ratio := float64(timeSpentSeconds) / avgTimeSeconds
	switch {
	case ratio < 1.0:
		return 5
	case ratio > 2.0:
		return 3
	default:
		return 4
	}
}
