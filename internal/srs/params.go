// Package srs schedules flashcard reviews on a fixed interval ladder.
package srs

import "github.com/pbaille/studykit/internal/domain"

// Params configures the interval ladder
type Params struct {
	// Ladder[n] is the interval in days after a correct answer given with a
	// prior review count of n.
	Ladder []int
	// MaxInterval applies once the review count runs past the ladder.
	MaxInterval int
	// FirstInterval is used for the first review regardless of the answer.
	FirstInterval int
	// FailInterval is used after an incorrect answer.
	FailInterval int
	// EaseFactor is stored on new schedules.
	EaseFactor float64
}

// NewDefaultParams returns the 1, 2, 5, then 10 day ladder.
func NewDefaultParams() *Params {
	return &Params{
		Ladder:        []int{1, 2, 5},
		MaxInterval:   10,
		FirstInterval: 1,
		FailInterval:  1,
		EaseFactor:    domain.DefaultEaseFactor,
	}
}

// intervalFor returns the correct-answer interval for a prior review count.
func (p *Params) intervalFor(reviewCount int) int {
	if reviewCount < 0 {
		reviewCount = 0
	}
	if reviewCount < len(p.Ladder) {
		return p.Ladder[reviewCount]
	}
	return p.MaxInterval
}
