package srs

import (
	"time"

	"github.com/pbaille/studykit/internal/domain"
)

const day = 24 * time.Hour

// Next computes the schedule after answering flashcardID at now.
//
// prev is nil on the first review: the card then gets FirstInterval and a
// review count of 1 whatever the answer. Afterwards a correct answer picks the
// interval from the prior review count and increments it, while an incorrect
// answer uses FailInterval and decrements the count, never below zero. The
// ease factor is carried over unchanged.
func Next(params *Params, prev *domain.Schedule, flashcardID int64, correct bool, now time.Time) domain.Schedule {
	if params == nil {
		params = NewDefaultParams()
	}

	if prev == nil {
		return domain.Schedule{
			FlashcardID:  flashcardID,
			NextReview:   now.Add(time.Duration(params.FirstInterval) * day),
			IntervalDays: params.FirstInterval,
			EaseFactor:   params.EaseFactor,
			ReviewCount:  1,
			LastReviewed: now,
		}
	}

	next := *prev
	next.FlashcardID = flashcardID
	if correct {
		next.IntervalDays = params.intervalFor(prev.ReviewCount)
		next.ReviewCount = prev.ReviewCount + 1
	} else {
		next.IntervalDays = params.FailInterval
		next.ReviewCount = max(0, prev.ReviewCount-1)
	}
	next.NextReview = now.Add(time.Duration(next.IntervalDays) * day)
	next.LastReviewed = now
	return next
}
