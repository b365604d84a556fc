package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pbaille/studykit/internal/domain"
)

var start = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func TestNext_FirstReview(t *testing.T) {
	for _, correct := range []bool{true, false} {
		s := Next(nil, nil, 3, correct, start)
		assert.Equal(t, int64(3), s.FlashcardID)
		assert.Equal(t, 1, s.IntervalDays)
		assert.Equal(t, 1, s.ReviewCount)
		assert.Equal(t, domain.DefaultEaseFactor, s.EaseFactor)
		assert.Equal(t, start.Add(24*time.Hour), s.NextReview)
		assert.Equal(t, start, s.LastReviewed)
	}
}

func TestNext_CorrectLadder(t *testing.T) {
	var prev *domain.Schedule
	var intervals []int
	now := start
	for i := 0; i < 5; i++ {
		s := Next(nil, prev, 1, true, now)
		intervals = append(intervals, s.IntervalDays)
		prev = &s
		now = s.NextReview
	}
	assert.Equal(t, []int{1, 2, 5, 10, 10}, intervals)
	assert.Equal(t, 5, prev.ReviewCount)
}

func TestNext_Incorrect(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wantCount int
	}{
		{"decrements", 4, 3},
		{"from one", 1, 0},
		{"floors at zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := &domain.Schedule{FlashcardID: 2, IntervalDays: 10, EaseFactor: 2.5, ReviewCount: tt.count}
			s := Next(nil, prev, 2, false, start)
			assert.Equal(t, 1, s.IntervalDays)
			assert.Equal(t, tt.wantCount, s.ReviewCount)
			assert.Equal(t, start.Add(24*time.Hour), s.NextReview)
		})
	}
}

func TestNext_AfterReset(t *testing.T) {
	prev := &domain.Schedule{ReviewCount: 0, IntervalDays: 1, EaseFactor: 2.5}
	s := Next(nil, prev, 1, true, start)
	assert.Equal(t, 1, s.IntervalDays)
	assert.Equal(t, 1, s.ReviewCount)
}

func TestNext_EaseFactorUntouched(t *testing.T) {
	prev := &domain.Schedule{ReviewCount: 2, EaseFactor: 1.9}
	assert.Equal(t, 1.9, Next(nil, prev, 1, true, start).EaseFactor)
	assert.Equal(t, 1.9, Next(nil, prev, 1, false, start).EaseFactor)
}

func TestNext_CustomParams(t *testing.T) {
	p := &Params{Ladder: []int{3}, MaxInterval: 30, FirstInterval: 2, FailInterval: 1, EaseFactor: 2.5}
	first := Next(p, nil, 1, true, start)
	assert.Equal(t, 2, first.IntervalDays)

	second := Next(p, &first, 1, true, start)
	assert.Equal(t, 30, second.IntervalDays)
}
