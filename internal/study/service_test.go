package study

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *clock { return &clock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)} }
func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func newService(t *testing.T, c *clock) *Service {
	t.Helper()
	db, err := store.Open(context.Background(), store.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "flashcard.db"),
	}, nil)
	require.NoError(t, err)
	fs := store.NewFlashcardStore(db, nil)
	t.Cleanup(func() { _ = fs.Close() })

	return NewService(fs, nil, WithClock(c.now), WithRand(rand.New(rand.NewPCG(7, 7))))
}

func TestAddUpdateLookup(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newClock())

	open, err := s.AddOpen(ctx, "Capital of Italy?", "Rome")
	require.NoError(t, err)
	assert.Equal(t, "F001", open.Header().FormattedID)

	mc, err := s.AddMultipleChoice(ctx, "2+2?", []string{"3", "4", "5"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "4", mc.Header().Answer)

	_, err = s.AddMultipleChoice(ctx, "Bad", []string{"only"}, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := s.UpdateOpen(ctx, open.Header().ID, "Capital of France?", "Paris")
	require.NoError(t, err)
	assert.Equal(t, "F001", updated.Header().FormattedID)

	got, err := s.Lookup(ctx, "f001")
	require.NoError(t, err)
	assert.Equal(t, "Paris", got.Header().Answer)

	got, err = s.Lookup(ctx, fmt.Sprint(mc.Header().ID))
	require.NoError(t, err)
	assert.Equal(t, domain.KindMultiple, got.Kind())

	_, err = s.Lookup(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = s.Lookup(ctx, "F099")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.UpdateMultipleChoice(ctx, open.Header().ID, "Now MC?", []string{"a", "b"}, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.UpdateOpen(ctx, 999, "q", "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewLadder(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := newService(t, c)

	card, err := s.AddOpen(ctx, "Largest ocean?", "Pacific")
	require.NoError(t, err)

	var intervals []int
	for i := 0; i < 5; i++ {
		res, err := s.Review(ctx, card, " pacific ")
		require.NoError(t, err)
		assert.True(t, res.Correct)
		intervals = append(intervals, res.Schedule.IntervalDays)
		c.advance(days(res.Schedule.IntervalDays))
	}
	assert.Equal(t, []int{1, 2, 5, 10, 10}, intervals)

	level, err := s.ReviewLevel(ctx, card.Header().ID)
	require.NoError(t, err)
	assert.Equal(t, 5, level)

	res, err := s.Review(ctx, card, "Atlantic")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "Pacific", res.Expected)
	assert.Equal(t, 1, res.Schedule.IntervalDays)
	assert.Equal(t, 4, res.Schedule.ReviewCount)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressStats{Total: 1, Studied: 1, Accuracy: 83.3, Correct: 5, Incorrect: 1}, stats)
}

func TestReviewMissingCardRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newClock())

	ghost := domain.WithIdentity(&domain.OpenCard{CardHeader: domain.CardHeader{Answer: "x"}}, 42, "F042")
	_, err := s.Review(ctx, ghost, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Correct+stats.Incorrect)
}

func TestDue(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := newService(t, c)

	a, err := s.AddOpen(ctx, "a", "a")
	require.NoError(t, err)
	b, err := s.AddOpen(ctx, "b", "b")
	require.NoError(t, err)
	_, err = s.AddOpen(ctx, "never reviewed", "c")
	require.NoError(t, err)

	_, err = s.Review(ctx, a, "a")
	require.NoError(t, err)
	c.advance(time.Hour)
	_, err = s.Review(ctx, b, "b")
	require.NoError(t, err)

	due, err := s.Due(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)

	c.advance(days(1) - time.Hour)
	due, err = s.Due(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, a.Header().ID, due[0].Header().ID)

	c.advance(time.Hour)
	due, err = s.Due(ctx)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestQuiz(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newClock())

	_, err := s.StartQuiz(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	for i := 0; i < 12; i++ {
		_, err := s.AddOpen(ctx, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		require.NoError(t, err)
	}

	q, err := s.StartQuiz(ctx, 0)
	require.NoError(t, err)
	require.Len(t, q.Cards, DefaultQuizSize)

	seen := map[int64]bool{}
	for _, c := range q.Cards {
		assert.False(t, seen[c.Header().ID])
		seen[c.Header().ID] = true
	}

	for i := 0; !q.Done(); i++ {
		answer := q.Current().Header().Answer
		if i >= 7 {
			answer = "wrong"
		}
		_, err := s.Answer(ctx, q, answer)
		require.NoError(t, err)
	}

	correct, answered := q.Score()
	assert.Equal(t, 7, correct)
	assert.Equal(t, 10, answered)
	assert.InDelta(t, 70.0, q.Percent(), 1e-9)
	assert.Equal(t, RatingGood, q.Rating())

	_, err = s.Answer(ctx, q, "late")
	assert.ErrorIs(t, err, domain.ErrValidation)

	small, err := s.StartQuiz(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, small.Cards, 3)
	assert.NotEqual(t, q.ID, small.ID)
}

func TestMultipleChoiceQuizAnswer(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newClock())

	_, err := s.AddMultipleChoice(ctx, "Primary color?", []string{"Green", "Red"}, 1)
	require.NoError(t, err)

	q, err := s.StartQuiz(ctx, 0)
	require.NoError(t, err)
	res, err := s.Answer(ctx, q, "red")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, RatingExcellent, q.Rating())
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newClock())

	card, err := s.AddOpen(ctx, "a", "a")
	require.NoError(t, err)
	_, err = s.Review(ctx, card, "a")
	require.NoError(t, err)

	require.NoError(t, s.DeleteAll(ctx))
	cards, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressStats{}, stats)

	assert.ErrorIs(t, s.Delete(ctx, card.Header().ID), domain.ErrNotFound)
}
