package study

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pbaille/studykit/internal/domain"
)

// DefaultQuizSize is the number of cards sampled for a quiz.
const DefaultQuizSize = 10

// Quiz is a random sample of cards answered in order.
type Quiz struct {
	ID      uuid.UUID
	Cards   []domain.Card
	next    int
	correct int
}

// Rating summarizes a finished quiz.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingPractice  Rating = "keep practicing"
)

// StartQuiz samples up to size cards (DefaultQuizSize when size <= 0) in
// random order.
func (s *Service) StartQuiz(ctx context.Context, size int) (*Quiz, error) {
	if size <= 0 {
		size = DefaultQuizSize
	}
	cards, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, domain.NewValidationError("quiz", "no flashcards to study")
	}

	n := min(size, len(cards))
	sample := make([]domain.Card, n)
	for i, idx := range s.rng.Perm(len(cards))[:n] {
		sample[i] = cards[idx]
	}

	q := &Quiz{ID: uuid.New(), Cards: sample}
	s.logger.Debug("started quiz",
		slog.String("quiz_id", q.ID.String()),
		slog.Int("cards", n))
	return q, nil
}

// Current returns the card awaiting an answer, or nil when the quiz is done.
func (q *Quiz) Current() domain.Card {
	if q.Done() {
		return nil
	}
	return q.Cards[q.next]
}

// Done reports whether every card has been answered.
func (q *Quiz) Done() bool {
	return q.next >= len(q.Cards)
}

// Score returns correct answers and cards answered so far.
func (q *Quiz) Score() (correct, answered int) {
	return q.correct, q.next
}

// Percent is the share of correct answers over the whole quiz.
func (q *Quiz) Percent() float64 {
	if len(q.Cards) == 0 {
		return 0
	}
	return float64(q.correct) / float64(len(q.Cards)) * 100
}

// Rating grades the quiz: 80% and up is excellent, 60% and up good.
func (q *Quiz) Rating() Rating {
	switch p := q.Percent(); {
	case p >= 80:
		return RatingExcellent
	case p >= 60:
		return RatingGood
	default:
		return RatingPractice
	}
}

// Answer reviews the current card of q and moves to the next one.
func (s *Service) Answer(ctx context.Context, q *Quiz, answer string) (AnswerResult, error) {
	card := q.Current()
	if card == nil {
		return AnswerResult{}, domain.NewValidationError("quiz", fmt.Sprintf("quiz %s is finished", q.ID))
	}
	res, err := s.Review(ctx, card, answer)
	if err != nil {
		return AnswerResult{}, err
	}
	if res.Correct {
		q.correct++
	}
	q.next++
	return res, nil
}
