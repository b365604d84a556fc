// Package study is the persistent flashcard workflow: authoring cards,
// answering them, and scheduling reviews on the spaced repetition ladder.
package study

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/srs"
	"github.com/pbaille/studykit/internal/store"
)

// Service coordinates the flashcard store and the scheduler
type Service struct {
	store  *store.FlashcardStore
	params *srs.Params
	now    func() time.Time
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for responses and schedules.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand sets the random source used to sample quizzes.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithParams overrides the interval ladder.
func WithParams(p *srs.Params) Option {
	return func(s *Service) { s.params = p }
}

// NewService creates a Service on fs.
func NewService(fs *store.FlashcardStore, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:  fs,
		params: srs.NewDefaultParams(),
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logger.With(slog.String("component", "study")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddOpen creates a free-text flashcard.
func (s *Service) AddOpen(ctx context.Context, question, answer string) (domain.Card, error) {
	card, err := domain.NewOpenCard(question, answer)
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, card)
}

// AddMultipleChoice creates a multiple-choice flashcard.
func (s *Service) AddMultipleChoice(ctx context.Context, question string, options []string, correctIndex int) (domain.Card, error) {
	card, err := domain.NewMultipleChoiceCard(question, options, correctIndex)
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, card)
}

// UpdateOpen rewrites the question and answer of an open card.
func (s *Service) UpdateOpen(ctx context.Context, id int64, question, answer string) (domain.Card, error) {
	card, err := domain.NewOpenCard(question, answer)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, card)
}

// UpdateMultipleChoice rewrites the question, options and correct option of a
// multiple-choice card.
func (s *Service) UpdateMultipleChoice(ctx context.Context, id int64, question string, options []string, correctIndex int) (domain.Card, error) {
	card, err := domain.NewMultipleChoiceCard(question, options, correctIndex)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, card)
}

func (s *Service) update(ctx context.Context, id int64, card domain.Card) (domain.Card, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := domain.WithIdentity(card, id, existing.Header().FormattedID)
	if err := s.store.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Get returns a card by numeric id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Card, error) {
	return s.store.Get(ctx, id)
}

// Lookup accepts either a display id ("F003") or a numeric id.
func (s *Service) Lookup(ctx context.Context, ref string) (domain.Card, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if _, ok := domain.ParseCardID(ref); ok {
		return s.store.GetByFormattedID(ctx, ref)
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return nil, domain.NewValidationError("id", fmt.Sprintf("%q is not a flashcard id", ref))
	}
	return s.store.Get(ctx, id)
}

// List returns every card in creation order.
func (s *Service) List(ctx context.Context) ([]domain.Card, error) {
	return s.store.List(ctx)
}

// Delete removes a card with its history and schedule.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("deleted flashcard", slog.Int64("id", id))
	return nil
}

// DeleteAll removes every card.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.store.DeleteAll(ctx)
}

// AnswerResult reports the outcome of one answer.
type AnswerResult struct {
	Correct  bool
	Expected string
	Schedule domain.Schedule
}

// Review checks answer against card, logs the response and advances the
// card's schedule in a single transaction.
func (s *Service) Review(ctx context.Context, card domain.Card, answer string) (AnswerResult, error) {
	now := s.now()
	id := card.Header().ID
	correct := domain.CheckAnswer(card, answer)

	var sched domain.Schedule
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx *store.FlashcardStore) error {
		if _, err := tx.RecordResponse(ctx, domain.Response{
			FlashcardID: id,
			UserAnswer:  strings.TrimSpace(answer),
			IsCorrect:   correct,
			Timestamp:   now,
		}); err != nil {
			return err
		}

		prev, found, err := tx.Schedule(ctx, id)
		if err != nil {
			return err
		}
		var prevPtr *domain.Schedule
		if found {
			prevPtr = &prev
		}

		sched = srs.Next(s.params, prevPtr, id, correct, now)
		return tx.SaveSchedule(ctx, sched)
	})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("review flashcard %d: %w", id, err)
	}

	s.logger.Debug("reviewed flashcard",
		slog.Int64("id", id),
		slog.Bool("correct", correct),
		slog.Int("interval_days", sched.IntervalDays))

	return AnswerResult{Correct: correct, Expected: card.Header().Answer, Schedule: sched}, nil
}

// Due returns the cards whose next review is at or before now.
func (s *Service) Due(ctx context.Context) ([]domain.Card, error) {
	ids, err := s.store.DueIDs(ctx, s.now())
	if err != nil {
		return nil, err
	}
	cards := make([]domain.Card, 0, len(ids))
	for _, id := range ids {
		card, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ReviewLevel returns the review count of a card, 0 if never reviewed.
func (s *Service) ReviewLevel(ctx context.Context, id int64) (int, error) {
	return s.store.ReviewLevel(ctx, id)
}

// Stats returns totals and accuracy over all responses.
func (s *Service) Stats(ctx context.Context) (domain.ProgressStats, error) {
	return s.store.Stats(ctx)
}
