package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/pbaille/studykit/internal/domain"
)

// formattedIDSeq is the flashcard_meta row holding the highest display number
// ever issued.
const formattedIDSeq = "formatted_id_seq"

// FlashcardStore handles the flashcard, response and schedule tables
type FlashcardStore struct {
	db     *DB
	q      querier
	inTx   bool
	logger *slog.Logger
}

// NewFlashcardStore creates a FlashcardStore on db.
func NewFlashcardStore(db *DB, logger *slog.Logger) *FlashcardStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardStore{
		db:     db,
		q:      querier{conn: db.DB, dialect: db.Dialect},
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Close closes the underlying database connection
func (s *FlashcardStore) Close() error {
	return s.db.Close()
}

// RunInTx runs fn with a store bound to a single transaction. Nested calls
// reuse the outer transaction.
func (s *FlashcardStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *FlashcardStore) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return RunInTransaction(ctx, s.db.DB, s.logger, func(ctx context.Context, tx *sql.Tx) error {
		txStore := *s
		txStore.q = querier{conn: tx, dialect: s.db.Dialect}
		txStore.inTx = true
		return fn(ctx, &txStore)
	})
}

// Create inserts card and returns a copy carrying its id and display id.
// Display ids are never reused, even after the highest card is deleted.
func (s *FlashcardStore) Create(ctx context.Context, card domain.Card) (domain.Card, error) {
	kind, options, correct, err := encodeCard(card)
	if err != nil {
		return nil, err
	}
	h := card.Header()

	var created domain.Card
	err = s.RunInTx(ctx, func(ctx context.Context, tx *FlashcardStore) error {
		n, err := tx.nextDisplayNumber(ctx)
		if err != nil {
			return err
		}
		fid := domain.FormatCardID(n)

		id, err := tx.q.execReturningID(ctx,
			`INSERT INTO Flashcards (formatted_id, type, question, answer, options, correct_answer_index)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			fid, string(kind), h.Question, h.Answer, options, correct,
		)
		if err != nil {
			return fmt.Errorf("insert flashcard: %w", mapError(err))
		}

		if _, err := tx.q.exec(ctx,
			s.db.Dialect.Upsert("flashcard_meta", "name", []string{"value"}),
			formattedIDSeq, n,
		); err != nil {
			return fmt.Errorf("update id sequence: %w", err)
		}

		created = domain.WithIdentity(card, id, fid)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created flashcard",
		slog.Int64("id", created.Header().ID),
		slog.String("formatted_id", created.Header().FormattedID),
		slog.String("type", string(kind)))
	return created, nil
}

// nextDisplayNumber is one more than the larger of the highest existing
// display id and the stored high-water mark.
func (s *FlashcardStore) nextDisplayNumber(ctx context.Context) (int, error) {
	rows, err := s.q.query(ctx, "SELECT formatted_id FROM Flashcards")
	if err != nil {
		return 0, fmt.Errorf("list formatted ids: %w", err)
	}
	defer rows.Close()

	maxNum := 0
	for rows.Next() {
		var fid string
		if err := rows.Scan(&fid); err != nil {
			return 0, fmt.Errorf("scan formatted id: %w", err)
		}
		if n, ok := domain.ParseCardID(fid); ok && n > maxNum {
			maxNum = n
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("list formatted ids: %w", err)
	}

	var mark int64
	err = s.q.queryRow(ctx, "SELECT value FROM flashcard_meta WHERE name = ?", formattedIDSeq).Scan(&mark)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read id sequence: %w", err)
	}
	if int(mark) > maxNum {
		maxNum = int(mark)
	}
	return maxNum + 1, nil
}

const cardColumns = "id, formatted_id, type, question, answer, options, correct_answer_index"

// Get retrieves a flashcard by id.
func (s *FlashcardStore) Get(ctx context.Context, id int64) (domain.Card, error) {
	row := s.q.queryRow(ctx, "SELECT "+cardColumns+" FROM Flashcards WHERE id = ?", id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("flashcard", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("get flashcard: %w", err)
	}
	return card, nil
}

// GetByFormattedID retrieves a flashcard by display id, e.g. "F007".
func (s *FlashcardStore) GetByFormattedID(ctx context.Context, fid string) (domain.Card, error) {
	row := s.q.queryRow(ctx, "SELECT "+cardColumns+" FROM Flashcards WHERE formatted_id = ?", fid)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("flashcard", fid)
	}
	if err != nil {
		return nil, fmt.Errorf("get flashcard: %w", err)
	}
	return card, nil
}

// List returns all flashcards in creation order.
func (s *FlashcardStore) List(ctx context.Context) ([]domain.Card, error) {
	rows, err := s.q.query(ctx, "SELECT "+cardColumns+" FROM Flashcards ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flashcard: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	return cards, nil
}

// Update overwrites the content of the stored card with the same id. The card
// kind cannot change.
func (s *FlashcardStore) Update(ctx context.Context, card domain.Card) error {
	kind, options, correct, err := encodeCard(card)
	if err != nil {
		return err
	}
	h := card.Header()

	return s.RunInTx(ctx, func(ctx context.Context, tx *FlashcardStore) error {
		existing, err := tx.Get(ctx, h.ID)
		if err != nil {
			return err
		}
		if existing.Kind() != kind {
			return domain.NewValidationError("type", fmt.Sprintf("cannot change from %s to %s", existing.Kind(), kind))
		}

		if _, err := tx.q.exec(ctx,
			`UPDATE Flashcards SET question = ?, answer = ?, options = ?, correct_answer_index = ? WHERE id = ?`,
			h.Question, h.Answer, options, correct, h.ID,
		); err != nil {
			return fmt.Errorf("update flashcard: %w", err)
		}
		return nil
	})
}

// Delete removes a flashcard with its responses and schedule.
func (s *FlashcardStore) Delete(ctx context.Context, id int64) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx *FlashcardStore) error {
		if _, err := tx.q.exec(ctx, "DELETE FROM flashcard_progress WHERE flashcard_id = ?", id); err != nil {
			return fmt.Errorf("delete responses: %w", err)
		}
		if _, err := tx.q.exec(ctx, "DELETE FROM spaced_repetition WHERE flashcard_id = ?", id); err != nil {
			return fmt.Errorf("delete schedule: %w", err)
		}
		res, err := tx.q.exec(ctx, "DELETE FROM Flashcards WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete flashcard: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete flashcard: %w", err)
		}
		if n == 0 {
			return domain.NewNotFoundError("flashcard", strconv.FormatInt(id, 10))
		}
		return nil
	})
}

// DeleteAll removes every flashcard, response and schedule. The display id
// high-water mark is kept.
func (s *FlashcardStore) DeleteAll(ctx context.Context) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx *FlashcardStore) error {
		for _, table := range []string{"flashcard_progress", "spaced_repetition", "Flashcards"} {
			if _, err := tx.q.exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// RecordResponse appends an answer to the response log and returns its id.
func (s *FlashcardStore) RecordResponse(ctx context.Context, r domain.Response) (int64, error) {
	id, err := s.q.execReturningID(ctx,
		"INSERT INTO flashcard_progress (flashcard_id, user_answer, is_correct, timestamp) VALUES (?, ?, ?, ?)",
		r.FlashcardID, r.UserAnswer, r.IsCorrect, dbTime(r.Timestamp),
	)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, ErrMissingReference) {
			return 0, domain.NewNotFoundError("flashcard", strconv.FormatInt(r.FlashcardID, 10))
		}
		return 0, fmt.Errorf("record response: %w", err)
	}
	return id, nil
}

// Responses returns the answers logged for a flashcard, oldest first.
func (s *FlashcardStore) Responses(ctx context.Context, flashcardID int64) ([]domain.Response, error) {
	rows, err := s.q.query(ctx,
		`SELECT id, flashcard_id, user_answer, is_correct, timestamp
		 FROM flashcard_progress WHERE flashcard_id = ? ORDER BY id`,
		flashcardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var out []domain.Response
	for rows.Next() {
		var r domain.Response
		var answer sql.NullString
		if err := rows.Scan(&r.ID, &r.FlashcardID, &answer, &r.IsCorrect, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.UserAnswer = answer.String
		r.Timestamp = r.Timestamp.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Schedule returns the spaced repetition record of a flashcard. found is
// false when the card has never been reviewed.
func (s *FlashcardStore) Schedule(ctx context.Context, flashcardID int64) (sched domain.Schedule, found bool, err error) {
	err = s.q.queryRow(ctx,
		`SELECT flashcard_id, next_review, interval_days, ease_factor, review_count, last_reviewed
		 FROM spaced_repetition WHERE flashcard_id = ?`,
		flashcardID,
	).Scan(&sched.FlashcardID, &sched.NextReview, &sched.IntervalDays, &sched.EaseFactor, &sched.ReviewCount, &sched.LastReviewed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Schedule{}, false, nil
	}
	if err != nil {
		return domain.Schedule{}, false, fmt.Errorf("get schedule: %w", err)
	}
	sched.NextReview = sched.NextReview.UTC()
	sched.LastReviewed = sched.LastReviewed.UTC()
	return sched, true, nil
}

// SaveSchedule inserts or replaces the schedule of a flashcard.
func (s *FlashcardStore) SaveSchedule(ctx context.Context, sched domain.Schedule) error {
	query := s.db.Dialect.Upsert("spaced_repetition", "flashcard_id",
		[]string{"next_review", "interval_days", "ease_factor", "review_count", "last_reviewed"})
	_, err := s.q.exec(ctx, query,
		sched.FlashcardID, dbTime(sched.NextReview), sched.IntervalDays, sched.EaseFactor,
		sched.ReviewCount, dbTime(sched.LastReviewed),
	)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, ErrMissingReference) {
			return domain.NewNotFoundError("flashcard", strconv.FormatInt(sched.FlashcardID, 10))
		}
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}

// DueIDs returns the ids of flashcards whose next review is at or before now.
func (s *FlashcardStore) DueIDs(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := s.q.query(ctx,
		"SELECT flashcard_id FROM spaced_repetition WHERE next_review <= ? ORDER BY next_review, flashcard_id",
		dbTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("list due flashcards: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan due flashcard: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReviewLevel returns the review count of a flashcard, 0 if never reviewed.
func (s *FlashcardStore) ReviewLevel(ctx context.Context, flashcardID int64) (int, error) {
	sched, found, err := s.Schedule(ctx, flashcardID)
	if err != nil || !found {
		return 0, err
	}
	return sched.ReviewCount, nil
}

// Stats aggregates the card count and response log.
func (s *FlashcardStore) Stats(ctx context.Context) (domain.ProgressStats, error) {
	var stats domain.ProgressStats

	if err := s.q.queryRow(ctx, "SELECT COUNT(*) FROM Flashcards").Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("count flashcards: %w", err)
	}
	if err := s.q.queryRow(ctx, "SELECT COUNT(DISTINCT flashcard_id) FROM flashcard_progress").Scan(&stats.Studied); err != nil {
		return stats, fmt.Errorf("count studied flashcards: %w", err)
	}

	var attempts, correct int64
	if err := s.q.queryRow(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) FROM flashcard_progress",
	).Scan(&attempts, &correct); err != nil {
		return stats, fmt.Errorf("count responses: %w", err)
	}

	stats.Correct = int(correct)
	stats.Incorrect = int(attempts - correct)
	if attempts > 0 {
		stats.Accuracy = roundTo(float64(correct)/float64(attempts)*100, 1)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		h       domain.CardHeader
		kind    string
		options sql.NullString
		correct sql.NullInt64
	)
	if err := row.Scan(&h.ID, &h.FormattedID, &kind, &h.Question, &h.Answer, &options, &correct); err != nil {
		return nil, err
	}

	switch domain.CardKind(kind) {
	case domain.KindOpen:
		return &domain.OpenCard{CardHeader: h}, nil
	case domain.KindMultiple:
		card := &domain.MultipleChoiceCard{CardHeader: h, CorrectIndex: int(correct.Int64)}
		if options.Valid && options.String != "" {
			if err := json.Unmarshal([]byte(options.String), &card.Options); err != nil {
				return nil, fmt.Errorf("decode options of %s: %w", h.FormattedID, err)
			}
		}
		return card, nil
	default:
		return nil, fmt.Errorf("flashcard %s has unknown type %q", h.FormattedID, kind)
	}
}

func encodeCard(card domain.Card) (kind domain.CardKind, options sql.NullString, correct sql.NullInt64, err error) {
	switch c := card.(type) {
	case *domain.OpenCard:
		return domain.KindOpen, sql.NullString{}, sql.NullInt64{}, nil
	case *domain.MultipleChoiceCard:
		data, err := json.Marshal(c.Options)
		if err != nil {
			return "", sql.NullString{}, sql.NullInt64{}, fmt.Errorf("encode options: %w", err)
		}
		return domain.KindMultiple,
			sql.NullString{String: string(data), Valid: true},
			sql.NullInt64{Int64: int64(c.CorrectIndex), Valid: true},
			nil
	default:
		return "", sql.NullString{}, sql.NullInt64{}, fmt.Errorf("unknown card type %T", card)
	}
}

// dbTime normalizes timestamps so sqlite's text encoding compares in order.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
