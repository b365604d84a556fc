package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTextLength bounds question and answer text, in characters.
const MaxTextLength = 250

// DefaultEaseFactor is stored with every schedule. The interval ladder does not
// read it.
const DefaultEaseFactor = 2.5

// CardKind is the persisted type tag of a flashcard.
type CardKind string

const (
	KindOpen     CardKind = "open"
	KindMultiple CardKind = "multiple"
)

// CardHeader holds the fields shared by every flashcard variant.
type CardHeader struct {
	ID          int64  `json:"id"`
	FormattedID string `json:"formatted_id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
}

// Header returns the shared fields.
func (h CardHeader) Header() CardHeader {
	return h
}

// Card is a persistent flashcard: either *OpenCard or *MultipleChoiceCard.
type Card interface {
	Header() CardHeader
	Kind() CardKind
	card()
}

// OpenCard is answered with free text.
type OpenCard struct {
	CardHeader
}

func (*OpenCard) Kind() CardKind { return KindOpen }
func (*OpenCard) card()          {}

// MultipleChoiceCard is answered by picking one of Options. Answer always
// holds the text of the correct option.
type MultipleChoiceCard struct {
	CardHeader
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_answer_index"`
}

func (*MultipleChoiceCard) Kind() CardKind { return KindMultiple }
func (*MultipleChoiceCard) card()          {}

// CorrectOption returns the text of the correct option.
func (c *MultipleChoiceCard) CorrectOption() string {
	if c.CorrectIndex < 0 || c.CorrectIndex >= len(c.Options) {
		return ""
	}
	return c.Options[c.CorrectIndex]
}

// NewOpenCard validates and builds an unsaved open card.
func NewOpenCard(question, answer string) (*OpenCard, error) {
	q, err := cleanText("question", question)
	if err != nil {
		return nil, err
	}
	a, err := cleanText("answer", answer)
	if err != nil {
		return nil, err
	}
	return &OpenCard{CardHeader: CardHeader{Question: q, Answer: a}}, nil
}

// NewMultipleChoiceCard validates and builds an unsaved multiple-choice card.
// It needs at least two non-blank options and a correct index in range.
func NewMultipleChoiceCard(question string, options []string, correctIndex int) (*MultipleChoiceCard, error) {
	q, err := cleanText("question", question)
	if err != nil {
		return nil, err
	}
	if len(options) < 2 {
		return nil, NewValidationError("options", "needs at least 2 choices")
	}
	opts := make([]string, len(options))
	for i, o := range options {
		opt, err := cleanText(fmt.Sprintf("option %d", i+1), o)
		if err != nil {
			return nil, err
		}
		opts[i] = opt
	}
	if correctIndex < 0 || correctIndex >= len(opts) {
		return nil, NewValidationError("correct_answer_index", fmt.Sprintf("must be between 0 and %d", len(opts)-1))
	}
	return &MultipleChoiceCard{
		CardHeader:   CardHeader{Question: q, Answer: opts[correctIndex]},
		Options:      opts,
		CorrectIndex: correctIndex,
	}, nil
}

func cleanText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError(field, "is required")
	}
	if utf8.RuneCountInString(s) > MaxTextLength {
		return "", NewValidationError(field, fmt.Sprintf("must be at most %d characters", MaxTextLength))
	}
	return s, nil
}

// WithIdentity returns a copy of c carrying the given ids.
func WithIdentity(c Card, id int64, formattedID string) Card {
	switch v := c.(type) {
	case *OpenCard:
		cp := *v
		cp.ID, cp.FormattedID = id, formattedID
		return &cp
	case *MultipleChoiceCard:
		cp := *v
		cp.Options = append([]string(nil), v.Options...)
		cp.ID, cp.FormattedID = id, formattedID
		return &cp
	default:
		panic(fmt.Sprintf("unknown card type %T", c))
	}
}

// CheckAnswer reports whether answer is correct for c. Comparison ignores
// surrounding whitespace and case.
func CheckAnswer(c Card, answer string) bool {
	given := strings.TrimSpace(answer)
	switch v := c.(type) {
	case *OpenCard:
		return strings.EqualFold(given, strings.TrimSpace(v.Answer))
	case *MultipleChoiceCard:
		return strings.EqualFold(given, strings.TrimSpace(v.CorrectOption()))
	default:
		panic(fmt.Sprintf("unknown card type %T", c))
	}
}

// FormatCardID renders the display id, e.g. 7 -> "F007".
func FormatCardID(n int) string {
	return fmt.Sprintf("F%03d", n)
}

// ParseCardID extracts the number from a display id such as "F012".
func ParseCardID(s string) (int, bool) {
	if len(s) < 2 || s[0] != 'F' || !IsAllDigits(s[1:]) {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Response is one logged answer to a flashcard.
type Response struct {
	ID          int64     `json:"id"`
	FlashcardID int64     `json:"flashcard_id"`
	UserAnswer  string    `json:"user_answer"`
	IsCorrect   bool      `json:"is_correct"`
	Timestamp   time.Time `json:"timestamp"`
}

// Schedule is the spaced repetition record of a flashcard.
type Schedule struct {
	FlashcardID  int64     `json:"flashcard_id"`
	NextReview   time.Time `json:"next_review"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	ReviewCount  int       `json:"review_count"`
	LastReviewed time.Time `json:"last_reviewed"`
}

// ProgressStats aggregates the response log. Total counts cards; Correct
// and Incorrect count responses.
type ProgressStats struct {
	Total     int     `json:"total"`
	Studied   int     `json:"studied"`
	Accuracy  float64 `json:"accuracy"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
}
