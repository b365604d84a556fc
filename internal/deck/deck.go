// Package deck manages named decks of question/answer cards and builds
// shuffled quizzes from them.
package deck

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/store"
)

// StorageName is the storage name of the deck collection.
const StorageName = "flashcards"

// maxWrongOptions bounds the distractors offered with a correct answer.
const maxWrongOptions = 3

// Decks owns every deck and persists the whole collection on each change
type Decks struct {
	kv     store.KV
	decks  map[string][]domain.DeckCard
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures Decks.
type Option func(*Decks)

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(d *Decks) { d.rng = r }
}

// New loads the deck collection from kv.
func New(kv store.KV, logger *slog.Logger, opts ...Option) *Decks {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Decks{
		kv:     kv,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logger.With(slog.String("component", "deck")),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.decks = store.Load[map[string][]domain.DeckCard](kv, StorageName, nil, d.logger)
	if d.decks == nil {
		d.decks = make(map[string][]domain.DeckCard)
	}
	return d
}

func (d *Decks) save() error {
	if err := store.Save(d.kv, StorageName, d.decks); err != nil {
		return fmt.Errorf("save decks: %w", err)
	}
	return nil
}

// cards looks up a deck by its trimmed name.
func (d *Decks) cards(name string) ([]domain.DeckCard, error) {
	name = strings.TrimSpace(name)
	cards, ok := d.decks[name]
	if !ok {
		return nil, domain.NewNotFoundError("deck", name)
	}
	return cards, nil
}

// Create adds an empty deck. Surrounding whitespace is not part of the name.
func (d *Decks) Create(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewValidationError("deck name", "is required")
	}
	if _, ok := d.decks[name]; ok {
		return domain.NewValidationError("deck name", fmt.Sprintf("%q already exists", name))
	}
	d.decks[name] = []domain.DeckCard{}
	if err := d.save(); err != nil {
		delete(d.decks, name)
		return err
	}
	d.logger.Debug("created deck", slog.String("deck", name))
	return nil
}

// Delete removes a deck and its cards.
func (d *Decks) Delete(name string) error {
	name = strings.TrimSpace(name)
	cards, err := d.cards(name)
	if err != nil {
		return err
	}
	delete(d.decks, name)
	if err := d.save(); err != nil {
		d.decks[name] = cards
		return err
	}
	return nil
}

// AddCard appends a trimmed question/answer pair to a deck.
func (d *Decks) AddCard(deckName, question, answer string) (domain.DeckCard, error) {
	deckName = strings.TrimSpace(deckName)
	if deckName == "" {
		return domain.DeckCard{}, domain.NewValidationError("deck name", "is required")
	}
	cards, err := d.cards(deckName)
	if err != nil {
		return domain.DeckCard{}, err
	}
	card := domain.DeckCard{Question: strings.TrimSpace(question), Answer: strings.TrimSpace(answer)}
	if card.Question == "" || card.Answer == "" {
		return domain.DeckCard{}, domain.NewValidationError("card", "question and answer cannot be empty")
	}

	d.decks[deckName] = append(slices.Clone(cards), card)
	if err := d.save(); err != nil {
		d.decks[deckName] = cards
		return domain.DeckCard{}, err
	}
	return card, nil
}

// Names returns the deck names in sorted order.
func (d *Decks) Names() []string {
	names := make([]string, 0, len(d.decks))
	for name := range d.decks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Cards returns a copy of a deck's cards.
func (d *Decks) Cards(deckName string) ([]domain.DeckCard, error) {
	cards, err := d.cards(deckName)
	if err != nil {
		return nil, err
	}
	return slices.Clone(cards), nil
}

// StartQuiz returns the deck's cards in a fresh random order.
func (d *Decks) StartQuiz(deckName string) ([]domain.DeckCard, error) {
	cards, err := d.Cards(deckName)
	if err != nil {
		return nil, err
	}
	d.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards, nil
}

// MultipleChoiceOptions returns correct plus up to three distinct other
// answers from the deck, shuffled.
func (d *Decks) MultipleChoiceOptions(deckName, correct string) ([]string, error) {
	cards, err := d.cards(deckName)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{correct: true}
	var wrong []string
	for _, c := range cards {
		if !seen[c.Answer] {
			seen[c.Answer] = true
			wrong = append(wrong, c.Answer)
		}
	}
	d.rng.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })

	options := append(wrong[:min(maxWrongOptions, len(wrong))], correct)
	d.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options, nil
}
