package deck

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/store"
)

func newDecks(t *testing.T, kv store.KV) *Decks {
	t.Helper()
	return New(kv, nil, WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestCreateAndDelete(t *testing.T) {
	kv := store.NewMemoryStore()
	d := newDecks(t, kv)

	require.NoError(t, d.Create("Spanish"))
	assert.ErrorIs(t, d.Create("Spanish"), domain.ErrValidation)
	assert.ErrorIs(t, d.Create("  "), domain.ErrValidation)
	require.NoError(t, d.Create("Biology"))

	assert.Equal(t, []string{"Biology", "Spanish"}, newDecks(t, kv).Names())

	require.NoError(t, d.Delete("Spanish"))
	assert.ErrorIs(t, d.Delete("Spanish"), domain.ErrNotFound)
	assert.Equal(t, []string{"Biology"}, newDecks(t, kv).Names())
}

func TestDeckNamesAreTrimmed(t *testing.T) {
	kv := store.NewMemoryStore()
	d := newDecks(t, kv)

	require.NoError(t, d.Create(" Bio "))
	assert.ErrorIs(t, d.Create("Bio"), domain.ErrValidation)
	assert.Equal(t, []string{"Bio"}, newDecks(t, kv).Names())

	_, err := d.AddCard("Bio ", "cell", "unit of life")
	require.NoError(t, err)
	cards, err := d.Cards(" Bio")
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	require.NoError(t, d.Delete("  Bio"))
	assert.Empty(t, d.Names())
}

func TestAddCard(t *testing.T) {
	kv := store.NewMemoryStore()
	d := newDecks(t, kv)
	require.NoError(t, d.Create("Spanish"))

	card, err := d.AddCard("Spanish", " hola ", " hello ")
	require.NoError(t, err)
	assert.Equal(t, domain.DeckCard{Question: "hola", Answer: "hello"}, card)

	_, err = d.AddCard("", "q", "a")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = d.AddCard("French", "q", "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = d.AddCard("Spanish", "q", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	cards, err := newDecks(t, kv).Cards("Spanish")
	require.NoError(t, err)
	assert.Equal(t, []domain.DeckCard{{Question: "hola", Answer: "hello"}}, cards)

	raw, err := kv.Read(StorageName)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"q": "hola"`)
}

func TestStartQuiz(t *testing.T) {
	d := newDecks(t, store.NewMemoryStore())
	require.NoError(t, d.Create("Numbers"))

	empty, err := d.StartQuiz("Numbers")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := 0; i < 10; i++ {
		_, err := d.AddCard("Numbers", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		require.NoError(t, err)
	}

	quiz, err := d.StartQuiz("Numbers")
	require.NoError(t, err)
	original, err := d.Cards("Numbers")
	require.NoError(t, err)
	assert.ElementsMatch(t, original, quiz)

	// Shuffling the quiz never reorders the deck.
	again, err := d.Cards("Numbers")
	require.NoError(t, err)
	assert.Equal(t, original, again)

	_, err = d.StartQuiz("Missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMultipleChoiceOptions(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		wantLen int
	}{
		{"only the correct answer", []string{"cat"}, 1},
		{"duplicates collapse", []string{"cat", "dog", "dog", "cat"}, 2},
		{"caps at four", []string{"cat", "dog", "cow", "owl", "bee", "ant"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDecks(t, store.NewMemoryStore())
			require.NoError(t, d.Create("Animals"))
			for i, a := range tt.answers {
				_, err := d.AddCard("Animals", fmt.Sprintf("q%d", i), a)
				require.NoError(t, err)
			}

			for round := 0; round < 20; round++ {
				opts, err := d.MultipleChoiceOptions("Animals", "cat")
				require.NoError(t, err)
				assert.Len(t, opts, tt.wantLen)

				count := 0
				seen := map[string]bool{}
				for _, o := range opts {
					if o == "cat" {
						count++
					}
					assert.False(t, seen[o], "duplicate option %q", o)
					seen[o] = true
				}
				assert.Equal(t, 1, count)
			}
		})
	}

	d := newDecks(t, store.NewMemoryStore())
	_, err := d.MultipleChoiceOptions("Nope", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadCorruptStartsEmpty(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Write(StorageName, []byte(`["not", "a", "map"]`)))
	assert.Empty(t, newDecks(t, kv).Names())
}
