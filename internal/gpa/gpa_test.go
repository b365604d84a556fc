package gpa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/store"
)

type failingKV struct{ store.KV }

func (failingKV) Write(string, []byte) error { return errors.New("disk full") }

func TestCalculate(t *testing.T) {
	c := New(store.NewMemoryStore(), nil)
	assert.Equal(t, domain.GPASummary{}, c.Calculate())

	_, err := c.AddCourse("Math", 4, "A")
	require.NoError(t, err)
	_, err = c.AddCourse("History", 3, "B+")
	require.NoError(t, err)
	_, err = c.AddCourse("Art", 2, "c")
	require.NoError(t, err)

	got := c.Calculate()
	// (16 + 9.99 + 4) / 9
	assert.Equal(t, 3.33, got.GPA)
	assert.Equal(t, 9.0, got.TotalCredits)
	assert.Equal(t, 29.99, got.WeightedPoints)
}

func TestAddCourseRejectsBadCredits(t *testing.T) {
	c := New(store.NewMemoryStore(), nil)
	for _, credits := range []float64{0, 1, 5, 2.5} {
		_, err := c.AddCourse("Math", credits, "A")
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Zero(t, c.CourseCount())
}

func TestUpdateAndRemoveCourse(t *testing.T) {
	c := New(store.NewMemoryStore(), nil)
	_, err := c.AddCourse("Math", 4, "A")
	require.NoError(t, err)
	_, err = c.AddCourse("Bio", 3, "B")
	require.NoError(t, err)

	updated, err := c.UpdateCourse(1, "Biology", 4, "a-")
	require.NoError(t, err)
	assert.Equal(t, domain.Course{Name: "Biology", Credits: 4, Grade: "A-"}, updated)

	_, err = c.UpdateCourse(1, "Biology", 7, "A")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Biology", c.Courses()[1].Name)

	_, err = c.UpdateCourse(2, "X", 3, "A")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.RemoveCourse(-1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	removed, err := c.RemoveCourse(0)
	require.NoError(t, err)
	assert.Equal(t, "Math", removed.Name)
	assert.Equal(t, 1, c.CourseCount())

	c.ClearCourses()
	assert.Empty(t, c.Courses())
}

func TestHistoryPersists(t *testing.T) {
	kv := store.NewMemoryStore()
	c := New(kv, nil)

	require.NoError(t, c.SaveResult(3.456))
	require.NoError(t, c.SaveResult(2.5))
	assert.ErrorIs(t, c.SaveResult(4.2), domain.ErrValidation)
	assert.ErrorIs(t, c.SaveResult(-1), domain.ErrValidation)

	reloaded := New(kv, nil)
	assert.Equal(t, []float64{3.46, 2.5}, reloaded.Trend())
	assert.Equal(t, 2.98, reloaded.AverageGPA())
	assert.Equal(t, 3.46, reloaded.HighestGPA())
	assert.Equal(t, 2.5, reloaded.LowestGPA())

	require.NoError(t, reloaded.ClearHistory())
	assert.Empty(t, New(kv, nil).History())
}

func TestHistoryAggregatesEmpty(t *testing.T) {
	c := New(store.NewMemoryStore(), nil)
	assert.Zero(t, c.AverageGPA())
	assert.Zero(t, c.HighestGPA())
	assert.Zero(t, c.LowestGPA())
	assert.Empty(t, c.Trend())
}

func TestLoadSkipsInvalidEntries(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Write(HistoryName, []byte(`[{"gpa": 3.1}, {"gpa": 9}, {"gpa": "x"}, "junk", {"gpa": 2}]`)))

	c := New(kv, nil)
	assert.Equal(t, []float64{3.1, 2}, c.Trend())

	// Saving after a partial load keeps the surviving entries.
	require.NoError(t, c.SaveResult(3.5))
	assert.Equal(t, []float64{3.1, 2, 3.5}, New(kv, nil).Trend())
}

func TestSaveResultFailureKeepsHistory(t *testing.T) {
	c := New(failingKV{store.NewMemoryStore()}, nil)
	err := c.SaveResult(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save gpa result")
	assert.Empty(t, c.History())
}

func TestDistributions(t *testing.T) {
	c := New(store.NewMemoryStore(), nil)
	for _, in := range []struct {
		name    string
		credits float64
		grade   string
	}{
		{"Math", 4, "A"},
		{"Physics", 3, "A"},
		{"Art", 2, "B"},
	} {
		_, err := c.AddCourse(in.name, in.credits, in.grade)
		require.NoError(t, err)
	}

	assert.Equal(t, map[string]int{"A": 2, "B": 1}, c.GradeDistribution())
	assert.Equal(t, map[string]float64{"A": 7, "B": 2}, c.CreditDistribution())
}
