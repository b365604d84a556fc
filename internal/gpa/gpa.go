// Package gpa computes grade point averages for the current semester's courses
// and keeps a persisted history of saved results.
package gpa

import (
	"fmt"
	"log/slog"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/store"
)

// HistoryName is the storage name of the GPA history.
const HistoryName = "gpa_history"

// Calculator holds the in-memory course list and the saved GPA history
type Calculator struct {
	kv      store.KV
	courses []domain.Course
	history []domain.GPAResult
	logger  *slog.Logger
}

// New loads the history from kv. Entries that do not decode or fall outside
// [0, 4] are dropped.
func New(kv store.KV, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "gpa"))

	history := store.LoadEach(kv, HistoryName, func(r domain.GPAResult) error {
		return domain.ValidateGPA(r.GPA)
	}, logger)

	return &Calculator{kv: kv, history: history, logger: logger}
}

// AddCourse validates and appends a course.
func (c *Calculator) AddCourse(name string, credits float64, grade string) (domain.Course, error) {
	course, err := domain.NewCourse(name, credits, grade)
	if err != nil {
		return domain.Course{}, err
	}
	c.courses = append(c.courses, course)
	c.logger.Debug("added course", slog.String("name", course.Name))
	return course, nil
}

// UpdateCourse replaces the course at index.
func (c *Calculator) UpdateCourse(index int, name string, credits float64, grade string) (domain.Course, error) {
	if err := c.checkIndex(index); err != nil {
		return domain.Course{}, err
	}
	course, err := domain.NewCourse(name, credits, grade)
	if err != nil {
		return domain.Course{}, err
	}
	c.courses[index] = course
	return course, nil
}

// RemoveCourse deletes and returns the course at index.
func (c *Calculator) RemoveCourse(index int) (domain.Course, error) {
	if err := c.checkIndex(index); err != nil {
		return domain.Course{}, err
	}
	removed := c.courses[index]
	c.courses = append(c.courses[:index], c.courses[index+1:]...)
	return removed, nil
}

func (c *Calculator) checkIndex(index int) error {
	if index < 0 || index >= len(c.courses) {
		return domain.NewIndexNotFound("course", index)
	}
	return nil
}

// Courses returns a copy of the course list.
func (c *Calculator) Courses() []domain.Course {
	return append([]domain.Course(nil), c.courses...)
}

// CourseCount returns the number of courses.
func (c *Calculator) CourseCount() int {
	return len(c.courses)
}

// ClearCourses empties the course list. Courses are never persisted.
func (c *Calculator) ClearCourses() {
	c.courses = nil
}

// Calculate returns the credit-weighted GPA. Every field is rounded to two
// decimals and all are zero without courses.
func (c *Calculator) Calculate() domain.GPASummary {
	var credits, weighted float64
	for _, course := range c.courses {
		credits += course.Credits
		weighted += course.WeightedPoints()
	}
	if credits == 0 {
		return domain.GPASummary{}
	}
	return domain.GPASummary{
		GPA:            domain.Round2(weighted / credits),
		TotalCredits:   domain.Round2(credits),
		WeightedPoints: domain.Round2(weighted),
	}
}

// SaveResult appends gpa, rounded to two decimals, to the history and
// persists it.
func (c *Calculator) SaveResult(gpa float64) error {
	if err := domain.ValidateGPA(gpa); err != nil {
		return err
	}
	next := append(append([]domain.GPAResult(nil), c.history...), domain.GPAResult{GPA: domain.Round2(gpa)})
	if err := store.Save(c.kv, HistoryName, next); err != nil {
		return fmt.Errorf("save gpa result: %w", err)
	}
	c.history = next
	c.logger.Debug("saved gpa result", slog.Float64("gpa", gpa))
	return nil
}

// ClearHistory empties and persists the history.
func (c *Calculator) ClearHistory() error {
	if err := store.Save(c.kv, HistoryName, []domain.GPAResult{}); err != nil {
		return fmt.Errorf("clear gpa history: %w", err)
	}
	c.history = nil
	return nil
}

// History returns a copy of the saved results, oldest first.
func (c *Calculator) History() []domain.GPAResult {
	return append([]domain.GPAResult(nil), c.history...)
}

// Trend returns the saved GPA values, oldest first.
func (c *Calculator) Trend() []float64 {
	out := make([]float64, len(c.history))
	for i, h := range c.history {
		out[i] = h.GPA
	}
	return out
}

// AverageGPA is the mean of the history rounded to two decimals, 0 when empty.
func (c *Calculator) AverageGPA() float64 {
	if len(c.history) == 0 {
		return 0
	}
	var sum float64
	for _, h := range c.history {
		sum += h.GPA
	}
	return domain.Round2(sum / float64(len(c.history)))
}

// HighestGPA is 0 when the history is empty.
func (c *Calculator) HighestGPA() float64 {
	if len(c.history) == 0 {
		return 0
	}
	best := c.history[0].GPA
	for _, h := range c.history[1:] {
		best = max(best, h.GPA)
	}
	return best
}

// LowestGPA is 0 when the history is empty.
func (c *Calculator) LowestGPA() float64 {
	if len(c.history) == 0 {
		return 0
	}
	worst := c.history[0].GPA
	for _, h := range c.history[1:] {
		worst = min(worst, h.GPA)
	}
	return worst
}

// GradeDistribution counts courses per letter grade.
func (c *Calculator) GradeDistribution() map[string]int {
	dist := make(map[string]int)
	for _, course := range c.courses {
		dist[course.Grade]++
	}
	return dist
}

// CreditDistribution sums credits per letter grade.
func (c *Calculator) CreditDistribution() map[string]float64 {
	dist := make(map[string]float64)
	for _, course := range c.courses {
		dist[course.Grade] += course.Credits
	}
	return dist
}
