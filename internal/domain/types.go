package domain

import (
	"fmt"
	"math"
	"strings"
)

// gradeTable lists letter grades from best to worst with their grade points.
var gradeTable = []struct {
	Letter string
	Points float64
}{
	{"A", 4.00},
	{"A-", 3.67},
	{"B+", 3.33},
	{"B", 3.00},
	{"B-", 2.67},
	{"C+", 2.33},
	{"C", 2.00},
	{"C-", 1.67},
	{"D", 1.00},
	{"F", 0.00},
}

// ValidCredits are the credit weights a course may carry.
var ValidCredits = []float64{2, 3, 4}

// Grades returns the known letter grades, best first.
func Grades() []string {
	out := make([]string, len(gradeTable))
	for i, g := range gradeTable {
		out[i] = g.Letter
	}
	return out
}

// GradePoints returns the points for a letter grade.
func GradePoints(letter string) (float64, bool) {
	for _, g := range gradeTable {
		if g.Letter == letter {
			return g.Points, true
		}
	}
	return 0, false
}

// Course is one entry of the current semester's working set
type Course struct {
	Name    string  `json:"name"`
	Credits float64 `json:"credits"`
	Grade   string  `json:"grade"`
}

// NewCourse trims the name, upper-cases the grade and validates all fields.
func NewCourse(name string, credits float64, grade string) (Course, error) {
	c := Course{
		Name:    strings.TrimSpace(name),
		Credits: credits,
		Grade:   strings.ToUpper(strings.TrimSpace(grade)),
	}
	if err := c.Validate(); err != nil {
		return Course{}, err
	}
	return c, nil
}

// Validate checks name, credits and grade.
func (c Course) Validate() error {
	if c.Name == "" {
		return NewValidationError("name", "is required")
	}
	if !validCredit(c.Credits) {
		return NewValidationError("credits", fmt.Sprintf("must be one of %v", ValidCredits))
	}
	if _, ok := GradePoints(c.Grade); !ok {
		return NewValidationError("grade", fmt.Sprintf("must be one of %v", Grades()))
	}
	return nil
}

// GradePoints returns the points of the course's grade.
func (c Course) GradePoints() float64 {
	p, _ := GradePoints(c.Grade)
	return p
}

// WeightedPoints is credits x grade points.
func (c Course) WeightedPoints() float64 {
	return c.Credits * c.GradePoints()
}

func validCredit(v float64) bool {
	for _, c := range ValidCredits {
		if v == c {
			return true
		}
	}
	return false
}

// GPAResult is one saved entry of the GPA history
type GPAResult struct {
	GPA float64 `json:"gpa"`
}

// GPASummary is the output of a GPA calculation.
type GPASummary struct {
	GPA            float64 `json:"gpa"`
	TotalCredits   float64 `json:"total_credits"`
	WeightedPoints float64 `json:"weighted_points"`
}

// ValidateGPA checks that gpa is a finite value in [0, 4].
func ValidateGPA(gpa float64) error {
	if math.IsNaN(gpa) || gpa < 0 || gpa > 4 {
		return NewValidationError("gpa", "must be between 0.0 and 4.0")
	}
	return nil
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DeckCard is a question/answer pair inside a named deck
type DeckCard struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}
