package domain

import (
	"strings"
	"time"
)

// Status is the progress state of a homework item.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority ranks homework items.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists every valid priority, highest first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Weight is 3 for High, 2 for Medium, 1 for Low and 0 otherwise.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// DateLayout is the due date format.
const DateLayout = "2006-01-02"

// HomeworkItem is a single tracked assignment
type HomeworkItem struct {
	Subject  string   `json:"subject" validate:"required"`
	Title    string   `json:"title" validate:"required,notnumeric"`
	Due      string   `json:"due" validate:"required,datetime=2006-01-02"`
	Status   Status   `json:"status" validate:"required,oneof=Pending 'In Progress' Completed"`
	Details  string   `json:"details"`
	Priority Priority `json:"priority" validate:"required,oneof=High Medium Low"`
}

// NewHomeworkItem trims the text fields, applies the Pending/Medium defaults
// and validates the result.
func NewHomeworkItem(subject, title, due, details string, status Status, priority Priority) (HomeworkItem, error) {
	item := HomeworkItem{
		Subject:  strings.TrimSpace(subject),
		Title:    strings.TrimSpace(title),
		Due:      strings.TrimSpace(due),
		Status:   status,
		Details:  strings.TrimSpace(details),
		Priority: priority,
	}
	if item.Status == "" {
		item.Status = StatusPending
	}
	if item.Priority == "" {
		item.Priority = PriorityMedium
	}
	if err := item.Validate(); err != nil {
		return HomeworkItem{}, err
	}
	return item, nil
}

// Validate checks every field of the item.
func (h HomeworkItem) Validate() error {
	return validateStruct(h)
}

// DueDate parses Due. ok is false when Due is empty or malformed.
func (h HomeworkItem) DueDate() (time.Time, bool) {
	if h.Due == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, h.Due)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsOverdue reports whether the item is due strictly before today's date and
// not completed.
func (h HomeworkItem) IsOverdue(today time.Time) bool {
	if h.Status == StatusCompleted {
		return false
	}
	due, ok := h.DueDate()
	if !ok {
		return false
	}
	y, m, d := today.Date()
	return due.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// HomeworkUpdate carries the fields to change; nil fields are left as is.
type HomeworkUpdate struct {
	Subject  *string
	Title    *string
	Due      *string
	Status   *Status
	Details  *string
	Priority *Priority
}

// Apply returns a copy of h with the update applied and text fields trimmed.
func (u HomeworkUpdate) Apply(h HomeworkItem) HomeworkItem {
	if u.Subject != nil {
		h.Subject = strings.TrimSpace(*u.Subject)
	}
	if u.Title != nil {
		h.Title = strings.TrimSpace(*u.Title)
	}
	if u.Due != nil {
		h.Due = strings.TrimSpace(*u.Due)
	}
	if u.Status != nil {
		h.Status = *u.Status
	}
	if u.Details != nil {
		h.Details = strings.TrimSpace(*u.Details)
	}
	if u.Priority != nil {
		h.Priority = *u.Priority
	}
	return h
}
