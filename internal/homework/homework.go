// Package homework tracks assignments with due dates, statuses and priorities.
package homework

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/store"
)

// StorageName is the storage name of the homework list.
const StorageName = "homework"

// Planner owns the persisted homework list
type Planner struct {
	kv     store.KV
	items  []domain.HomeworkItem
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock sets the source of "today" for overdue checks.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New loads the homework list from kv, skipping records that do not
// decode or fail validation.
func New(kv store.KV, logger *slog.Logger, opts ...Option) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Planner{
		kv:     kv,
		now:    time.Now,
		logger: logger.With(slog.String("component", "homework")),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.items = store.LoadEach(kv, StorageName, domain.HomeworkItem.Validate, p.logger)
	return p
}

// save persists items and adopts them as the current list only on success.
func (p *Planner) save(items []domain.HomeworkItem) error {
	if items == nil {
		items = []domain.HomeworkItem{}
	}
	if err := store.Save(p.kv, StorageName, items); err != nil {
		return fmt.Errorf("save homework: %w", err)
	}
	p.items = items
	return nil
}

func (p *Planner) checkIndex(index int) error {
	if index < 0 || index >= len(p.items) {
		return domain.NewIndexNotFound("homework", index)
	}
	return nil
}

// Add validates and appends a new item with status Pending. An empty priority
// defaults to Medium.
func (p *Planner) Add(subject, title, due, details string, priority domain.Priority) (domain.HomeworkItem, error) {
	item, err := domain.NewHomeworkItem(subject, title, due, details, domain.StatusPending, priority)
	if err != nil {
		return domain.HomeworkItem{}, err
	}
	if err := p.save(append(slices.Clone(p.items), item)); err != nil {
		return domain.HomeworkItem{}, err
	}
	p.logger.Debug("added homework", slog.String("title", item.Title))
	return item, nil
}

// Update applies u to the item at index. The stored item is left untouched
// when the result fails validation.
func (p *Planner) Update(index int, u domain.HomeworkUpdate) (domain.HomeworkItem, error) {
	if err := p.checkIndex(index); err != nil {
		return domain.HomeworkItem{}, err
	}
	updated := u.Apply(p.items[index])
	if err := updated.Validate(); err != nil {
		return domain.HomeworkItem{}, err
	}

	items := slices.Clone(p.items)
	items[index] = updated
	if err := p.save(items); err != nil {
		return domain.HomeworkItem{}, err
	}
	return updated, nil
}

// Remove deletes and returns the item at index.
func (p *Planner) Remove(index int) (domain.HomeworkItem, error) {
	if err := p.checkIndex(index); err != nil {
		return domain.HomeworkItem{}, err
	}
	removed := p.items[index]
	if err := p.save(slices.Delete(slices.Clone(p.items), index, index+1)); err != nil {
		return domain.HomeworkItem{}, err
	}
	return removed, nil
}

// MarkComplete sets the item at index to Completed.
func (p *Planner) MarkComplete(index int) (domain.HomeworkItem, error) {
	status := domain.StatusCompleted
	return p.Update(index, domain.HomeworkUpdate{Status: &status})
}

// Items returns a copy of all items.
func (p *Planner) Items() []domain.HomeworkItem {
	return slices.Clone(p.items)
}

// FilterByStatus returns the items with the given status, or all items when
// status is nil.
func (p *Planner) FilterByStatus(status *domain.Status) ([]domain.HomeworkItem, error) {
	if status == nil {
		return p.Items(), nil
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("must be one of %v", domain.Statuses))
	}
	var out []domain.HomeworkItem
	for _, item := range p.items {
		if item.Status == *status {
			out = append(out, item)
		}
	}
	return out, nil
}

// Overdue returns the items due before today that are not completed.
func (p *Planner) Overdue() []domain.HomeworkItem {
	today := p.now()
	var out []domain.HomeworkItem
	for _, item := range p.items {
		if item.IsOverdue(today) {
			out = append(out, item)
		}
	}
	return out
}

// PriorityDistribution counts items per priority.
func (p *Planner) PriorityDistribution() map[domain.Priority]int {
	dist := make(map[domain.Priority]int)
	for _, item := range p.items {
		dist[item.Priority]++
	}
	return dist
}

// ByPriority returns the items ordered by priority weight, highest first, then
// by due date. Items without a parsable due date sort last within a priority.
func (p *Planner) ByPriority() []domain.HomeworkItem {
	out := slices.Clone(p.items)
	slices.SortStableFunc(out, func(a, b domain.HomeworkItem) int {
		if c := cmp.Compare(b.Priority.Weight(), a.Priority.Weight()); c != 0 {
			return c
		}
		da, okA := a.DueDate()
		db, okB := b.DueDate()
		switch {
		case okA && okB:
			return da.Compare(db)
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
	return out
}
