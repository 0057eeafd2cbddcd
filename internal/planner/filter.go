package planner

import (
	"strings"

	"todo-planner/internal/model"
)

// Filter names one of the todo views.
type Filter string

const (
	FilterToday          Filter = "today"
	FilterUpcoming       Filter = "upcoming"
	FilterOverdue        Filter = "overdue"
	FilterNoDate         Filter = "no-date"
	FilterCompleted      Filter = "completed"
	FilterPriorityLow    Filter = "priority-low"
	FilterPriorityNormal Filter = "priority-normal"
	FilterPriorityHigh   Filter = "priority-high"
	FilterPriorityUrgent Filter = "priority-urgent"
)

const priorityPrefix = "priority-"

// Filters lists every known view in sidebar order.
var Filters = []Filter{
	FilterToday,
	FilterUpcoming,
	FilterOverdue,
	FilterNoDate,
	FilterCompleted,
	FilterPriorityLow,
	FilterPriorityNormal,
	FilterPriorityHigh,
	FilterPriorityUrgent,
}

// Valid reports whether f is a known view.
func (f Filter) Valid() bool {
	for _, known := range Filters {
		if f == known {
			return true
		}
	}
	return false
}

// Priority returns the level of a priority-* filter.
func (f Filter) Priority() (model.Priority, bool) {
	level, ok := strings.CutPrefix(string(f), priorityPrefix)
	if !ok {
		return "", false
	}
	p := model.Priority(level)
	return p, p.Valid()
}
