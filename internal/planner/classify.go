package planner

import (
	"sort"
	"time"

	"todo-planner/internal/model"
)

// Bucket holds the upcoming todos due on one calendar day.
type Bucket struct {
	DateKey string       `json:"dateKey"`
	Label   string       `json:"label"`
	Todos   []model.Todo `json:"todos"`
}

// Classify returns the todos shown in the given view, sorted by due
// moment. Overdue todos come most recently overdue first; every other
// view is ascending. Unknown filters yield an empty slice.
func Classify(todos []model.Todo, filter Filter, now time.Time) []model.Todo {
	out := make([]model.Todo, 0)
	if !filter.Valid() {
		return out
	}
	for _, todo := range todos {
		if matches(todo, filter, now) {
			out = append(out, todo)
		}
	}
	sortByDue(out, now.Location(), filter == FilterOverdue)
	return out
}

// GroupUpcoming splits the upcoming view by calendar day. It returns
// nil for any other filter.
func GroupUpcoming(todos []model.Todo, filter Filter, now time.Time) []Bucket {
	if filter != FilterUpcoming {
		return nil
	}
	loc := now.Location()
	tomorrow := startOfDay(now).AddDate(0, 0, 1)

	buckets := make([]Bucket, 0)
	index := make(map[string]int)
	days := make(map[string]time.Time)
	for _, todo := range Classify(todos, FilterUpcoming, now) {
		day := startOfDay(todo.DueDate.In(loc))
		key := day.Format(DateLayout)
		i, ok := index[key]
		if !ok {
			label := day.Format(labelLayout)
			if sameDay(day, tomorrow) {
				label = "Tomorrow"
			}
			i = len(buckets)
			index[key] = i
			days[key] = day
			buckets = append(buckets, Bucket{DateKey: key, Label: label})
		}
		buckets[i].Todos = append(buckets[i].Todos, todo)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return days[buckets[i].DateKey].Before(days[buckets[j].DateKey])
	})
	for i := range buckets {
		sortByDue(buckets[i].Todos, loc, false)
	}
	return buckets
}

func matches(todo model.Todo, filter Filter, now time.Time) bool {
	if filter == FilterCompleted {
		return todo.Completed
	}
	if todo.Completed {
		return false
	}
	if level, ok := filter.Priority(); ok {
		return todo.Priority == level
	}

	if !todo.HasDueDate() {
		return filter == FilterNoDate
	}

	loc := now.Location()
	day := startOfDay(todo.DueDate.In(loc))
	due := Combine(day, todo.DueTime, loc)

	switch filter {
	case FilterToday:
		return sameDay(day, now) && (!hasClock(todo.DueTime) || !due.Before(now))
	case FilterUpcoming:
		return !sameDay(day, now) && !day.Before(startOfDay(now))
	case FilterOverdue:
		return due.Before(now)
	}
	return false
}

// sortByDue orders todos by due moment. Undated todos go last in their
// original order.
func sortByDue(todos []model.Todo, loc *time.Location, descending bool) {
	sort.SliceStable(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		switch {
		case !a.HasDueDate() && !b.HasDueDate():
			return false
		case !a.HasDueDate():
			return false
		case !b.HasDueDate():
			return true
		}
		da := Combine(*a.DueDate, a.DueTime, loc)
		db := Combine(*b.DueDate, b.DueTime, loc)
		if descending {
			return da.After(db)
		}
		return da.Before(db)
	})
}
