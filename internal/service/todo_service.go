package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"todo-planner/internal/model"
	"todo-planner/internal/planner"
	"todo-planner/internal/validation"
)

// MaxDescriptionLength caps a todo's description, in characters.
const MaxDescriptionLength = 100

// TodoInput represents data required to create a todo.
type TodoInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     string         `json:"dueDate"`
	DueTime     string         `json:"dueTime"`
	Priority    model.Priority `json:"priority"`
}

// TodoPatch is a partial update; only set fields change.
type TodoPatch struct {
	Title       model.Optional[string]         `json:"title"`
	Description model.Optional[string]         `json:"description"`
	DueDate     model.Optional[string]         `json:"dueDate"`
	DueTime     model.Optional[string]         `json:"dueTime"`
	Priority    model.Optional[model.Priority] `json:"priority"`
	Completed   model.Optional[bool]           `json:"completed"`
}

// TodoService wraps todo-related business logic.
type TodoService struct {
	todos TodoRepository
}

func NewTodoService(todos TodoRepository) *TodoService {
	return &TodoService{todos: todos}
}

// List returns every todo of the user, or only those in the given view
// when filter is non-empty.
func (s *TodoService) List(ctx context.Context, userID, filter string, now time.Time) ([]model.Todo, error) {
	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		if todos == nil {
			todos = make([]model.Todo, 0)
		}
		return todos, nil
	}
	return planner.Classify(todos, planner.Filter(filter), now), nil
}

// Groups returns the upcoming view split by day, or nil for any other filter.
func (s *TodoService) Groups(ctx context.Context, userID, filter string, now time.Time) ([]planner.Bucket, error) {
	if planner.Filter(filter) != planner.FilterUpcoming {
		return nil, nil
	}
	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return planner.GroupUpcoming(todos, planner.FilterUpcoming, now), nil
}

func (s *TodoService) Get(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	return s.todos.FindByID(ctx, userID, todoID)
}

// Create stores a new todo. The returned flag reports that a due time
// already passed today was moved to tomorrow.
func (s *TodoService) Create(ctx context.Context, userID string, input TodoInput, now time.Time) (*model.Todo, bool, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, false, validation.Fail("title", "Title is required")
	}
	if err := checkDescription(input.Description); err != nil {
		return nil, false, err
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.Valid() {
		return nil, false, validation.Fail("priority", "Priority must be low, normal, high, or urgent")
	}

	due, clock, adjusted, err := resolveDue(input.DueDate, input.DueTime, now)
	if err != nil {
		return nil, false, err
	}

	todo := model.Todo{
		UserID:      userID,
		Title:       title,
		Description: input.Description,
		DueDate:     due,
		DueTime:     clock,
		Priority:    priority,
	}
	if err := s.todos.Create(ctx, &todo); err != nil {
		return nil, false, err
	}
	return &todo, adjusted, nil
}

// Update applies a patch. A due date or time that differs from the stored
// one is checked like a new one; resending the stored values is allowed
// even when they are already overdue.
func (s *TodoService) Update(ctx context.Context, userID, todoID string, patch TodoPatch, now time.Time) (*model.Todo, bool, error) {
	todo, err := s.todos.FindByID(ctx, userID, todoID)
	if err != nil {
		return nil, false, err
	}

	if patch.Title.Set {
		title := strings.TrimSpace(patch.Title.Value)
		if title == "" {
			return nil, false, validation.Fail("title", "Title is required")
		}
		todo.Title = title
	}
	if patch.Description.Set {
		if err := checkDescription(patch.Description.Value); err != nil {
			return nil, false, err
		}
		todo.Description = patch.Description.Value
	}
	if patch.Priority.Set && !patch.Priority.Null {
		if !patch.Priority.Value.Valid() {
			return nil, false, validation.Fail("priority", "Priority must be low, normal, high, or urgent")
		}
		todo.Priority = patch.Priority.Value
	}
	if patch.Completed.Set && !patch.Completed.Null {
		todo.Completed = patch.Completed.Value
	}

	var adjusted bool
	if patch.DueDate.Set || patch.DueTime.Set {
		loc := now.Location()
		rawDate := ""
		if todo.HasDueDate() {
			rawDate = todo.DueDate.In(loc).Format(planner.DateLayout)
		}
		if patch.DueDate.Set {
			rawDate = patch.DueDate.Value
		}
		clock := todo.DueTime
		if patch.DueTime.Set {
			clock = patch.DueTime.Value
		} else if strings.TrimSpace(rawDate) == "" {
			// Clearing the date clears the time that hung off it.
			clock = ""
		}

		if !sameDue(todo, rawDate, clock, loc) {
			due, newClock, moved, err := resolveDue(rawDate, clock, now)
			if err != nil {
				return nil, false, err
			}
			todo.DueDate, todo.DueTime, adjusted = due, newClock, moved
		}
	}

	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, false, err
	}
	return todo, adjusted, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, todoID string) error {
	return s.todos.Delete(ctx, userID, todoID)
}

// CheckDue reports whether a due date and time can be submitted as-is.
func (s *TodoService) CheckDue(rawDate, clock string, now time.Time) (planner.Adjustment, error) {
	date, err := parseDue(rawDate, clock, now.Location())
	if err != nil {
		return planner.Adjustment{}, err
	}
	adj, err := planner.CheckDue(date, clock, now)
	if errors.Is(err, planner.ErrDueDateInPast) {
		return planner.Adjustment{}, validation.Fail("dueDate", "Cannot set a due date in the past")
	}
	return adj, err
}

func resolveDue(rawDate, clock string, now time.Time) (*time.Time, string, bool, error) {
	rawDate, clock = strings.TrimSpace(rawDate), strings.TrimSpace(clock)
	if rawDate == "" {
		if clock != "" {
			return nil, "", false, validation.Fail("dueTime", "Due time requires a due date")
		}
		return nil, "", false, nil
	}
	date, err := parseDue(rawDate, clock, now.Location())
	if err != nil {
		return nil, "", false, err
	}
	adj, err := planner.CheckDue(date, clock, now)
	if errors.Is(err, planner.ErrDueDateInPast) {
		return nil, "", false, validation.Fail("dueDate", "Cannot set a due date in the past")
	}
	if err != nil {
		return nil, "", false, err
	}
	day := adj.Date
	return &day, adj.Time, adj.WasAdjusted, nil
}

func parseDue(rawDate, clock string, loc *time.Location) (time.Time, error) {
	date, err := planner.ParseDueDate(rawDate, loc)
	if err != nil {
		return time.Time{}, validation.Fail("dueDate", "Invalid date format")
	}
	if clock != "" {
		if _, _, err := planner.ParseClock(clock); err != nil {
			return time.Time{}, validation.Fail("dueTime", "Due time must be HH:MM")
		}
	}
	return date, nil
}

func sameDue(todo *model.Todo, rawDate, clock string, loc *time.Location) bool {
	rawDate = strings.TrimSpace(rawDate)
	if !todo.HasDueDate() || rawDate == "" {
		return !todo.HasDueDate() && rawDate == "" && clock == todo.DueTime
	}
	date, err := planner.ParseDueDate(rawDate, loc)
	if err != nil {
		return false
	}
	return date.Equal(todo.DueDate.In(loc)) && strings.TrimSpace(clock) == todo.DueTime
}

func checkDescription(desc string) error {
	if n := utf8.RuneCountInString(desc); n > MaxDescriptionLength {
		return validation.Fail("description", "Description cannot exceed 100 characters")
	}
	return nil
}
