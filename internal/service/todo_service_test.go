package service

import (
	"context"
	"errors"
	"testing"

	"todo-planner/internal/model"
	"todo-planner/internal/planner"
	"todo-planner/internal/validation"
)

func TestTodoCreate(t *testing.T) {
	ctx := context.Background()
	now := at(2026, 10, 19, 12, 0)
	todos := NewTodoService(newStubTodos())

	tests := []struct {
		name     string
		input    TodoInput
		wantDate string
		adjusted bool
		errPath  string
	}{
		{name: "no due date", input: TodoInput{Title: "Read"}},
		{name: "later today", input: TodoInput{Title: "Call", DueDate: "2026-10-19", DueTime: "18:00"}, wantDate: "2026-10-19"},
		{name: "passed time moved", input: TodoInput{Title: "Gym", DueDate: "2026-10-19", DueTime: "08:00"}, wantDate: "2026-10-20", adjusted: true},
		{name: "all day today", input: TodoInput{Title: "Laundry", DueDate: "2026-10-19"}, wantDate: "2026-10-19"},
		{name: "iso timestamp", input: TodoInput{Title: "Pay", DueDate: "2026-10-25T00:00:00.000Z"}, wantDate: "2026-10-25"},
		{name: "past day", input: TodoInput{Title: "Late", DueDate: "2026-10-18"}, errPath: "dueDate"},
		{name: "bad date", input: TodoInput{Title: "Bad", DueDate: "soon"}, errPath: "dueDate"},
		{name: "bad time", input: TodoInput{Title: "Bad", DueDate: "2026-10-25", DueTime: "25:00"}, errPath: "dueTime"},
		{name: "time without date", input: TodoInput{Title: "Bad", DueTime: "10:00"}, errPath: "dueTime"},
		{name: "blank title", input: TodoInput{Title: "  "}, errPath: "title"},
		{name: "bad priority", input: TodoInput{Title: "x", Priority: "extreme"}, errPath: "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todo, adjusted, err := todos.Create(ctx, "user-1", tt.input, now)
			if tt.errPath != "" {
				var verr *validation.Error
				if !errors.As(err, &verr) || verr.Fields[0].Path != tt.errPath {
					t.Fatalf("expected %s validation error, got %v", tt.errPath, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if adjusted != tt.adjusted {
				t.Fatalf("adjusted = %v, want %v", adjusted, tt.adjusted)
			}
			if todo.Priority != model.PriorityNormal {
				t.Fatalf("priority = %q, want normal", todo.Priority)
			}
			got := ""
			if todo.HasDueDate() {
				got = todo.DueDate.In(ist).Format(planner.DateLayout)
			}
			if got != tt.wantDate {
				t.Fatalf("due date = %q, want %q", got, tt.wantDate)
			}
			if todo.DueTime != tt.input.DueTime {
				t.Fatalf("due time = %q, want %q", todo.DueTime, tt.input.DueTime)
			}
		})
	}
}

func TestTodoDescriptionLimit(t *testing.T) {
	todos := NewTodoService(newStubTodos())
	now := at(2026, 10, 19, 12, 0)
	long := make([]rune, MaxDescriptionLength+1)
	for i := range long {
		long[i] = 'é'
	}
	if _, _, err := todos.Create(context.Background(), "u", TodoInput{Title: "x", Description: string(long[:MaxDescriptionLength])}, now); err != nil {
		t.Fatalf("100 characters rejected: %v", err)
	}
	var verr *validation.Error
	if _, _, err := todos.Create(context.Background(), "u", TodoInput{Title: "x", Description: string(long)}, now); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTodoUpdatePartial(t *testing.T) {
	ctx := context.Background()
	now := at(2026, 10, 19, 12, 0)
	store := newStubTodos()
	todos := NewTodoService(store)

	created, _, err := todos.Create(ctx, "user-1", TodoInput{Title: "Write report", Description: "draft", DueDate: "2026-10-21", DueTime: "09:00", Priority: model.PriorityHigh}, now)
	if err != nil {
		t.Fatal(err)
	}

	updated, adjusted, err := todos.Update(ctx, "user-1", created.ID, TodoPatch{Completed: model.Some(true)}, now)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if adjusted || !updated.Completed || updated.Title != "Write report" || updated.Description != "draft" || updated.Priority != model.PriorityHigh {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}
	if updated.DueTime != "09:00" || updated.DueDate.In(ist).Format(planner.DateLayout) != "2026-10-21" {
		t.Fatalf("due moved: %v %s", updated.DueDate, updated.DueTime)
	}

	cleared, _, err := todos.Update(ctx, "user-1", created.ID, TodoPatch{
		DueDate: model.Optional[string]{Set: true, Null: true},
		DueTime: model.Optional[string]{Set: true, Null: true},
	}, now)
	if err != nil {
		t.Fatalf("clear due: %v", err)
	}
	if cleared.HasDueDate() || cleared.DueTime != "" {
		t.Fatalf("due not cleared: %+v", cleared)
	}
}

func TestTodoUpdateDueChecks(t *testing.T) {
	ctx := context.Background()
	created := at(2026, 10, 17, 9, 0)
	now := at(2026, 10, 19, 12, 0)
	store := newStubTodos()
	todos := NewTodoService(store)

	todo, _, err := todos.Create(ctx, "user-1", TodoInput{Title: "Old", DueDate: "2026-10-18", DueTime: "10:00"}, created)
	if err != nil {
		t.Fatal(err)
	}

	// Resending the stored overdue values is not a change.
	if _, _, err := todos.Update(ctx, "user-1", todo.ID, TodoPatch{Title: model.Some("Old, renamed"), DueDate: model.Some("2026-10-18"), DueTime: model.Some("10:00")}, now); err != nil {
		t.Fatalf("unchanged due rejected: %v", err)
	}

	var verr *validation.Error
	if _, _, err := todos.Update(ctx, "user-1", todo.ID, TodoPatch{DueDate: model.Some("2026-10-17")}, now); !errors.As(err, &verr) {
		t.Fatalf("expected past-date error, got %v", err)
	}

	moved, adjusted, err := todos.Update(ctx, "user-1", todo.ID, TodoPatch{DueDate: model.Some("2026-10-19"), DueTime: model.Some("07:30")}, now)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !adjusted || moved.DueDate.In(ist).Format(planner.DateLayout) != "2026-10-20" || moved.DueTime != "07:30" {
		t.Fatalf("expected move to tomorrow, got %v %s adjusted=%v", moved.DueDate, moved.DueTime, adjusted)
	}
}

func TestTodoUpdateClearDateDropsTime(t *testing.T) {
	ctx := context.Background()
	now := at(2026, 10, 19, 12, 0)
	todos := NewTodoService(newStubTodos())

	todo, _, err := todos.Create(ctx, "user-1", TodoInput{Title: "Call mum", DueDate: "2026-10-21", DueTime: "19:00"}, now)
	if err != nil {
		t.Fatal(err)
	}
	cleared, _, err := todos.Update(ctx, "user-1", todo.ID, TodoPatch{DueDate: model.Optional[string]{Set: true, Null: true}}, now)
	if err != nil {
		t.Fatalf("clear date: %v", err)
	}
	if cleared.HasDueDate() || cleared.DueTime != "" {
		t.Fatalf("expected date and time cleared, got %v %q", cleared.DueDate, cleared.DueTime)
	}

	// A time sent alongside a null date is still rejected.
	todo, _, _ = todos.Create(ctx, "user-1", TodoInput{Title: "Gym", DueDate: "2026-10-21", DueTime: "07:00"}, now)
	var verr *validation.Error
	_, _, err = todos.Update(ctx, "user-1", todo.ID, TodoPatch{DueDate: model.Optional[string]{Set: true, Null: true}, DueTime: model.Some("08:00")}, now)
	if !errors.As(err, &verr) || verr.Fields[0].Path != "dueTime" {
		t.Fatalf("expected dueTime error, got %v", err)
	}
}

func TestTodoScopedToOwner(t *testing.T) {
	ctx := context.Background()
	now := at(2026, 10, 19, 12, 0)
	todos := NewTodoService(newStubTodos())

	todo, _, err := todos.Create(ctx, "owner", TodoInput{Title: "Private"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := todos.Get(ctx, "intruder", todo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, _, err := todos.Update(ctx, "intruder", todo.ID, TodoPatch{Completed: model.Some(true)}, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := todos.Delete(ctx, "intruder", todo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
	if err := todos.Delete(ctx, "owner", todo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := todos.Get(ctx, "owner", todo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted todo still readable: %v", err)
	}
}

func TestTodoListAndGroups(t *testing.T) {
	ctx := context.Background()
	now := at(2026, 10, 19, 12, 0)
	todos := NewTodoService(newStubTodos())

	for _, in := range []TodoInput{
		{Title: "today", DueDate: "2026-10-19", DueTime: "18:00"},
		{Title: "tomorrow", DueDate: "2026-10-20"},
		{Title: "later", DueDate: "2026-10-22", Priority: model.PriorityUrgent},
		{Title: "someday"},
	} {
		if _, _, err := todos.Create(ctx, "u", in, now); err != nil {
			t.Fatal(err)
		}
	}

	all, err := todos.List(ctx, "u", "", now)
	if err != nil || len(all) != 4 {
		t.Fatalf("list all: %d %v", len(all), err)
	}
	if empty, _ := todos.List(ctx, "nobody", "", now); empty == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if unknown, _ := todos.List(ctx, "u", "someday-soon", now); unknown == nil || len(unknown) != 0 {
		t.Fatalf("unknown filter = %v", unknown)
	}
	urgent, _ := todos.List(ctx, "u", string(planner.FilterPriorityUrgent), now)
	if len(urgent) != 1 || urgent[0].Title != "later" {
		t.Fatalf("urgent = %+v", urgent)
	}

	groups, err := todos.Groups(ctx, "u", "upcoming", now)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 || groups[0].Label != "Tomorrow" || groups[1].DateKey != "2026-10-22" {
		t.Fatalf("groups = %+v", groups)
	}
	if none, _ := todos.Groups(ctx, "u", "today", now); none != nil {
		t.Fatalf("expected nil groups for today, got %+v", none)
	}
}

func TestTodoCheckDue(t *testing.T) {
	now := at(2026, 10, 19, 12, 0)
	todos := NewTodoService(newStubTodos())

	adj, err := todos.CheckDue("2026-10-19", "09:15", now)
	if err != nil || !adj.WasAdjusted || adj.Date.Format(planner.DateLayout) != "2026-10-20" {
		t.Fatalf("check due = %+v, %v", adj, err)
	}
	allDay, err := todos.CheckDue("2026-10-19", "", now)
	if err != nil || allDay.WasAdjusted || allDay.Date.Format(planner.DateLayout) != "2026-10-19" {
		t.Fatalf("all-day check = %+v, %v", allDay, err)
	}
	var verr *validation.Error
	if _, err := todos.CheckDue("2026-10-01", "", now); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
