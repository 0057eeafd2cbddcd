package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"todo-planner/internal/model"
	"todo-planner/internal/planner"
)

// ReminderService builds human-readable summaries for Telegram messages.
type ReminderService struct {
	todos TodoRepository
}

func NewReminderService(todos TodoRepository) *ReminderService {
	return &ReminderService{todos: todos}
}

// DailyDigest renders the morning message: overdue todos first, then
// today's. A todo due today without a time is listed under today only.
func (s *ReminderService) DailyDigest(ctx context.Context, user model.User, now time.Time) (string, error) {
	todos, err := s.todos.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	today := planner.Classify(todos, planner.FilterToday, now)
	seen := make(map[string]bool, len(today))
	for _, todo := range today {
		seen[todo.ID] = true
	}
	var overdue []model.Todo
	for _, todo := range planner.Classify(todos, planner.FilterOverdue, now) {
		if !seen[todo.ID] {
			overdue = append(overdue, todo)
		}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("Monday, January 2, 2006")))

	builder.WriteString("⚠️ <b>Overdue</b>\n")
	writeTodos(&builder, overdue, now, "— nothing overdue\n")

	builder.WriteString("\n🔥 <b>Today</b>\n")
	writeTodos(&builder, today, now, "— nothing due today\n")

	return strings.TrimSpace(builder.String()), nil
}

// View renders one classifier view as a message. The upcoming view is
// split by day.
func (s *ReminderService) View(ctx context.Context, userID string, filter planner.Filter, now time.Time) (string, error) {
	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("<b>%s</b>\n", viewTitle(filter)))

	if filter == planner.FilterUpcoming {
		buckets := planner.GroupUpcoming(todos, filter, now)
		if len(buckets) == 0 {
			builder.WriteString("— nothing here\n")
		}
		for _, bucket := range buckets {
			builder.WriteString(fmt.Sprintf("\n📆 <i>%s</i>\n", html.EscapeString(bucket.Label)))
			writeTodos(&builder, bucket.Todos, now, "")
		}
		return strings.TrimSpace(builder.String()), nil
	}

	writeTodos(&builder, planner.Classify(todos, filter, now), now, "— nothing here\n")
	return strings.TrimSpace(builder.String()), nil
}

func viewTitle(filter planner.Filter) string {
	switch filter {
	case planner.FilterToday:
		return "Today"
	case planner.FilterUpcoming:
		return "Upcoming"
	case planner.FilterOverdue:
		return "Overdue"
	case planner.FilterNoDate:
		return "No date"
	case planner.FilterCompleted:
		return "Completed"
	}
	if level, ok := filter.Priority(); ok {
		return "Priority: " + string(level)
	}
	return string(filter)
}

func writeTodos(sb *strings.Builder, todos []model.Todo, now time.Time, empty string) {
	if len(todos) == 0 {
		sb.WriteString(empty)
		return
	}
	for _, todo := range todos {
		sb.WriteString(formatTodo(todo, now))
	}
}

func formatTodo(todo model.Todo, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	switch todo.Priority {
	case model.PriorityHigh:
		icon = "🟠"
	case model.PriorityUrgent:
		icon = "🔴"
	case model.PriorityLow:
		icon = "⚪"
	}
	if todo.Completed {
		icon = "✅"
	}

	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(todo.Title))))

	if todo.HasDueDate() {
		d := todo.DueDate.In(now.Location()).Format(planner.DateLayout)
		if todo.DueTime != "" {
			d += " " + todo.DueTime
		}
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s", d))
	}

	if desc := strings.TrimSpace(todo.Description); desc != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(desc)))
	}

	sb.WriteByte('\n')
	return sb.String()
}
