package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"todo-planner/internal/model"
	"todo-planner/internal/repository"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, ist)
}

type stubTodos struct {
	seq   int
	items map[string]model.Todo
}

func newStubTodos() *stubTodos {
	return &stubTodos{items: make(map[string]model.Todo)}
}

func (s *stubTodos) Create(_ context.Context, todo *model.Todo) error {
	s.seq++
	todo.ID = fmt.Sprintf("todo-%d", s.seq)
	todo.CreatedAt = time.Unix(int64(s.seq), 0)
	s.items[todo.ID] = *todo
	return nil
}

func (s *stubTodos) ListByUser(_ context.Context, userID string) ([]model.Todo, error) {
	var out []model.Todo
	for _, todo := range s.items {
		if todo.UserID == userID {
			out = append(out, todo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *stubTodos) FindByID(_ context.Context, userID, todoID string) (*model.Todo, error) {
	todo, ok := s.items[todoID]
	if !ok || todo.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &todo, nil
}

func (s *stubTodos) Update(_ context.Context, todo *model.Todo) error {
	s.items[todo.ID] = *todo
	return nil
}

func (s *stubTodos) Delete(_ context.Context, userID, todoID string) error {
	todo, ok := s.items[todoID]
	if !ok || todo.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.items, todoID)
	return nil
}

type stubUsers struct {
	seq   int
	items map[string]model.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{items: make(map[string]model.User)}
}

func (s *stubUsers) Create(_ context.Context, user *model.User) error {
	s.seq++
	user.ID = fmt.Sprintf("user-%d", s.seq)
	user.Email = repository.NormalizeEmail(user.Email)
	s.items[user.ID] = *user
	return nil
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	email = repository.NormalizeEmail(email)
	return s.find(func(u model.User) bool { return u.Email == email })
}

func (s *stubUsers) FindByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

func (s *stubUsers) FindByTelegramChatID(_ context.Context, chatID int64) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.TelegramChatID != nil && *u.TelegramChatID == chatID })
}

func (s *stubUsers) Update(_ context.Context, user *model.User) error {
	s.items[user.ID] = *user
	return nil
}

func (s *stubUsers) ListWithTelegram(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range s.items {
		if u.TelegramChatID != nil {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubUsers) find(match func(model.User) bool) (*model.User, error) {
	for _, u := range s.items {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeGoogle struct {
	identity *GoogleIdentity
	err      error
}

func (f fakeGoogle) Verify(context.Context, string) (*GoogleIdentity, error) {
	return f.identity, f.err
}
