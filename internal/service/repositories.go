package service

import (
	"context"

	"todo-planner/internal/model"
)

// TodoRepository is implemented by the SQL and MongoDB stores.
type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) error
	ListByUser(ctx context.Context, userID string) ([]model.Todo, error)
	FindByID(ctx context.Context, userID, todoID string) (*model.Todo, error)
	Update(ctx context.Context, todo *model.Todo) error
	Delete(ctx context.Context, userID, todoID string) error
}

// UserRepository is implemented by the SQL and MongoDB stores.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	FindByTelegramChatID(ctx context.Context, chatID int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListWithTelegram(ctx context.Context) ([]model.User, error)
}
