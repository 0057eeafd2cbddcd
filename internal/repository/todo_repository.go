package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todo-planner/internal/model"
)

// TodoRepository handles CRUD for todos.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	var todos []model.Todo
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	var todo model.Todo
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, todoID).First(&todo).Error; err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

// Update saves every field of an existing todo.
func (r *TodoRepository) Update(ctx context.Context, todo *model.Todo) error {
	if err := r.db.WithContext(ctx).Save(todo).Error; err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

// Delete removes a todo owned by the given user.
func (r *TodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, todoID).Delete(&model.Todo{})
	if res.Error != nil {
		return fmt.Errorf("delete todo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
