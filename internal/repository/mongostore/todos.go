package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"todo-planner/internal/model"
	"todo-planner/internal/repository"
)

// TodoRepository handles CRUD for todos.
type TodoRepository struct {
	coll *mongo.Collection
}

func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	if todo.ID == "" {
		todo.ID = primitive.NewObjectID().Hex()
	}
	if todo.Priority == "" {
		todo.Priority = model.PriorityNormal
	}
	now := time.Now()
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = now
	}
	todo.UpdatedAt = now

	doc, err := toTodoDoc(todo)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	todos := make([]model.Todo, 0)
	owner, ok := objectID(userID)
	if !ok {
		return todos, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"userId": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	var docs []todoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	for _, doc := range docs {
		todos = append(todos, doc.model())
	}
	return todos, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	filter, ok := ownedFilter(userID, todoID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var doc todoDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find todo: %w", err)
	}
	todo := doc.model()
	return &todo, nil
}

func (r *TodoRepository) Update(ctx context.Context, todo *model.Todo) error {
	filter, ok := ownedFilter(todo.UserID, todo.ID)
	if !ok {
		return repository.ErrNotFound
	}
	todo.UpdatedAt = time.Now()
	doc, err := toTodoDoc(todo)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	update, err := updateDoc(doc, todoOptionalFields)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	filter, ok := ownedFilter(userID, todoID)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func ownedFilter(userID, todoID string) (bson.M, bool) {
	id, ok := objectID(todoID)
	if !ok {
		return nil, false
	}
	owner, ok := objectID(userID)
	if !ok {
		return nil, false
	}
	return bson.M{"_id": id, "userId": owner}, true
}
