package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"todo-planner/internal/model"
	"todo-planner/internal/repository"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	user.Email = repository.NormalizeEmail(user.Email)
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	doc, err := toUserDoc(user)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": repository.NormalizeEmail(email)})
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"googleId": googleID})
}

func (r *UserRepository) FindByTelegramChatID(ctx context.Context, chatID int64) (*model.User, error) {
	return r.findOne(ctx, bson.M{"telegramChatId": chatID})
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	oid, ok := objectID(user.ID)
	if !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	doc, err := toUserDoc(user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	update, err := updateDoc(doc, userOptionalFields)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListWithTelegram(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{"telegramChatId": bson.M{"$exists": true, "$ne": nil}})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.model())
	}
	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user := doc.model()
	return &user, nil
}
