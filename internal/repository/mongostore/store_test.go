package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"todo-planner/internal/model"
	"todo-planner/internal/repository"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("TODO_PLANNER_MONGO_URI")
	if uri == "" {
		t.Skip("TODO_PLANNER_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := fmt.Sprintf("todo_planner_test_%d", time.Now().UnixNano())
	s, err := Open(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.db.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestIsMongoURL(t *testing.T) {
	cases := map[string]bool{
		"mongodb://localhost:27017":       true,
		"mongodb+srv://cluster.example":   true,
		"todo_planner.db":                 false,
		"file:data/todos.db?cache=shared": false,
	}
	for dsn, want := range cases {
		if got := IsMongoURL(dsn); got != want {
			t.Errorf("IsMongoURL(%q) = %v, want %v", dsn, got, want)
		}
	}
}

func TestTodoRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	todos := s.Todos()

	owner := primitive.NewObjectID().Hex()
	stranger := primitive.NewObjectID().Hex()
	due := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	td := &model.Todo{UserID: owner, Title: "call", DueDate: &due, DueTime: "10:00"}
	if err := todos.Create(ctx, td); err != nil {
		t.Fatal(err)
	}
	if len(td.ID) != 24 {
		t.Fatalf("expected object id hex, got %q", td.ID)
	}

	oid, _ := primitive.ObjectIDFromHex(td.ID)
	ownerID, _ := primitive.ObjectIDFromHex(owner)
	var raw bson.M
	if err := todos.coll.FindOne(ctx, bson.M{"_id": oid, "userId": ownerID}).Decode(&raw); err != nil {
		t.Fatalf("expected ObjectId keys in stored document: %v", err)
	}

	got, err := todos.FindByID(ctx, owner, td.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Priority != model.PriorityNormal || !got.DueDate.Equal(due) {
		t.Fatalf("unexpected todo %+v", got)
	}
	if _, err := todos.FindByID(ctx, stranger, td.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got.Completed = true
	got.DueDate = nil
	got.DueTime = ""
	if err := todos.Update(ctx, got); err != nil {
		t.Fatal(err)
	}
	if err := todos.coll.FindOne(ctx, bson.M{"_id": oid, "dueTime": bson.M{"$exists": true}}).Err(); err == nil {
		t.Fatal("expected cleared dueTime to be unset")
	}
	list, err := todos.ListByUser(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || !list[0].Completed || list[0].HasDueDate() {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := todos.Delete(ctx, owner, td.ID); err != nil {
		t.Fatal(err)
	}
	if err := todos.Delete(ctx, owner, td.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUserLookups(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	users := s.Users()

	chat := int64(77)
	u := &model.User{Name: "Lin", Email: "LIN@example.com", TelegramChatID: &chat}
	if err := users.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if got, err := users.FindByEmail(ctx, "lin@example.com"); err != nil || got.ID != u.ID {
		t.Fatalf("find by email: %v", err)
	}
	if got, err := users.FindByTelegramChatID(ctx, chat); err != nil || got.ID != u.ID {
		t.Fatalf("find by chat: %v", err)
	}
	if err := users.Create(ctx, &model.User{Name: "Dup", Email: "lin@example.com"}); err == nil {
		t.Fatal("expected duplicate email error")
	}
	linked, err := users.ListWithTelegram(ctx)
	if err != nil || len(linked) != 1 {
		t.Fatalf("list with telegram: %v %+v", err, linked)
	}
}

func TestUserUpdateKeepsForeignFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	users := s.Users()

	u := &model.User{Name: "Ana", Email: "ana@example.com", Bio: "hi"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	oid, _ := primitive.ObjectIDFromHex(u.ID)
	todoID := primitive.NewObjectID()
	if _, err := users.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"todos": bson.A{todoID}}}); err != nil {
		t.Fatal(err)
	}

	u.Bio = ""
	u.Name = "Ana B"
	if err := users.Update(ctx, u); err != nil {
		t.Fatal(err)
	}
	var raw bson.M
	if err := users.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["todos"]; !ok {
		t.Fatalf("todos array dropped: %+v", raw)
	}
	if _, ok := raw["bio"]; ok {
		t.Fatalf("expected bio unset: %+v", raw)
	}
	if raw["name"] != "Ana B" {
		t.Fatalf("name = %v", raw["name"])
	}
}

func TestInvalidIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	todos := &TodoRepository{}
	users := &UserRepository{}
	valid := primitive.NewObjectID().Hex()

	if _, err := todos.FindByID(ctx, valid, "not-an-id"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("todo find: %v", err)
	}
	if _, err := todos.FindByID(ctx, "u1", valid); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("todo find by bad owner: %v", err)
	}
	if err := todos.Delete(ctx, valid, "123"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("todo delete: %v", err)
	}
	if err := todos.Update(ctx, &model.Todo{ID: "zz", UserID: valid}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("todo update: %v", err)
	}
	list, err := todos.ListByUser(ctx, "u1")
	if err != nil || len(list) != 0 {
		t.Fatalf("list by bad owner: %v %+v", err, list)
	}
	if _, err := users.FindByID(ctx, "abc"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("user find: %v", err)
	}
	if err := users.Update(ctx, &model.User{ID: "abc"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("user update: %v", err)
	}
}

func TestTodoDocumentMapping(t *testing.T) {
	owner := primitive.NewObjectID()
	due := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	td := model.Todo{
		ID:       primitive.NewObjectID().Hex(),
		UserID:   owner.Hex(),
		Title:    "pay rent",
		DueDate:  &due,
		Priority: model.PriorityHigh,
	}
	doc, err := toTodoDoc(&td)
	if err != nil {
		t.Fatal(err)
	}
	if doc.UserID != owner {
		t.Fatalf("userId = %v, want %v", doc.UserID, owner)
	}
	back := doc.model()
	if back.ID != td.ID || back.UserID != td.UserID || back.Priority != model.PriorityHigh || !back.DueDate.Equal(due) {
		t.Fatalf("unexpected todo %+v", back)
	}

	if _, err := toTodoDoc(&model.Todo{ID: td.ID, UserID: "u1"}); err == nil {
		t.Fatal("expected error for non-ObjectId owner")
	}
}

func TestUpdateDocUnsetsClearedFields(t *testing.T) {
	doc := todoDoc{
		ID:       primitive.NewObjectID(),
		UserID:   primitive.NewObjectID(),
		Title:    "walk",
		DueTime:  "09:00",
		Priority: string(model.PriorityLow),
	}
	update, err := updateDoc(doc, todoOptionalFields)
	if err != nil {
		t.Fatal(err)
	}
	set := update["$set"].(bson.M)
	if _, ok := set["_id"]; ok {
		t.Fatal("_id must not be in $set")
	}
	if set["dueTime"] != "09:00" || set["title"] != "walk" {
		t.Fatalf("unexpected $set %+v", set)
	}
	unset := update["$unset"].(bson.M)
	for _, key := range []string{"description", "dueDate"} {
		if _, ok := unset[key]; !ok {
			t.Errorf("expected %s in $unset, got %+v", key, unset)
		}
	}
	if _, ok := unset["dueTime"]; ok {
		t.Fatalf("dueTime should stay set: %+v", unset)
	}
}
