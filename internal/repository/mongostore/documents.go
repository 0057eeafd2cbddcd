package mongostore

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"todo-planner/internal/model"
)

// Documents keep the Mongoose layout: ObjectId keys and references,
// camelCase fields, createdAt/updatedAt timestamps.

type userDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	Password       string             `bson:"password,omitempty"`
	GoogleID       string             `bson:"googleId,omitempty"`
	DOB            *time.Time         `bson:"dob,omitempty"`
	Phone          string             `bson:"phone,omitempty"`
	Bio            string             `bson:"bio,omitempty"`
	Gender         string             `bson:"gender,omitempty"`
	ProfilePicture string             `bson:"profilePicture"`
	TelegramChatID *int64             `bson:"telegramChatId,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

var userOptionalFields = []string{"password", "googleId", "dob", "phone", "bio", "gender", "telegramChatId"}

type todoDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      primitive.ObjectID `bson:"userId"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	DueTime     string             `bson:"dueTime,omitempty"`
	Priority    string             `bson:"priority"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

var todoOptionalFields = []string{"description", "dueDate", "dueTime"}

// objectID parses a hex id. Ids that are not ObjectIds cannot match
// any document.
func objectID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	return id, err == nil
}

func toUserDoc(u *model.User) (userDoc, error) {
	id, ok := objectID(u.ID)
	if !ok {
		return userDoc{}, fmt.Errorf("invalid user id %q", u.ID)
	}
	return userDoc{
		ID:             id,
		Name:           u.Name,
		Email:          u.Email,
		Password:       u.PasswordHash,
		GoogleID:       u.GoogleID,
		DOB:            u.DOB,
		Phone:          u.Phone,
		Bio:            u.Bio,
		Gender:         u.Gender,
		ProfilePicture: u.ProfilePicture,
		TelegramChatID: u.TelegramChatID,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}, nil
}

func (d userDoc) model() model.User {
	return model.User{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Email:          d.Email,
		PasswordHash:   d.Password,
		GoogleID:       d.GoogleID,
		DOB:            d.DOB,
		Phone:          d.Phone,
		Bio:            d.Bio,
		Gender:         d.Gender,
		ProfilePicture: d.ProfilePicture,
		TelegramChatID: d.TelegramChatID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toTodoDoc(t *model.Todo) (todoDoc, error) {
	id, ok := objectID(t.ID)
	if !ok {
		return todoDoc{}, fmt.Errorf("invalid todo id %q", t.ID)
	}
	userID, ok := objectID(t.UserID)
	if !ok {
		return todoDoc{}, fmt.Errorf("invalid user id %q", t.UserID)
	}
	return todoDoc{
		ID:          id,
		UserID:      userID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		DueTime:     t.DueTime,
		Priority:    string(t.Priority),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

func (d todoDoc) model() model.Todo {
	priority := model.Priority(d.Priority)
	if priority == "" {
		priority = model.PriorityNormal
	}
	return model.Todo{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		DueTime:     d.DueTime,
		Priority:    priority,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// updateDoc turns a document into a $set of its fields and an $unset of
// the empty optional ones. Fields the document does not know, such as
// Mongoose's __v or a profile's todos array, are left alone.
func updateDoc(doc any, optional []string) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	delete(set, "_id")

	update := bson.M{"$set": set}
	unset := bson.M{}
	for _, key := range optional {
		if _, ok := set[key]; !ok {
			unset[key] = ""
		}
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}
