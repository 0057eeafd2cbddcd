package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"todo-planner/internal/model"
	"todo-planner/internal/planner"
	"todo-planner/internal/validation"
)

// ProfileUpdate carries the editable profile fields. Absent fields are
// left alone; null clears optional ones.
type ProfileUpdate struct {
	Name           model.Optional[string] `json:"name"`
	DOB            model.Optional[string] `json:"dob"`
	Phone          model.Optional[string] `json:"phone"`
	Bio            model.Optional[string] `json:"bio"`
	Gender         model.Optional[string] `json:"gender"`
	TelegramChatID model.Optional[int64]  `json:"telegramChatId"`
}

// PasswordChange is the body of a password change request.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ProfileService reads and edits the signed-in user's account.
type ProfileService struct {
	users UserRepository
}

func NewProfileService(users UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID string, upd ProfileUpdate, loc *time.Location) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Name.Set && !upd.Name.Null {
		user.Name = strings.TrimSpace(upd.Name.Value)
	}
	if upd.DOB.Set {
		if upd.DOB.Null || strings.TrimSpace(upd.DOB.Value) == "" {
			user.DOB = nil
		} else {
			dob, err := planner.ParseDueDate(upd.DOB.Value, loc)
			if err != nil {
				return nil, validation.Fail("dob", "Invalid date format")
			}
			user.DOB = &dob
		}
	}
	if upd.Phone.Set {
		user.Phone = upd.Phone.Value
	}
	if upd.Bio.Set {
		user.Bio = upd.Bio.Value
	}
	if upd.Gender.Set {
		user.Gender = upd.Gender.Value
	}
	if upd.TelegramChatID.Set {
		if upd.TelegramChatID.Null {
			user.TelegramChatID = nil
		} else {
			chatID := upd.TelegramChatID.Value
			owner, err := s.users.FindByTelegramChatID(ctx, chatID)
			switch {
			case err == nil && owner.ID != user.ID:
				return nil, validation.Fail("telegramChatId", "This Telegram chat is already linked to another account")
			case err != nil && !errors.Is(err, ErrNotFound):
				return nil, err
			}
			user.TelegramChatID = &chatID
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, userID string, change PasswordChange) error {
	if change.NewPassword != change.ConfirmPassword {
		return validation.Fail("confirmPassword", "Passwords don't match")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return ErrGoogleAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(change.CurrentPassword)); err != nil {
		return ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(change.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Update(ctx, user)
}
