package model

import "time"

// DefaultProfilePicture is shown until the user sets their own picture.
const DefaultProfilePicture = "https://static.vecteezy.com/system/resources/previews/020/911/740/non_2x/user-profile-icon-profile-avatar-user-icon-male-icon-face-icon-profile-icon-free-png.png"

// User stores account and profile data.
type User struct {
	ID             string     `gorm:"primaryKey;size:36" json:"_id"`
	Name           string     `json:"name"`
	Email          string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash   string     `json:"-"`
	GoogleID       string     `gorm:"index" json:"googleId,omitempty"`
	DOB            *time.Time `json:"dob,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	ProfilePicture string     `json:"profilePicture"`
	TelegramChatID *int64     `gorm:"uniqueIndex" json:"telegramChatId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// HasPassword reports whether the account can log in with a password.
// Accounts created through Google have none.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}
