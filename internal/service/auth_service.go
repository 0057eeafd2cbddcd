package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"todo-planner/internal/model"
)

const bcryptCost = 10

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// RegisterInput represents data required to create an account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService registers users and issues tokens.
type AuthService struct {
	users    UserRepository
	google   GoogleVerifier
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService builds the service. google may be nil, which disables
// Google sign-in.
func NewAuthService(users UserRepository, google GoogleVerifier, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, google: google, secret: []byte(secret), tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput, now time.Time) (string, error) {
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return "", ErrUserExists
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Name:           strings.TrimSpace(input.Name),
		Email:          input.Email,
		PasswordHash:   string(hash),
		ProfilePicture: model.DefaultProfilePicture,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return "", err
	}
	return s.IssueToken(user.ID, now)
}

func (s *AuthService) Login(ctx context.Context, email, password string, now time.Time) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", ErrUserNotRegistered
	}
	if err != nil {
		return "", err
	}
	if !user.HasPassword() {
		return "", ErrGoogleAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}
	return s.IssueToken(user.ID, now)
}

// LoginWithGoogle verifies a Google ID token and signs the matching user
// in. A user with the same email is linked to the Google account; an
// unknown identity gets a new account.
func (s *AuthService) LoginWithGoogle(ctx context.Context, credential string, now time.Time) (string, error) {
	if s.google == nil {
		return "", ErrGoogleDisabled
	}
	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.users.FindByGoogleID(ctx, identity.Subject)
	if err == nil {
		return s.IssueToken(user.ID, now)
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	user, err = s.users.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		user.GoogleID = identity.Subject
		if user.ProfilePicture == "" || user.ProfilePicture == model.DefaultProfilePicture {
			if identity.Picture != "" {
				user.ProfilePicture = identity.Picture
			}
		}
		if err := s.users.Update(ctx, user); err != nil {
			return "", err
		}
	case errors.Is(err, ErrNotFound):
		user = &model.User{
			Name:           identity.Name,
			Email:          identity.Email,
			GoogleID:       identity.Subject,
			ProfilePicture: identity.Picture,
		}
		if user.Name == "" {
			user.Name, _, _ = strings.Cut(identity.Email, "@")
		}
		if user.ProfilePicture == "" {
			user.ProfilePicture = model.DefaultProfilePicture
		}
		if err := s.users.Create(ctx, user); err != nil {
			return "", err
		}
	default:
		return "", err
	}
	return s.IssueToken(user.ID, now)
}

// IssueToken signs a token for userID valid from now for the configured TTL.
func (s *AuthService) IssueToken(userID string, now time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token at the given instant and returns its user id.
func (s *AuthService) ParseToken(raw string, now time.Time) (string, error) {
	var claims Claims
	keyFunc := func(*jwt.Token) (any, error) { return s.secret, nil }
	_, err := jwt.ParseWithClaims(raw, &claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.UserID == "" {
		return "", ErrUnauthorized
	}
	return claims.UserID, nil
}
