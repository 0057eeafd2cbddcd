package service

import (
	"errors"

	"todo-planner/internal/repository"
)

var (
	// ErrNotFound is returned for missing records and records owned by
	// someone else.
	ErrNotFound = repository.ErrNotFound

	ErrUserExists        = errors.New("user already exists")
	ErrUserNotRegistered = errors.New("user not registered")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrGoogleAccount     = errors.New("account uses google sign-in")
	ErrGoogleDisabled    = errors.New("google sign-in is not configured")
	ErrUnauthorized      = errors.New("unauthorized")
)
