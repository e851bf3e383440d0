package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("resource not found")
	ErrSessionNotFound    = errors.New("tutoring session not found")
	ErrSessionEnded       = errors.New("tutoring session already ended")
	ErrTutorResponse      = errors.New("failed to get tutor response")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidProgress    = errors.New("progress requires maxProgress")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
)
