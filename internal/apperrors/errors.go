package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrInvalidCredentials = errors.New("email or password is incorrect")

	ErrInvalidToken         = errors.New("token is invalid or expired")
	ErrRefreshTokenMismatch = errors.New("refresh token is not the current one")

	ErrTodoNotFound = errors.New("todo not found")
	ErrTodoNotOwned = errors.New("todo belongs to another user")
	ErrTodoInvalid  = errors.New("todo fields are invalid")
)
