package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nstepanov/todofy/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user with already hashed password
	// If user with the email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, name string, email string, hashedPassword string) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Replace the user's current refresh token, nil clears the slot
	UpdateRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error

	// Delete user, returns number of deleted rows
	DeleteUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Todo repository interface
type TodoRepo interface {
	CreateTodo(ctx context.Context, ownerID uuid.UUID, title string, description string, dueTime string) (models.Todo, error)

	// Get todo by id regardless of owner
	// If not found must return apperrors.ErrTodoNotFound
	GetTodoByID(ctx context.Context, todoID uuid.UUID) (models.Todo, error)

	// List todos of the owner ordered by creation time
	ListTodosByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Todo, error)

	UpdateTodo(ctx context.Context, todoID uuid.UUID, title string, description string, dueTime string) (models.Todo, error)
	SetTodoStatus(ctx context.Context, todoID uuid.UUID, status bool) (models.Todo, error)

	// Delete todo, returns number of deleted rows
	DeleteTodo(ctx context.Context, todoID uuid.UUID) (int64, error)

	// Delete every todo of the owner, returns number of deleted rows
	// Used when the owner account is deleted
	DeleteTodosByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// Storage bundles repositories over the same connection or transaction
type Storage interface {
	User() UserRepo
	Todo() TodoRepo

	// Run fn within a database transaction
	// fn receives a Storage bound to that transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
