package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nstepanov/todofy/internal/apperrors"
	"github.com/nstepanov/todofy/internal/models"
)

type TodoRepo struct {
	DB DBTX
}

const createTodo = `-- name: CreateTodo
INSERT INTO todos (id, title, description, due_time, owner_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at, title, description, status, due_time, owner_id
`

func (r *TodoRepo) CreateTodo(ctx context.Context, ownerID uuid.UUID, title string, description string, dueTime string) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, createTodo, uuid.New(), title, description, dueTime, ownerID)
	todo, err := pgx.CollectOneRow(rows, rowToTodo)
	if err != nil {
		return todo, fmt.Errorf("db error: %w", err)
	}

	return todo, nil
}

const getTodoByID = `-- name: GetTodoByID
SELECT id, created_at, updated_at, title, description, status, due_time, owner_id
FROM todos
WHERE id = $1
`

func (r *TodoRepo) GetTodoByID(ctx context.Context, todoID uuid.UUID) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, getTodoByID, todoID)
	todo, err := pgx.CollectOneRow(rows, rowToTodo)

	switch {
	case err == nil:
		return todo, nil
	case errors.Is(err, pgx.ErrNoRows):
		return todo, apperrors.ErrTodoNotFound
	default:
		return todo, fmt.Errorf("db error: %w", err)
	}
}

const listTodosByOwner = `-- name: ListTodosByOwner
SELECT id, created_at, updated_at, title, description, status, due_time, owner_id
FROM todos
WHERE owner_id = $1
ORDER BY created_at
`

func (r *TodoRepo) ListTodosByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Todo, error) {
	rows, _ := r.DB.Query(ctx, listTodosByOwner, ownerID)
	todos, err := pgx.CollectRows(rows, rowToTodo)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return todos, nil
}

const updateTodo = `-- name: UpdateTodo
UPDATE todos
SET title = $2, description = $3, due_time = $4, updated_at = now()
WHERE id = $1
RETURNING id, created_at, updated_at, title, description, status, due_time, owner_id
`

func (r *TodoRepo) UpdateTodo(ctx context.Context, todoID uuid.UUID, title string, description string, dueTime string) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, updateTodo, todoID, title, description, dueTime)
	todo, err := pgx.CollectOneRow(rows, rowToTodo)

	switch {
	case err == nil:
		return todo, nil
	case errors.Is(err, pgx.ErrNoRows):
		return todo, apperrors.ErrTodoNotFound
	default:
		return todo, fmt.Errorf("db error: %w", err)
	}
}

const setTodoStatus = `-- name: SetTodoStatus
UPDATE todos
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING id, created_at, updated_at, title, description, status, due_time, owner_id
`

func (r *TodoRepo) SetTodoStatus(ctx context.Context, todoID uuid.UUID, status bool) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, setTodoStatus, todoID, status)
	todo, err := pgx.CollectOneRow(rows, rowToTodo)

	switch {
	case err == nil:
		return todo, nil
	case errors.Is(err, pgx.ErrNoRows):
		return todo, apperrors.ErrTodoNotFound
	default:
		return todo, fmt.Errorf("db error: %w", err)
	}
}

const deleteTodo = `-- name: DeleteTodo
DELETE FROM todos
WHERE id = $1
`

func (r *TodoRepo) DeleteTodo(ctx context.Context, todoID uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteTodo, todoID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

const deleteTodosByOwner = `-- name: DeleteTodosByOwner
DELETE FROM todos
WHERE owner_id = $1
`

func (r *TodoRepo) DeleteTodosByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteTodosByOwner, ownerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

func rowToTodo(row pgx.CollectableRow) (models.Todo, error) {
	var t models.Todo
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.Title, &t.Description, &t.Status, &t.DueTime, &t.OwnerID)
	return t, err
}
