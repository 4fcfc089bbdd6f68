package todo

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nstepanov/todofy/internal/apperrors"
	"github.com/nstepanov/todofy/internal/models"
	"github.com/nstepanov/todofy/internal/repository"
)

// Due time is an ISO local timestamp with minute precision
var dueTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}$`)

// Todo service
// Every item scoped operation loads the record and verifies the caller
// owns it before touching anything
type TodoService struct {
	todoRepo repository.TodoRepo
}

func NewService(todoRepo repository.TodoRepo) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

func (s *TodoService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Todo, error) {
	return s.todoRepo.ListTodosByOwner(ctx, ownerID)
}

func (s *TodoService) Create(ctx context.Context, ownerID uuid.UUID, title string, description string, dueTime string) (models.Todo, error) {
	if err := validateFields(title, description, dueTime); err != nil {
		return models.Todo{}, err
	}

	return s.todoRepo.CreateTodo(ctx, ownerID, title, description, dueTime)
}

func (s *TodoService) Update(ctx context.Context, ownerID uuid.UUID, todoID uuid.UUID, title string, description string, dueTime string) (models.Todo, error) {
	if err := validateFields(title, description, dueTime); err != nil {
		return models.Todo{}, err
	}

	if _, err := s.getOwned(ctx, todoID, ownerID); err != nil {
		return models.Todo{}, err
	}

	return s.todoRepo.UpdateTodo(ctx, todoID, title, description, dueTime)
}

func (s *TodoService) SetStatus(ctx context.Context, ownerID uuid.UUID, todoID uuid.UUID, status bool) (models.Todo, error) {
	if _, err := s.getOwned(ctx, todoID, ownerID); err != nil {
		return models.Todo{}, err
	}

	return s.todoRepo.SetTodoStatus(ctx, todoID, status)
}

func (s *TodoService) Delete(ctx context.Context, ownerID uuid.UUID, todoID uuid.UUID) error {
	if _, err := s.getOwned(ctx, todoID, ownerID); err != nil {
		return err
	}

	_, err := s.todoRepo.DeleteTodo(ctx, todoID)
	return err
}

// getOwned loads the todo and enforces the ownership check
// Missing record and foreign record are different failures on purpose
func (s *TodoService) getOwned(ctx context.Context, todoID uuid.UUID, ownerID uuid.UUID) (models.Todo, error) {
	todo, err := s.todoRepo.GetTodoByID(ctx, todoID)
	if err != nil {
		return todo, err
	}

	if todo.OwnerID != ownerID {
		return todo, apperrors.ErrTodoNotOwned
	}

	return todo, nil
}

// Second defense line before the store, the HTTP layer validates first
func validateFields(title string, description string, dueTime string) error {
	if n := utf8.RuneCountInString(title); n < 1 || n > models.TodoTitleMaxLen {
		return fmt.Errorf("%w: title must be 1-%d characters", apperrors.ErrTodoInvalid, models.TodoTitleMaxLen)
	}
	if utf8.RuneCountInString(description) > models.TodoDescriptionMaxLen {
		return fmt.Errorf("%w: description must not exceed %d characters", apperrors.ErrTodoInvalid, models.TodoDescriptionMaxLen)
	}
	if !dueTimeRe.MatchString(dueTime) {
		return fmt.Errorf("%w: due time must be in the format YYYY-MM-DDTHH:MM", apperrors.ErrTodoInvalid)
	}

	return nil
}
