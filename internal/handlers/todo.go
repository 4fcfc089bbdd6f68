package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nstepanov/todofy/internal/apperrors"
	"github.com/nstepanov/todofy/internal/handlers/render"
	"github.com/nstepanov/todofy/internal/logger"
	"github.com/nstepanov/todofy/internal/models"
)

// Todo service as the todo handler needs it
type todoService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Todo, error)
	Create(ctx context.Context, ownerID uuid.UUID, title string, description string, dueTime string) (models.Todo, error)
	Update(ctx context.Context, ownerID uuid.UUID, todoID uuid.UUID, title string, description string, dueTime string) (models.Todo, error)
	SetStatus(ctx context.Context, ownerID uuid.UUID, todoID uuid.UUID, status bool) (models.Todo, error)
	Delete(ctx context.Context, ownerID uuid.UUID, todoID uuid.UUID) error
}

type TodoHandler struct {
	todos  todoService
	logger logger.Logger
}

type TodoResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      bool      `json:"status"`
	DueTime     string    `json:"dueTime"`
	Owner       uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TodoRequest is shared by create and update, both carry the full shape
type TodoRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=200"`
	DueTime     string `json:"dueTime" validate:"required,duetime"`
}

func NewTodo(todos todoService, logger logger.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, logger: logger}
}

func (h *TodoHandler) list(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	todos, err := h.todos.List(r.Context(), ident.ID)
	if err != nil {
		h.logger.Error("todo list failed", "error", err.Error())
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	response := make([]TodoResponse, 0, len(todos))
	for _, t := range todos {
		response = append(response, todoToResponse(t))
	}

	message := "Todos fetched successfully"
	if len(response) == 0 {
		message = "No todos found"
	}

	render.JSON(w, http.StatusOK, message, response)
}

func (h *TodoHandler) create(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	data, err := render.BindAndValidate[TodoRequest](w, r)
	if err != nil {
		return
	}

	todo, err := h.todos.Create(r.Context(), ident.ID, data.Title, data.Description, data.DueTime)
	if err != nil {
		h.renderTodoError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Todo created successfully", todoToResponse(todo))
}

func (h *TodoHandler) update(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	todoID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.Error(w, http.StatusNotFound, "Todo not found")
		return
	}

	data, err := render.BindAndValidate[TodoRequest](w, r)
	if err != nil {
		return
	}

	todo, err := h.todos.Update(r.Context(), ident.ID, todoID, data.Title, data.Description, data.DueTime)
	if err != nil {
		h.renderTodoError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Todo updated successfully", todoToResponse(todo))
}

func (h *TodoHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	type StatusRequest struct {
		// Pointer so 'false' passes the required check
		Status *bool `json:"status" validate:"required"`
	}

	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	todoID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.Error(w, http.StatusNotFound, "Todo not found")
		return
	}

	data, err := render.BindAndValidate[StatusRequest](w, r)
	if err != nil {
		return
	}

	todo, err := h.todos.SetStatus(r.Context(), ident.ID, todoID, *data.Status)
	if err != nil {
		h.renderTodoError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Todo status updated successfully", todoToResponse(todo))
}

func (h *TodoHandler) delete(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	todoID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.Error(w, http.StatusNotFound, "Todo not found")
		return
	}

	if err := h.todos.Delete(r.Context(), ident.ID, todoID); err != nil {
		h.renderTodoError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Todo deleted successfully", nil)
}

// renderTodoError translates service failures into envelope responses
func (h *TodoHandler) renderTodoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTodoNotFound):
		render.Error(w, http.StatusNotFound, "Todo not found")
	case errors.Is(err, apperrors.ErrTodoNotOwned):
		render.Error(w, http.StatusForbidden, "Todo belongs to another user")
	case errors.Is(err, apperrors.ErrTodoInvalid):
		render.Error(w, http.StatusBadRequest, "Todo fields are invalid")
	default:
		h.logger.Error("todo operation failed", "error", err.Error())
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func todoToResponse(t models.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueTime:     t.DueTime,
		Owner:       t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
