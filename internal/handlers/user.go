package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/nstepanov/todofy/internal/apperrors"
	"github.com/nstepanov/todofy/internal/handlers/render"
	"github.com/nstepanov/todofy/internal/logger"
	"github.com/nstepanov/todofy/internal/models"
)

// Auth service as the user handler needs it
type authService interface {
	Register(ctx context.Context, name string, email string, password string) (models.User, error)
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error

	SetTokens(w http.ResponseWriter, pair models.TokenPair)
	ClearTokens(w http.ResponseWriter)
	ReadRefresh(r *http.Request) (string, error)
}

type UserHandler struct {
	auth   authService
	logger logger.Logger
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func NewUser(auth authService, logger logger.Logger) *UserHandler {
	return &UserHandler{auth: auth, logger: logger}
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Name     string `json:"name" validate:"required,min=3,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=100,password"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.auth.Register(r.Context(), data.Name, data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.Error(w, http.StatusConflict, "User already exists")
		default:
			h.logger.Error("register failed", "error", err.Error())
			render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	render.JSON(w, http.StatusCreated, "User created successfully", UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=100,password"`
	}
	type LoginResponse struct {
		User         UserResponse `json:"user"`
		AccessToken  string       `json:"accessToken"`
		RefreshToken string       `json:"refreshToken"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	user, pair, err := h.auth.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.Error(w, http.StatusUnauthorized, "Email or password is incorrect")
		default:
			h.logger.Error("login failed", "error", err.Error())
			render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	h.auth.SetTokens(w, pair)
	render.JSON(w, http.StatusOK, "User logged in successfully", LoginResponse{
		User:         UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

func (h *UserHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshResponse struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}

	refresh, err := h.auth.ReadRefresh(r)
	if err != nil {
		render.Error(w, http.StatusUnauthorized, "Refresh token is required")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), refresh)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken),
			errors.Is(err, apperrors.ErrRefreshTokenMismatch),
			errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		default:
			h.logger.Error("token refresh failed", "error", err.Error())
			render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	h.auth.SetTokens(w, pair)
	render.JSON(w, http.StatusOK, "Access token refreshed successfully", RefreshResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := h.auth.Logout(r.Context(), ident.ID); err != nil {
		h.logger.Error("logout failed", "error", err.Error())
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.auth.ClearTokens(w)
	render.JSON(w, http.StatusOK, "Logout successful", nil)
}

func (h *UserHandler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	type DeleteRequest struct {
		Password string `json:"password" validate:"required"`
	}

	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	data, err := render.BindAndValidate[DeleteRequest](w, r)
	if err != nil {
		return
	}

	err = h.auth.DeleteAccount(r.Context(), ident.ID, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.Error(w, http.StatusUnauthorized, "Invalid password")
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error("account deletion failed", "error", err.Error())
			render.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	h.auth.ClearTokens(w)
	render.JSON(w, http.StatusOK, "User deleted successfully", nil)
}
