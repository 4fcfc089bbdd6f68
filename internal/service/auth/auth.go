package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nstepanov/todofy/internal/apperrors"
	"github.com/nstepanov/todofy/internal/models"
	"github.com/nstepanov/todofy/internal/repository"
	"github.com/nstepanov/todofy/internal/service/auth/tokenmanager"
)

const (
	defaultAccessCookieName  = "accessToken"
	defaultRefreshCookieName = "refreshToken"
	defaultAccessAuthScheme  = "Bearer"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during registration or login
	// BcryptHasher is used when not set
	Hasher PasswordHasher

	// Cookie names the tokens travel in
	// Defaults are used when empty
	AccessCookieName  string
	RefreshCookieName string
}

// Auth service
// Owns the credential lifecycle: registration, login, single slot
// refresh token rotation, logout and account deletion
type AuthService struct {
	tokens  *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage

	accessCookieName  string
	refreshCookieName string
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	if tokens == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	setDefaultString := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefaultString(&cfg.AccessCookieName, defaultAccessCookieName)
	setDefaultString(&cfg.RefreshCookieName, defaultRefreshCookieName)

	return &AuthService{
		tokens:            tokens,
		hasher:            hasher,
		storage:           storage,
		accessCookieName:  cfg.AccessCookieName,
		refreshCookieName: cfg.RefreshCookieName,
	}, nil
}

// Register creates a user with normalized email and hashed password
// Tokens are not issued here, the client logs in explicitly
func (s *AuthService) Register(ctx context.Context, name string, email string, password string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, name, NormalizeEmail(email), hash)
	if err != nil {
		return user, err
	}

	return user, nil
}

// Login verifies credentials and issues a fresh token pair
// The refresh token replaces whatever was in the user's slot before
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetUserByEmail(ctx, NormalizeEmail(email))
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Hide whether the email or the password was wrong
		return user, pair, apperrors.ErrInvalidCredentials
	case err != nil:
		return user, pair, fmt.Errorf("error while loading user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return user, pair, apperrors.ErrInvalidCredentials
	}

	pair, err = s.issuePair(ctx, user)
	if err != nil {
		return user, pair, err
	}

	return user, pair, nil
}

// Refresh rotates the token pair
// The presented token must be signed, unexpired and equal to the user's
// current slot value, so issuing a new pair invalidates the old token
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	userID, err := s.tokens.ParseRefresh(refresh)
	if err != nil {
		return pair, err
	}

	user, err := s.storage.User().GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Token was signed for a user that no longer exists
		return pair, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	case err != nil:
		return pair, fmt.Errorf("error while loading user. Err: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refresh {
		return pair, apperrors.ErrRefreshTokenMismatch
	}

	return s.issuePair(ctx, user)
}

// Logout clears the user's refresh token slot
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.storage.User().UpdateRefreshToken(ctx, userID, nil)
}

// DeleteAccount verifies the password again and removes the user with
// every todo they own in a single transaction
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	return s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.Todo().DeleteTodosByOwner(ctx, userID); err != nil {
			return err
		}

		count, err := st.User().DeleteUser(ctx, userID)
		if err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrUserNotFound
		}

		return nil
	})
}

// Auth authenticates the request by its access token
// Token is taken from the access cookie or the Authorization header
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.Identity, error) {
	access := ""

	if cookie, err := r.Cookie(s.accessCookieName); err == nil {
		access = cookie.Value
	}
	if access == "" {
		// Scheme must be exactly "Bearer" followed by a space
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, defaultAccessAuthScheme+" "); ok {
			access = strings.TrimSpace(token)
		}
	}
	if access == "" {
		return models.Identity{}, fmt.Errorf("%w: no token provided", apperrors.ErrInvalidToken)
	}

	return s.tokens.ParseAccess(access)
}

// SetTokens writes both tokens as HttpOnly cookies with matching expiries
func (s *AuthService) SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.accessCookieName,
		Value:    pair.Access.Value,
		Path:     "/",
		Expires:  pair.Access.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     "/",
		Expires:  pair.Refresh.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearTokens expires both token cookies
func (s *AuthService) ClearTokens(w http.ResponseWriter) {
	for _, name := range []string{s.accessCookieName, s.refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// ReadRefresh extracts the refresh token from the cookie or,
// falling back as the documented client contract allows, the JSON body
func (s *AuthService) ReadRefresh(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(s.refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.RefreshToken != "" {
		return body.RefreshToken, nil
	}

	return "", errors.New("refresh token not found in cookie or body")
}

// issuePair generates tokens and stores the refresh value in the slot
func (s *AuthService) issuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	err = s.storage.User().UpdateRefreshToken(ctx, user.ID, &pair.Refresh.Value)
	if err != nil {
		return pair, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return pair, nil
}

// NormalizeEmail lowers the case so lookups and uniqueness ignore it
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
