package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstepanov/todofy/internal/apperrors"
	"github.com/nstepanov/todofy/internal/models"
	"github.com/nstepanov/todofy/internal/repository"
	"github.com/nstepanov/todofy/internal/repository/postgres"
	"github.com/nstepanov/todofy/internal/service/auth/tokenmanager"
	"github.com/nstepanov/todofy/internal/testutil"
)

// Storage stub whose user lookups fail like a dead connection
type brokenStorage struct {
	err error
}

func (s brokenStorage) User() repository.UserRepo { return brokenUserRepo{err: s.err} }
func (s brokenStorage) Todo() repository.TodoRepo { return nil }
func (s brokenStorage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	return fn(s)
}

type brokenUserRepo struct {
	err error
}

func (r brokenUserRepo) CreateUser(ctx context.Context, name string, email string, hashedPassword string) (models.User, error) {
	return models.User{}, r.err
}

func (r brokenUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return models.User{}, r.err
}

func (r brokenUserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return models.User{}, r.err
}

func (r brokenUserRepo) UpdateRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error {
	return r.err
}

func (r brokenUserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, r.err
}

func Test_AuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Begin new db transaction and create new AuthService
	// Rollback transaction when test stops
	withTx := func(dbpool *pgxpool.Pool, t *testing.T, fn func(s *AuthService, storage *postgres.Storage)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			tokenManager, err := tokenmanager.New(tokenmanager.Config{
				SecretKey:  "test-secret-key",
				AccessTTL:  15 * time.Minute,
				RefreshTTL: 24 * time.Hour,
			})
			require.NoError(t, err, "token manager should be created without errors")

			s, err := NewService(Config{}, tokenManager, storage)
			require.NoError(t, err, "auth service could't be started", err)

			fn(s, storage)
		})
	}

	t.Run("new service defaults", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *AuthService, _ *postgres.Storage) {
			require.Equal(t, defaultAccessCookieName, s.accessCookieName, "default access cookie name should be set")
			require.Equal(t, defaultRefreshCookieName, s.refreshCookieName, "default refresh cookie name should be set")
			require.Equal(t, BcryptHasher{}, s.hasher, "default hasher should be set to BcryptHasher")
		})
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("new user ok", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService, _ *postgres.Storage) {
				user, err := s.Register(t.Context(), "Ada", "Ada@X.com", "Abcd123!")

				require.NoError(t, err, "registering new user should be ok")
				assert.Equal(t, "Ada", user.Name)
				assert.Equal(t, "ada@x.com", user.Email, "email should be normalized to lower case")
				assert.NotEqual(t, "Abcd123!", user.HashedPassword, "raw password must never be stored")
				assert.Nil(t, user.RefreshToken, "registration does not open a session")
			})
		})

		t.Run("fail if email taken", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService, _ *postgres.Storage) {
				_, err := s.Register(t.Context(), "Ada", "ada@x.com", "Abcd123!")
				require.NoError(t, err)

				_, err = s.Register(t.Context(), "Other", "ADA@x.com", "Other123!")

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists, "uniqueness ignores email case")
			})
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("correct credentials ok", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService, storage *postgres.Storage) {
				registered, err := s.Register(t.Context(), "Ada", "ada@x.com", "Abcd123!")
				require.NoError(t, err)

				user, pair, err := s.Login(t.Context(), "ada@x.com", "Abcd123!")

				require.NoError(t, err)
				assert.Equal(t, registered.ID, user.ID)
				assert.NotEmpty(t, pair.Access.Value, "access token should not be empty")
				assert.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")
				assert.NotEqual(t, pair.Access.Value, pair.Refresh.Value, "two distinct tokens should be issued")

				stored, err := storage.User().GetUserByID(t.Context(), user.ID)
				require.NoError(t, err)
				require.NotNil(t, stored.RefreshToken)
				assert.Equal(t, pair.Refresh.Value, *stored.RefreshToken, "issued refresh token fills the slot")
			})
		})

		tests := []struct {
			name     string
			email    string
			password string
		}{
			{name: "wrong password fails", email: "ada@x.com", password: "Wrong123!"},
			{name: "unknown email fails", email: "nobody@x.com", password: "Abcd123!"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				withTx(pg.Pool, t, func(s *AuthService, _ *postgres.Storage) {
					_, err := s.Register(t.Context(), "Ada", "ada@x.com", "Abcd123!")
					require.NoError(t, err)

					_, _, err = s.Login(t.Context(), tt.email, tt.password)

					require.Error(t, err)
					require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
				})
			})
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("current token rotates the pair", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService, storage *postgres.Storage) {
				_, err := s.Register(t.Context(), "Ada", "ada@x.com", "Abcd123!")
				require.NoError(t, err)
				user, pair, err := s.Login(t.Context(), "ada@x.com", "Abcd123!")
				require.NoError(t, err)

				next, err := s.Refresh(t.Context(), pair.Refresh.Value)

				require.NoError(t, err)
				assert.NotEqual(t, pair.Refresh.Value, next.Refresh.Value, "refresh token should rotate")

				stored, err := storage.User().GetUserByID(t.Context(), user.ID)
				require.NoError(t, err)
				require.NotNil(t, stored.RefreshToken)
				assert.Equal(t, next.Refresh.Value, *stored.RefreshToken, "slot holds the newest token only")
			})
		})

		t.Run("stale token fails even when unexpired", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService, _ *postgres.Storage) {
				_, err := s.Register(t.Context(), "Ada", "ada@x.com", "Abcd123!")
				require.NoError(t, err)
				_, pair, err := s.Login(t.Context(), "ada@x.com", "Abcd123!")
				require.NoError(t, err)

				// Rotation replaces the slot, the first token is now stale
				_, err = s.Refresh(t.Context(), pair.Refresh.Value)
				require.NoError(t, err)

				_, err = s.Refresh(t.Context(), pair.Refresh.Value)

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrRefreshTokenMismatch)
			})
		})

		t.Run("garbage token fails", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService, _ *postgres.Storage) {
				_, err := s.Refresh(t.Context(), "garbage")

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrInvalidToken)
			})
		})
	})

	t.Run("Logout clears the slot", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *AuthService, storage *postgres.Storage) {
			_, err := s.Register(t.Context(), "Ada", "ada@x.com", "Abcd123!")
			require.NoError(t, err)
			user, pair, err := s.Login(t.Context(), "ada@x.com", "Abcd123!")
			require.NoError(t, err)

			err = s.Logout(t.Context(), user.ID)
			require.NoError(t, err)

			stored, err := storage.User().GetUserByID(t.Context(), user.ID)
			require.NoError(t, err)
			assert.Nil(t, stored.RefreshToken)

			_, err = s.Refresh(t.Context(), pair.Refresh.Value)
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenMismatch, "refresh after logout must fail")
		})
	})

	t.Run("DeleteAccount", func(t *testing.T) {
		t.Run("cascades todos and credentials", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService, storage *postgres.Storage) {
				_, err := s.Register(t.Context(), "Ada", "ada@x.com", "Abcd123!")
				require.NoError(t, err)
				user, _, err := s.Login(t.Context(), "ada@x.com", "Abcd123!")
				require.NoError(t, err)
				_, err = storage.Todo().CreateTodo(t.Context(), user.ID, "Buy milk", "", "2030-01-01T10:00")
				require.NoError(t, err)

				err = s.DeleteAccount(t.Context(), user.ID, "Abcd123!")
				require.NoError(t, err)

				todos, err := storage.Todo().ListTodosByOwner(t.Context(), user.ID)
				require.NoError(t, err)
				assert.Empty(t, todos, "owned todos should be deleted with the account")

				_, _, err = s.Login(t.Context(), "ada@x.com", "Abcd123!")
				require.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "deleted account must not authenticate")
			})
		})

		t.Run("wrong password fails", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService, _ *postgres.Storage) {
				_, err := s.Register(t.Context(), "Ada", "ada@x.com", "Abcd123!")
				require.NoError(t, err)
				user, _, err := s.Login(t.Context(), "ada@x.com", "Abcd123!")
				require.NoError(t, err)

				err = s.DeleteAccount(t.Context(), user.ID, "Wrong123!")

				require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
			})
		})
	})
}

// Store failures must stay distinguishable from bad credentials or a
// bad token, the handlers log and render 500 for them
func Test_AuthService_StorageFailure(t *testing.T) {
	t.Parallel()

	storageErr := errors.New("connection refused")

	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"})
	require.NoError(t, err, "token manager should be created without errors")

	s, err := NewService(Config{}, tokenManager, brokenStorage{err: storageErr})
	require.NoError(t, err, "auth service could't be started", err)

	t.Run("login propagates store failure", func(t *testing.T) {
		_, _, err := s.Login(t.Context(), "ada@x.com", "Abcd123!")

		require.Error(t, err)
		require.ErrorIs(t, err, storageErr)
		require.NotErrorIs(t, err, apperrors.ErrInvalidCredentials, "store outage must not look like bad credentials")
	})

	t.Run("refresh propagates store failure", func(t *testing.T) {
		pair, err := tokenManager.GeneratePair(models.User{ID: uuid.New(), Email: "ada@x.com"})
		require.NoError(t, err)

		_, err = s.Refresh(t.Context(), pair.Refresh.Value)

		require.Error(t, err)
		require.ErrorIs(t, err, storageErr)
		require.NotErrorIs(t, err, apperrors.ErrInvalidToken, "store outage must not look like a bad token")
	})
}

func Test_AuthService_Auth(t *testing.T) {
	t.Parallel()

	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"})
	require.NoError(t, err, "token manager should be created without errors")

	// Auth never touches storage, the access token is self contained
	s, err := NewService(Config{}, tokenManager, brokenStorage{err: errors.New("must not be called")})
	require.NoError(t, err, "auth service could't be started", err)

	user := models.User{ID: uuid.New(), Email: "ada@x.com"}
	pair, err := tokenManager.GeneratePair(user)
	require.NoError(t, err)

	t.Run("access cookie ok", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/todos", nil)
		r.AddCookie(&http.Cookie{Name: "accessToken", Value: pair.Access.Value})

		ident, err := s.Auth(t.Context(), r)

		require.NoError(t, err)
		assert.Equal(t, user.ID, ident.ID)
		assert.Equal(t, user.Email, ident.Email)
	})

	t.Run("bearer header ok", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/todos", nil)
		r.Header.Set("Authorization", "Bearer "+pair.Access.Value)

		ident, err := s.Auth(t.Context(), r)

		require.NoError(t, err)
		assert.Equal(t, user.ID, ident.ID)
	})

	t.Run("bad requests fail", func(t *testing.T) {
		tests := []struct {
			name   string
			header string
		}{
			{name: "no token at all", header: ""},
			{name: "scheme glued to token", header: "Bearer" + pair.Access.Value},
			{name: "wrong scheme", header: "Basic " + pair.Access.Value},
			{name: "garbage token", header: "Bearer garbage"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := httptest.NewRequest("GET", "/todos", nil)
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}

				_, err := s.Auth(t.Context(), r)

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrInvalidToken)
			})
		}
	})
}
