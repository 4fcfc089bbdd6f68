package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstepanov/todofy/internal/apperrors"
	"github.com/nstepanov/todofy/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), "Test User", "test@example.com", "hashedpassword123")

			require.NoError(t, err)
			assert.Equal(t, "Test User", user.Name)
			assert.Equal(t, "test@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.Nil(t, user.RefreshToken, "new user should have no refresh token")
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user duplicate email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.CreateUser(t.Context(), "First", "same@example.com", "hash1")
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), "Second", "same@example.com", "hash2")

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists, "should return well known error")
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "Find Me", "findbyid@example.com", "hashedpassword123")
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Name, got.Name)
			assert.Equal(t, created.Email, got.Email)
			assert.Equal(t, created.HashedPassword, got.HashedPassword)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			assert.Error(t, err, "Should return error for non-existent user")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "Find Me", "findbyemail@example.com", "hashedpassword123")
			require.NoError(t, err)

			got, err := r.GetUserByEmail(t.Context(), "findbyemail@example.com")

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByEmail(t.Context(), "nobody@example.com")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("update refresh token replaces the slot", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "Rotate Me", "rotate@example.com", "hash")
			require.NoError(t, err)

			first := "refresh-token-1"
			err = r.UpdateRefreshToken(t.Context(), created.ID, &first)
			require.NoError(t, err)

			second := "refresh-token-2"
			err = r.UpdateRefreshToken(t.Context(), created.ID, &second)
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.NotNil(t, got.RefreshToken)
			assert.Equal(t, second, *got.RefreshToken, "the slot holds exactly one value, the latest")
		})
	})

	t.Run("update refresh token with nil clears the slot", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "Clear Me", "clear@example.com", "hash")
			require.NoError(t, err)

			token := "refresh-token"
			require.NoError(t, r.UpdateRefreshToken(t.Context(), created.ID, &token))
			require.NoError(t, r.UpdateRefreshToken(t.Context(), created.ID, nil))

			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Nil(t, got.RefreshToken)
		})
	})

	t.Run("update refresh token of missing user fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			token := "refresh-token"
			err := r.UpdateRefreshToken(t.Context(), uuid.New(), &token)

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("delete user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "Delete Me", "delete@example.com", "hash")
			require.NoError(t, err)

			count, err := r.DeleteUser(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			_, err = r.GetUserByID(t.Context(), created.ID)
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("delete missing user returns zero", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			count, err := r.DeleteUser(t.Context(), uuid.New())

			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})
	})

	t.Run("delete user cascades todos", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			users := UserRepo{DB: tx}
			todos := TodoRepo{DB: tx}

			owner, err := users.CreateUser(t.Context(), "Owner", "cascade@example.com", "hash")
			require.NoError(t, err)
			_, err = todos.CreateTodo(t.Context(), owner.ID, "Buy milk", "", "2030-01-01T10:00")
			require.NoError(t, err)

			_, err = users.DeleteUser(t.Context(), owner.ID)
			require.NoError(t, err)

			left, err := todos.ListTodosByOwner(t.Context(), owner.ID)
			require.NoError(t, err)
			assert.Empty(t, left, "FK cascade should remove owned todos")
		})
	})
}
