package middleware

import (
	"context"
	"net/http"

	"github.com/nstepanov/todofy/internal/handlers"
	"github.com/nstepanov/todofy/internal/handlers/render"
	"github.com/nstepanov/todofy/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.Identity, error)
}

// AuthMiddleware gates every protected route
// Requests without a valid access token never reach the handler
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := as.Auth(r.Context(), r)
			if err != nil {
				render.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := handlers.NewContextWithIdentity(r.Context(), ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
