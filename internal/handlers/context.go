package handlers

import (
	"context"

	"github.com/nstepanov/todofy/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

func NewContextWithIdentity(ctx context.Context, ident models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(models.Identity)
	return ident, ok
}
