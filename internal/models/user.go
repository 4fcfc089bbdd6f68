package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Name           string
	Email          string
	HashedPassword string

	// Current refresh token value, nil when no session is active.
	// Exactly one refresh token is valid per user at any moment.
	RefreshToken *string
}

// Identity is the authenticated caller attached to request context.
// It carries only what the access token claims prove.
type Identity struct {
	ID    uuid.UUID
	Email string
}
