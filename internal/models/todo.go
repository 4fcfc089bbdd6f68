package models

import (
	"time"

	"github.com/google/uuid"
)

// Boundaries enforced both at the HTTP layer and before any store write
const (
	TodoTitleMaxLen       = 100
	TodoDescriptionMaxLen = 200
)

type Todo struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string
	Description string
	Status      bool
	DueTime     string
	OwnerID     uuid.UUID
}
