package domain

import "github.com/google/uuid"

// UserID identifies the caller of the API when bearer authentication is enabled.
// It is a thin wrapper around uuid.UUID to provide type safety at the domain layer.
type UserID uuid.UUID

// String returns the canonical textual form of the ID.
func (u UserID) String() string { return uuid.UUID(u).String() }
