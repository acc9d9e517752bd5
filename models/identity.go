package models

import "github.com/google/uuid"

// Identity identifies the caller of a core operation. Handlers resolve it
// once at the request boundary; services never reach into ambient request
// state to discover who is calling.
type Identity struct {
	UserID    uuid.UUID `json:"user_id"`
	Anonymous bool      `json:"anonymous"`
}

// Authenticated returns the identity of a signed-in user.
func Authenticated(userID uuid.UUID) Identity {
	return Identity{UserID: userID}
}

// Anonymous returns the identity used for unauthenticated callers. An
// anonymous caller still carries a user ID so anything they create has an
// owner in the stores.
func Anonymous(userID uuid.UUID) Identity {
	return Identity{UserID: userID, Anonymous: true}
}
