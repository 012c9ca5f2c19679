package types

import "github.com/google/uuid"

// ActorRef identifies who or what is initiating a default view change.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

// IsZero reports whether the actor reference is empty.
func (a ActorRef) IsZero() bool {
	return a.ID == uuid.Nil
}
