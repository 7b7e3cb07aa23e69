package state

import "time"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Key scopes a conversation to one user in one chat.
type Key struct {
	UserID int64
	ChatID int64
}

// Entry is a snapshot of a stored session.
type Entry[T any] struct {
	State     State
	Data      T
	StartedAt time.Time
	TouchedAt time.Time
}

// DefaultIdleTimeout matches the conversation timeout users are told about.
const DefaultIdleTimeout = 30 * time.Minute
