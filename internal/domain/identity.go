package domain

import "time"

// Identity is an authenticated user. ID is stable across sign-ins; Email is
// the display label.
type Identity struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
