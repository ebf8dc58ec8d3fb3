package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidSessionID indicates a session with no identifier.
var ErrInvalidSessionID = errors.New("session id must not be empty")

// Session identifies one player's ongoing playthrough. It owns exactly one
// timeline and at most one active combat encounter.
type Session struct {
	ID        string
	Name      string
	Seed      int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateSession validates session invariants.
func ValidateSession(s Session) error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrInvalidSessionID
	}
	return nil
}
