// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const MaxUsernameLen = 64

var ErrUsernameTooLong = errors.New("username too long")

// ConnID is the opaque per-connection identifier assigned at transport connect.
type ConnID string

// User is the descriptor a client supplies on create/join. ID is always the
// server-assigned connection id of the sender.
type User struct {
	ID       ConnID `json:"id"`
	Username string `json:"username"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// Display names are not validated for uniqueness, only trimmed and bounded.
func NewUser(id ConnID, username string) (User, error) {
	username = strings.TrimSpace(username)
	if len(username) > MaxUsernameLen {
		return User{}, ErrUsernameTooLong
	}
	return User{ID: id, Username: username}, nil
}
