// Package domain contains core concepts of the chat service.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the live association between a claimed nickname and one
// connection. It exists from the first successful /nick until disconnect
// or rename, and is the sole form of identity in the system.
type Session struct {
	ID          uuid.UUID // connection identifier, for logs only
	Nickname    string
	ConnectedAt time.Time
}

func NewSession(nickname string) Session {
	return Session{
		ID:          uuid.New(),
		Nickname:    nickname,
		ConnectedAt: time.Now().UTC(),
	}
}
