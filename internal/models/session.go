package models

import (
	"gator-commons/internal/utils"

	"github.com/google/uuid"
)

// Session is the authenticated identity a caller passes into every authenticated operation.
// It is a snapshot taken at login and is never persisted.
type Session struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
}

func NewSession(user *User) Session {
	return Session{UserID: user.ID, Username: user.Username}
}

func (s Session) Validate() error {
	if s.UserID == uuid.Nil || s.Username == "" {
		return utils.NewUnauthorizedError("missing session")
	}
	return nil
}
