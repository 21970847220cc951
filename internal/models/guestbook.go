package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"gator-commons/internal/utils"

	"github.com/google/uuid"
)

const MaxAuthorNameLength = 100

type GuestbookEntry struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AuthorName    string    `json:"authorName" db:"author_name"`
	Message       string    `json:"message" db:"message"`
	Organization  *string   `json:"organization,omitempty" db:"organization"`
	Email         *string   `json:"email,omitempty" db:"email"`
	IsEmailPublic bool      `json:"isEmailPublic" db:"is_email_public"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// NewGuestbookEntry trims every field; blank organization and email are stored as NULL.
func NewGuestbookEntry(authorName, message, organization, email string, isEmailPublic bool) (*GuestbookEntry, error) {
	authorName = strings.TrimSpace(authorName)
	message = strings.TrimSpace(message)
	if authorName == "" {
		return nil, utils.NewValidationError("name is required")
	}
	if utf8.RuneCountInString(authorName) > MaxAuthorNameLength {
		return nil, utils.NewValidationError("name must be at most 100 characters")
	}
	if message == "" {
		return nil, utils.NewValidationError("message is required")
	}
	return &GuestbookEntry{
		ID:            uuid.Must(uuid.NewV7()),
		AuthorName:    authorName,
		Message:       message,
		Organization:  optional(organization),
		Email:         optional(email),
		IsEmailPublic: isEmailPublic,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Masked returns a copy safe to display: the email is dropped unless the author made it public.
func (e GuestbookEntry) Masked() GuestbookEntry {
	if !e.IsEmailPublic {
		e.Email = nil
	}
	return e
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
