package models

import (
	"time"
	"unicode/utf8"

	"gator-commons/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinSecretLength   = 4
	// bcrypt ignores input past 72 bytes, so longer secrets are rejected up front.
	MaxSecretBytes = 72
)

type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Username   string    `json:"username" db:"username"`
	SecretHash string    `json:"-" db:"secret_hash"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// ValidateCredentials checks the sign-up constraints on a username/secret pair.
// Usernames are case-sensitive and taken as typed.
func ValidateCredentials(username, secret string) error {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return utils.NewValidationError("username must be at least 3 characters")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return utils.NewValidationError("username must be at most 50 characters")
	}
	if utf8.RuneCountInString(secret) < MinSecretLength {
		return utils.NewValidationError("password must be at least 4 characters")
	}
	if len(secret) > MaxSecretBytes {
		return utils.NewValidationError("password must be at most 72 bytes")
	}
	return nil
}

// NewUser validates the credentials and returns a user holding a bcrypt hash of the secret.
func NewUser(username, secret string, cost int) (*User, error) {
	if err := ValidateCredentials(username, secret); err != nil {
		return nil, err
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "failed to hash password", err)
	}
	return &User{
		ID:         uuid.Must(uuid.NewV7()),
		Username:   username,
		SecretHash: string(hash),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// CheckSecret reports whether secret matches the stored hash.
func (u *User) CheckSecret(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.SecretHash), []byte(secret)) == nil
}
