package database

import (
	"context"
	"database/sql"
	"errors"

	"gator-commons/internal/models"
	"gator-commons/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateUser inserts a new user. A taken username surfaces as ErrUsernameTaken; the
// unique constraint decides, so two racing sign-ups cannot both succeed.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, secret_hash, created_at)
		VALUES (:id, :username, :secret_hash, :created_at)`

	if _, err := s.DB.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return utils.NewAppError(utils.ErrUsernameTaken, "username is already taken", nil)
		}
		s.logger.Error("failed to save user", zap.String("username", user.Username), zap.Error(err))
		return utils.NewAppError(utils.ErrDatabase, "failed to save user", err)
	}
	return nil
}

// GetUserByUsername fetches a user by exact, case-sensitive username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := s.DB.Rebind(`SELECT id, username, secret_hash, created_at FROM users WHERE username = ?`)

	var user models.User
	if err := s.DB.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("user")
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query user by username", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
