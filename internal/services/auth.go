// Package services holds the content-interaction rules: sessions, posts, comments,
// likes and the guestbook. Every authenticated operation takes the caller's
// models.Session explicitly.
package services

import (
	"context"

	"gator-commons/internal/database"
	"gator-commons/internal/models"
	"gator-commons/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	store      database.CredentialStore
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(store database.CredentialStore, bcryptCost int, logger *zap.Logger) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		store:      store,
		bcryptCost: bcryptCost,
		logger:     logger.Named("auth"),
	}
}

// Register validates and stores a new user. Length rules are checked before the store is
// consulted; a taken username comes back as ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, username, secret string) (*models.User, error) {
	user, err := models.NewUser(username, secret, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.Stringer("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate verifies a username/secret pair and returns the session snapshot.
// Unknown users and wrong secrets are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username, secret string) (*models.Session, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return nil, utils.NewAppError(utils.ErrInvalidCredentials, "invalid username or password", nil)
		}
		return nil, err
	}
	if !user.CheckSecret(secret) {
		s.logger.Debug("password mismatch", zap.String("username", username))
		return nil, utils.NewAppError(utils.ErrInvalidCredentials, "invalid username or password", nil)
	}

	session := models.NewSession(user)
	return &session, nil
}

// EndSession discards a session. Sessions are bearer snapshots, so there is no server
// state to revoke.
func (s *AuthService) EndSession(ctx context.Context, session models.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	s.logger.Info("session ended", zap.Stringer("user_id", session.UserID))
	return nil
}
