package handlers

import (
	"net/http"

	"gator-commons/internal/api"
	"gator-commons/internal/engine/actors"
	"gator-commons/internal/models"
	"gator-commons/internal/utils"

	"go.uber.org/zap"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleUserRegistration handles requests to register a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req RegisterUserRequest
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		result, err := s.request(s.Engine.GetAuthActor(), &actors.RegisterUserMsg{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			s.writeError(w, utils.NewAppError(utils.ErrMessageRejected, "unexpected response", nil))
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// HandleUserLogin checks credentials and answers with a signed session token.
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req LoginRequest
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		result, err := s.request(s.Engine.GetAuthActor(), &actors.LoginMsg{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrInvalidCredentials) {
				writeJSON(w, http.StatusUnauthorized, api.LoginResponse{
					Success: false,
					Error:   "invalid username or password",
				})
				return
			}
			s.writeError(w, err)
			return
		}

		sess, ok := result.(*models.Session)
		if !ok {
			s.writeError(w, utils.NewAppError(utils.ErrMessageRejected, "unexpected response", nil))
			return
		}

		token, expiresAt, err := s.Auth.GenerateToken(*sess)
		if err != nil {
			s.writeError(w, utils.NewAppError(utils.ErrMessageRejected, "failed to generate auth token", err))
			return
		}

		s.Logger.Debug("login", zap.Stringer("user_id", sess.UserID))
		writeJSON(w, http.StatusOK, api.LoginResponse{
			Success:   true,
			Token:     token,
			UserID:    sess.UserID.String(),
			Username:  sess.Username,
			ExpiresAt: expiresAt,
		})
	}
}

// HandleUserLogout ends the caller's session. Tokens are not revoked server-side; the
// client drops its copy.
func (s *Server) HandleUserLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		sess, err := session(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if _, err := s.request(s.Engine.GetAuthActor(), &actors.EndSessionMsg{Session: sess}); err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
