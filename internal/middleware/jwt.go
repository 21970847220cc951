// internal/middleware/jwt.go
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gator-commons/internal/models"
	"gator-commons/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTokenExpiration is used when the authenticator is built with a zero TTL.
	DefaultTokenExpiration = 24 * time.Hour

	tokenIssuer = "gator-commons-api"
)

// Claims represents the JWT claims for our application
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// UnprotectedRoutes defines routes that don't require JWT authentication. Keys are either a
// bare path or "METHOD path" when only one method of a path is public.
var UnprotectedRoutes = map[string]bool{
	"/health":            true,
	"/user/register":     true,
	"/user/login":        true,
	"/guestbook":         true,
	"GET /posts":         true,
	"GET /post":          true,
	"GET /post/comments": true,
}

func isUnprotected(method, path string) bool {
	return UnprotectedRoutes[path] || UnprotectedRoutes[method+" "+path]
}

// Authenticator issues and verifies session tokens.
type Authenticator struct {
	secret     []byte
	expiration time.Duration
	logger     *zap.Logger
}

func NewAuthenticator(secret string, expiration time.Duration, logger *zap.Logger) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if expiration <= 0 {
		expiration = DefaultTokenExpiration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		secret:     []byte(secret),
		expiration: expiration,
		logger:     logger.Named("jwt"),
	}, nil
}

// GenerateToken creates a signed token for the session and returns it with its expiry.
func (a *Authenticator) GenerateToken(session models.Session) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(a.expiration)

	claims := &Claims{
		UserID:   session.UserID,
		Username: session.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   session.UserID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expirationTime, nil
}

// ValidateToken verifies signature, issuer and expiry and returns the claims.
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Session turns validated claims back into the caller's session.
func (c *Claims) Session() models.Session {
	return models.Session{UserID: c.UserID, Username: c.Username}
}

// ApplyJWTMiddleware wraps a handler function with JWT authentication
func (a *Authenticator) ApplyJWTMiddleware(handler http.HandlerFunc, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isUnprotected(r.Method, path) {
			handler(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(w, "Invalid authorization format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			a.logger.Debug("rejected token", zap.String("path", path), zap.Error(err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				unauthorized(w, "Token expired")
				return
			}
			unauthorized(w, "Invalid token")
			return
		}

		session := claims.Session()
		if err := session.Validate(); err != nil {
			unauthorized(w, "Invalid token")
			return
		}

		handler(w, r.WithContext(SetSessionInContext(r.Context(), session)))
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  utils.ErrInvalidToken,
	})
}

// Define a custom context key type to avoid collisions
type contextKey string

// SessionKey is the key used to store the session in the context
const SessionKey contextKey = "session"

// SetSessionInContext saves the session in the request context
func SetSessionInContext(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSessionFromContext retrieves the session from the context
func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(SessionKey).(models.Session)
	return session, ok
}
