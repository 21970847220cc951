package api

import (
	"time"

	"gator-commons/internal/utils"
)

type LoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token,omitempty"`
	Error     string    `json:"error,omitempty"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status         string                 `json:"status"`
	Database       string                 `json:"database"`
	PostCount      int                    `json:"post_count"`
	GuestbookCount int                    `json:"guestbook_count"`
	ServerTime     time.Time              `json:"server_time"`
	Metrics        *utils.MetricsSnapshot `json:"metrics,omitempty"`
}
