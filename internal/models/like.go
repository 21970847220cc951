package models

import (
	"time"

	"github.com/google/uuid"
)

// Like is the (post, user) relation row. Its existence is the only record of "liked".
type Like struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PostID    uuid.UUID `json:"postId" db:"post_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func NewLike(postID, userID uuid.UUID) *Like {
	return &Like{
		ID:        uuid.Must(uuid.NewV7()),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// LikeState is the result of a toggle: the caller's new state and the post's counter after it.
type LikeState struct {
	PostID     uuid.UUID `json:"postId"`
	Liked      bool      `json:"liked"`
	LikesCount int       `json:"likesCount"`
}
