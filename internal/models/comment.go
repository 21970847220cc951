package models

import (
	"strings"
	"time"

	"gator-commons/internal/utils"

	"github.com/google/uuid"
)

type Comment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PostID     uuid.UUID `json:"postId" db:"post_id"`
	AuthorID   uuid.UUID `json:"authorId" db:"author_id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

func NewComment(session Session, postID uuid.UUID, content string) (*Comment, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if postID == uuid.Nil {
		return nil, utils.NewValidationError("post id is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.NewValidationError("comment content is required")
	}
	return &Comment{
		ID:         uuid.Must(uuid.NewV7()),
		PostID:     postID,
		AuthorID:   session.UserID,
		AuthorName: session.Username,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
