package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"gator-commons/internal/utils"

	"github.com/google/uuid"
)

const MaxTitleLength = 300

type Post struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Content       string    `json:"content" db:"content"`
	AuthorID      uuid.UUID `json:"authorId" db:"author_id"`
	AuthorName    string    `json:"authorName" db:"author_name"`
	LikesCount    int       `json:"likesCount" db:"likes_count"`
	CommentsCount int       `json:"commentsCount" db:"comments_count"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// NewPost builds an unsaved post authored by the session holder. Title and content are trimmed.
func NewPost(session Session, title, content string) (*Post, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, utils.NewValidationError("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, utils.NewValidationError("title must be at most 300 characters")
	}
	if content == "" {
		return nil, utils.NewValidationError("content is required")
	}
	return &Post{
		ID:         uuid.Must(uuid.NewV7()),
		Title:      title,
		Content:    content,
		AuthorID:   session.UserID,
		AuthorName: session.Username,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// CounterField names one of the denormalized counters on a post.
type CounterField string

const (
	LikesCount    CounterField = "likes_count"
	CommentsCount CounterField = "comments_count"
)

func (f CounterField) Valid() bool {
	return f == LikesCount || f == CommentsCount
}

// PostPage is one window of the newest-first post listing.
type PostPage struct {
	Items      []*Post `json:"items"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalCount int     `json:"totalCount"`
	TotalPages int     `json:"totalPages"`
}
