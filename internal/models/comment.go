package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents a comment on an article
type Comment struct {
	ID         string    `json:"id" db:"id"`
	ArticleID  string    `json:"article_id" db:"article_id"`
	AuthorName string    `json:"author_name" db:"author_name"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CommentInput holds the fields accepted when posting a comment
type CommentInput struct {
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
}

// NewComment builds a comment under articleID from input
func NewComment(articleID string, input CommentInput, now time.Time) *Comment {
	return &Comment{
		ID:         uuid.New().String(),
		ArticleID:  articleID,
		AuthorName: input.AuthorName,
		Body:       input.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Limits shared by validation and the schema
const (
	MaxTitleLength      = 100
	MaxAuthorNameLength = 50
)
