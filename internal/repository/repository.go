package repository

import (
	"context"

	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/models"
)

// ArticleMutation changes a row-locked article in place.
// Returning false leaves the stored row untouched.
type ArticleMutation func(article *models.Article) (bool, error)

// ArticleCheck inspects a row-locked article before it is removed
type ArticleCheck func(article *models.Article) error

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListPublished(ctx context.Context) ([]*models.Article, error)
	// Mutate serializes read-modify-write on one article. It returns
	// models.ErrNotFound when the article does not exist.
	Mutate(ctx context.Context, id string, fn ArticleMutation) (*models.Article, error)
	// Delete removes the article and its comments atomically after check passes
	Delete(ctx context.Context, id string, check ArticleCheck) error
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByArticle(ctx context.Context, articleID, id string) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
	Delete(ctx context.Context, articleID, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Article ArticleRepository
	Comment CommentRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepo(db),
		Article: NewArticleRepo(db),
		Comment: NewCommentRepo(db),
	}
}
