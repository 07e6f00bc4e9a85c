package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/metrics"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/validation"
)

// commentService implements CommentService
type commentService struct {
	articles  repository.ArticleRepository
	comments  repository.CommentRepository
	validator *validation.Validator
	now       func() time.Time
	log       zerolog.Logger
}

func newCommentService(repos *repository.Repositories, validator *validation.Validator, now func() time.Time, log zerolog.Logger) *commentService {
	return &commentService{
		articles:  repos.Article,
		comments:  repos.Comment,
		validator: validator,
		now:       now,
		log:       log.With().Str("service", "comment").Logger(),
	}
}

// List returns the comments of an existing article, newest first
func (s *commentService) List(ctx context.Context, articleID string) ([]*models.Comment, error) {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}
	return s.comments.ListByArticle(ctx, articleID)
}

// Create attaches a new comment to an existing article
func (s *commentService) Create(ctx context.Context, articleID string, input models.CommentInput) (*models.Comment, error) {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}

	comment := models.NewComment(articleID, input, s.now())
	if err := validationError(s.validator.ValidateComment(comment)); err != nil {
		return nil, err
	}
	// The article may vanish between the check and the insert; the store reports that as not found.
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	metrics.CommentsCreated.Inc()
	s.log.Info().
		Str("comment_id", comment.ID).
		Str("article_id", articleID).
		Msg("Comment created")
	return comment, nil
}

// Delete removes a comment only when it belongs to articleID
func (s *commentService) Delete(ctx context.Context, articleID, commentID string) error {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return err
	}
	if err := parseID(commentID); err != nil {
		return err
	}

	comment, err := s.comments.GetByArticle(ctx, articleID, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return models.ErrNotFound
	}

	// A concurrent delete may win between the lookup and the delete
	deleted, err := s.comments.Delete(ctx, articleID, commentID)
	if err != nil {
		return err
	}
	if !deleted {
		return models.ErrNotFound
	}

	s.log.Info().
		Str("comment_id", comment.ID).
		Str("article_id", articleID).
		Str("author_name", comment.AuthorName).
		Msg("Comment deleted")
	return nil
}

func (s *commentService) requireArticle(ctx context.Context, articleID string) error {
	if err := parseID(articleID); err != nil {
		return err
	}
	exists, err := s.articles.Exists(ctx, articleID)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrNotFound
	}
	return nil
}
