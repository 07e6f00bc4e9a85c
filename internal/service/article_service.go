package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/auth"
	"github.com/blog-publishing-api/internal/metrics"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/validation"
)

// Lifecycle transition names used in logs and metrics
const (
	transitionPublish   = "publish"
	transitionUnpublish = "unpublish"
	transitionArchive   = "archive"
	transitionUpdate    = "update"
	transitionDelete    = "delete"
)

// articleService implements ArticleService
type articleService struct {
	articles  repository.ArticleRepository
	validator *validation.Validator
	now       func() time.Time
	log       zerolog.Logger
}

func newArticleService(repos *repository.Repositories, validator *validation.Validator, now func() time.Time, log zerolog.Logger) *articleService {
	return &articleService{
		articles:  repos.Article,
		validator: validator,
		now:       now,
		log:       log.With().Str("service", "article").Logger(),
	}
}

// List returns published articles, most recently published first
func (s *articleService) List(ctx context.Context) ([]*models.Article, error) {
	return s.articles.ListPublished(ctx)
}

// Get returns an article in any status
func (s *articleService) Get(ctx context.Context, id string) (*models.Article, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, models.ErrNotFound
	}
	return article, nil
}

// Create stores a new article owned by actorID. Articles start as drafts
// unless input says otherwise.
func (s *articleService) Create(ctx context.Context, actorID string, input models.ArticleInput) (*models.Article, error) {
	if actorID == "" {
		return nil, models.ErrUnauthenticated
	}

	now := s.now()
	article := models.NewArticle(actorID, now)
	article.Apply(input)
	article.Normalize("", now)

	if err := validationError(s.validator.ValidateArticle(article)); err != nil {
		return nil, err
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("user_id", actorID).
		Str("status", string(article.Status)).
		Msg("Article created")
	return article, nil
}

// Update merges patch onto the stored article under a row lock
func (s *articleService) Update(ctx context.Context, actorID, id string, patch models.ArticleInput) (*models.Article, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	article, err := s.articles.Mutate(ctx, id, func(a *models.Article) (bool, error) {
		if !auth.CanMutate(a, actorID) {
			return false, models.ErrForbidden
		}
		previous := a.Status
		a.Apply(patch)
		a.Normalize(previous, s.now())

		if err := validationError(s.validator.ValidateArticle(a)); err != nil {
			return false, err
		}
		return true, nil
	})
	s.observe(transitionUpdate, id, actorID, true, err)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// Publish moves an article to published and stamps published_at.
// An already published article is returned unchanged.
func (s *articleService) Publish(ctx context.Context, actorID, id string) (*models.Article, bool, error) {
	return s.transition(ctx, transitionPublish, actorID, id, func(a *models.Article) bool {
		return a.Publish(s.now())
	})
}

// Unpublish returns a published article to draft, keeping published_at
func (s *articleService) Unpublish(ctx context.Context, actorID, id string) (*models.Article, bool, error) {
	return s.transition(ctx, transitionUnpublish, actorID, id, func(a *models.Article) bool {
		return a.Unpublish()
	})
}

// Archive retires an article from any status
func (s *articleService) Archive(ctx context.Context, actorID, id string) (*models.Article, bool, error) {
	return s.transition(ctx, transitionArchive, actorID, id, func(a *models.Article) bool {
		return a.Archive()
	})
}

// Delete removes an article together with all of its comments
func (s *articleService) Delete(ctx context.Context, actorID, id string) error {
	if err := parseID(id); err != nil {
		return err
	}

	err := s.articles.Delete(ctx, id, func(a *models.Article) error {
		if !auth.CanMutate(a, actorID) {
			return models.ErrForbidden
		}
		return nil
	})
	s.observe(transitionDelete, id, actorID, true, err)
	return err
}

// transition applies a guarded lifecycle step. The row lock makes racing
// callers observe each other, so only one of them sees changed=true.
func (s *articleService) transition(ctx context.Context, name, actorID, id string, step func(*models.Article) bool) (*models.Article, bool, error) {
	if err := parseID(id); err != nil {
		return nil, false, err
	}

	changed := false
	article, err := s.articles.Mutate(ctx, id, func(a *models.Article) (bool, error) {
		if !auth.CanMutate(a, actorID) {
			return false, models.ErrForbidden
		}
		changed = step(a)
		return changed, nil
	})
	s.observe(name, id, actorID, changed, err)
	if err != nil {
		return nil, false, err
	}
	return article, changed, nil
}

func (s *articleService) observe(transition, id, actorID string, changed bool, err error) {
	result := metrics.ResultUnchanged
	switch {
	case errors.Is(err, models.ErrForbidden):
		result = metrics.ResultForbidden
	case errors.Is(err, models.ErrNotFound):
		result = metrics.ResultNotFound
	case err != nil:
		result = metrics.ResultError
	case changed:
		result = metrics.ResultChanged
	}
	metrics.ObserveTransition(transition, result)

	event := s.log.Debug()
	if result == metrics.ResultChanged {
		event = s.log.Info()
	}
	if result == metrics.ResultError && models.KindOf(err) == 0 {
		event = s.log.Error().Err(err)
	}
	event.
		Str("transition", transition).
		Str("article_id", id).
		Str("user_id", actorID).
		Str("result", result).
		Msg("Article transition")
}
