package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/auth"
	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/validation"
)

// ArticleService defines the article lifecycle operations.
// actorID is the resolved identity of the caller; it is never read from request data.
type ArticleService interface {
	List(ctx context.Context) ([]*models.Article, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	Create(ctx context.Context, actorID string, input models.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, actorID, id string, patch models.ArticleInput) (*models.Article, error)
	Publish(ctx context.Context, actorID, id string) (*models.Article, bool, error)
	Unpublish(ctx context.Context, actorID, id string) (*models.Article, bool, error)
	Archive(ctx context.Context, actorID, id string) (*models.Article, bool, error)
	Delete(ctx context.Context, actorID, id string) error
}

// CommentService defines comment operations scoped to an article
type CommentService interface {
	List(ctx context.Context, articleID string) ([]*models.Comment, error)
	Create(ctx context.Context, articleID string, input models.CommentInput) (*models.Comment, error)
	Delete(ctx context.Context, articleID, commentID string) error
}

// AccountService defines sign up and sign in
type AccountService interface {
	SignUp(ctx context.Context, input models.SignUpInput) (*models.Session, error)
	SignIn(ctx context.Context, input models.SignInInput) (*models.Session, error)
}

// IdentityService resolves an Authorization header to a user id
type IdentityService interface {
	Resolve(ctx context.Context, header string) (string, error)
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthService defines liveness and record counts
type HealthService interface {
	Check(ctx context.Context) error
	Counts(ctx context.Context) (*Counts, error)
}

// Services holds all service interfaces
type Services struct {
	Article  ArticleService
	Comment  CommentService
	Account  AccountService
	Identity IdentityService
	Health   HealthService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, pinger Pinger, cfg *config.Config, log zerolog.Logger) *Services {
	secret := []byte(cfg.Auth.SecretKey)
	validator := validation.NewValidator()

	return &Services{
		Article:  newArticleService(repos, validator, time.Now, log),
		Comment:  newCommentService(repos, validator, time.Now, log),
		Account:  newAccountService(repos.User, validator, auth.NewIssuer(secret, cfg.Auth.TokenTTL), time.Now, log),
		Identity: auth.NewVerifier(secret, repos.User, log),
		Health:   newHealthService(repos, pinger),
	}
}

// parseID rejects ids that cannot name any record
func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.ErrNotFound
	}
	return nil
}

func validationError(errs []validation.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return &models.ValidationError{Messages: validation.MessageTexts(errs)}
}
