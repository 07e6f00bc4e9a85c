package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/auth"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/validation"
)

// accountService implements AccountService
type accountService struct {
	users     repository.UserRepository
	validator *validation.Validator
	issuer    *auth.Issuer
	now       func() time.Time
	log       zerolog.Logger
}

func newAccountService(users repository.UserRepository, validator *validation.Validator, issuer *auth.Issuer, now func() time.Time, log zerolog.Logger) *accountService {
	return &accountService{
		users:     users,
		validator: validator,
		issuer:    issuer,
		now:       now,
		log:       log.With().Str("service", "account").Logger(),
	}
}

// SignUp registers a user and signs them in
func (s *accountService) SignUp(ctx context.Context, input models.SignUpInput) (*models.Session, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validationError(s.validator.ValidateSignUp(&input)); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("User signed up")
	return s.session(user)
}

// SignIn checks credentials. Unknown email and wrong password fail the same way.
func (s *accountService) SignIn(ctx context.Context, input models.SignInInput) (*models.Session, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, input.Password) {
		s.log.Debug().Msg("Sign in rejected")
		return nil, models.ErrInvalidCredentials
	}

	s.log.Info().Str("user_id", user.ID).Msg("User signed in")
	return s.session(user)
}

func (s *accountService) session(user *models.User) (*models.Session, error) {
	token, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
