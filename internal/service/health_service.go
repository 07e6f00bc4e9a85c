package service

import (
	"context"
	"fmt"

	"github.com/blog-publishing-api/internal/repository"
)

// Counts is a snapshot of stored record totals
type Counts struct {
	Users    int `json:"users"`
	Articles int `json:"articles"`
	Comments int `json:"comments"`
}

// healthService implements HealthService
type healthService struct {
	repos  *repository.Repositories
	pinger Pinger
}

func newHealthService(repos *repository.Repositories, pinger Pinger) *healthService {
	return &healthService{repos: repos, pinger: pinger}
}

// Check pings the database
func (s *healthService) Check(ctx context.Context) error {
	if s.pinger == nil {
		return nil
	}
	return s.pinger.HealthCheck(ctx)
}

// Counts returns the number of users, articles and comments
func (s *healthService) Counts(ctx context.Context) (*Counts, error) {
	var counts Counts
	var err error

	if counts.Users, err = s.repos.User.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if counts.Articles, err = s.repos.Article.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	if counts.Comments, err = s.repos.Comment.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return &counts, nil
}
