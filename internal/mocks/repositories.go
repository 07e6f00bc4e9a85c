package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.ArticleRepository = (*MockArticleRepository)(nil)
	_ repository.CommentRepository = (*MockCommentRepository)(nil)
)

// NewMockRepositories builds linked in-memory repositories sharing one lock,
// so deleting an article cascades to its comments and comments require a parent.
func NewMockRepositories() (*repository.Repositories, *MockUserRepository, *MockArticleRepository, *MockCommentRepository) {
	mu := &sync.Mutex{}

	users := NewMockUserRepository()
	articles := NewMockArticleRepository()
	comments := NewMockCommentRepository()

	users.mu = mu
	articles.mu = mu
	comments.mu = mu
	articles.comments = comments
	comments.articles = articles

	repos := &repository.Repositories{
		User:    users,
		Article: articles,
		Comment: comments,
	}
	return repos, users, articles, comments
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mu          *sync.Mutex
	Users       map[string]*models.User
	EmailToUser map[string]*models.User
	Err         error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		mu:          &sync.Mutex{},
		Users:       make(map[string]*models.User),
		EmailToUser: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if _, taken := m.EmailToUser[user.Email]; taken {
		return models.ErrEmailTaken
	}
	stored := *user
	m.Users[user.ID] = &stored
	m.EmailToUser[user.Email] = &stored
	return nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if u, ok := m.EmailToUser[strings.ToLower(strings.TrimSpace(email))]; ok {
		found := *u
		return &found, nil
	}
	return nil, nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	_, exists := m.Users[id]
	return exists, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), m.Err
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	mu       *sync.Mutex
	comments *MockCommentRepository
	Articles map[string]*models.Article
	Err      error
	// Writes counts calls to Mutate that stored a change
	Writes int
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		mu:       &sync.Mutex{},
		Articles: make(map[string]*models.Article),
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Articles[article.ID] = article.Clone()
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if a, ok := m.Articles[id]; ok {
		return a.Clone(), nil
	}
	return nil, nil
}

func (m *MockArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	_, exists := m.Articles[id]
	return exists, nil
}

func (m *MockArticleRepository) ListPublished(ctx context.Context) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*models.Article, 0)
	for _, a := range m.Articles {
		if a.IsPublished() {
			result = append(result, a.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		pi, pj := result[i].PublishedAt, result[j].PublishedAt
		if pi != nil && pj != nil && !pi.Equal(*pj) {
			return pi.After(*pj)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (m *MockArticleRepository) Mutate(ctx context.Context, id string, fn repository.ArticleMutation) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	stored, ok := m.Articles[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	working := stored.Clone()
	write, err := fn(working)
	if err != nil {
		return nil, err
	}
	if !write {
		return stored.Clone(), nil
	}
	working.UpdatedAt = time.Now()
	m.Articles[id] = working
	m.Writes++
	return working.Clone(), nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string, check repository.ArticleCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	stored, ok := m.Articles[id]
	if !ok {
		return models.ErrNotFound
	}
	if check != nil {
		if err := check(stored.Clone()); err != nil {
			return err
		}
	}

	delete(m.Articles, id)
	if m.comments != nil {
		m.comments.deleteByArticleLocked(id)
	}
	return nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), m.Err
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mu       *sync.Mutex
	articles *MockArticleRepository
	Comments map[string]*models.Comment
	Err      error
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		mu:       &sync.Mutex{},
		Comments: make(map[string]*models.Comment),
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if m.articles != nil {
		if _, ok := m.articles.Articles[comment.ArticleID]; !ok {
			return models.ErrNotFound
		}
	}
	stored := *comment
	m.Comments[comment.ID] = &stored
	return nil
}

func (m *MockCommentRepository) GetByArticle(ctx context.Context, articleID, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.Comments[id]
	if !ok || c.ArticleID != articleID {
		return nil, nil
	}
	found := *c
	return &found, nil
}

func (m *MockCommentRepository) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*models.Comment, 0)
	for _, c := range m.Comments {
		if c.ArticleID == articleID {
			found := *c
			result = append(result, &found)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, articleID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	c, ok := m.Comments[id]
	if !ok || c.ArticleID != articleID {
		return false, nil
	}
	delete(m.Comments, id)
	return true, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments), m.Err
}

func (m *MockCommentRepository) deleteByArticleLocked(articleID string) {
	for id, c := range m.Comments {
		if c.ArticleID == articleID {
			delete(m.Comments, id)
		}
	}
}
