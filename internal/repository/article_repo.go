package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/models"
)

const articleColumns = `id, user_id, title, body, status, published_at, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.UserID, article.Title, article.Body,
		string(article.Status), article.PublishedAt,
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// Exists checks if an article with the given ID exists
func (r *articleRepo) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// ListPublished returns published articles, newest publication first
func (r *articleRepo) ListPublished(ctx context.Context) ([]*models.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE status = 'published'
		ORDER BY published_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// Mutate locks the article row, applies fn and writes the result back
func (r *articleRepo) Mutate(ctx context.Context, id string, fn ArticleMutation) (*models.Article, error) {
	var result *models.Article

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		article, err := lockArticle(ctx, tx, id)
		if err != nil {
			return err
		}

		original := article.Clone()
		write, err := fn(article)
		if err != nil {
			return err
		}
		if !write {
			result = original
			return nil
		}
		article.UpdatedAt = time.Now()
		query := `
			UPDATE articles
			SET title = $2, body = $3, status = $4, published_at = $5, updated_at = $6
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, query,
			article.ID, article.Title, article.Body,
			string(article.Status), article.PublishedAt, article.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to update article: %w", err)
		}
		result = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the article and its comments in one transaction
func (r *articleRepo) Delete(ctx context.Context, id string, check ArticleCheck) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		article, err := lockArticle(ctx, tx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(article); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE article_id = $1", id); err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id); err != nil {
			return fmt.Errorf("failed to delete article: %w", err)
		}
		return nil
	})
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

func lockArticle(ctx context.Context, tx *sql.Tx, id string) (*models.Article, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 FOR UPDATE`

	article, err := scanArticle(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock article: %w", err)
	}
	return article, nil
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var status string
	var publishedAt sql.NullTime

	err := row.Scan(
		&article.ID, &article.UserID, &article.Title, &article.Body,
		&status, &publishedAt, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Status = models.ArticleStatus(status)
	if publishedAt.Valid {
		article.PublishedAt = &publishedAt.Time
	}
	return &article, nil
}
