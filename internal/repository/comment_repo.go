package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/models"
)

const commentColumns = `id, article_id, author_name, body, created_at, updated_at`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment. A missing parent article yields models.ErrNotFound.
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (` + commentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ArticleID, comment.AuthorName, comment.Body,
		comment.CreatedAt, comment.UpdatedAt,
	)
	if database.IsForeignKeyViolation(err) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByArticle retrieves a comment only if it belongs to articleID
func (r *commentRepo) GetByArticle(ctx context.Context, articleID, id string) (*models.Comment, error) {
	if !validID(articleID) || !validID(id) {
		return nil, nil
	}

	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1 AND article_id = $2`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id, articleID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// ListByArticle returns the comments of an article, newest first
func (r *commentRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	if !validID(articleID) {
		return comments, nil
	}

	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE article_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// Delete removes a comment scoped to its article and reports whether a row went away
func (r *commentRepo) Delete(ctx context.Context, articleID, id string) (bool, error) {
	if !validID(articleID) || !validID(id) {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1 AND article_id = $2", id, articleID)
	if err != nil {
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	err := row.Scan(
		&comment.ID, &comment.ArticleID, &comment.AuthorName, &comment.Body,
		&comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
