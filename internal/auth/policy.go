package auth

import "github.com/blog-publishing-api/internal/models"

// CanMutate reports whether actorID may update or delete article
func CanMutate(article *models.Article, actorID string) bool {
	return article != nil && actorID != "" && article.UserID == actorID
}
