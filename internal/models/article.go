package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ArticleStatus is the publication state of an article
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
)

// ValidStatuses lists the allowed article statuses
var ValidStatuses = []ArticleStatus{
	ArticleStatusDraft,
	ArticleStatusPublished,
	ArticleStatusArchived,
}

// Article represents an article in the system
type Article struct {
	ID          string        `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Body        string        `json:"body" db:"body"`
	Status      ArticleStatus `json:"status" db:"status"`
	PublishedAt *time.Time    `json:"published_at" db:"published_at"`
	UserID      string        `json:"user_id" db:"user_id"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// NewArticle returns an empty draft owned by userID
func NewArticle(userID string, now time.Time) *Article {
	return &Article{
		ID:        uuid.New().String(),
		Status:    ArticleStatusDraft,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPublished reports whether the article is currently published
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// IsArchived reports whether the article is currently archived
func (a *Article) IsArchived() bool {
	return a.Status == ArticleStatusArchived
}

// Publish moves the article to published and stamps published_at with now.
// It returns false without touching the article when already published.
func (a *Article) Publish(now time.Time) bool {
	if a.IsPublished() {
		return false
	}
	a.Status = ArticleStatusPublished
	a.PublishedAt = &now
	return true
}

// Unpublish moves a published article back to draft. published_at is kept.
func (a *Article) Unpublish() bool {
	if !a.IsPublished() {
		return false
	}
	a.Status = ArticleStatusDraft
	return true
}

// Archive moves the article to archived. published_at is kept.
func (a *Article) Archive() bool {
	if a.IsArchived() {
		return false
	}
	a.Status = ArticleStatusArchived
	return true
}

// Apply merges the fields present in input onto the article
func (a *Article) Apply(input ArticleInput) {
	if input.Title != nil {
		a.Title = *input.Title
	}
	if input.Body != nil {
		a.Body = *input.Body
	}
	if input.Status != nil {
		a.Status = ArticleStatus(*input.Status)
	}
	if input.PublishedAt.Set {
		if input.PublishedAt.Valid {
			t := input.PublishedAt.Time
			a.PublishedAt = &t
		} else {
			a.PublishedAt = nil
		}
	}
}

// Normalize runs before every write. An article whose status moved to
// published from previous and has no published_at gets one set to now.
// An article that was already published keeps a cleared published_at so
// validation can reject it.
func (a *Article) Normalize(previous ArticleStatus, now time.Time) {
	if a.IsPublished() && a.PublishedAt == nil && previous != ArticleStatusPublished {
		a.PublishedAt = &now
	}
}

// Clone returns a deep copy of the article
func (a *Article) Clone() *Article {
	c := *a
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

// ArticleInput holds the writable article fields of a create or update request.
// Nil fields are left untouched on update.
type ArticleInput struct {
	Title       *string      `json:"title"`
	Body        *string      `json:"body"`
	Status      *string      `json:"status"`
	PublishedAt NullableTime `json:"published_at"`
}

// NullableTime distinguishes an absent JSON key from an explicit null
type NullableTime struct {
	Set   bool
	Valid bool
	Time  time.Time
}

// UnmarshalJSON is only invoked when the key is present
func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		n.Time = time.Time{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Time); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// TimeValue returns a NullableTime holding t
func TimeValue(t time.Time) NullableTime {
	return NullableTime{Set: true, Valid: true, Time: t}
}

// NullTime returns a NullableTime that clears the field
func NullTime() NullableTime {
	return NullableTime{Set: true}
}

// StringPtr is a small helper for building inputs
func StringPtr(s string) *string {
	return &s
}
