package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-publishing-api/internal/api"
	"github.com/blog-publishing-api/internal/auth"
	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/mocks"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/service"
)

const (
	basePath   = "/api/v1"
	testSecret = "test-secret"
)

type testEnv struct {
	router   *gin.Engine
	articles *mocks.MockArticleRepository
	comments *mocks.MockCommentRepository
	pinger   *mocks.MockPinger
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, _, articles, comments := mocks.NewMockRepositories()
	pinger := &mocks.MockPinger{}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080", BasePath: basePath},
		Auth:   config.AuthConfig{SecretKey: testSecret, TokenTTL: time.Hour},
	}

	log := zerolog.Nop()
	services := service.NewServices(repos, pinger, cfg, log)
	router := api.NewRouter(services, cfg, log)

	return &testEnv{router: router, articles: articles, comments: comments, pinger: pinger}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", auth.BearerHeader(token))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signUp registers a user over HTTP and returns its token and id
func (e *testEnv) signUp(t *testing.T, email string) (string, string) {
	t.Helper()

	w := e.do(t, http.MethodPost, basePath+"/auth/sign_up", "", gin.H{"user": gin.H{
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
		"name":                  "Writer",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, auth.BearerHeader(session.Token), w.Header().Get("Authorization"))
	return session.Token, session.User.ID
}

func (e *testEnv) createArticle(t *testing.T, token string, fields gin.H) models.Article {
	t.Helper()
	if _, ok := fields["title"]; !ok {
		fields["title"] = "タイトル"
	}
	if _, ok := fields["body"]; !ok {
		fields["body"] = "本文"
	}
	w := e.do(t, http.MethodPost, basePath+"/articles", token, gin.H{"article": fields})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Article](t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decode[map[string]interface{}](t, w)
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "blog-publishing-api", response["service"])
	assert.NotEmpty(t, w.Header().Get(api.RequestIDHeader))

	env.pinger.SetErr(errors.New("connection refused"))
	w = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	env.do(t, http.MethodGet, basePath+"/articles", "", nil)

	w := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blog_http_requests_total")
}

func TestStatsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	token, _ := env.signUp(t, "stats@example.com")
	env.createArticle(t, token, gin.H{})

	w := env.do(t, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Database service.Counts `json:"database"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Database.Users)
	assert.Equal(t, 1, response.Database.Articles)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(api.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(api.RequestIDHeader))
}

func TestCORSHeaders(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodOptions, basePath+"/articles", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupTestRouter(t)
	token, _ := env.signUp(t, "owner@example.com")
	article := env.createArticle(t, token, gin.H{})

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/articles"},
		{http.MethodPatch, "/articles/" + article.ID},
		{http.MethodPut, "/articles/" + article.ID},
		{http.MethodDelete, "/articles/" + article.ID},
		{http.MethodPost, "/articles/" + article.ID + "/publish"},
		{http.MethodPost, "/articles/" + article.ID + "/unpublish"},
		{http.MethodPost, "/articles/" + article.ID + "/archive"},
	}
	forged, _, err := auth.NewIssuer([]byte("wrong-secret"), time.Hour).Issue(uuid.New().String())
	require.NoError(t, err)

	for _, route := range routes {
		for _, tok := range []string{"", "garbage", forged} {
			t.Run(route.method+" "+route.path, func(t *testing.T) {
				w := env.do(t, route.method, basePath+route.path, tok, gin.H{})
				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.Equal(t, "Unauthorized", errorMessage(t, w))
			})
		}
	}

	stored, err := env.articles.GetByID(context.Background(), article.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusDraft, stored.Status, "rejected requests change nothing")
}

func TestTokenForDeletedUserIsRejected(t *testing.T) {
	env := setupTestRouter(t)

	token, _, err := auth.NewIssuer([]byte(testSecret), time.Hour).Issue(uuid.New().String())
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, basePath+"/articles", token, gin.H{"title": "T", "body": "B"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestArticleLifecycle(t *testing.T) {
	env := setupTestRouter(t)
	token, userID := env.signUp(t, "writer@example.com")

	article := env.createArticle(t, token, gin.H{"user_id": "someone-else"})
	assert.Equal(t, models.ArticleStatusDraft, article.Status)
	assert.Equal(t, userID, article.UserID, "owner comes from the token")

	// Drafts are readable by id but not listed
	w := env.do(t, http.MethodGet, basePath+"/articles/"+article.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, basePath+"/articles", "", nil)
	assert.Empty(t, decode[[]models.Article](t, w))

	// Publish
	w = env.do(t, http.MethodPost, basePath+"/articles/"+article.ID+"/publish", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	published := decode[struct {
		Changed bool           `json:"changed"`
		Article models.Article `json:"article"`
	}](t, w)
	assert.True(t, published.Changed)
	assert.Equal(t, models.ArticleStatusPublished, published.Article.Status)
	require.NotNil(t, published.Article.PublishedAt)

	// Second publish is a no-op
	w = env.do(t, http.MethodPost, basePath+"/articles/"+article.ID+"/publish", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[map[string]interface{}](t, w)["changed"].(bool))

	w = env.do(t, http.MethodGet, basePath+"/articles", "", nil)
	listed := decode[[]models.Article](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, article.ID, listed[0].ID)

	// Update with flat fields
	w = env.do(t, http.MethodPatch, basePath+"/articles/"+article.ID, token, gin.H{"title": "更新後"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "更新後", decode[models.Article](t, w).Title)

	// Clearing published_at on a published article fails
	w = env.do(t, http.MethodPatch, basePath+"/articles/"+article.ID, token, `{"article":{"published_at":null}}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode[map[string][]string](t, w)["errors"]
	assert.Equal(t, []string{"公開日時は公開状態の場合必須です"}, errs)

	// Unpublish keeps published_at
	w = env.do(t, http.MethodPost, basePath+"/articles/"+article.ID+"/unpublish", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	unpublished := decode[struct {
		Changed bool           `json:"changed"`
		Article models.Article `json:"article"`
	}](t, w)
	assert.True(t, unpublished.Changed)
	assert.Equal(t, models.ArticleStatusDraft, unpublished.Article.Status)
	assert.NotNil(t, unpublished.Article.PublishedAt)

	// Archive
	w = env.do(t, http.MethodPost, basePath+"/articles/"+article.ID+"/archive", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Delete
	w = env.do(t, http.MethodDelete, basePath+"/articles/"+article.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, basePath+"/articles/"+article.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Record not found", errorMessage(t, w))
}

func TestCreateArticle_ValidationErrors(t *testing.T) {
	env := setupTestRouter(t)
	token, _ := env.signUp(t, "writer@example.com")

	w := env.do(t, http.MethodPost, basePath+"/articles", token, gin.H{"article": gin.H{
		"title": strings.Repeat("あ", 101),
		"body":  "",
	}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode[map[string][]string](t, w)["errors"]
	assert.Equal(t, []string{
		"タイトルは100文字以内で入力してください",
		"本文を入力してください",
	}, errs)

	w = env.do(t, http.MethodPost, basePath+"/articles", token, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, "an empty body is an empty article")

	w = env.do(t, http.MethodPost, basePath+"/articles", token, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNonOwnerIsForbidden(t *testing.T) {
	env := setupTestRouter(t)
	ownerToken, _ := env.signUp(t, "owner@example.com")
	otherToken, _ := env.signUp(t, "other@example.com")
	article := env.createArticle(t, ownerToken, gin.H{})

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodPatch, "/articles/" + article.ID},
		{http.MethodDelete, "/articles/" + article.ID},
		{http.MethodPost, "/articles/" + article.ID + "/publish"},
		{http.MethodPost, "/articles/" + article.ID + "/unpublish"},
		{http.MethodPost, "/articles/" + article.ID + "/archive"},
	}
	for _, r := range requests {
		w := env.do(t, r.method, basePath+r.path, otherToken, gin.H{"title": "hijack"})
		assert.Equal(t, http.StatusForbidden, w.Code, r.method+" "+r.path)
		assert.Equal(t, "Forbidden", errorMessage(t, w))
	}

	w := env.do(t, http.MethodGet, basePath+"/articles/"+article.ID, "", nil)
	assert.Equal(t, article.Title, decode[models.Article](t, w).Title)
}

func TestMissingArticleIsNotFound(t *testing.T) {
	env := setupTestRouter(t)
	token, _ := env.signUp(t, "writer@example.com")

	for _, id := range []string{uuid.New().String(), "999"} {
		w := env.do(t, http.MethodGet, basePath+"/articles/"+id, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = env.do(t, http.MethodPost, basePath+"/articles/"+id+"/publish", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = env.do(t, http.MethodGet, basePath+"/articles/"+id+"/comments", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = env.do(t, http.MethodPost, basePath+"/articles/"+id+"/comments", "", gin.H{"author_name": "a", "body": "b"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestComments(t *testing.T) {
	env := setupTestRouter(t)
	token, _ := env.signUp(t, "writer@example.com")
	article := env.createArticle(t, token, gin.H{})
	other := env.createArticle(t, token, gin.H{})
	commentsPath := fmt.Sprintf("%s/articles/%s/comments", basePath, article.ID)

	w := env.do(t, http.MethodPost, commentsPath, "", gin.H{"comment": gin.H{"author_name": "読者", "body": "良い記事"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[models.Comment](t, w)
	assert.Equal(t, article.ID, first.ArticleID)

	time.Sleep(2 * time.Millisecond)
	w = env.do(t, http.MethodPost, commentsPath, "", gin.H{"author_name": "別の読者", "body": "同意"})
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[models.Comment](t, w)

	w = env.do(t, http.MethodGet, commentsPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Comment](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	w = env.do(t, http.MethodPost, commentsPath, "", gin.H{"comment": gin.H{"author_name": strings.Repeat("a", 51)}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, decode[map[string][]string](t, w)["errors"], 2)

	// A comment id under a different article is not found
	w = env.do(t, http.MethodDelete, fmt.Sprintf("%s/articles/%s/comments/%s", basePath, other.ID, first.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("%s/%s", commentsPath, first.ID), "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Deleting the article removes the remaining comment
	w = env.do(t, http.MethodDelete, basePath+"/articles/"+article.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	count, err := env.comments.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSignInAndSignUp(t *testing.T) {
	env := setupTestRouter(t)
	env.signUp(t, "writer@example.com")

	w := env.do(t, http.MethodPost, basePath+"/auth/sign_up", "", gin.H{"user": gin.H{
		"email":                 "WRITER@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
		"name":                  "Dup",
	}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, basePath+"/auth/sign_up", "", gin.H{"email": "bad", "password": "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, basePath+"/auth/sign_in", "", gin.H{"user": gin.H{"email": "writer@example.com", "password": "password123"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Authorization"))
	token := decode[map[string]interface{}](t, w)["token"].(string)

	w = env.do(t, http.MethodPost, basePath+"/articles", token, gin.H{"title": "T", "body": "B"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, basePath+"/auth/sign_in", "", gin.H{"email": "writer@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password.", errorMessage(t, w))

	w = env.do(t, http.MethodDelete, basePath+"/auth/sign_out", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStoreFailureIsInternalError(t *testing.T) {
	env := setupTestRouter(t)
	env.articles.Err = errors.New("connection reset by peer")

	w := env.do(t, http.MethodGet, basePath+"/articles", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorMessage(t, w))
}
