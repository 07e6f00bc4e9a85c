package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-publishing-api/internal/models"
)

var testSecret = []byte("test-secret-key")

type stubUsers struct {
	ids map[string]bool
	err error
}

func (s stubUsers) Exists(ctx context.Context, id string) (bool, error) {
	return s.ids[id], s.err
}

func TestVerifier_Resolve(t *testing.T) {
	users := stubUsers{ids: map[string]bool{"user-1": true}}
	verifier := NewVerifier(testSecret, users, zerolog.Nop())
	issuer := NewIssuer(testSecret, time.Hour)

	valid, _, err := issuer.Issue("user-1")
	require.NoError(t, err)
	unknownSubject, _, err := issuer.Issue("user-404")
	require.NoError(t, err)
	wrongKey, _, err := NewIssuer([]byte("other-key"), time.Hour).Issue("user-1")
	require.NoError(t, err)

	expiredIssuer := NewIssuer(testSecret, time.Hour)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredIssuer.Issue("user-1")
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).SignedString(testSecret)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		wantID string
	}{
		{"valid token", BearerHeader(valid), "user-1"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic " + valid, ""},
		{"empty bearer", "Bearer ", ""},
		{"malformed token", "Bearer not.a.jwt", ""},
		{"invalid signature", BearerHeader(wrongKey), ""},
		{"expired token", BearerHeader(expired), ""},
		{"token without expiry", BearerHeader(noExp), ""},
		{"token without subject", BearerHeader(noSubject), ""},
		{"unsigned token", BearerHeader(unsigned), ""},
		{"subject not found", BearerHeader(unknownSubject), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := verifier.Resolve(context.Background(), tt.header)
			if tt.wantID != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
				return
			}
			assert.Empty(t, id)
			assert.ErrorIs(t, err, models.ErrUnauthenticated, "every failure collapses to the same outcome")
		})
	}
}

func TestVerifier_ResolveStoreFailureIsNotUnauthenticated(t *testing.T) {
	storeErr := errors.New("connection refused")
	verifier := NewVerifier(testSecret, stubUsers{err: storeErr}, zerolog.Nop())

	token, _, err := NewIssuer(testSecret, time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = verifier.Resolve(context.Background(), BearerHeader(token))
	assert.ErrorIs(t, err, storeErr)
	assert.NotEqual(t, models.KindUnauthenticated, models.KindOf(err))
}

func TestIssuer_Issue(t *testing.T) {
	fixed := time.Date(2025, 12, 3, 10, 0, 0, 0, time.UTC)
	issuer := NewIssuer(testSecret, 24*time.Hour)
	issuer.now = func() time.Time { return fixed }

	token, expiresAt, err := issuer.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(24*time.Hour), expiresAt)

	claims := &Claims{}
	_, err = jwt.NewParser(jwt.WithoutClaimsValidation()).ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "user", claims.Scope)

	_, _, err = issuer.Issue("")
	assert.Error(t, err)
}

func TestCanMutate(t *testing.T) {
	article := &models.Article{ID: "a", UserID: "owner"}

	assert.True(t, CanMutate(article, "owner"))
	assert.False(t, CanMutate(article, "someone-else"))
	assert.False(t, CanMutate(article, ""))
	assert.False(t, CanMutate(nil, "owner"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
