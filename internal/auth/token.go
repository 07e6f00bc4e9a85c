package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/models"
)

const (
	bearerPrefix = "Bearer "
	userScope    = "user"
)

// Claims is the payload of a bearer token
type Claims struct {
	Scope string `json:"scp,omitempty"`
	jwt.RegisteredClaims
}

// UserLookup reports whether a token subject still maps to a user
type UserLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Verifier resolves bearer credentials to a user id
type Verifier struct {
	secret []byte
	users  UserLookup
	parser *jwt.Parser
	log    zerolog.Logger
}

// NewVerifier creates a Verifier that checks HS256 tokens signed with secret
func NewVerifier(secret []byte, users UserLookup, log zerolog.Logger) *Verifier {
	return newVerifier(secret, users, log, time.Now)
}

func newVerifier(secret []byte, users UserLookup, log zerolog.Logger, now func() time.Time) *Verifier {
	return &Verifier{
		secret: secret,
		users:  users,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
		log: log.With().Str("component", "auth").Logger(),
	}
}

// Resolve returns the user id encoded in an Authorization header value.
// Every credential problem yields models.ErrUnauthenticated; only store
// failures come back as other errors.
func (v *Verifier) Resolve(ctx context.Context, header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		v.log.Debug().Msg("Missing bearer token")
		return "", models.ErrUnauthenticated
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if raw == "" {
		v.log.Debug().Msg("Empty bearer token")
		return "", models.ErrUnauthenticated
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		v.log.Debug().Err(err).Msg("Rejected bearer token")
		return "", models.ErrUnauthenticated
	}
	if claims.Subject == "" {
		v.log.Debug().Msg("Bearer token has no subject")
		return "", models.ErrUnauthenticated
	}

	exists, err := v.users.Exists(ctx, claims.Subject)
	if err != nil {
		return "", fmt.Errorf("failed to look up token subject: %w", err)
	}
	if !exists {
		v.log.Debug().Str("subject", claims.Subject).Msg("Bearer token subject not found")
		return "", models.ErrUnauthenticated
	}
	return claims.Subject, nil
}

// Issuer signs bearer tokens for users
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer whose tokens live for ttl
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for userID and its expiry
func (i *Issuer) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("cannot issue token without subject")
	}
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		Scope: userScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// BearerHeader formats a token as an Authorization header value
func BearerHeader(token string) string {
	return bearerPrefix + token
}
