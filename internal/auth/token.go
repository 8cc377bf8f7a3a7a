// Package auth issues and verifies identity tokens and provides the
// middleware that binds a request to an identity.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/apperr"
)

// Identity is the authenticated subject of a request.
type Identity struct {
	Username string
}

// Claims is the token payload.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 bearer tokens. Tokens are not stored
// server-side; validity depends only on the signature and, when a TTL is
// configured, the exp claim.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer signing with secret. A zero ttl issues
// tokens without an expiry.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue creates a signed token for username.
func (i *Issuer) Issue(username string) (string, error) {
	now := i.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature of token and returns the identity it
// carries. Every failure wraps apperr.ErrVerification.
func (i *Issuer) Verify(token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", apperr.ErrVerification, err)
	}
	if !parsed.Valid || claims.Username == "" {
		return Identity{}, apperr.ErrVerification
	}
	return Identity{Username: claims.Username}, nil
}
