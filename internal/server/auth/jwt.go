// Package auth contains the access token codec and password hashing used by
// the session service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is what an access token asserts about its bearer.
type Identity struct {
	Ref      models.PrincipalRef
	Username string
	Roles    []string
}

// Claims are the JWT claims carried by access tokens. Subject holds the
// principal id and Kind tells which account table it belongs to.
type Claims struct {
	jwt.RegisteredClaims
	Kind     string   `json:"kind"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
}

// Codec signs and parses HS256 access tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of tokens produced by Sign.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Sign mints an access token for id and returns it with its expiry.
func (c *Codec) Sign(id Identity) (string, time.Time, error) {
	if id.Ref.IsZero() {
		return "", time.Time{}, fmt.Errorf("sign access token: empty principal")
	}
	now := c.now()
	exp := now.Add(c.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Ref.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Kind:     string(id.Ref.Kind()),
		Username: id.Username,
		Roles:    id.Roles,
	})

	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Parse verifies tokenString and returns the identity it carries.
// Expired tokens yield common.ErrTokenExpired; every other failure is
// common.ErrInvalidToken.
func (c *Codec) Parse(tokenString string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.ErrTokenExpired
		}
		return Identity{}, common.ErrInvalidToken
	}
	if !token.Valid {
		return Identity{}, common.ErrInvalidToken
	}

	ref, err := models.NewPrincipalRef(models.PrincipalKind(claims.Kind), claims.Subject)
	if err != nil {
		return Identity{}, common.ErrInvalidToken
	}
	return Identity{Ref: ref, Username: claims.Username, Roles: claims.Roles}, nil
}
