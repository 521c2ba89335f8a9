// Package auth issues and verifies the bearer tokens used by storefront
// customers and back-office users, and hashes their passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind separates storefront customers from back-office users; a customer token
// is never accepted on admin routes.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindAdmin    Kind = "admin"
)

var ErrInvalidToken = errors.New("auth: invalid token")

type Claims struct {
	Kind Kind   `json:"kind"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "storefront",
		now:    time.Now,
	}
}

// Issue signs an HS256 token for subject.
func (t *TokenIssuer) Issue(subject string, kind Kind, role string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies signature, issuer and expiry.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(tok *jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || (claims.Kind != KindCustomer && claims.Kind != KindAdmin) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
