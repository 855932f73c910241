package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single rejection returned for every validation
// failure. Expired tokens, bad signatures and subject mismatches must be
// indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the token payload: the username as subject plus the
// primary role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenCodec signs and verifies HS256 bearer tokens with a shared secret.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec. The secret should be at least 32 bytes
// for HS256.
func NewTokenCodec(secret, issuer string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate issues a signed token for the given subject carrying the
// primary role claim, expiring after the configured duration.
func (c *TokenCodec) Generate(subject, role string) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses the token, checks signature and expiry, and confirms the
// subject matches the presented identity. Every failure collapses into
// ErrInvalidToken so the caller cannot tell which check tripped.
func (c *TokenCodec) Validate(tokenString, expectedSubject string) (*Claims, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Subject != expectedSubject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Parse verifies signature and expiry and returns the claims without a
// subject check. Used by the HTTP middleware to discover the caller.
func (c *TokenCodec) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
