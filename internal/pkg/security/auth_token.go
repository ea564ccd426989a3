package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "newsdesk"

var (
	ErrTokensDisabled = errors.New("auth tokens are disabled")
	ErrInvalidToken   = errors.New("invalid auth token")
)

// AuthTokenClaims identifies a logged-in user to clients that cannot keep a
// session cookie.
type AuthTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueAuthToken signs an HS256 token for login valid for ttl
func IssueAuthToken(login, role string, ttl time.Duration, secret string) (string, error) {
	if secret == "" {
		return "", ErrTokensDisabled
	}
	now := time.Now()
	claims := AuthTokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign auth token: %w", err)
	}
	return token, nil
}

// ParseAuthToken verifies signature, issuer and expiry
func ParseAuthToken(token, secret string) (*AuthTokenClaims, error) {
	if secret == "" {
		return nil, ErrTokensDisabled
	}
	claims := &AuthTokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
