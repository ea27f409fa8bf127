package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/urbanhaven/storefront/internal/platform/errors"
)

// TokenIssuer signs and verifies the session tokens carried by the web
// session cookie. Verification failure is treated as anonymous, never as a
// hard error surfaced to the visitor.
type TokenIssuer struct {
	key []byte
}

// NewTokenIssuer returns an issuer signing with the provided HMAC key.
func NewTokenIssuer(key string) (*TokenIssuer, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("session signing key is required")
	}
	return &TokenIssuer{key: []byte(key)}, nil
}

type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Issue returns a signed token for the session.
func (t *TokenIssuer) Issue(session Session) (string, error) {
	claims := sessionClaims{
		Name: session.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  session.Email,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a signed token back into a session.
func (t *TokenIssuer) Verify(tokenString string) (Session, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Session{}, ErrNotAuthenticated
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return Session{}, apperrors.E(apperrors.KindUnauthorized, "invalid session token")
	}
	return Session{Name: claims.Name, Email: claims.Subject}, nil
}
