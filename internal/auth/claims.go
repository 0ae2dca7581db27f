package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// defaultTTL applies when the configured token lifetime is zero.
const defaultTTL = 15 * time.Minute

// CustomClaims extends JWT standard claims with the caller's role.
type CustomClaims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// TokenRequest describes a token to mint.
type TokenRequest struct {
	Subject string
	Role    Role
	Issuer  string
	TTL     time.Duration // zero selects 15 minutes
	Now     time.Time     // zero selects time.Now
}

// GenerateAccessToken creates a signed JWT for req.
func GenerateAccessToken(req TokenRequest, secret string) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, ErrSecretMissing
	}
	if _, ok := ParseRole(string(req.Role)); !ok {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRole, req.Role)
	}
	if req.Subject == "" {
		return "", time.Time{}, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	expires := now.Add(ttl)

	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.Subject,
			Issuer:    req.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		Role: req.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken validates and parses a JWT access token, returning the custom claims.
// It checks the signature, expiry, and required fields. A non-empty issuer
// must match the token's iss claim.
func ParseToken(tokenString, secret, issuer string) (*CustomClaims, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	if _, ok := ParseRole(string(claims.Role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrTokenInvalid, claims.Role)
	}

	return claims, nil
}
