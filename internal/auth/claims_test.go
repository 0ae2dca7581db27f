package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-key-for-jwt-signing"

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, expires, err := GenerateAccessToken(TokenRequest{
		Subject: "ops-dashboard",
		Role:    RoleOperator,
		Issuer:  "alphasign",
		TTL:     time.Hour,
	}, testSecret)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	claims, err := ParseToken(token, testSecret, "alphasign")
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "ops-dashboard" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "ops-dashboard")
	}
	if claims.Role != RoleOperator {
		t.Errorf("Role = %q, want %q", claims.Role, RoleOperator)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
	if !claims.ExpiresAt.Time.Equal(expires.Truncate(time.Second)) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt.Time, expires)
	}
}

func TestGenerateAccessToken_Errors(t *testing.T) {
	tests := []struct {
		name   string
		req    TokenRequest
		secret string
		want   error
	}{
		{"no secret", TokenRequest{Subject: "a", Role: RoleViewer}, "", ErrSecretMissing},
		{"bad role", TokenRequest{Subject: "a", Role: "root"}, testSecret, ErrInvalidRole},
		{"no subject", TokenRequest{Role: RoleViewer}, testSecret, ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := GenerateAccessToken(tt.req, tt.secret)
			if !errors.Is(err, tt.want) {
				t.Errorf("GenerateAccessToken() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerateAccessToken_DefaultTTL(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	_, expires, err := GenerateAccessToken(TokenRequest{Subject: "a", Role: RoleViewer, Now: now}, testSecret)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if got := expires.Sub(now); got != 15*time.Minute {
		t.Errorf("default TTL = %v, want 15m", got)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	valid, _, err := GenerateAccessToken(TokenRequest{Subject: "a", Role: RoleAdmin, Issuer: "alphasign"}, testSecret)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	expired, _, err := GenerateAccessToken(TokenRequest{
		Subject: "a",
		Role:    RoleAdmin,
		Now:     time.Now().Add(-2 * time.Hour),
		TTL:     time.Minute,
	}, testSecret)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	tests := []struct {
		name   string
		token  string
		secret string
		issuer string
	}{
		{"empty", "", testSecret, ""},
		{"garbage", "not-a-valid-jwt", testSecret, ""},
		{"malformed", "abc.def", testSecret, ""},
		{"wrong secret", valid, "wrong-secret", ""},
		{"wrong issuer", valid, testSecret, "someone-else"},
		{"expired", expired, testSecret, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret, tt.issuer)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestParseToken_NoSecret(t *testing.T) {
	if _, err := ParseToken("x", "", ""); !errors.Is(err, ErrSecretMissing) {
		t.Errorf("ParseToken() error = %v, want ErrSecretMissing", err)
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range ValidRoles {
		if got, ok := ParseRole(string(r)); !ok || got != r {
			t.Errorf("ParseRole(%q) = %q, %v", r, got, ok)
		}
	}
	if _, ok := ParseRole("owner"); ok {
		t.Error("ParseRole(owner) should fail")
	}
}
