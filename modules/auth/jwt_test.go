package auth

import (
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		SecretKey:     "test-secret-key",
		TokenDuration: time.Hour,
		Issuer:        "test-issuer",
	}
}

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := NewTokenIssuer(testConfig())

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	username, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if username != "alice" {
		t.Errorf("Validate() username = %q, want %q", username, "alice")
	}
}

func TestTokenIssuer_ValidateGarbage(t *testing.T) {
	issuer := NewTokenIssuer(testConfig())

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "not a jwt", token: "not-a-token"},
		{name: "truncated jwt", token: "eyJhbGciOiJIUzI1NiJ9.e30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestTokenIssuer_ValidateWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(testConfig())
	other := NewTokenIssuer(Config{
		SecretKey:     "a-different-secret",
		TokenDuration: time.Hour,
		Issuer:        "test-issuer",
	})

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() with wrong secret error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_ValidateExpired(t *testing.T) {
	config := testConfig()
	config.TokenDuration = -time.Minute
	issuer := NewTokenIssuer(config)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Validate(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Validate() expired token error = %v, want ErrExpiredToken", err)
	}
}
