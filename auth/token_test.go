package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenService(t *testing.T) {
	tokens := NewTokenService([]byte("test-secret"))

	t.Run("round trip", func(t *testing.T) {
		token, err := tokens.Issue(42, DefaultTokenTTL)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		userID, err := tokens.Validate(token)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if userID != 42 {
			t.Errorf("expected user 42, got %d", userID)
		}
	})

	t.Run("expired token is rejected as expired", func(t *testing.T) {
		token, err := tokens.Issue(42, -time.Minute)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := tokens.Validate(token); !errors.Is(err, ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("token signed with another key is invalid", func(t *testing.T) {
		other := NewTokenService([]byte("other-secret"))
		token, err := other.Issue(42, DefaultTokenTTL)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := tokens.Validate(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("expected ErrTokenInvalid, got %v", err)
		}
	})

	t.Run("garbage and empty tokens", func(t *testing.T) {
		if _, err := tokens.Validate("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("expected ErrTokenInvalid, got %v", err)
		}
		if _, err := tokens.Validate(""); !errors.Is(err, ErrTokenMissing) {
			t.Errorf("expected ErrTokenMissing, got %v", err)
		}
	})
}
