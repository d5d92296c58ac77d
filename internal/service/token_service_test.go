package service

import (
	"errors"
	"testing"
	"time"

	"schooldir/internal/domain"
)

func TestTokenServiceIssueParse(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, NewMemorySessionStore())
	userA := domain.User{ID: "user-a", Email: "a@x.com"}

	token, err := svc.Issue(userA)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a signed token")
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-a" || claims.Email != "a@x.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.UserID == "user-b" {
		t.Fatalf("token must never resolve to another identity")
	}
}

func TestTokenServiceParse_Forged(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, NewMemorySessionStore())
	token, err := svc.Issue(domain.User{ID: "user-a", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Cambiar un byte del payload invalida la firma.
	forged := []byte(token)
	mid := len(forged) / 2
	if forged[mid] == 'A' {
		forged[mid] = 'B'
	} else {
		forged[mid] = 'A'
	}
	if _, err := svc.Parse(string(forged)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for forged token, got %v", err)
	}

	if _, err := svc.Parse(""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for empty token, got %v", err)
	}
}

func TestTokenServiceParse_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", time.Hour, NewMemorySessionStore())
	verifier := NewTokenService("secret-two", time.Hour, NewMemorySessionStore())

	token, err := issuer.Issue(domain.User{ID: "user-a", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid across secrets, got %v", err)
	}
}

func TestTokenServiceParse_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Millisecond, NewMemorySessionStore())
	token, err := svc.Issue(domain.User{ID: "user-a", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if _, err := svc.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenServiceRevoke(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, NewMemorySessionStore())
	token, err := svc.Issue(domain.User{ID: "user-a", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Revoke(token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestTokenServiceIssue_NoSecret(t *testing.T) {
	svc := NewTokenService("", time.Hour, NewMemorySessionStore())
	if _, err := svc.Issue(domain.User{ID: "user-a"}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without secret, got %v", err)
	}
}
