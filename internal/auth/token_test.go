package auth

import (
	"errors"
	"testing"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("test-signing-key")
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	session := Session{Name: "Jo", Email: "jo@x.com"}
	token, err := issuer.Issue(session)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got != session {
		t.Fatalf("Verify() = %+v, want %+v", got, session)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("key-one")
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	other, err := NewTokenIssuer("key-two")
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	token, err := issuer.Issue(Session{Name: "Jo", Email: "jo@x.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Fatalf("Verify() with foreign key expected error")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("test-signing-key")
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	if _, err := issuer.Verify("not.a.token"); err == nil {
		t.Fatalf("Verify(garbage) expected error")
	}
	if _, err := issuer.Verify(""); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Verify(empty) error = %v, want ErrNotAuthenticated", err)
	}
}

func TestNewTokenIssuerRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer("   "); err == nil {
		t.Fatalf("NewTokenIssuer(blank) expected error")
	}
}
