package jwt

import (
	"errors"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueVerifyRoundTrip(t *testing.T) {
	m, err := NewManager(Config{Secret: testSecret, TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := m.Issue("42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	subject, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "42" {
		t.Fatalf("subject = %q, want %q", subject, "42")
	}
}

func TestVerifyExpiredIsErrExpiredOnly(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	m, err := NewManager(Config{
		Secret:   testSecret,
		TTL:      time.Minute,
		TimeFunc: func() time.Time { return clock },
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := m.Issue("42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	clock = clock.Add(2 * time.Minute)
	_, err = m.Verify(token)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrMalformed) {
		t.Fatal("expiry must not alias another failure mode")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m1, _ := NewManager(Config{Secret: testSecret, TTL: time.Hour})
	m2, _ := NewManager(Config{Secret: []byte("another-secret-another-secret-32"), TTL: time.Hour})

	token, err := m1.Issue("42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = m2.Verify(token)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	m, _ := NewManager(Config{Secret: testSecret, TTL: time.Hour})

	for _, bad := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := m.Verify(bad)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("Verify(%q): expected ErrMalformed, got %v", bad, err)
		}
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(Config{TTL: time.Hour}); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := NewManager(Config{Secret: testSecret}); err == nil {
		t.Fatal("expected error for zero TTL")
	}
}

func TestIssueEmptySubject(t *testing.T) {
	m, _ := NewManager(Config{Secret: testSecret, TTL: time.Hour})
	if _, err := m.Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}
