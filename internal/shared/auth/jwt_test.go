package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestSignAndVerifyRoundTrip(t *testing.T) {
	claims := Claims{
		OrgID: "org-1",
		Role:  "recruiter",
		Email: "r@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-1",
		},
	}
	raw, err := Sign(testSecret, claims, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	got, err := Verify(testSecret, raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Subject != "user-1" || got.OrgID != "org-1" || got.Role != "recruiter" {
		t.Fatalf("claims mismatch: %+v", got)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	raw, err := Sign(testSecret, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := Verify(testSecret, raw+"x"); err == nil {
		t.Fatalf("tampered token should fail verification")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := Sign(testSecret, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := Verify("other-secret", raw); err == nil {
		t.Fatalf("wrong secret should fail verification")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(-time.Minute)),
		},
	}
	raw, err := Sign(testSecret, claims, 0)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Verify(testSecret, raw); err == nil {
		t.Fatalf("expired token should fail verification")
	}
}

func TestSignRequiresSecret(t *testing.T) {
	if _, err := Sign("", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}}, 0); err == nil {
		t.Fatalf("missing secret should fail")
	}
}
