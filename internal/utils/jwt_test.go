package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/lab-booking/internal/model"
)

const testSecret = "test-secret"

func TestSessionTokenRoundTrip(t *testing.T) {
	in := model.Identity{ID: "acc-9", Role: model.RoleSubAdmin, Location: "Hyderabad"}
	tok, err := NewSessionToken(testSecret, in, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if tok.ID == "" {
		t.Fatal("expected jti to be set")
	}
	if d := time.Until(tok.Exp); d < 7*24*time.Hour-time.Minute || d > 7*24*time.Hour {
		t.Fatalf("unexpected expiry distance %s", d)
	}
	claims, out, err := ParseSessionToken(testSecret, tok.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if out != in {
		t.Fatalf("identity = %+v, want %+v", out, in)
	}
	if claims.ID != tok.ID {
		t.Fatalf("jti = %q, want %q", claims.ID, tok.ID)
	}
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewSessionToken(testSecret, model.Identity{ID: "u1", Role: model.RoleUser}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ParseSessionToken("other-secret", tok.Token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	tok, err := NewSessionToken(testSecret, model.Identity{ID: "u1", Role: model.RoleUser}, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = ParseSessionToken(testSecret, tok.Token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseSessionTokenRejectsNoneAlg(t *testing.T) {
	claims := SessionClaims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ParseSessionToken(testSecret, raw); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
}

func TestParseSessionTokenRejectsInconsistentIdentity(t *testing.T) {
	claims := SessionClaims{
		Role:     model.RoleUser,
		Location: "Delhi",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ParseSessionToken(testSecret, raw); !errors.Is(err, ErrTokenIdentity) {
		t.Fatalf("expected ErrTokenIdentity, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "s3cret!") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "s3cret?") {
		t.Fatal("expected mutated password to fail")
	}
}
