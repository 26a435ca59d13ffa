package server

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/form3tech-oss/jwt-go"
)

func TestTokenIssueAndVerify(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	raw, sess, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if sess.ID == "" || sess.Name != "alice" {
		t.Fatalf("session = %+v", sess)
	}

	got, err := issuer.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ID != sess.ID || got.Name != "alice" || !got.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Fatalf("verified = %+v, issued = %+v", got, sess)
	}

	parsed, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if alg := parsed.Method.Alg(); alg != "HS256" {
		t.Fatalf("alg = %s", alg)
	}
}

func TestTokenRejections(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", time.Minute)
	other, _ := NewTokenIssuer("other", time.Minute)
	foreign, _, _ := other.Issue("mallory")

	expiredIssuer, _ := NewTokenIssuer("secret", time.Minute)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, _ := expiredIssuer.Issue("bob")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"jti": "x", "name": "eve"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "", want: ErrTokenInvalid},
		{name: "garbage", raw: "not-a-token", want: ErrTokenInvalid},
		{name: "wrong secret", raw: foreign, want: ErrTokenInvalid},
		{name: "expired", raw: expired, want: ErrTokenExpired},
		{name: "alg none", raw: unsigned, want: ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Verify(tt.raw); !errors.Is(err, tt.want) {
				t.Fatalf("verify err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewTokenIssuerValidates(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Minute); err == nil {
		t.Fatalf("empty secret should fail")
	}
	if _, err := NewTokenIssuer("s", 0); err == nil {
		t.Fatalf("zero ttl should fail")
	}
}
