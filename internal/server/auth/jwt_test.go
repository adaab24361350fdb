package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/audiokeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustIssuer(t *testing.T, secret, alg string, ttl time.Duration) *TokenIssuer {
	t.Helper()
	i, err := NewTokenIssuer(secret, alg, ttl)
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}
	return i
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		i := mustIssuer(t, "super-secret", alg, time.Hour)

		tok, err := i.Issue("user-123")
		if err != nil {
			t.Fatalf("%s: Issue error: %v", alg, err)
		}
		if tok.TokenType != "bearer" {
			t.Fatalf("%s: token type = %q, want bearer", alg, tok.TokenType)
		}

		sub, err := i.Verify(tok.AccessToken)
		if err != nil {
			t.Fatalf("%s: Verify error: %v", alg, err)
		}
		if sub != "user-123" {
			t.Fatalf("%s: subject mismatch: got %q", alg, sub)
		}
	}
}

func TestVerify_ZeroTTLIsExpired(t *testing.T) {
	t.Parallel()

	i := mustIssuer(t, "secret", "HS256", time.Hour).WithClock(fixedClock(time.Unix(1_700_000_000, 0)))

	tok, err := i.IssueWithTTL("u1", 0)
	if err != nil {
		t.Fatalf("IssueWithTTL error: %v", err)
	}

	if _, err := i.Verify(tok.AccessToken); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	start := time.Unix(1_700_000_000, 0)
	i := mustIssuer(t, "secret", "HS256", time.Minute).WithClock(fixedClock(start))

	tok, err := i.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := i.Verify(tok.AccessToken); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	later := i.WithClock(fixedClock(start.Add(2 * time.Minute)))
	if _, err := later.Verify(tok.AccessToken); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := mustIssuer(t, "right-secret", "HS256", time.Hour).Issue("u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = mustIssuer(t, "wrong-secret", "HS256", time.Hour).Verify(tok.AccessToken)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestVerify_WrongAlgorithm(t *testing.T) {
	t.Parallel()

	tok, err := mustIssuer(t, "secret", "HS512", time.Hour).Issue("u3")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = mustIssuer(t, "secret", "HS256", time.Hour).Verify(tok.AccessToken)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestVerify_NoneAlgorithmRejected(t *testing.T) {
	t.Parallel()

	claims := jwt.RegisteredClaims{
		Subject:   "u4",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	_, err = mustIssuer(t, "secret", "HS256", time.Hour).Verify(unsigned)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	t.Parallel()

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = mustIssuer(t, "secret", "HS256", time.Hour).Verify(signed)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	t.Parallel()

	claims := jwt.RegisteredClaims{Subject: "u5"}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = mustIssuer(t, "secret", "HS256", time.Hour).Verify(signed)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestVerify_MalformedString(t *testing.T) {
	t.Parallel()

	i := mustIssuer(t, "k", "HS256", time.Hour)
	for _, s := range []string{"", "not.a.jwt", "abc"} {
		if _, err := i.Verify(s); !errors.Is(err, common.ErrorUnauthorized) {
			t.Fatalf("Verify(%q): expected ErrorUnauthorized, got %v", s, err)
		}
	}
}

func TestNewTokenIssuer_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer("", "HS256", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewTokenIssuer("secret", "RS256", time.Hour); err == nil {
		t.Fatalf("expected error for non-HMAC algorithm")
	}
	if _, err := NewTokenIssuer("secret", "bogus", time.Hour); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}

	i, err := NewTokenIssuer("secret", "", time.Hour)
	if err != nil {
		t.Fatalf("default algorithm: %v", err)
	}
	if i.method.Alg() != DefaultAlgorithm {
		t.Fatalf("alg = %s, want %s", i.method.Alg(), DefaultAlgorithm)
	}
}

func TestIssue_EmptySubject(t *testing.T) {
	t.Parallel()

	if _, err := mustIssuer(t, "secret", "HS256", time.Hour).Issue(""); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}
