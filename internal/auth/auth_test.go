package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"healthcompanion/internal/config"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer(config.Config{
		JWTSecret:     "test-secret-1234567890",
		JWTAlgorithm:  "HS256",
		JWTIssuer:     "health-companion",
		JWTAudience:   "companion-app",
		JWTTTLMinutes: 60,
	})
}

func TestPasswordManagerHashAndVerify(t *testing.T) {
	pm := NewPasswordManagerWithCost(bcrypt.MinCost)

	hash, err := pm.Hash("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "password123" {
		t.Fatal("expected a hashed password")
	}

	ok, err := pm.Verify(hash, "password123")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = pm.Verify(hash, "wrong")
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, got ok=%v err=%v", ok, err)
	}
	if _, err := pm.Verify("not-a-hash", "password123"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if _, err := pm.Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestTokenIssueAndParse(t *testing.T) {
	issuer := testIssuer()
	token, err := issuer.Issue(Claims{Username: "grandpa_joe", Role: "elderly", FullName: "Joe Smith"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "grandpa_joe" || claims.Role != "elderly" || claims.FullName != "Joe Smith" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenParseRejectsInvalidTokens(t *testing.T) {
	issuer := testIssuer()
	valid, err := issuer.Issue(Claims{Username: "grandpa_joe", Role: "elderly"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expiredIssuer := testIssuer()
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue(Claims{Username: "grandpa_joe"})
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	otherSecret := NewTokenIssuer(config.Config{
		JWTSecret:    "another-secret-1234567890",
		JWTAlgorithm: "HS256",
		JWTIssuer:    "health-companion",
		JWTAudience:  "companion-app",
	})
	forged, err := otherSecret.Issue(Claims{Username: "grandpa_joe"})
	if err != nil {
		t.Fatalf("issue forged: %v", err)
	}

	wrongAudience, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "grandpa_joe",
		"iss": "health-companion",
		"aud": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret-1234567890"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "health-companion",
		"aud": "companion-app",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret-1234567890"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := map[string]string{
		"garbage":        "not-a-token",
		"tampered":       valid + "x",
		"expired":        expired,
		"forged":         forged,
		"wrong audience": wrongAudience,
		"no subject":     noSubject,
	}
	if _, err := issuer.Parse(noSubject); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestClaimHasAudience(t *testing.T) {
	if !claimHasAudience("expected", "expected") {
		t.Fatalf("expected string audience to match")
	}
	if claimHasAudience("other", "expected") {
		t.Fatalf("expected mismatched string audience to fail")
	}
	if !claimHasAudience([]any{"x", "expected", "y"}, "expected") {
		t.Fatalf("expected []any audience to match")
	}
	if !claimHasAudience([]string{"x", "expected", "y"}, "expected") {
		t.Fatalf("expected []string audience to match")
	}
	if claimHasAudience(nil, "expected") {
		t.Fatalf("expected nil audience to fail")
	}
}
