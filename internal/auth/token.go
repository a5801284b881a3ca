// Package auth issues and verifies the bearer tokens and password hashes used
// by the HTTP API.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"healthcompanion/internal/config"
)

var (
	ErrInvalidToken   = errors.New("invalid bearer token")
	ErrMissingSubject = errors.New("token subject missing")
)

type Claims struct {
	Username string
	Role     string
	FullName string
}

type TokenIssuer struct {
	secret    []byte
	algorithm string
	issuer    string
	audience  string
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenIssuer(cfg config.Config) *TokenIssuer {
	algorithm := strings.TrimSpace(cfg.JWTAlgorithm)
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	return &TokenIssuer{
		secret:    []byte(cfg.JWTSecret),
		algorithm: algorithm,
		issuer:    strings.TrimSpace(cfg.JWTIssuer),
		audience:  strings.TrimSpace(cfg.JWTAudience),
		ttl:       cfg.TokenTTL(),
		now:       time.Now,
	}
}

func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs an access token whose subject is the username.
func (t *TokenIssuer) Issue(claims Claims) (string, error) {
	method := jwt.GetSigningMethod(t.algorithm)
	if method == nil {
		return "", fmt.Errorf("unsupported JWT algorithm %q", t.algorithm)
	}
	now := t.now().UTC()
	mapClaims := jwt.MapClaims{
		"sub":  claims.Username,
		"role": claims.Role,
		"name": claims.FullName,
		"iat":  now.Unix(),
		"exp":  now.Add(t.ttl).Unix(),
	}
	if t.issuer != "" {
		mapClaims["iss"] = t.issuer
	}
	if t.audience != "" {
		mapClaims["aud"] = t.audience
	}
	signed, err := jwt.NewWithClaims(method, mapClaims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates signature, expiry, issuer and audience and returns the
// claims. Every failure wraps ErrInvalidToken.
func (t *TokenIssuer) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(strings.TrimSpace(tokenString), func(token *jwt.Token) (any, error) {
		if token.Method == nil || token.Method.Alg() != t.algorithm {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("%w: unexpected claims payload", ErrInvalidToken)
	}
	if t.audience != "" && !claimHasAudience(claims["aud"], t.audience) {
		return Claims{}, fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}
	if t.issuer != "" {
		issuer, _ := claims["iss"].(string)
		if issuer != t.issuer {
			return Claims{}, fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
		}
	}

	sub, _ := claims["sub"].(string)
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrMissingSubject)
	}
	role, _ := claims["role"].(string)
	name, _ := claims["name"].(string)
	return Claims{Username: sub, Role: strings.TrimSpace(role), FullName: name}, nil
}

func claimHasAudience(value any, audience string) bool {
	switch v := value.(type) {
	case string:
		return v == audience
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == audience {
				return true
			}
		}
	case []string:
		for _, item := range v {
			if item == audience {
				return true
			}
		}
	}
	return false
}
