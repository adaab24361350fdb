package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/audiokeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithm is used when no signing algorithm is configured.
const DefaultAlgorithm = "HS256"

// Token is the result of a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenIssuer signs and verifies HMAC JWTs carrying a subject and an expiry.
type TokenIssuer struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer validates the signing parameters. Only HMAC algorithms
// (HS256, HS384, HS512) are accepted; an empty algorithm means HS256.
func NewTokenIssuer(secret string, algorithm string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty secret key")
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: unsupported signing algorithm %q", algorithm)
	}
	return &TokenIssuer{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock replaces the issuer's time source. Used by tests.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	c := *i
	c.now = now
	return &c
}

// Issue signs a token for subject that expires after the configured TTL.
func (i *TokenIssuer) Issue(subject string) (Token, error) {
	return i.IssueWithTTL(subject, i.ttl)
}

// IssueWithTTL signs a token for subject that expires after ttl.
func (i *TokenIssuer) IssueWithTTL(subject string, ttl time.Duration) (Token, error) {
	if subject == "" {
		return Token{}, errors.New("jwt: empty subject")
	}
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(i.now().Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: common.BearerTokenType}, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
// Every failure is reported as common.ErrorUnauthorized.
func (i *TokenIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return "", common.ErrorUnauthorized
	}

	// exp equal to now is already expired
	if !claims.ExpiresAt.After(i.now()) {
		return "", common.ErrorUnauthorized
	}

	if claims.Subject == "" {
		return "", common.ErrorUnauthorized
	}

	return claims.Subject, nil
}
