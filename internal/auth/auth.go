// Package auth issues and verifies bearer tokens for the admin surface.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the verified claim carried by a request.
type Identity struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
}

// Token is a signed credential returned by a successful login.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenVerifier validates a raw token issued by another party.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (Identity, error)
}

// Gate issues tokens on login and verifies them on protected requests.
type Gate interface {
	// IssueToken checks the pair against the credential verifier and signs a token.
	IssueToken(username, password string) (Token, error)
	// Verify validates a header value of the form "Bearer <token>" or a raw token.
	// Any decoding or verification failure reports false.
	Verify(ctx context.Context, value string) (Identity, bool)
	// Authenticate reads the token from the Authorization header or the fallback header.
	Authenticate(r *http.Request) (Identity, bool)
}

type gate struct {
	credentials CredentialVerifier
	external    TokenVerifier
	secret      []byte
	issuer      string
	ttl         time.Duration
	header      string
	logger      *slog.Logger
}

// New creates a Gate signing with cfg.Secret. external may be nil; when set,
// tokens that fail local verification are offered to it.
func New(cfg *Config, credentials CredentialVerifier, external TokenVerifier, logger *slog.Logger) Gate {
	return &gate{
		credentials: credentials,
		external:    external,
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		ttl:         cfg.TokenTTLDuration(),
		header:      cfg.TokenHeader,
		logger:      logger.With("system", "auth"),
	}
}

func (g *gate) IssueToken(username, password string) (Token, error) {
	if username == "" || password == "" {
		return Token{}, ErrMissingCredentials
	}
	if !g.credentials.Verify(username, password) {
		g.logger.Warn("login rejected", "username", username)
		return Token{}, ErrInvalidCredentials
	}

	now := time.Now().UTC().Truncate(time.Second)
	expiresAt := now.Add(g.ttl)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   username,
		Issuer:    g.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	g.logger.Info("token issued", "subject", username, "expires_at", expiresAt)
	return Token{Token: signed, ExpiresAt: expiresAt}, nil
}

func (g *gate) Verify(ctx context.Context, value string) (Identity, bool) {
	raw := bearer(value)
	if raw == "" {
		return Identity{}, false
	}

	id, err := g.verifyLocal(raw)
	if err == nil {
		return id, true
	}

	if g.external != nil {
		ext, extErr := g.external.VerifyToken(ctx, raw)
		if extErr == nil {
			return ext, true
		}
		g.logger.Debug("external token rejected", "error", extErr)
	}

	g.logger.Debug("token rejected", "error", err)
	return Identity{}, false
}

func (g *gate) Authenticate(r *http.Request) (Identity, bool) {
	value := r.Header.Get("Authorization")
	if value == "" && g.header != "" {
		value = r.Header.Get(g.header)
	}
	return g.Verify(r.Context(), value)
}

func (g *gate) verifyLocal(raw string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// bearer strips an optional "Bearer " scheme prefix.
func bearer(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
		value = strings.TrimSpace(value[7:])
	}
	return value
}
