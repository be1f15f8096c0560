// Package auth provides a simulated sign-in gate. It does not verify
// credentials against any store: every well-formed request is accepted.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultUserName is the display name given to users who log in.
const DefaultUserName = "Valued User"

const issuer = "ai-fitness-planner"

var (
	// ErrMissingFields is returned when a required credential is blank.
	ErrMissingFields = errors.New("Please fill in all fields.")
	// ErrInvalidToken is returned by Verify for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Credentials is the sign-in or sign-up form.
type Credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	SignUp   bool   `json:"-"`
}

// Session is the result of a successful Authenticate.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Gate authenticates a user.
type Gate interface {
	Authenticate(ctx context.Context, creds Credentials) (*Session, error)
}

// Claims is the payload of a session token.
type Claims struct {
	SessionID string `json:"sid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// StubGate accepts any complete set of credentials and issues a signed
// session token. It performs no credential verification.
type StubGate struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStubGate creates a StubGate signing tokens with secret.
func NewStubGate(secret string, ttl time.Duration) *StubGate {
	return &StubGate{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Authenticate validates that the form is filled in and returns a session.
func (g *StubGate) Authenticate(_ context.Context, creds Credentials) (*Session, error) {
	email := strings.TrimSpace(creds.Email)
	name := strings.TrimSpace(creds.Name)
	if email == "" || creds.Password == "" {
		return nil, ErrMissingFields
	}
	if creds.SignUp && name == "" {
		return nil, ErrMissingFields
	}
	if !creds.SignUp {
		name = DefaultUserName
	}

	now := g.now()
	session := &Session{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		ExpiresAt: now.Add(g.ttl),
	}

	claims := &Claims{
		SessionID: session.ID,
		Name:      session.Name,
		Email:     session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	session.Token = token
	return session, nil
}

// Verify parses a token issued by Authenticate.
func (g *StubGate) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithIssuer(issuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
