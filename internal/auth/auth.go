package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/account"
	"github.com/frahmantamala/shopfront/internal/core/role"
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Role      role.Role `json:"role"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenGenerator issues and checks session tokens.
type TokenGenerator interface {
	GenerateAccessToken(user *internal.User) (string, error)
	GenerateRefreshToken(user *internal.User) (string, error)
	ValidateToken(tokenString string, expected TokenType) (*Claims, error)
}

type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SignInResult is the body returned by a successful sign-in.
type SignInResult struct {
	User    account.AccountResponse `json:"user"`
	Access  string                  `json:"access"`
	Refresh string                  `json:"refresh"`
}

// Assertion holds the verified claims of an external identity token.
type Assertion struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Picture       string
}

// IdentityVerifier checks an identity token's signature, issuer, expiry and audience.
type IdentityVerifier interface {
	VerifyIdentityAssertion(ctx context.Context, token, audience string) (*Assertion, error)
}

// AccountStore is the slice of the account repository sign-in needs.
type AccountStore interface {
	UpsertFromIdentity(ctx context.Context, profile account.IdentityProfile, resolve account.RoleResolver) (*account.Account, bool, error)
	GetByID(ctx context.Context, id int64) (*account.Account, error)
}

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidAssertion = errors.New("invalid identity assertion")
)
