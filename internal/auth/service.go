package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/account"
	"github.com/frahmantamala/shopfront/internal/core/role"
)

// Service is the main auth service with dependencies
type Service struct {
	accounts       AccountStore
	verifier       IdentityVerifier
	tokenGenerator TokenGenerator
	audience       string
	admins         role.AdminAllowList
	logger         *slog.Logger
}

// NewService creates a new auth service. An empty audience is reported per sign-in, not here.
func NewService(accounts AccountStore, verifier IdentityVerifier, tokenGen TokenGenerator, identity internal.IdentityConfig, logger *slog.Logger) *Service {
	return &Service{
		accounts:       accounts,
		verifier:       verifier,
		tokenGenerator: tokenGen,
		audience:       strings.TrimSpace(identity.GoogleClientID),
		admins:         role.NewAdminAllowList(identity.AdminEmails),
		logger:         logger,
	}
}

// SignInWithGoogle exchanges a Google ID token for a local account and a session token pair.
func (s *Service) SignInWithGoogle(ctx context.Context, dto GoogleSignInDTO) (*SignInResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if s.audience == "" {
		return nil, internal.ErrIdentityNotConfigured
	}

	assertion, err := s.verifier.VerifyIdentityAssertion(ctx, dto.Credential, s.audience)
	if err != nil {
		s.logger.Warn("google credential rejected", "error", err)
		return nil, internal.NewInvalidCredentialError("Invalid Google credential: "+verificationReason(err), err)
	}
	if assertion.Email == "" {
		return nil, internal.ErrMissingEmail
	}

	profile := account.IdentityProfile{
		Subject:    assertion.Subject,
		Email:      assertion.Email,
		GivenName:  assertion.GivenName,
		FamilyName: assertion.FamilyName,
		Picture:    assertion.Picture,
	}
	resolve := func(email string, existing role.Role) role.Role {
		return role.Resolve(email, existing, s.admins)
	}

	acc, created, err := s.accounts.UpsertFromIdentity(ctx, profile, resolve)
	if err != nil {
		if errors.Is(err, account.ErrConflict) {
			return nil, internal.ErrAccountConflict
		}
		return nil, internal.NewInternalError("Unable to process Google sign-in", err)
	}
	if !acc.IsActive {
		return nil, internal.ErrAccountInactive
	}

	tokens, err := s.issueTokens(acc.Principal())
	if err != nil {
		return nil, internal.NewInternalError("Unable to process Google sign-in", err)
	}

	s.logger.Info("google sign-in completed",
		"account_id", acc.ID,
		"role", acc.Role,
		"created", created)

	return &SignInResult{
		User:    acc.ToResponse(),
		Access:  tokens.Access,
		Refresh: tokens.Refresh,
	}, nil
}

// RefreshTokens validates a refresh token and issues a new pair from the account's current state.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return AuthTokens{}, tokenError(err)
	}

	acc, err := s.loadActive(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}

	tokens, err := s.issueTokens(acc.Principal())
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue tokens", err)
	}
	return tokens, nil
}

// VerifyToken accepts either an access or a refresh token.
func (s *Service) VerifyToken(token string) error {
	if _, err := s.tokenGenerator.ValidateToken(token, TokenTypeAccess); err == nil {
		return nil
	}
	if _, err := s.tokenGenerator.ValidateToken(token, TokenTypeRefresh); err != nil {
		return tokenError(err)
	}
	return nil
}

// Authenticate resolves an access token to the principal it was issued for.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*internal.User, error) {
	claims, err := s.tokenGenerator.ValidateToken(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, tokenError(err)
	}

	acc, err := s.loadActive(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return acc.Principal(), nil
}

func (s *Service) loadActive(ctx context.Context, id int64) (*account.Account, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, internal.NewInternalError("failed to load account", err)
	}
	if !acc.IsActive {
		return nil, internal.ErrAccountInactive
	}
	return acc, nil
}

func (s *Service) issueTokens(user *internal.User) (AuthTokens, error) {
	access, err := s.tokenGenerator.GenerateAccessToken(user)
	if err != nil {
		return AuthTokens{}, err
	}
	refresh, err := s.tokenGenerator.GenerateRefreshToken(user)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{Access: access, Refresh: refresh}, nil
}

func tokenError(err error) error {
	if errors.Is(err, ErrTokenExpired) {
		return internal.ErrTokenExpired
	}
	return internal.ErrInvalidToken
}

func verificationReason(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidAssertion.Error()+": ")
}
