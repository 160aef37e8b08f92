package google

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/frahmantamala/shopfront/internal/auth"
)

// Verifier validates Google ID tokens against Google's published signing keys.
type Verifier struct {
	validator *idtoken.Validator
}

func NewVerifier(ctx context.Context) (*Verifier, error) {
	validator, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("create google id token validator: %w", err)
	}
	return &Verifier{validator: validator}, nil
}

func (v *Verifier) VerifyIdentityAssertion(ctx context.Context, token, audience string) (*auth.Assertion, error) {
	payload, err := v.validator.Validate(ctx, token, audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidAssertion, err)
	}
	return AssertionFromClaims(payload.Subject, payload.Claims), nil
}

// AssertionFromClaims maps the standard Google ID token claims onto an Assertion.
func AssertionFromClaims(subject string, claims map[string]interface{}) *auth.Assertion {
	return &auth.Assertion{
		Subject:       subject,
		Email:         stringClaim(claims, "email"),
		EmailVerified: boolClaim(claims, "email_verified"),
		GivenName:     stringClaim(claims, "given_name"),
		FamilyName:    stringClaim(claims, "family_name"),
		Picture:       stringClaim(claims, "picture"),
	}
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func boolClaim(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
