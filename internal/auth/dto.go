package auth

import (
	"strings"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/core/common/validation"
)

// GoogleSignInDTO carries the ID token produced by Google Identity Services.
type GoogleSignInDTO struct {
	Credential string `json:"credential"`
}

func (d GoogleSignInDTO) Validate() error {
	if strings.TrimSpace(d.Credential) == "" {
		return internal.ErrMissingCredential
	}
	return nil
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	Refresh string `json:"refresh"`
}

func (d RefreshTokenDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("refresh", d.Refresh).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type VerifyTokenDTO struct {
	Token string `json:"token"`
}

func (d VerifyTokenDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
