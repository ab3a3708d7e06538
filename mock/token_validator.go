package mock

import (
	"context"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
)

var _ hri.TokenValidator = (*TokenValidator)(nil)

// TokenValidator is a mock implementation of hri.TokenValidator.
type TokenValidator struct {
	ValidateFn func(ctx context.Context, token string) (*hri.Claims, error)
}

// NewTokenValidator returns a mock accepting every token with the given
// scopes.
func NewTokenValidator(scopes ...string) *TokenValidator {
	return &TokenValidator{
		ValidateFn: func(context.Context, string) (*hri.Claims, error) {
			return &hri.Claims{Subject: "test-subject", Scopes: scopes}, nil
		},
	}
}

func (v *TokenValidator) Validate(ctx context.Context, token string) (*hri.Claims, error) {
	return v.ValidateFn(ctx, token)
}
