package authorization

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// tokenClaims is the raw JWT claim set. Scopes arrive space-delimited in
// "scope" per RFC 8693.
type tokenClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// Validator verifies bearer tokens. HS256 with a shared secret or RS256 with
// a PEM public key; key rotation and JWKS retrieval are the identity
// provider's concern, not this service's.
type Validator struct {
	Secret    string
	PublicKey *rsa.PublicKey
	Issuer    string
	Audience  string
}

var _ hri.TokenValidator = (*Validator)(nil)

// NewValidator builds a validator. publicKeyPath may be empty when only HS256
// tokens are expected.
func NewValidator(secret, publicKeyPath, issuer, audience string) (*Validator, error) {
	v := &Validator{Secret: secret, Issuer: issuer, Audience: audience}
	if publicKeyPath != "" {
		pem, err := os.ReadFile(publicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read token public key: %w", err)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("unable to parse token public key: %w", err)
		}
		v.PublicKey = key
	}
	return v, nil
}

// Validate parses and verifies a raw bearer token and extracts its claims.
func (v *Validator) Validate(ctx context.Context, raw string) (*hri.Claims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keyFunc)
	if err != nil || !token.Valid {
		return nil, &errors.Error{
			Code: errors.EUnauthorized,
			Msg:  "invalid bearer token",
			Err:  err,
		}
	}

	if v.Issuer != "" && claims.Issuer != v.Issuer {
		return nil, &errors.Error{
			Code: errors.EUnauthorized,
			Msg:  fmt.Sprintf("invalid bearer token: unexpected issuer '%s'", claims.Issuer),
		}
	}
	if v.Audience != "" && !contains(claims.Audience, v.Audience) {
		return nil, &errors.Error{
			Code: errors.EUnauthorized,
			Msg:  "invalid bearer token: missing expected audience",
		}
	}

	return &hri.Claims{
		Subject: claims.Subject,
		Scopes:  strings.Fields(claims.Scope),
	}, nil
}

func (v *Validator) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.Secret == "" {
			return nil, fmt.Errorf("HS256 tokens are not accepted")
		}
		return []byte(v.Secret), nil
	case *jwt.SigningMethodRSA:
		if v.PublicKey == nil {
			return nil, fmt.Errorf("RS256 tokens are not accepted")
		}
		return v.PublicKey, nil
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}

func contains(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
