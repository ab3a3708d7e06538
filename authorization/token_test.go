package authorization

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims tokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func validClaims() tokenClaims {
	return tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "data-integrator-1",
			Issuer:    "https://issuer.example.com",
			Audience:  jwt.ClaimStrings{"hri-mgmt-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scope: "hri_data_integrator tenant_t1",
	}
}

func TestValidate(t *testing.T) {
	v := &Validator{Secret: testSecret, Issuer: "https://issuer.example.com", Audience: "hri-mgmt-api"}

	claims, err := v.Validate(context.Background(), signToken(t, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "data-integrator-1", claims.Subject)
	assert.Equal(t, []string{"hri_data_integrator", "tenant_t1"}, claims.Scopes)
}

func TestValidateRejectsBadSignature(t *testing.T) {
	v := &Validator{Secret: testSecret}

	_, err := v.Validate(context.Background(), signToken(t, "wrong-secret", validClaims()))
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
	assert.Contains(t, errors.ErrorMessage(err), "invalid bearer token")
}

func TestValidateRejectsExpired(t *testing.T) {
	v := &Validator{Secret: testSecret}

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err := v.Validate(context.Background(), signToken(t, testSecret, claims))
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
}

func TestValidateRejectsGarbage(t *testing.T) {
	v := &Validator{Secret: testSecret}

	_, err := v.Validate(context.Background(), "not.a.token")
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
}

func TestValidateIssuerAndAudience(t *testing.T) {
	v := &Validator{Secret: testSecret, Issuer: "https://issuer.example.com", Audience: "hri-mgmt-api"}

	claims := validClaims()
	claims.Issuer = "https://rogue.example.com"
	_, err := v.Validate(context.Background(), signToken(t, testSecret, claims))
	require.Error(t, err)
	assert.Contains(t, errors.ErrorMessage(err), "unexpected issuer 'https://rogue.example.com'")

	claims = validClaims()
	claims.Audience = jwt.ClaimStrings{"some-other-api"}
	_, err = v.Validate(context.Background(), signToken(t, testSecret, claims))
	require.Error(t, err)
	assert.Contains(t, errors.ErrorMessage(err), "missing expected audience")
}

func TestValidateRejectsUnconfiguredMethod(t *testing.T) {
	// no HS256 secret configured
	v := &Validator{}

	_, err := v.Validate(context.Background(), signToken(t, testSecret, validClaims()))
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
}

func TestValidateEmptyScope(t *testing.T) {
	v := &Validator{Secret: testSecret}

	claims := validClaims()
	claims.Scope = ""
	got, err := v.Validate(context.Background(), signToken(t, testSecret, claims))
	require.NoError(t, err)
	assert.Empty(t, got.Scopes)
}
