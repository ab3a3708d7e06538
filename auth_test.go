package hri

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

func TestClaimsAuthorizedForTenant(t *testing.T) {
	c := &Claims{Scopes: []string{"tenant_t1", RoleIntegrator}}
	assert.True(t, c.AuthorizedForTenant("t1"))
	assert.False(t, c.AuthorizedForTenant("t2"))

	internal := &Claims{Scopes: []string{RoleInternal}}
	assert.True(t, internal.AuthorizedForTenant("t1"))
	assert.True(t, internal.AuthorizedForTenant("anything"))
}

func TestClaimsRequireTenant(t *testing.T) {
	c := &Claims{Scopes: []string{"tenant_t1"}}
	require.NoError(t, c.RequireTenant("t1"))

	err := c.RequireTenant("t2")
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
	assert.Contains(t, errors.ErrorMessage(err), "t2")
	assert.Contains(t, errors.ErrorMessage(err), "tenant_t2")
}

func TestClaimsRequireRole(t *testing.T) {
	c := &Claims{Scopes: []string{RoleConsumer}}
	require.NoError(t, c.RequireRole(RoleConsumer, RoleInternal))

	err := c.RequireRole(RoleIntegrator)
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
	assert.Contains(t, errors.ErrorMessage(err), RoleIntegrator)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	in := &Claims{Subject: "sub", Scopes: []string{RoleInternal}}
	ctx := WithClaims(context.Background(), in)

	out, err := ClaimsFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = ClaimsFromContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
}
