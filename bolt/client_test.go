package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(filepath.Join(t.TempDir(), "hri.bolt"), zaptest.NewLogger(t))
	require.NoError(t, c.Open(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientPing(t *testing.T) {
	c := newTestClient(t)
	assert.NoError(t, c.Ping(context.Background()))

	closed := NewClient("", nil)
	err := closed.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.EUnavailable, errors.ErrorCode(err))
}

func TestIndexLifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	exists, err := c.IndexExists(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.CreateIndex(ctx, "t1"))

	exists, err = c.IndexExists(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, exists)

	// duplicate create conflicts
	err = c.CreateIndex(ctx, "t1")
	require.Error(t, err)
	assert.Equal(t, errors.EConflict, errors.ErrorCode(err))

	require.NoError(t, c.CreateIndex(ctx, "t2"))
	tenants, err := c.ListIndexes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, tenants)

	require.NoError(t, c.DeleteIndex(ctx, "t1"))
	exists, err = c.IndexExists(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, exists)

	err = c.DeleteIndex(ctx, "t1")
	require.Error(t, err)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
	assert.Contains(t, errors.ErrorMessage(err), "Tenant: t1 not found")
}
