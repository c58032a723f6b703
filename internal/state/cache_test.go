package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/store"
)

type countingSource struct {
	inner Source
	loads int
}

func (c *countingSource) Load(ctx context.Context, merchantID string) (StoreState, error) {
	c.loads++
	return c.inner.Load(ctx, merchantID)
}

func TestCachedLoader_HitsWhileRevisionUnchanged(t *testing.T) {
	repo := seedRepo(t)
	src := &countingSource{inner: NewLoader(repo, catalog.Default())}
	cached, err := NewCachedLoader(src, repo, 8)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := cached.Load(ctx, "m1")
	require.NoError(t, err)
	second, err := cached.Load(ctx, "m1")
	require.NoError(t, err)

	assert.Equal(t, 1, src.loads)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cached.Len())
}

func TestCachedLoader_ReturnsIndependentCopies(t *testing.T) {
	repo := seedRepo(t)
	cached, err := NewCachedLoader(NewLoader(repo, catalog.Default()), repo, 8)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := cached.Load(ctx, "m1")
	require.NoError(t, err)
	first.Products[0].Title = "mutated"

	second, err := cached.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", second.Products[0].Title)
}

func TestCachedLoader_ReloadsAfterWrite(t *testing.T) {
	repo := seedRepo(t)
	src := &countingSource{inner: NewLoader(repo, catalog.Default())}
	cached, err := NewCachedLoader(src, repo, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cached.Load(ctx, "m1")
	require.NoError(t, err)

	title := "Big mug"
	require.NoError(t, repo.UpdateProduct(ctx, "m1", "p1", store.ProductPatch{Title: &title}))

	st, err := cached.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 2, src.loads)
	assert.Equal(t, "Big mug", st.Products[0].Title)
}

func TestCachedLoader_FailedLoadEvicts(t *testing.T) {
	repo := seedRepo(t)
	cached, err := NewCachedLoader(NewLoader(repo, catalog.Default()), repo, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cached.Load(ctx, "m1")
	require.NoError(t, err)

	repo.Bump("m1")
	repo.FailOn("ListProducts", errors.New("gone"))
	_, err = cached.Load(ctx, "m1")
	require.Error(t, err)
	assert.Equal(t, 0, cached.Len())
}

func TestNewCachedLoader_InvalidSize(t *testing.T) {
	_, err := NewCachedLoader(nil, nil, 0)
	assert.Error(t, err)
}
