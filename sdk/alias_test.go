package sdk

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasResolver_CachesPositiveLookups(t *testing.T) {
	var calls atomic.Int64
	alias := int32(3)
	resolver := NewAliasResolver(func(ctx context.Context, discussionId, userId string) (*AliasInfo, error) {
		calls.Add(1)
		return &AliasInfo{Alias: &alias}, nil
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		info, err := resolver.Resolve(ctx, "disc-1", "user-1")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "#3", info.Label())
	}

	assert.Equal(t, int64(1), calls.Load())
}

func TestAliasResolver_ConcurrentResolvesShareOneLookup(t *testing.T) {
	var calls atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	resolver := NewAliasResolver(func(ctx context.Context, discussionId, userId string) (*AliasInfo, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return &AliasInfo{IsOp: true}, nil
	})

	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	labels := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			labels[i], errs[i] = resolver.LabelFor(ctx, "disc-1", "user-1")
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "OP", labels[i])
	}
	assert.Equal(t, int64(1), calls.Load())
}

func TestAliasResolver_NegativeCaching(t *testing.T) {
	var calls atomic.Int64
	resolver := NewAliasResolver(func(ctx context.Context, discussionId, userId string) (*AliasInfo, error) {
		calls.Add(1)
		return nil, ErrNotFound
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		info, err := resolver.Resolve(ctx, "disc-1", "ghost")
		require.NoError(t, err)
		assert.Nil(t, info)
	}
	assert.Equal(t, int64(1), calls.Load())

	label, err := resolver.LabelFor(ctx, "disc-1", "ghost")
	require.NoError(t, err)
	assert.Equal(t, "?", label)
}

func TestAliasResolver_ErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int64
	resolver := NewAliasResolver(func(ctx context.Context, discussionId, userId string) (*AliasInfo, error) {
		if calls.Add(1) == 1 {
			return nil, ErrInternalServer
		}
		return &AliasInfo{IsOp: true}, nil
	})

	ctx := context.Background()
	_, err := resolver.Resolve(ctx, "disc-1", "user-1")
	require.Error(t, err)

	info, err := resolver.Resolve(ctx, "disc-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.True(t, info.IsOp)
	assert.Equal(t, int64(2), calls.Load())
}

func TestAliasResolver_CacheIsPerDiscussion(t *testing.T) {
	var calls atomic.Int64
	resolver := NewAliasResolver(func(ctx context.Context, discussionId, userId string) (*AliasInfo, error) {
		calls.Add(1)
		if discussionId == "disc-1" {
			return &AliasInfo{IsOp: true}, nil
		}
		n := int32(5)
		return &AliasInfo{Alias: &n}, nil
	})

	ctx := context.Background()
	a, err := resolver.LabelFor(ctx, "disc-1", "user-1")
	require.NoError(t, err)
	b, err := resolver.LabelFor(ctx, "disc-2", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "OP", a)
	assert.Equal(t, "#5", b)
	assert.Equal(t, int64(2), calls.Load())
}

func TestAliasResolver_Prime(t *testing.T) {
	resolver := NewAliasResolver(func(ctx context.Context, discussionId, userId string) (*AliasInfo, error) {
		t.Fatal("lookup must not run for primed entries")
		return nil, nil
	})

	n := int32(2)
	resolver.Prime("disc-1", "user-1", &AliasInfo{Alias: &n})

	label, err := resolver.LabelFor(context.Background(), "disc-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "#2", label)
}
