package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysShareClearPrefix(t *testing.T) {
	assert.Equal(t, "page:rendered:42", PageKey(42))
	assert.True(t, strings.HasPrefix(SlugKey("hello"), pageKeyPrefix))
	assert.NotEqual(t, PageKey(1), SlugKey("1"))
}

func TestNopPageCache(t *testing.T) {
	var c PageCache = NopPageCache{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, PageKey(1), []byte("{}")))
	_, ok, err := c.Get(ctx, PageKey(1))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Clear(ctx))
}
