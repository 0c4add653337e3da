package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryRevalidator(t *testing.T) {
	t.Run("revalidated pages are stale exactly once", func(t *testing.T) {
		m := NewMemoryRevalidator()
		require.NoError(t, m.Revalidate(context.Background(), "/", "/products"))

		assert.True(t, m.ConsumeStale("/"))
		assert.True(t, m.ConsumeStale("/products"))
		assert.False(t, m.ConsumeStale("/products"), "consuming clears the mark")
	})

	t.Run("untouched pages are not stale", func(t *testing.T) {
		m := NewMemoryRevalidator()
		assert.False(t, m.ConsumeStale("/products"))
	})
}
