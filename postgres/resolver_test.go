package postgres

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolverMemo(t *testing.T) {
	t.Run("memoizes both directions", func(t *testing.T) {
		// given
		r := newResolver()

		// when
		r.memoize(kindEvent, "invoice.created", 3)

		// then
		id, ok := r.cachedID(kindEvent, "invoice.created")
		assert.True(t, ok)
		assert.Equal(t, int64(3), id)

		name, ok := r.cachedName(kindEvent, 3)
		assert.True(t, ok)
		assert.Equal(t, "invoice.created", name)
	})

	t.Run("kinds are independent", func(t *testing.T) {
		// given
		r := newResolver()
		r.memoize(kindEvent, "billing", 3)

		// then
		_, ok := r.cachedID(kindQueue, "billing")
		assert.False(t, ok, "event binding must not leak into queue kind")
	})

	t.Run("miss is not cached", func(t *testing.T) {
		r := newResolver()

		_, ok := r.cachedID(kindEvent, "unknown")
		assert.False(t, ok)
		_, ok = r.cachedName(kindEvent, 404)
		assert.False(t, ok)
	})

	t.Run("concurrent access", func(t *testing.T) {
		// given
		r := newResolver()

		// when
		var wg sync.WaitGroup
		for i := range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.memoize(kindQueue, "billing", 5)
				_, _ = r.cachedID(kindQueue, "billing")
				_, _ = r.cachedName(kindQueue, int64(i))
			}()
		}
		wg.Wait()

		// then
		id, ok := r.cachedID(kindQueue, "billing")
		assert.True(t, ok)
		assert.Equal(t, int64(5), id)
	})
}
