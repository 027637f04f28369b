package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs_StartsAtOne(t *testing.T) {
	ids := NewSequentialIDs()
	assert.Equal(t, int64(0), ids.Issued())
	assert.Equal(t, "{00000000-0000-0000-0000-000000000001}", ids.NewID())
	assert.Equal(t, "{00000000-0000-0000-0000-000000000002}", ids.NewID())
	assert.Equal(t, int64(2), ids.Issued())
}

func TestSequentialIDs_Reset(t *testing.T) {
	ids := NewSequentialIDs()
	first := ids.NewID()
	ids.NewID()

	ids.Reset()
	assert.Equal(t, int64(0), ids.Issued())
	assert.Equal(t, first, ids.NewID())
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	ids := NewSequentialIDs()
	const goroutines = 50
	const perGoroutine = 20

	results := make(chan string, goroutines*perGoroutine)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				results <- ids.NewID()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for id := range results {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}
