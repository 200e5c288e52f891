package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/soundprediction/inquiro/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyAvoidsCollisions(t *testing.T) {
	// With a plain ":" separator, ("ab", 12) and ("ab1", 2) could collide.
	assert.NotEqual(t, Key("ab", 12), Key("ab1", 2))
	assert.NotEqual(t, Key("abc", 1), Key("ab", 1))
	assert.Equal(t, Key("query", 3), Key("query", 3))
}

func TestStoreGetPut(t *testing.T) {
	store := New(0)
	key := Key("golang", 2)

	_, ok := store.Get(key)
	assert.False(t, ok)

	report := &types.ResearchReport{Status: "success", Query: "golang", Depth: 2}
	store.Put(key, report)

	got, ok := store.Get(key)
	require.True(t, ok)
	assert.Same(t, report, got)
	assert.Equal(t, 1, store.Len())

	storedAt, ok := store.StoredAt(key)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), storedAt, time.Second)
}

func TestStoreLastWriteWins(t *testing.T) {
	store := New(0)
	key := Key("golang", 2)

	first := &types.ResearchReport{Query: "golang", Depth: 2, Answer: "first"}
	second := &types.ResearchReport{Query: "golang", Depth: 2, Answer: "second"}
	store.Put(key, first)
	store.Put(key, second)

	got, ok := store.Get(key)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, store.Len())
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := New(time.Hour)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			key := Key(fmt.Sprintf("query-%d", i%5), i%3+1)
			store.Put(key, &types.ResearchReport{Query: key})
		}(i)
		go func(i int) {
			defer wg.Done()
			store.Get(Key(fmt.Sprintf("query-%d", i%5), i%3+1))
		}(i)
	}

	wg.Wait()
	assert.Equal(t, time.Hour, store.Expiry())
}
