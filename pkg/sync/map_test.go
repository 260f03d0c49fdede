package sync_test

import (
	"testing"

	"github.com/hbomb79/Cadence/pkg/sync"
	"github.com/stretchr/testify/assert"
)

func Test_TypedSyncMap_StoreLoadDelete(t *testing.T) {
	var m sync.TypedSyncMap[string, int]
	assert.Equal(t, 0, m.Len())

	m.Store("a", 1)
	m.Store("b", 2)
	assert.Equal(t, 2, m.Len())

	v, ok := m.Load("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = m.LoadAndDelete("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = m.Load("b")
	assert.False(t, ok)

	m.Delete("a")
	assert.Equal(t, 0, m.Len())
}

func Test_TypedSyncMap_Range(t *testing.T) {
	var m sync.TypedSyncMap[int, string]
	m.Store(1, "one")
	m.Store(2, "two")
	m.Store(3, "three")

	seen := map[int]string{}
	m.Range(func(k int, v string) bool {
		seen[k] = v
		return true
	})
	assert.Equal(t, map[int]string{1: "one", 2: "two", 3: "three"}, seen)

	visits := 0
	m.Range(func(int, string) bool {
		visits++
		return false
	})
	assert.Equal(t, 1, visits)
}
