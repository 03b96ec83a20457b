package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetchCallsFetchOnceThenCaches(t *testing.T) {
	tbl, err := New[uint64, uint64](3)
	require.NoError(t, err)

	calls := 0
	fetch := func() (uint64, error) {
		calls++
		return 10, nil
	}

	v, err := tbl.GetOrFetch(42, fetch)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)

	v, err = tbl.GetOrFetch(42, func() (uint64, error) {
		t.Fatal("fetch should not run again for a cached key")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
	assert.Equal(t, 1, calls)
}

func TestInsertOverridesCachedValue(t *testing.T) {
	tbl, err := New[uint64, uint64](3)
	require.NoError(t, err)

	_, err = tbl.GetOrFetch(42, func() (uint64, error) { return 10, nil })
	require.NoError(t, err)

	tbl.Insert(42, 12)
	v, err := tbl.GetOrFetch(42, func() (uint64, error) { return 0, errors.New("must not be called") })
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)
}

func TestPurgeRemovesEntry(t *testing.T) {
	tbl, err := New[uint64, uint64](3)
	require.NoError(t, err)

	_, err = tbl.GetOrFetch(42, func() (uint64, error) { return 10, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	tbl.Purge(42)
	assert.Equal(t, 0, tbl.Len())
}

func TestFetchErrorIsNotCached(t *testing.T) {
	tbl, err := New[uint64, uint64](3)
	require.NoError(t, err)
	boom := errors.New("db busy")

	_, err = tbl.GetOrFetch(42, func() (uint64, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, tbl.Len())

	v, err := tbl.GetOrFetch(42, func() (uint64, error) { return 99, nil })
	require.NoError(t, err)
	assert.Equal(t, uint64(99), v)
}

func TestConcurrentGetOrFetchSharesOneCall(t *testing.T) {
	tbl, err := New[uint64, uint64](3)
	require.NoError(t, err)

	var calls int
	var mu sync.Mutex
	release := make(chan struct{})

	fetch := func() (uint64, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]uint64, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := tbl.GetOrFetch(1, fetch)
			assert.NoError(t, err)
			results[idx] = v
		}(i)
	}

	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, uint64(7), v)
	}
}

func TestPurgeIfRemovesMatching(t *testing.T) {
	tbl, err := New[uint64, uint64](5)
	require.NoError(t, err)

	for i := uint64(0); i < 4; i++ {
		_, err := tbl.GetOrFetch(i, func() (uint64, error) { return i, nil })
		require.NoError(t, err)
	}

	removed := tbl.PurgeIf(func(k uint64) bool { return k%2 == 0 })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, tbl.Len())
}
