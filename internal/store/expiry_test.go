package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiration_ZeroTTLIsInvisibleEverywhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s, _ := openTest(t, path)

	_, _, err := s.Put("ns", "dead", "gone already", []string{"t"}, ttl(0))
	require.NoError(t, err)
	_, _, err = s.Put("ns", "alive", "still here", []string{"t"}, nil)
	require.NoError(t, err)

	_, err = s.Get("ns", "dead")
	assert.ErrorIs(t, err, ErrNotFound)

	results, err := s.Search(SearchOptions{Namespace: "ns"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alive", results[0].Key)

	listing, err := s.List("ns", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alive"}, listing.Namespaces["ns"])

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecords)
	assert.Equal(t, 1, stats.ByTag["t"])

	related, err := s.FindRelated("ns", "alive", 0)
	require.NoError(t, err)
	assert.Empty(t, related, "expired records never count as related")
}

func TestExpiration_TTLElapses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s, now := openTest(t, path)

	_, _, err := s.Put("ns", "k", "v", nil, ttl(60))
	require.NoError(t, err)

	got, err := s.Get("ns", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got.Value)

	*now = now.Add(61 * time.Second)

	_, err = s.Get("ns", "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestExpiration_PurgedOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s, _ := openTest(t, path)

	_, _, err := s.Put("ns", "short", "v", nil, ttl(60))
	require.NoError(t, err)
	_, _, err = s.Put("ns", "keep", "v", nil, nil)
	require.NoError(t, err)

	// Reopen well past the TTL.
	later := testEpoch.Add(2 * time.Hour)
	s2, err := Open(path,
		WithClock(func() time.Time { return later }),
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, s2.Len())

	_, err = s2.Get("ns", "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpiration_ReStoreOfExpiredKeyIsAFreshInsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s, now := openTest(t, path)

	first, _, err := s.Put("ns", "k", "v1", nil, ttl(10))
	require.NoError(t, err)

	*now = now.Add(time.Minute)

	second, created, err := s.Put("ns", "k", "v2", nil, nil)
	require.NoError(t, err)
	assert.True(t, created, "an expired record does not survive as an identity")
	assert.Greater(t, second.CreatedAt, first.CreatedAt)
}

func TestStats_ExpiringSoon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s, _ := openTest(t, path)

	_, _, err := s.Put("ns", "soon", "v", nil, ttl(3600)) // 1h out
	require.NoError(t, err)
	_, _, err = s.Put("ns", "later", "v", nil, ttl(48*3600)) // 2d out
	require.NoError(t, err)
	_, _, err = s.Put("ns", "never", "v", nil, nil)
	require.NoError(t, err)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 1, stats.ExpiringSoon)
}
