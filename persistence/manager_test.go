package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/songsight/blobstore"
)

func TestManagerNoSnapshot(t *testing.T) {
	m := NewManager(blobstore.NewMemoryStore())

	_, err := m.Current(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, _, err = m.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestManagerSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewLocalStore(t.TempDir())
	m := NewManager(store, func(o *ManagerOptions) { o.Compression = CompressionZSTD })
	m.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	snap := testSnapshot(50)
	mf, err := m.Save(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), mf.Sequence)
	assert.Equal(t, "snapshots/00000000000000000001.sskd", mf.Path)
	assert.Equal(t, 50, mf.Entries)
	assert.Equal(t, 4, mf.Dimension)
	assert.Equal(t, "zstd", mf.Compression)
	assert.Equal(t, snap.Schema.Fingerprint(), mf.Fingerprint)

	got, cur, err := m.Load(ctx)
	require.NoError(t, err)
	assert.True(t, mf.CreatedAt.Equal(cur.CreatedAt))
	cur.CreatedAt = mf.CreatedAt
	assert.Equal(t, *mf, *cur)
	assert.Len(t, got.Entries, 50)
	assert.True(t, got.Schema.Equal(snap.Schema))

	// A second manager over the same store sees the committed snapshot.
	other := NewManager(store)
	cur, err = other.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cur.Sequence)
}

func TestManagerSequenceAndPrune(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := NewManager(store)

	for i := 1; i <= 4; i++ {
		mf, err := m.Save(ctx, testSnapshot(i))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), mf.Sequence)
	}

	deleted, err := m.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"snapshots/00000000000000000003.sskd",
		"snapshots/00000000000000000004.sskd",
	}, names)

	snap, mf, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), mf.Sequence)
	assert.Len(t, snap.Entries, 4)

	// keep < 1 still keeps the active snapshot.
	deleted, err = m.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	_, _, err = m.Load(ctx)
	require.NoError(t, err)
}

func TestManagerDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := NewManager(store)

	mf, err := m.Save(ctx, testSnapshot(5))
	require.NoError(t, err)

	data, err := store.Get(ctx, mf.Path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, mf.Path, data[:len(data)-2]))

	_, _, err = m.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, store.Put(ctx, CurrentName, []byte("{not json")))
	_, err = m.Current(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestParseSnapshotName(t *testing.T) {
	seq, ok := parseSnapshotName(snapshotName(42))
	assert.True(t, ok)
	assert.Equal(t, uint64(42), seq)

	for _, name := range []string{"CURRENT", "snapshots/x.sskd", "snapshots/1.tmp", "other/1.sskd"} {
		_, ok := parseSnapshotName(name)
		assert.False(t, ok, name)
	}
}
