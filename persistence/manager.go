package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/songsight/blobstore"
	"github.com/hupe1980/songsight/codec"
)

const (
	// CurrentName is the blob that points at the active snapshot.
	CurrentName = "CURRENT"

	snapshotDir = "snapshots"
	snapshotExt = ".sskd"
)

// ErrNoSnapshot is returned when no snapshot has been committed yet.
var ErrNoSnapshot = errors.New("persistence: no snapshot")

// Manifest describes a committed snapshot.
type Manifest struct {
	Sequence      uint64    `json:"sequence"`
	Path          string    `json:"path"`
	CreatedAt     time.Time `json:"created_at"`
	Entries       int       `json:"entries"`
	Dimension     int       `json:"dimension"`
	SchemaVersion string    `json:"schema_version"`
	Fingerprint   string    `json:"fingerprint"`
	Compression   string    `json:"compression"`
	Size          int64     `json:"size"`
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Codec       codec.Codec
	Compression Compression
}

// Manager stores snapshots in a blobstore.Store and tracks the active one.
//
// Save and Prune are serialized. Concurrent managers on the same store are
// only safe when the store's CURRENT writes are conditional, as with the S3
// commit store.
type Manager struct {
	store blobstore.Store
	opts  ManagerOptions
	mu    sync.Mutex
	now   func() time.Time
}

// NewManager creates a snapshot manager.
func NewManager(store blobstore.Store, optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{
		Codec:       codec.Default,
		Compression: CompressionNone,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	return &Manager{store: store, opts: opts, now: time.Now}
}

func snapshotName(seq uint64) string {
	return path.Join(snapshotDir, fmt.Sprintf("%020d%s", seq, snapshotExt))
}

func parseSnapshotName(name string) (uint64, bool) {
	base, ok := strings.CutPrefix(name, snapshotDir+"/")
	if !ok {
		return 0, false
	}
	base, ok = strings.CutSuffix(base, snapshotExt)
	if !ok {
		return 0, false
	}
	seq, err := strconv.ParseUint(base, 10, 64)
	return seq, err == nil
}

// Save writes snap as a new snapshot and makes it current.
func (m *Manager) Save(ctx context.Context, snap *Snapshot) (*Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq, err := m.nextSequence(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	size, err := Encode(&buf, snap, func(o *EncodeOptions) {
		o.Compression = m.opts.Compression
		o.Codec = m.opts.Codec
	})
	if err != nil {
		return nil, err
	}

	name := snapshotName(seq)
	if err := m.store.Put(ctx, name, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("persistence: write %s: %w", name, err)
	}

	mf := &Manifest{
		Sequence:      seq,
		Path:          name,
		CreatedAt:     m.now().UTC(),
		Entries:       len(snap.Entries),
		Dimension:     snap.Schema.Dimension(),
		SchemaVersion: snap.Schema.Version(),
		Fingerprint:   snap.Schema.Fingerprint(),
		Compression:   m.opts.Compression.String(),
		Size:          size,
	}
	data, err := m.opts.Codec.Marshal(mf)
	if err != nil {
		return nil, err
	}
	if err := m.store.Put(ctx, CurrentName, data); err != nil {
		return nil, fmt.Errorf("persistence: commit %s: %w", name, err)
	}
	return mf, nil
}

func (m *Manager) nextSequence(ctx context.Context) (uint64, error) {
	names, err := m.store.List(ctx, snapshotDir+"/")
	if err != nil {
		return 0, err
	}
	var last uint64
	for _, name := range names {
		if seq, ok := parseSnapshotName(name); ok && seq > last {
			last = seq
		}
	}
	return last + 1, nil
}

// Current returns the manifest of the active snapshot, or ErrNoSnapshot.
func (m *Manager) Current(ctx context.Context) (*Manifest, error) {
	data, err := m.store.Get(ctx, CurrentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	var mf Manifest
	if err := m.opts.Codec.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrCorrupt, err)
	}
	return &mf, nil
}

// Load reads the active snapshot.
func (m *Manager) Load(ctx context.Context) (*Snapshot, *Manifest, error) {
	mf, err := m.Current(ctx)
	if err != nil {
		return nil, nil, err
	}

	data, err := m.store.Get(ctx, mf.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("persistence: read %s: %w", mf.Path, err)
	}
	if int64(len(data)) != mf.Size {
		return nil, nil, fmt.Errorf("%w: %s has %d bytes, manifest says %d", ErrCorrupt, mf.Path, len(data), mf.Size)
	}

	snap, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	if snap.Schema.Fingerprint() != mf.Fingerprint {
		return nil, nil, fmt.Errorf("%w: %s does not match its manifest", ErrCorrupt, mf.Path)
	}
	return snap, mf, nil
}

// Prune deletes all but the newest keep snapshots. The active snapshot is
// never deleted. It returns the number of deleted snapshots.
func (m *Manager) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var active string
	mf, err := m.Current(ctx)
	switch {
	case err == nil:
		active = mf.Path
	case !errors.Is(err, ErrNoSnapshot):
		return 0, err
	}

	names, err := m.store.List(ctx, snapshotDir+"/")
	if err != nil {
		return 0, err
	}
	seqs := make([]uint64, 0, len(names))
	for _, name := range names {
		if seq, ok := parseSnapshotName(name); ok {
			seqs = append(seqs, seq)
		}
	}
	slices.Sort(seqs)

	deleted := 0
	for _, seq := range seqs[:max(0, len(seqs)-keep)] {
		name := snapshotName(seq)
		if name == active {
			continue
		}
		if err := m.store.Delete(ctx, name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
