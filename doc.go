// Package songsight recommends musically similar tracks and supports
// feature-based browsing over a fixed catalog.
//
// # Quick Start
//
//	store := catalog.NewMemoryStore(tracks...)
//	eng, _ := songsight.New(store)
//	if err := eng.Rebuild(ctx); err != nil {
//	    return err
//	}
//
//	// Ten nearest tracks by feature vector, the seed excluded.
//	neighbors, _ := eng.SimilarTo(ctx, "4uLU6hMCjMI75M1A2tKUQC", 10)
//
//	// Danceable tracks, ordered by danceability.
//	ids, _ := eng.FilterRange(ctx, "danceability", ptr(0.8), nil, 0)
//
//	// Ten random picks among the 100 most popular tracks.
//	ids, _ = eng.SampleTopRandom(ctx, "popularity", 100, 10, false)
//
// # Feature Vectors
//
// Every track is encoded with a feature.Schema: the continuous audio
// features in schema order followed by one binary flag per genre of the
// vocabulary. Similarity is the Euclidean distance between two vectors.
//
// # Rebuilds
//
// Rebuild reads the whole catalog, builds an exact k-d tree (or a flat
// index, see WithIndexKind) plus the sorted selection columns, and swaps
// them in atomically. Queries never block on a rebuild and keep using the
// state they started with. Only one rebuild runs at a time.
//
// # Snapshots
//
// With WithSnapshotStore, SaveSnapshot persists the built index to any
// blobstore.Store (local directory, MinIO, S3) and LoadSnapshot restores it
// without re-encoding the catalog:
//
//	eng, _ := songsight.New(store,
//	    songsight.WithSnapshotStore(blobstore.NewLocalStore("./data")),
//	    songsight.WithCompression(persistence.CompressionLZ4),
//	)
//
// # Errors
//
// Errors returned by the engine match the sentinels of this package with
// errors.Is, whichever subpackage produced them.
package songsight
