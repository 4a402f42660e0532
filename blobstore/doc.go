// Package blobstore provides the storage abstraction for persisted index
// snapshots and their CURRENT manifest.
//
// Store is the interface for reading and writing whole blobs. Snapshots are
// small enough to be read into memory, so there is no ranged access.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local filesystem with atomic temp-file renames
//   - minio.Store: MinIO and other S3-compatible object stores
//   - s3.Store: Amazon S3 with multipart uploads, optionally paired with a
//     DynamoDB table for conditional CURRENT updates (s3.CommitStore)
//
// # Custom Implementations
//
//	type Store interface {
//	    Get(ctx, name) ([]byte, error)
//	    Put(ctx, name, data) error          // atomic replace
//	    Delete(ctx, name) error             // missing blobs are not an error
//	    List(ctx, prefix) ([]string, error) // sorted
//	}
package blobstore
