// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    func(o *s3.Options) {
//	        o.Prefix = "songsight/"
//	        o.Region = "eu-central-1"
//	    },
//	)
//
// S3 has no compare-and-swap, so concurrent writers can race on the
// CURRENT manifest. CommitStore routes CURRENT through a DynamoDB table with
// conditional writes instead:
//
//	store, err := s3.NewWithCommits(ctx, "my-bucket", "songsight-commits")
//
// # Features
//
//   - Multipart uploads for large snapshots, CRC32C-validated single puts
//     for small ones
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - Custom endpoints (LocalStack, path-style addressing)
package s3
