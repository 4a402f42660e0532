// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. The official MinIO Go
// client works equally with Ceph, SeaweedFS, Garage and other S3-compatible
// services, and needs no AWS dependencies.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "songsight", "catalog-a/")
//	eng, err := songsight.New(tracks, songsight.WithSnapshotStore(store))
package minio
