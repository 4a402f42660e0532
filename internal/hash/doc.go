// Package hash provides the CRC32-Castagnoli helpers behind schema
// fingerprints and S3 upload checksums.
//
//	sum := hash.CRC32C(data)
//	fp := hash.Fingerprint("songsight-v1", "energy", "tempo")
package hash
