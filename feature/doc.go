// Package feature defines the fixed-length numeric encoding of a track.
//
// A Schema fixes the dimension order: first the continuous band (audio
// descriptors that an offline process has already scaled), then the
// categorical band (one 0/1 flag per genre label of a closed vocabulary).
// Build is a pure function of a Schema and the Attributes passed in; it does
// no scaling of its own.
//
// Vectors built against different schemas must never be mixed in one index.
// Fingerprint identifies a schema so persisted indexes can be checked
// against the schema in use.
package feature
