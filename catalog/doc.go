// Package catalog defines the read-only track catalog consumed by the
// engine and the closed set of features that can be filtered and ranked.
//
// Feature names are resolved through a fixed lookup table (ParseFeature);
// unknown names fail with ErrUnknownFeature. Nothing is ever evaluated
// from a caller-supplied string.
package catalog
