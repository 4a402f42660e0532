package feature

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/songsight/internal/hash"
)

// ErrInvalidSchema is returned by NewSchema for malformed definitions.
var ErrInvalidSchema = errors.New("feature: invalid schema")

// Schema is a versioned, immutable description of the vector layout.
type Schema struct {
	version     string
	continuous  []string
	vocabulary  []string
	fingerprint string
}

// NewSchema creates a schema. Names must be non-empty and unique across
// both bands, and at least one dimension must exist.
func NewSchema(version string, continuous, vocabulary []string) (*Schema, error) {
	if version == "" {
		return nil, fmt.Errorf("%w: empty version", ErrInvalidSchema)
	}
	if len(continuous)+len(vocabulary) == 0 {
		return nil, fmt.Errorf("%w: no dimensions", ErrInvalidSchema)
	}

	seen := make(map[string]struct{}, len(continuous)+len(vocabulary))
	for _, name := range slices.Concat(continuous, vocabulary) {
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidSchema)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidSchema, name)
		}
		seen[name] = struct{}{}
	}

	s := &Schema{
		version:    version,
		continuous: slices.Clone(continuous),
		vocabulary: slices.Clone(vocabulary),
	}
	parts := []string{version, "continuous"}
	parts = append(parts, continuous...)
	parts = append(parts, "vocabulary")
	parts = append(parts, vocabulary...)
	s.fingerprint = hash.Fingerprint(parts...)
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(version string, continuous, vocabulary []string) *Schema {
	s, err := NewSchema(version, continuous, vocabulary)
	if err != nil {
		panic(err)
	}
	return s
}

// Version returns the schema version label.
func (s *Schema) Version() string { return s.version }

// Continuous returns the continuous dimension names in order.
func (s *Schema) Continuous() []string { return slices.Clone(s.continuous) }

// Vocabulary returns the genre labels in order.
func (s *Schema) Vocabulary() []string { return slices.Clone(s.vocabulary) }

// Dimension returns the vector length.
func (s *Schema) Dimension() int { return len(s.continuous) + len(s.vocabulary) }

// Fingerprint returns a short digest of the version and all names in order.
func (s *Schema) Fingerprint() string { return s.fingerprint }

// Equal reports whether two schemas describe the same layout.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.version == o.version &&
		slices.Equal(s.continuous, o.continuous) &&
		slices.Equal(s.vocabulary, o.vocabulary)
}

// String implements fmt.Stringer.
func (s *Schema) String() string {
	return fmt.Sprintf("Schema(%s, continuous=%d, vocabulary=%d, fp=%s)",
		s.version, len(s.continuous), len(s.vocabulary), s.fingerprint)
}
