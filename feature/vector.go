package feature

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrSchemaMismatch indicates attributes that do not fit the schema.
var ErrSchemaMismatch = errors.New("feature: schema mismatch")

// SchemaError describes which attribute failed validation.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("feature: schema mismatch on %q: %s", e.Field, e.Reason)
}

// Unwrap returns ErrSchemaMismatch.
func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// Vector is a fixed-length feature vector in schema order.
type Vector []float32

// Attributes are the inputs of Build.
type Attributes struct {
	// Continuous holds already-scaled values keyed by continuous dimension name.
	Continuous map[string]float32

	// Categories holds membership for every label of the vocabulary.
	Categories map[string]bool
}

// Build encodes attrs as a vector.
//
// Every continuous dimension must be present and finite, and the category
// keys must be exactly the schema vocabulary. Extra continuous keys are
// ignored; they commonly carry display-only values.
func (s *Schema) Build(attrs Attributes) (Vector, error) {
	v := make(Vector, 0, s.Dimension())

	for _, name := range s.continuous {
		x, ok := attrs.Continuous[name]
		if !ok {
			return nil, &SchemaError{Field: name, Reason: "missing continuous attribute"}
		}
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil, &SchemaError{Field: name, Reason: "non-finite value"}
		}
		v = append(v, x)
	}

	if len(attrs.Categories) != len(s.vocabulary) {
		for label := range attrs.Categories {
			if !slices.Contains(s.vocabulary, label) {
				return nil, &SchemaError{Field: label, Reason: "category not in vocabulary"}
			}
		}
	}
	for _, label := range s.vocabulary {
		member, ok := attrs.Categories[label]
		if !ok {
			return nil, &SchemaError{Field: label, Reason: "missing category"}
		}
		if member {
			v = append(v, 1)
		} else {
			v = append(v, 0)
		}
	}

	return v, nil
}

// Genres returns the labels flagged in attrs, in vocabulary order.
func (s *Schema) Genres(attrs Attributes) []string {
	var out []string
	for _, label := range s.vocabulary {
		if attrs.Categories[label] {
			out = append(out, label)
		}
	}
	return out
}

// NewAttributes returns attributes with every vocabulary label present and
// set to false, then flags the given genres. Unknown genres are rejected.
func (s *Schema) NewAttributes(continuous map[string]float32, genres ...string) (Attributes, error) {
	cats := make(map[string]bool, len(s.vocabulary))
	for _, label := range s.vocabulary {
		cats[label] = false
	}
	for _, g := range genres {
		if _, ok := cats[g]; !ok {
			return Attributes{}, &SchemaError{Field: g, Reason: "category not in vocabulary"}
		}
		cats[g] = true
	}
	return Attributes{Continuous: continuous, Categories: cats}, nil
}
