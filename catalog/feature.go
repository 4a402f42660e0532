package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownFeature is returned for a feature name outside the known set.
var ErrUnknownFeature = errors.New("catalog: unknown feature")

// Feature identifies one filterable, rankable track attribute.
type Feature int

const (
	Acousticness Feature = iota
	Danceability
	DurationMs
	Energy
	Instrumentalness
	Key
	Liveness
	Loudness
	Mode
	Speechiness
	Tempo
	TimeSignature
	Valence
	Popularity

	numFeatures
)

var featureNames = [numFeatures]string{
	Acousticness:     "acousticness",
	Danceability:     "danceability",
	DurationMs:       "duration_ms",
	Energy:           "energy",
	Instrumentalness: "instrumentalness",
	Key:              "key",
	Liveness:         "liveness",
	Loudness:         "loudness",
	Mode:             "mode",
	Speechiness:      "speechiness",
	Tempo:            "tempo",
	TimeSignature:    "time_signature",
	Valence:          "valence",
	Popularity:       "popularity",
}

var featuresByName = func() map[string]Feature {
	m := make(map[string]Feature, numFeatures)
	for f, name := range featureNames {
		m[name] = Feature(f)
	}
	return m
}()

// ParseFeature resolves a feature name.
func ParseFeature(name string) (Feature, error) {
	f, ok := featuresByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	return f, nil
}

// Features returns every known feature in declaration order.
func Features() []Feature {
	out := make([]Feature, numFeatures)
	for i := range out {
		out[i] = Feature(i)
	}
	return out
}

// Valid reports whether f is a known feature.
func (f Feature) Valid() bool { return f >= 0 && f < numFeatures }

func (f Feature) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Feature(%d)", int(f))
	}
	return featureNames[f]
}

// Values holds one raw value per feature, indexed by Feature.
type Values [numFeatures]float64

// Get returns the value of f.
func (v *Values) Get(f Feature) float64 { return v[f] }

// Set assigns the value of f.
func (v *Values) Set(f Feature, x float64) { v[f] = x }
