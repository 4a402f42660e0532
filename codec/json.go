package codec

import "encoding/json"

// JSON is the standard-library JSON codec. Its output is interchangeable
// with GoJSON, so snapshots written by either decode with both.
type JSON struct {
	// Indent pretty-prints the output with two spaces.
	Indent bool
}

// Marshal encodes the value to JSON.
func (c JSON) Marshal(v any) ([]byte, error) {
	if c.Indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSON) Name() string { return "json" }
