package codec

import gojson "github.com/goccy/go-json"

// GoJSON is a JSON codec backed by github.com/goccy/go-json.
type GoJSON struct {
	// Indent pretty-prints the output with two spaces, which keeps CURRENT
	// manifests readable in object-store consoles.
	Indent bool
}

// Marshal encodes the value to JSON.
func (c GoJSON) Marshal(v any) ([]byte, error) {
	if c.Indent {
		return gojson.MarshalIndent(v, "", "  ")
	}
	return gojson.Marshal(v)
}

// Unmarshal decodes the JSON data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json". Indented and compact output share the name; the
// decoder accepts both.
func (GoJSON) Name() string { return "go-json" }
