package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/hupe1980/songsight/codec"
	"github.com/hupe1980/songsight/feature"
	"github.com/hupe1980/songsight/index"
)

// Snapshot is the persisted form of a built index: the schema it was built
// against and every entry in identifier order.
type Snapshot struct {
	Schema  *feature.Schema
	Entries []index.Entry
}

// schemaDescriptor is the codec-encoded form of a feature.Schema.
type schemaDescriptor struct {
	Version     string   `json:"version"`
	Continuous  []string `json:"continuous"`
	Vocabulary  []string `json:"vocabulary"`
	Fingerprint string   `json:"fingerprint"`
}

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// Compression of the snapshot body. Defaults to CompressionNone.
	Compression Compression

	// Codec for the schema descriptor. Defaults to codec.Default.
	Codec codec.Codec
}

// Encode writes snap to w and returns the number of bytes written.
func Encode(w io.Writer, snap *Snapshot, optFns ...func(o *EncodeOptions)) (int64, error) {
	opts := EncodeOptions{
		Compression: CompressionNone,
		Codec:       codec.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if snap == nil || snap.Schema == nil {
		return 0, errors.New("persistence: snapshot without schema")
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	name := opts.Codec.Name()
	if len(name) == 0 || len(name) > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	body, err := encodeBody(snap, opts.Codec)
	if err != nil {
		return 0, err
	}
	if uint64(len(body)) > math.MaxUint32 {
		return 0, fmt.Errorf("persistence: snapshot body too large (%d bytes)", len(body))
	}

	stored, applied, err := compress(body, opts.Compression)
	if err != nil {
		return 0, err
	}

	out := make([]byte, 0, headerFixedSize+len(name)+8+len(stored)+4)
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint16(out, FormatVersion)
	out = append(out, byte(applied), byte(len(name)))
	out = append(out, name...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(stored)))
	out = append(out, stored...)
	out = binary.LittleEndian.AppendUint32(out, CalculateChecksum(body))

	n, err := w.Write(out)
	return int64(n), err
}

func encodeBody(snap *Snapshot, c codec.Codec) ([]byte, error) {
	desc, err := c.Marshal(schemaDescriptor{
		Version:     snap.Schema.Version(),
		Continuous:  snap.Schema.Continuous(),
		Vocabulary:  snap.Schema.Vocabulary(),
		Fingerprint: snap.Schema.Fingerprint(),
	})
	if err != nil {
		return nil, fmt.Errorf("persistence: encode schema: %w", err)
	}

	dim := snap.Schema.Dimension()
	entries := slices.Clone(snap.Entries)
	slices.SortFunc(entries, func(a, b index.Entry) int { return strings.Compare(a.ID, b.ID) })

	var buf bytes.Buffer
	buf.Grow(4 + len(desc) + 8 + len(entries)*(2+8+4*dim))

	var scratch [4]byte
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:], v)
		buf.Write(scratch[:4])
	}

	putU32(uint32(len(desc)))
	buf.Write(desc)
	putU32(uint32(dim))
	putU32(uint32(len(entries)))

	for _, e := range entries {
		if len(e.ID) > math.MaxUint16 {
			return nil, fmt.Errorf("persistence: identifier too long (%d bytes)", len(e.ID))
		}
		if len(e.Vector) != dim {
			return nil, &index.ErrDimensionMismatch{Expected: dim, Actual: len(e.Vector)}
		}
		binary.LittleEndian.PutUint16(scratch[:2], uint16(len(e.ID)))
		buf.Write(scratch[:2])
		buf.WriteString(e.ID)
		for _, v := range e.Vector {
			putU32(math.Float32bits(v))
		}
	}
	return buf.Bytes(), nil
}

// Decode reads a snapshot written by Encode.
//
// A snapshot whose recorded schema fingerprint does not match the schema it
// describes fails with an error wrapping feature.ErrSchemaMismatch.
func Decode(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(data) < headerFixedSize {
		return nil, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	if string(data[:4]) != Magic {
		return nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}
	comp := Compression(data[6])
	nameLen := int(data[7])
	data = data[headerFixedSize:]

	if len(data) < nameLen+8 {
		return nil, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	name := string(data[:nameLen])
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	data = data[nameLen:]

	rawLen := int(binary.LittleEndian.Uint32(data[0:4]))
	storedLen := int(binary.LittleEndian.Uint32(data[4:8]))
	data = data[8:]
	if len(data) != storedLen+4 {
		return nil, fmt.Errorf("%w: body length %d, want %d", ErrCorrupt, len(data), storedLen+4)
	}

	body, err := decompress(data[:storedLen], comp, rawLen)
	if err != nil {
		return nil, err
	}
	if err := verifyChecksum(body, binary.LittleEndian.Uint32(data[storedLen:])); err != nil {
		return nil, err
	}

	return decodeBody(body, c)
}

func decodeBody(body []byte, c codec.Codec) (*Snapshot, error) {
	rd := bodyReader{buf: body}

	descLen := int(rd.u32())
	descBytes := rd.bytes(descLen)
	dim := int(rd.u32())
	count := int(rd.u32())
	if rd.err != nil {
		return nil, rd.err
	}

	var desc schemaDescriptor
	if err := c.Unmarshal(descBytes, &desc); err != nil {
		return nil, fmt.Errorf("%w: schema descriptor: %w", ErrCorrupt, err)
	}
	schema, err := feature.NewSchema(desc.Version, desc.Continuous, desc.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", feature.ErrSchemaMismatch, err)
	}
	if schema.Fingerprint() != desc.Fingerprint {
		return nil, &feature.SchemaError{
			Field:  "fingerprint",
			Reason: fmt.Sprintf("recorded %s, computed %s", desc.Fingerprint, schema.Fingerprint()),
		}
	}
	if dim != schema.Dimension() {
		return nil, &index.ErrDimensionMismatch{Expected: schema.Dimension(), Actual: dim}
	}

	// Every entry needs at least the id length and its vector.
	if minSize := count * (2 + 4*dim); count < 0 || minSize > rd.remaining() {
		return nil, fmt.Errorf("%w: %d entries do not fit in %d bytes", ErrCorrupt, count, rd.remaining())
	}

	entries := make([]index.Entry, count)
	for i := range entries {
		id := string(rd.bytes(int(rd.u16())))
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(rd.u32())
		}
		if rd.err != nil {
			return nil, rd.err
		}
		entries[i] = index.Entry{ID: id, Vector: vec}
	}
	if rd.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, rd.remaining())
	}

	return &Snapshot{Schema: schema, Entries: entries}, nil
}

// bodyReader consumes a byte slice and records the first short read.
type bodyReader struct {
	buf []byte
	err error
}

func (r *bodyReader) remaining() int { return len(r.buf) }

func (r *bodyReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.buf) {
		r.err = fmt.Errorf("%w: unexpected end of body", ErrCorrupt)
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *bodyReader) u16() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *bodyReader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}
