package persistence

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// zstd encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// compress returns the stored form of data and the compression actually
// applied. When compression does not shrink data below 90% of its size, the
// body is stored uncompressed.
func compress(data []byte, c Compression) ([]byte, Compression, error) {
	if len(data) == 0 {
		return data, CompressionNone, nil
	}

	var out []byte
	switch c {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, 0, err
		}
		out = buf[:n] // n == 0: incompressible
	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, 0, err
		}
		out = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}

	if len(out) == 0 || float64(len(out)) > float64(len(data))*0.9 {
		return data, CompressionNone, nil
	}
	return out, c, nil
}

// Upper bounds on uncompressed/stored length. An LZ4 block cannot expand
// beyond 255:1. Snapshot bodies carry a distinct identifier per entry and
// stay far below the zstd bound.
const (
	maxLZ4Ratio  = 255
	maxZstdRatio = 1024
)

// checkExpansion rejects a declared uncompressed size no valid stream of
// storedLen bytes can produce, before anything is allocated for it.
func checkExpansion(storedLen, size, ratio int) error {
	if size < 0 || size > (storedLen+16)*ratio {
		return fmt.Errorf("%w: declared body length %d for %d stored bytes", ErrCorrupt, size, storedLen)
	}
	return nil
}

// decompress reverses compress. size is the uncompressed length.
func decompress(stored []byte, c Compression, size int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(stored) != size {
			return nil, fmt.Errorf("%w: body length %d, want %d", ErrCorrupt, len(stored), size)
		}
		return stored, nil

	case CompressionLZ4:
		if err := checkExpansion(len(stored), size, maxLZ4Ratio); err != nil {
			return nil, err
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(stored, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil

	case CompressionZSTD:
		if err := checkExpansion(len(stored), size, maxZstdRatio); err != nil {
			return nil, err
		}
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(stored, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if len(out) != size {
			return nil, errors.Join(ErrCorrupt, errors.New("decompressed size mismatch"))
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}
