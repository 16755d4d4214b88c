package storage

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ContentEncodingZstd is set on objects written through Compress.
const ContentEncodingZstd = "zstd"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var encoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(
			nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		)
		if err != nil {
			panic(err)
		}
		return enc
	},
}

var decoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(
			nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
		)
		if err != nil {
			panic(err)
		}
		return dec
	},
}

// IsCompressed reports whether data starts with a zstd frame.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

func Compress(data []byte) []byte {
	enc := encoderPool.Get().(*zstd.Encoder)
	defer encoderPool.Put(enc)
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// Decompress inflates a zstd stream. When limit is positive an output larger
// than limit bytes fails with ErrObjectTooLarge; the declared frame size is
// checked first and the stream is cut off at limit+1 bytes otherwise.
func Decompress(data []byte, limit int64) ([]byte, error) {
	if limit > 0 {
		var hdr zstd.Header
		if err := hdr.Decode(data); err == nil && hdr.HasFCS && hdr.FrameContentSize > uint64(limit) {
			return nil, fmt.Errorf("%w: frame declares %d bytes, limit %d", ErrObjectTooLarge, hdr.FrameContentSize, limit)
		}
	}

	dec := decoderPool.Get().(*zstd.Decoder)
	defer decoderPool.Put(dec)
	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	defer dec.Reset(nil)

	var r io.Reader = dec
	if limit > 0 {
		r = io.LimitReader(dec, limit+1)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	if limit > 0 && int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: inflated past %d bytes", ErrObjectTooLarge, limit)
	}
	return out, nil
}
