package storage

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestCompressRoundTrip(t *testing.T) {
	src := append([]byte("P6\n64 64\n255\n"), bytes.Repeat([]byte{12, 34, 56}, 64*64)...)

	packed := Compress(src)
	if !IsCompressed(packed) {
		t.Fatal("expected zstd magic on compressed output")
	}
	if len(packed) >= len(src) {
		t.Fatalf("expected compressed size below %d, got %d", len(src), len(packed))
	}

	unpacked, err := Decompress(packed, int64(len(src)))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(unpacked, src) {
		t.Fatal("expected decompressed bytes to match source")
	}
}

func TestIsCompressedRejectsPlainPNM(t *testing.T) {
	if IsCompressed([]byte("P5\n1 1\n255\n\x00")) {
		t.Fatal("expected plain PNM not to be detected as zstd")
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	if _, err := Decompress(append([]byte{0x28, 0xb5, 0x2f, 0xfd}, 0xff, 0xff), 0); err == nil {
		t.Fatal("expected error for corrupt frame")
	}
}

func TestDecompressRejectsDeclaredOversizeFrame(t *testing.T) {
	packed := Compress(make([]byte, 8<<20))
	if len(packed) > 4096 {
		t.Fatalf("expected a small frame for zeroed input, got %d bytes", len(packed))
	}

	if _, err := Decompress(packed, 1<<20); !errors.Is(err, ErrObjectTooLarge) {
		t.Fatalf("expected ErrObjectTooLarge, got %v", err)
	}

	out, err := Decompress(packed, 0)
	if err != nil {
		t.Fatalf("decompress without limit: %v", err)
	}
	if len(out) != 8<<20 {
		t.Fatalf("expected %d bytes, got %d", 8<<20, len(out))
	}
}

func TestDecompressStopsUndeclaredStreamAtLimit(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderConcurrency(1))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if _, err := enc.Write(make([]byte, 8<<20)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := Decompress(buf.Bytes(), 1<<20); !errors.Is(err, ErrObjectTooLarge) {
		t.Fatalf("expected ErrObjectTooLarge, got %v", err)
	}

	// Exactly at the limit still inflates.
	out, err := Decompress(buf.Bytes(), 8<<20)
	if err != nil {
		t.Fatalf("decompress at limit: %v", err)
	}
	if len(out) != 8<<20 {
		t.Fatalf("expected %d bytes, got %d", 8<<20, len(out))
	}
}
