package pnm

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeColorRoundTrip(t *testing.T) {
	src := &RgbImage{
		Pixels: []Rgb{
			{0, 1, 2}, {253, 254, 255},
			{128, 64, 32}, {7, 7, 7},
		},
		Width:       2,
		Height:      2,
		Denominator: 9,
	}

	var buf bytes.Buffer
	if err := src.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeBytes[Rgb](buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Width != src.Width || got.Height != src.Height {
		t.Fatalf("expected %dx%d, got %dx%d", src.Width, src.Height, got.Width, got.Height)
	}
	if got.Denominator != 255 {
		t.Fatalf("expected denominator 255 after round trip, got %d", got.Denominator)
	}
	for i := range src.Pixels {
		if got.Pixels[i] != src.Pixels[i] {
			t.Fatalf("pixel %d: expected %+v, got %+v", i, src.Pixels[i], got.Pixels[i])
		}
	}
}

func TestEncodeClampSaturates(t *testing.T) {
	img := &RgbImage{
		Pixels: []Rgb{{Red: 256, Green: 255, Blue: 1000}, {Red: 0, Green: 65535, Blue: 254}},
		Width:  2,
		Height: 1,
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	want := append([]byte("P6\n2 1\n255\n"), 255, 255, 255, 0, 255, 254)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("expected %q, got %q", want, buf.Bytes())
	}
}

func TestEncodeGrayReplicatesChannels(t *testing.T) {
	img := &GrayImage{
		Pixels: []Gray{{Value: 3}, {Value: 300}},
		Width:  1,
		Height: 2,
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	want := append([]byte("P6\n1 2\n255\n"), 3, 3, 3, 255, 255, 255)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("expected %q, got %q", want, buf.Bytes())
	}
}

// A denominator of 9 is written as-is: raw 1..9 stay 1..9 in a 255-max
// output, so the picture comes out nearly black.
func TestEncodeIgnoresDenominator(t *testing.T) {
	src := pgm(9, 1, 9, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	img, err := DecodeBytes[Gray](src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := DecodeBytes[Rgb](buf.Bytes())
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Denominator != 255 {
		t.Fatalf("expected denominator 255, got %d", out.Denominator)
	}
	for i, p := range out.Pixels {
		v := uint16(i + 1)
		if p != (Rgb{v, v, v}) {
			t.Fatalf("pixel %d: expected unscaled %d, got %+v", i, v, p)
		}
	}
}

func TestEncodeRejectsBufferSizeMismatch(t *testing.T) {
	img := &RgbImage{Pixels: []Rgb{{1, 2, 3}}, Width: 2, Height: 2}

	var buf bytes.Buffer
	if err := img.Encode(&buf); !errors.Is(err, ErrBufferSize) {
		t.Fatalf("expected ErrBufferSize, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected zero bytes written, got %d", buf.Len())
	}

	path := filepath.Join(t.TempDir(), "out.ppm")
	if err := img.Write(path); !errors.Is(err, ErrBufferSize) {
		t.Fatalf("expected ErrBufferSize, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat returned %v", err)
	}
}

func TestWriteToPathAndStdout(t *testing.T) {
	img := &GrayImage{Pixels: []Gray{{Value: 42}}, Width: 1, Height: 1, Denominator: 255}

	path := filepath.Join(t.TempDir(), "out.ppm")
	if err := os.WriteFile(path, bytes.Repeat([]byte{'x'}, 64), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}
	if err := img.Write(path); err != nil {
		t.Fatalf("write file: %v", err)
	}
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var captured bytes.Buffer
	saved := stdout
	stdout = &captured
	defer func() { stdout = saved }()

	if err := img.Write(""); err != nil {
		t.Fatalf("write stdout: %v", err)
	}
	if !bytes.Equal(fileBytes, captured.Bytes()) {
		t.Fatalf("expected file and stdout output to match, got %q and %q", fileBytes, captured.Bytes())
	}
	if want := "P6\n1 1\n255\n***"; string(fileBytes) != want {
		t.Fatalf("expected %q, got %q", want, fileBytes)
	}
}

func TestWriteCreateFailure(t *testing.T) {
	img := &GrayImage{Pixels: []Gray{{Value: 1}}, Width: 1, Height: 1}
	path := filepath.Join(t.TempDir(), "missing", "out.ppm")
	if err := img.Write(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestReduceImageAndToImage(t *testing.T) {
	src := &RgbImage{Pixels: []Rgb{{1, 2, 2}, {300, 0, 0}}, Width: 2, Height: 1, Denominator: 255}

	gray := ReduceImage(src)
	if gray.Pixels[0].Value != 1 || gray.Pixels[1].Value != 100 {
		t.Fatalf("expected [1 100], got %+v", gray.Pixels)
	}

	rgba, err := src.ToImage()
	if err != nil {
		t.Fatalf("to image: %v", err)
	}
	if c := rgba.RGBAAt(1, 0); c.R != 255 || c.G != 0 {
		t.Fatalf("expected clamped red 255, got %+v", c)
	}

	back := FromImage(rgba)
	if back.Pixels[0] != (Rgb{1, 2, 2}) || back.Denominator != 255 {
		t.Fatalf("unexpected FromImage result %+v", back)
	}
}

func BenchmarkEncode(b *testing.B) {
	img := &RgbImage{Pixels: make([]Rgb, 1920*1080), Width: 1920, Height: 1080}
	var buf bytes.Buffer
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := img.Encode(&buf); err != nil {
			b.Fatalf("encode: %v", err)
		}
	}
}
