package pnm

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
)

var stdin io.Reader = os.Stdin

func init() {
	for _, magic := range []string{"P1", "P2", "P3", "P4", "P5", "P6"} {
		image.RegisterFormat("pnm", magic, decodeImage, decodeConfig)
	}
}

// Read decodes the file at path, or standard input when path is empty.
func Read[P Pixel](path string) (*Image[P], error) {
	if path == "" {
		return Decode[P](stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode[P](f)
}

// Decode buffers all of r before parsing it.
func Decode[P Pixel](r io.Reader) (*Image[P], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return DecodeBytes[P](data)
}

// DecodeBytes parses a complete PNM file. A gray read accepts bitmap, gray
// and color sources, averaging color triples with Reduce. A color read accepts
// only color sources. Sources with a maximum sample value above 255 are a
// format mismatch for both.
func DecodeBytes[P Pixel](data []byte) (*Image[P], error) {
	h, off, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if !accepts[P](h.Kind) {
		return nil, fmt.Errorf("%w: cannot read %s %s as %s", ErrFormatMismatch, h.Magic, h.Kind, kindName[P]())
	}
	if h.MaxValue > 255 {
		return nil, fmt.Errorf("%w: maximum sample value %d is wider than 8 bits", ErrFormatMismatch, h.MaxValue)
	}

	samples, err := readSamples(h, data, off)
	if err != nil {
		return nil, err
	}

	return &Image[P]{
		Pixels:      pixelsFor[P](h.Kind, samples),
		Width:       h.Width,
		Height:      h.Height,
		Denominator: uint16(h.MaxValue),
	}, nil
}

func accepts[P Pixel](k Kind) bool {
	var zero P
	switch any(zero).(type) {
	case Gray:
		return k == KindBitmap || k == KindGray || k == KindColor
	case Rgb:
		return k == KindColor
	}
	return false
}

func kindName[P Pixel]() string {
	var zero P
	if _, ok := any(zero).(Gray); ok {
		return "gray"
	}
	return "rgb"
}

func pixelsFor[P Pixel](k Kind, samples []uint16) []P {
	var zero P
	switch any(zero).(type) {
	case Gray:
		return any(grayPixels(k, samples)).([]P)
	default:
		return any(rgbPixels(samples)).([]P)
	}
}

func grayPixels(k Kind, samples []uint16) []Gray {
	if k == KindColor {
		out := make([]Gray, len(samples)/3)
		for i := range out {
			out[i] = Reduce(Rgb{Red: samples[3*i], Green: samples[3*i+1], Blue: samples[3*i+2]})
		}
		return out
	}
	out := make([]Gray, len(samples))
	for i, v := range samples {
		out[i] = Gray{Value: v}
	}
	return out
}

func rgbPixels(samples []uint16) []Rgb {
	out := make([]Rgb, len(samples)/3)
	for i := range out {
		out[i] = Rgb{Red: samples[3*i], Green: samples[3*i+1], Blue: samples[3*i+2]}
	}
	return out
}

// bitmapWhite is the sample a set PBM pixel decodes to. Bitmaps are widened
// to the 8-bit range so they encode as black and white.
const bitmapWhite = 255

// readSamples returns width*height*channels raw sample values.
func readSamples(h Header, data []byte, off int) ([]uint16, error) {
	raster := data[off:]
	if !rasterFits(h, len(raster)) {
		return nil, fmt.Errorf("%w: truncated raster for %dx%d %s", ErrFormat, h.Width, h.Height, h.Kind)
	}
	n := h.Width * h.Height * h.Kind.Channels()

	switch {
	case h.Kind == KindBitmap && h.Plain:
		s := &scanner{data: data, pos: off}
		out := make([]uint16, n)
		for i := range out {
			b, ok := s.bit()
			if !ok {
				return nil, fmt.Errorf("%w: bad bitmap sample %d", ErrFormat, i)
			}
			out[i] = uint16(1-b) * bitmapWhite
		}
		return out, nil

	case h.Kind == KindBitmap:
		stride := (h.Width + 7) / 8
		out := make([]uint16, 0, n)
		for y := 0; y < h.Height; y++ {
			row := raster[y*stride : (y+1)*stride]
			for x := 0; x < h.Width; x++ {
				bit := row[x/8] >> (7 - uint(x%8)) & 1
				out = append(out, uint16(1-bit)*bitmapWhite)
			}
		}
		return out, nil

	case h.Plain:
		s := &scanner{data: data, pos: off}
		out := make([]uint16, n)
		for i := range out {
			v, err := s.number("sample", uint64(h.MaxValue))
			if err != nil {
				return nil, err
			}
			out[i] = uint16(v)
		}
		return out, nil
	}

	out := make([]uint16, n)
	for i := range out {
		v := uint16(raster[i])
		if int(v) > h.MaxValue {
			return nil, fmt.Errorf("%w: sample %d exceeds maximum %d", ErrFormat, v, h.MaxValue)
		}
		out[i] = v
	}
	return out, nil
}

// rasterFits reports whether size bytes can hold the raster h declares. Every
// sample takes at least one byte except in a raw bitmap, which packs eight
// pixels per byte. The check divides rather than multiplies so that header
// dimensions near 2^31 cannot overflow.
func rasterFits(h Header, size int) bool {
	if h.Width == 0 || h.Height == 0 {
		return true
	}
	perRow := int64(h.Width) * int64(h.Kind.Channels())
	if h.Kind == KindBitmap && !h.Plain {
		perRow = (int64(h.Width) + 7) / 8
	}
	return int64(h.Height) <= int64(size)/perRow
}

func decodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Kind == KindColor {
		return toImage[Rgb](DecodeBytes[Rgb](data))
	}
	return toImage[Gray](DecodeBytes[Gray](data))
}

func toImage[P Pixel](m *Image[P], err error) (image.Image, error) {
	if err != nil {
		return nil, err
	}
	dst, err := m.ToImage()
	if err != nil {
		return nil, err
	}
	return dst, nil
}

func decodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("read image: %w", err)
	}
	h, err := ParseHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	// decodeImage always yields *image.RGBA.
	return image.Config{ColorModel: color.RGBAModel, Width: h.Width, Height: h.Height}, nil
}
