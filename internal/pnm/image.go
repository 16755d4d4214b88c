package pnm

import (
	"fmt"
	"image"
	"image/color"
)

// Image is a row-major grid of pixels of one kind. Denominator is the maximum
// sample value declared by the source; it is carried along, never applied.
type Image[P Pixel] struct {
	Pixels      []P
	Width       int
	Height      int
	Denominator uint16
}

type (
	// GrayImage holds single-channel pixels.
	GrayImage = Image[Gray]
	// RgbImage holds color triples.
	RgbImage = Image[Rgb]
)

// At returns the pixel at (row, col).
func (m *Image[P]) At(row, col int) P {
	return m.Pixels[row*m.Width+col]
}

func (m *Image[P]) checkSize() error {
	if m.Width < 0 || m.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrBufferSize, m.Width, m.Height)
	}
	if want := m.Width * m.Height; len(m.Pixels) != want {
		return fmt.Errorf("%w: %dx%d needs %d pixels, have %d", ErrBufferSize, m.Width, m.Height, want, len(m.Pixels))
	}
	return nil
}

// ReduceImage converts every triple with Reduce. The denominator is kept.
func ReduceImage(m *RgbImage) *GrayImage {
	pixels := make([]Gray, len(m.Pixels))
	for i, p := range m.Pixels {
		pixels[i] = Reduce(p)
	}
	return &GrayImage{
		Pixels:      pixels,
		Width:       m.Width,
		Height:      m.Height,
		Denominator: m.Denominator,
	}
}

// ToImage renders the pixels as an *image.RGBA using the same clamp as the
// encoder.
func (m *Image[P]) ToImage() (*image.RGBA, error) {
	if err := m.checkSize(); err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, p := range m.Pixels {
		r, g, b := p.RGB()
		dst.SetRGBA(i%m.Width, i/m.Width, color.RGBA{R: clamp(r), G: clamp(g), B: clamp(b), A: 0xff})
	}
	return dst, nil
}

// FromImage copies any image.Image into an 8-bit RgbImage. Alpha is dropped.
func FromImage(src image.Image) *RgbImage {
	b := src.Bounds()
	out := &RgbImage{
		Pixels:      make([]Rgb, 0, b.Dx()*b.Dy()),
		Width:       b.Dx(),
		Height:      b.Dy(),
		Denominator: 255,
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(src.At(x, y)).(color.RGBA)
			out.Pixels = append(out.Pixels, Rgb{Red: uint16(c.R), Green: uint16(c.G), Blue: uint16(c.B)})
		}
	}
	return out
}
