package pnm

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

var stdout io.Writer = os.Stdout

// clamp saturates at 255. The denominator is not consulted: a value of 9 in
// a denominator-9 image is written as 9, not 255.
func clamp(v uint16) uint8 {
	return uint8(min(v, 255))
}

// Write encodes m to the file at path, or standard output when path is empty.
// An existing file is truncated.
func (m *Image[P]) Write(path string) error {
	if err := m.checkSize(); err != nil {
		return err
	}
	if path == "" {
		return m.Encode(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Encode writes m as a binary PPM with a maximum sample value of 255. Gray
// samples are replicated across the three channels.
func (m *Image[P]) Encode(w io.Writer) error {
	if err := m.checkSize(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", m.Width, m.Height); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]byte, 3*m.Width)
	for y := 0; y < m.Height; y++ {
		for x, p := range m.Pixels[y*m.Width : (y+1)*m.Width] {
			r, g, b := p.RGB()
			row[3*x] = clamp(r)
			row[3*x+1] = clamp(g)
			row[3*x+2] = clamp(b)
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("write raster: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write raster: %w", err)
	}
	return nil
}
