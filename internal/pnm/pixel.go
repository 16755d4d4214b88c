package pnm

// Gray is a single-channel sample.
type Gray struct {
	Value uint16
}

// Rgb is a red, green, blue triple.
type Rgb struct {
	Red   uint16
	Green uint16
	Blue  uint16
}

// Pixel is the set of sample kinds an Image can hold.
type Pixel interface {
	Gray | Rgb
	RGB() (r, g, b uint16)
}

// RGB replicates the sample across all three channels.
func (p Gray) RGB() (r, g, b uint16) {
	return p.Value, p.Value, p.Value
}

// RGB returns the three channels unchanged.
func (p Rgb) RGB() (r, g, b uint16) {
	return p.Red, p.Green, p.Blue
}

// Reduce averages the three channels with truncating integer division.
// (1, 2, 2) reduces to 1, not 2.
func Reduce(p Rgb) Gray {
	sum := uint32(p.Red) + uint32(p.Green) + uint32(p.Blue)
	return Gray{Value: uint16(sum / 3)}
}
