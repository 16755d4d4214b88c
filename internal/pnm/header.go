package pnm

import (
	"fmt"
	"strconv"
)

// Kind is the pixel format a PNM magic number declares.
type Kind int

const (
	// KindBitmap is PBM (P1, P4).
	KindBitmap Kind = iota + 1
	// KindGray is PGM (P2, P5).
	KindGray
	// KindColor is PPM (P3, P6).
	KindColor
	// KindArbitrary is PAM (P7), which is recognised but never decoded.
	KindArbitrary
)

func (k Kind) String() string {
	switch k {
	case KindBitmap:
		return "bitmap"
	case KindGray:
		return "graymap"
	case KindColor:
		return "pixmap"
	case KindArbitrary:
		return "arbitrary"
	default:
		return "unknown"
	}
}

// Channels is the number of samples per pixel in the raster.
func (k Kind) Channels() int {
	if k == KindColor {
		return 3
	}
	return 1
}

// Header is the parsed textual preamble of a PNM file.
type Header struct {
	Magic    string
	Kind     Kind
	Plain    bool
	Width    int
	Height   int
	MaxValue int
}

// Sniff reports whether data starts with a PNM magic number.
func Sniff(data []byte) bool {
	return len(data) >= 2 && data[0] == 'P' && data[1] >= '1' && data[1] <= '7'
}

// ParseHeader reads only the header of data.
func ParseHeader(data []byte) (Header, error) {
	h, _, err := parseHeader(data)
	return h, err
}

// parseHeader returns the header and the offset of the first raster byte.
func parseHeader(data []byte) (Header, int, error) {
	if !Sniff(data) {
		return Header{}, 0, fmt.Errorf("%w: missing magic number", ErrFormat)
	}

	h := Header{Magic: string(data[:2])}
	switch data[1] {
	case '1', '4':
		h.Kind = KindBitmap
	case '2', '5':
		h.Kind = KindGray
	case '3', '6':
		h.Kind = KindColor
	default:
		// PAM carries its own tuple type; none of them map onto Gray or Rgb here.
		return Header{Magic: h.Magic, Kind: KindArbitrary}, 0, fmt.Errorf("%w: unsupported subtype %s", ErrFormatMismatch, h.Magic)
	}
	h.Plain = data[1] <= '3'

	s := &scanner{data: data, pos: 2}
	var err error
	if h.Width, err = s.number("width", 1<<31-1); err != nil {
		return Header{}, 0, err
	}
	if h.Height, err = s.number("height", 1<<31-1); err != nil {
		return Header{}, 0, err
	}
	if h.Kind == KindBitmap {
		h.MaxValue = 1
	} else {
		if h.MaxValue, err = s.number("maximum sample value", 65535); err != nil {
			return Header{}, 0, err
		}
		if h.MaxValue == 0 {
			return Header{}, 0, fmt.Errorf("%w: maximum sample value is zero", ErrFormat)
		}
	}

	if !h.Plain && s.pos < len(data) {
		if !isSpace(data[s.pos]) {
			return Header{}, 0, fmt.Errorf("%w: header not terminated by whitespace", ErrFormat)
		}
		s.pos++
	}
	return h, s.pos, nil
}

type scanner struct {
	data []byte
	pos  int
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// skip moves past whitespace and comments.
func (s *scanner) skip() {
	for s.pos < len(s.data) {
		b := s.data[s.pos]
		switch {
		case b == '#':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		case isSpace(b):
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) token() []byte {
	s.skip()
	start := s.pos
	for s.pos < len(s.data) && !isSpace(s.data[s.pos]) && s.data[s.pos] != '#' {
		s.pos++
	}
	return s.data[start:s.pos]
}

func (s *scanner) number(name string, limit uint64) (int, error) {
	tok := s.token()
	if len(tok) == 0 {
		return 0, fmt.Errorf("%w: missing %s", ErrFormat, name)
	}
	v, err := strconv.ParseUint(string(tok), 10, 64)
	if err != nil || v > limit {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrFormat, name, tok)
	}
	return int(v), nil
}

// bit reads one plain PBM sample. Plain bitmaps may omit whitespace between
// samples.
func (s *scanner) bit() (byte, bool) {
	s.skip()
	if s.pos >= len(s.data) {
		return 0, false
	}
	b := s.data[s.pos]
	if b != '0' && b != '1' {
		return 0, false
	}
	s.pos++
	return b - '0', true
}
