package pnm

import "errors"

var (
	// ErrFormat reports a header or raster that is not valid PNM.
	ErrFormat = errors.New("pnm: malformed image")
	// ErrFormatMismatch reports a source whose pixel format cannot produce the
	// requested pixel kind.
	ErrFormatMismatch = errors.New("pnm: unexpected image format")
	// ErrBufferSize reports a pixel buffer that does not hold width*height pixels.
	ErrBufferSize = errors.New("pnm: insufficient buffer size")
)
