package pipeline

import (
	"context"

	"github.com/dunamismax/pnmflow/internal/domain"
)

const (
	FormatPPM     = "ppm"
	FormatPPMZstd = "ppm.zst"

	contentTypePPM = "image/x-portable-pixmap"
)

// Transformer renders one pipeline step. The returned data is always a
// binary PPM.
type Transformer interface {
	Transform(ctx context.Context, input []byte, step domain.PipelineStep) (data []byte, width, height int, err error)
}
