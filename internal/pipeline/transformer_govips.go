//go:build govips && cgo

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/dunamismax/pnmflow/internal/domain"
	"github.com/dunamismax/pnmflow/internal/pnm"
)

// govipsTransformer resizes through libvips. Every other action goes through
// the codec unchanged so the gray reduction and clamp stay exact.
type govipsTransformer struct {
	fallback codecTransformer
}

func (t govipsTransformer) Transform(ctx context.Context, input []byte, step domain.PipelineStep) ([]byte, int, int, error) {
	if strings.ToLower(strings.TrimSpace(step.Action)) != domain.ActionResize {
		return t.fallback.Transform(ctx, input, step)
	}

	select {
	case <-ctx.Done():
		return nil, 0, 0, ctx.Err()
	default:
	}

	img, err := vips.NewImageFromBuffer(input)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode source image: %w", err)
	}
	defer img.Close()

	if err := applyGovipsResize(img, step.Width); err != nil {
		return nil, 0, 0, err
	}

	// libvips has no PPM saver in every build; PNG is lossless and always there.
	data, _, err := img.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, 0, 0, fmt.Errorf("export resized image: %w", err)
	}
	resized, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode resized image: %w", err)
	}
	return encode(pnm.FromImage(resized))
}

func applyGovipsResize(img *vips.ImageRef, targetWidth int) error {
	if targetWidth <= 0 {
		return fmt.Errorf("resize action requires width > 0")
	}
	if img.Width() <= 0 {
		return fmt.Errorf("source image has invalid width")
	}

	scale := float64(targetWidth) / float64(img.Width())
	if err := img.Resize(scale, vips.KernelLanczos3); err != nil {
		return fmt.Errorf("resize image: %w", err)
	}
	return nil
}
