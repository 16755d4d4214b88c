package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/dunamismax/pnmflow/internal/domain"
	"github.com/dunamismax/pnmflow/internal/pnm"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

type codecTransformer struct{}

func (t codecTransformer) Transform(ctx context.Context, input []byte, step domain.PipelineStep) ([]byte, int, int, error) {
	select {
	case <-ctx.Done():
		return nil, 0, 0, ctx.Err()
	default:
	}

	var (
		out *pnm.RgbImage
		err error
	)
	switch strings.ToLower(strings.TrimSpace(step.Action)) {
	case domain.ActionConvert:
		return convert(input)
	case domain.ActionGrayscale:
		return grayscale(input)
	case domain.ActionResize:
		out, err = resizeToWidth(input, step.Width)
	case domain.ActionThumbnail:
		out, err = thumbnail(input, step.Width, step.Height)
	case domain.ActionBlur:
		out, err = blur(input, step.Sigma)
	default:
		return nil, 0, 0, fmt.Errorf("%w: %q", ErrInvalidStepAction, step.Action)
	}
	if err != nil {
		return nil, 0, 0, err
	}
	return encode(out)
}

// convert keeps the source's own pixel kind: a graymap is read as gray, a
// pixmap as color. Samples are never rescaled.
func convert(input []byte) ([]byte, int, int, error) {
	if !pnm.Sniff(input) {
		src, err := decodeSource(input)
		if err != nil {
			return nil, 0, 0, err
		}
		return encode(pnm.FromImage(src))
	}

	h, err := pnm.ParseHeader(input)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode source image: %w", err)
	}
	if h.Kind == pnm.KindColor {
		img, err := pnm.DecodeBytes[pnm.Rgb](input)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("decode source image: %w", err)
		}
		return encode(img)
	}
	img, err := pnm.DecodeBytes[pnm.Gray](input)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode source image: %w", err)
	}
	return encode(img)
}

func grayscale(input []byte) ([]byte, int, int, error) {
	if pnm.Sniff(input) {
		img, err := pnm.DecodeBytes[pnm.Gray](input)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("decode source image: %w", err)
		}
		return encode(img)
	}

	src, err := decodeSource(input)
	if err != nil {
		return nil, 0, 0, err
	}
	return encode(pnm.ReduceImage(pnm.FromImage(src)))
}

func resizeToWidth(input []byte, width int) (*pnm.RgbImage, error) {
	if width <= 0 {
		return nil, errors.New("resize action requires width > 0")
	}
	src, err := decodeSource(input)
	if err != nil {
		return nil, err
	}
	if src.Bounds().Dx() == 0 || src.Bounds().Dy() == 0 {
		return nil, errors.New("source image has invalid dimensions")
	}
	return pnm.FromImage(imaging.Resize(src, width, 0, imaging.Lanczos)), nil
}

// thumbnail scales the source down to fit inside maxWidth x maxHeight keeping
// its aspect ratio. Sources already inside the box are left at their size.
func thumbnail(input []byte, maxWidth, maxHeight int) (*pnm.RgbImage, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, errors.New("thumbnail action requires width > 0 and height > 0")
	}
	src, err := decodeSource(input)
	if err != nil {
		return nil, err
	}
	return pnm.FromImage(resize.Thumbnail(uint(maxWidth), uint(maxHeight), src, resize.Lanczos3)), nil
}

func blur(input []byte, sigma float64) (*pnm.RgbImage, error) {
	if sigma <= 0 {
		return nil, errors.New("blur action requires sigma > 0")
	}
	src, err := decodeSource(input)
	if err != nil {
		return nil, err
	}

	g := gift.New(gift.GaussianBlur(float32(sigma)))
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return pnm.FromImage(dst), nil
}

// decodeSource accepts PNM through the codec's image registration as well as
// PNG, JPEG, GIF and WebP.
func decodeSource(input []byte) (image.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}
	return src, nil
}

func encode[P pnm.Pixel](img *pnm.Image[P]) ([]byte, int, int, error) {
	var buf bytes.Buffer
	buf.Grow(32 + 3*len(img.Pixels))
	if err := img.Encode(&buf); err != nil {
		return nil, 0, 0, fmt.Errorf("encode ppm: %w", err)
	}
	return buf.Bytes(), img.Width, img.Height, nil
}
