// Package demosaic reconstructs full RGB images from Bayer mosaics using
// gradient-directed green interpolation and red/blue interpolation corrected
// by the green second derivative.
package demosaic

import (
	"context"
	"image"

	"github.com/pkg/errors"
)

var (
	ErrInvalidPattern = errors.New("invalid CFA pattern")
	ErrImageTooSmall  = errors.New("image smaller than one 2x2 CFA tile")
	ErrShapeMismatch  = errors.New("output shape does not match input")
	ErrShortBuffer    = errors.New("pixel buffer too short for image extents")
)

// Validate rejects inputs the reconstruction formulas cannot handle. The
// formulas themselves never check; callers that accept external data should
// validate first.
func Validate(raw *RawImage, pattern CFAPattern) error {
	if raw == nil {
		return errors.Wrap(ErrImageTooSmall, "nil raw image")
	}
	if !pattern.Valid() {
		return errors.Wrapf(ErrInvalidPattern, "pattern %d outside 0..3", pattern)
	}
	if raw.Width < 2 || raw.Height < 2 {
		return errors.Wrapf(ErrImageTooSmall, "got %dx%d", raw.Width, raw.Height)
	}
	if raw.Stride < raw.Width {
		return errors.Wrapf(ErrShortBuffer, "stride %d < width %d", raw.Stride, raw.Width)
	}
	if need := raw.Stride*(raw.Height-1) + raw.Width; len(raw.Pix) < need {
		return errors.Wrapf(ErrShortBuffer, "have %d samples, need %d", len(raw.Pix), need)
	}
	return nil
}

// Demosaic reconstructs raw with the default strategy.
func Demosaic(raw *RawImage, pattern CFAPattern) (*RGBImage, error) {
	return DemosaicContext(context.Background(), raw, pattern, DefaultStrategy())
}

// DemosaicContext reconstructs raw, scheduling tiles according to s.
func DemosaicContext(ctx context.Context, raw *RawImage, pattern CFAPattern, s Strategy) (*RGBImage, error) {
	if err := Validate(raw, pattern); err != nil {
		return nil, err
	}
	dst := NewRGBImage(raw.Width, raw.Height)
	if err := demosaicInto(ctx, dst, raw, pattern, s); err != nil {
		return nil, err
	}
	return dst, nil
}

// DemosaicInto reconstructs raw into a caller-provided image of the same size.
func DemosaicInto(ctx context.Context, dst *RGBImage, raw *RawImage, pattern CFAPattern, s Strategy) error {
	if err := Validate(raw, pattern); err != nil {
		return err
	}
	if dst == nil || dst.Width != raw.Width || dst.Height != raw.Height {
		return errors.Wrapf(ErrShapeMismatch, "input %v", raw.Bounds().Size())
	}
	if len(dst.Pix) < dst.Stride*(dst.Height-1)+3*dst.Width {
		return errors.Wrapf(ErrShortBuffer, "output has %d samples", len(dst.Pix))
	}
	return demosaicInto(ctx, dst, raw, pattern, s)
}

func demosaicInto(ctx context.Context, dst *RGBImage, raw *RawImage, pattern CFAPattern, s Strategy) error {
	return s.run(ctx, raw.Bounds(), func(tile image.Rectangle) {
		demosaicTile(dst, raw, pattern, tile)
	})
}

// demosaicTile materializes every plane the output rectangle r depends on,
// with halos, then composes r. Tiles share nothing but the read-only input.
func demosaicTile(dst *RGBImage, raw *RawImage, pattern CFAPattern, r image.Rectangle) {
	derived := halfResBounds(r, pattern)

	mosaic := Deinterleave(raw, pattern, derived.Inset(-2))
	green := ReconstructGreen(mosaic, derived.Inset(-1))
	redBlue := ReconstructRedBlue(mosaic, green, derived)

	planes := ChannelPlanes(mosaic, green, redBlue)
	var channels [3]Sampler
	for c := range planes {
		channels[c] = Interleave(planes[c])
	}
	Compose(dst, channels, pattern, r)
}
