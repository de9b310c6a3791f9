//go:build purego || js

package rawio

import (
	"image"
	"image/color"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff"

	"demosaic/pkg/demosaic"
)

func loadImage(path string) (*demosaic.RawImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening image")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	return rawFromImage(img), nil
}

// rawFromImage keeps 16-bit grayscale samples exactly and reduces anything
// else to 16-bit luminance.
func rawFromImage(img image.Image) *demosaic.RawImage {
	bounds := img.Bounds()
	raw := demosaic.NewRawImage(bounds.Dx(), bounds.Dy())

	if g, ok := img.(*image.Gray16); ok {
		for y := 0; y < raw.Height; y++ {
			for x := 0; x < raw.Width; x++ {
				raw.Set(x, y, g.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
		return raw
	}

	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			c := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			raw.Set(x, y, c.Y)
		}
	}
	return raw
}

func writeNative(path string, img *demosaic.RGBImage) error {
	return errors.Errorf("%s: format needs the OpenCV build", path)
}

const nativeWriterAvailable = false
