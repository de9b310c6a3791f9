// Package rawio moves Bayer mosaics and demosaiced images between files and
// the demosaic package.
package rawio

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"demosaic/pkg/demosaic"
)

// Input is a loaded mosaic plus whatever its container says about it.
type Input struct {
	Raw        *demosaic.RawImage
	Pattern    demosaic.CFAPattern
	HasPattern bool          // Pattern came from file metadata
	Metadata   *FitsMetadata // nil for non-FITS inputs
}

// Load reads a mosaic from FITS or from a single-channel raster image.
func Load(path string) (*Input, error) {
	if isFits(path) {
		fitsData, err := ReadFits(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading FITS")
		}
		in := &Input{Raw: fitsData.Raw, Metadata: fitsData.Metadata}
		in.Pattern, in.HasPattern = fitsData.Metadata.BayerPattern()
		return in, nil
	}

	raw, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return &Input{Raw: raw}, nil
}

func isFits(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fits", ".fit", ".fts":
		return true
	}
	return false
}

// ToRGBA64 copies img into a standard 16-bit image, writing negative
// samples as zero.
func ToRGBA64(img *demosaic.RGBImage) *image.RGBA64 {
	dst := image.NewRGBA64(img.Bounds())
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			dst.SetRGBA64(x, y, img.At(x, y).(color.RGBA64))
		}
	}
	return dst
}

// WriteTIFF encodes img as a deflate-compressed 16-bit RGBA TIFF.
func WriteTIFF(w io.Writer, img *demosaic.RGBImage) error {
	err := tiff.Encode(w, ToRGBA64(img), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	return errors.Wrap(err, "encoding TIFF")
}

// WritePNG encodes img as a 16-bit PNG.
func WritePNG(w io.Writer, img *demosaic.RGBImage) error {
	return errors.Wrap(png.Encode(w, ToRGBA64(img)), "encoding PNG")
}

// WriteImage picks an encoder from the file extension. TIFF and PNG are
// always available; other extensions go through OpenCV when the binary was
// built with it.
func WriteImage(path string, img *demosaic.RGBImage) error {
	var encode func(io.Writer, *demosaic.RGBImage) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		encode = WriteTIFF
	case ".png":
		encode = WritePNG
	default:
		if !nativeWriterAvailable {
			return errors.Errorf("unsupported output format: %s", path)
		}
		return writeNative(path, img)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing output file")
}
