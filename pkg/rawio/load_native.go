//go:build !purego && !js

package rawio

import (
	"encoding/binary"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"demosaic/pkg/demosaic"
)

// loadImage reads a single-channel mosaic through OpenCV, which handles
// 16-bit PNG, TIFF, PGM and JPEG 2000. 8-bit images are widened by 257 so
// full scale maps to 65535.
func loadImage(path string) (*demosaic.RawImage, error) {
	src := gocv.IMRead(path, gocv.IMReadUnchanged)
	if src.Empty() {
		return nil, errors.Errorf("could not load image: %s", path)
	}
	defer src.Close()

	if src.Channels() != 1 {
		return nil, errors.Errorf("%s: expected a single-channel mosaic, got %d channels", path, src.Channels())
	}

	mat := src
	if src.Type() != gocv.MatTypeCV16U {
		wide := gocv.NewMat()
		defer wide.Close()
		scale := float32(1)
		if src.Type() == gocv.MatTypeCV8U {
			scale = 257
		}
		src.ConvertToWithParams(&wide, gocv.MatTypeCV16U, scale, 0)
		mat = wide
	}

	data, err := mat.DataPtrUint16()
	if err != nil {
		return nil, errors.Wrap(err, "reading 16-bit pixel data")
	}
	w, h := mat.Cols(), mat.Rows()
	raw := demosaic.NewRawImage(w, h)
	copy(raw.Pix, data[:w*h])
	return raw, nil
}

// writeNative encodes formats the pure Go encoders do not cover. OpenCV
// expects BGR order; negative samples are written as zero by RGBImage.At.
func writeNative(path string, img *demosaic.RGBImage) error {
	buf := make([]byte, 6*img.Width*img.Height)
	i := 0
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y).(color.RGBA64)
			for _, v := range [3]uint16{c.B, c.G, c.R} {
				binary.NativeEndian.PutUint16(buf[i:], v)
				i += 2
			}
		}
	}

	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV16UC3, buf)
	if err != nil {
		return errors.Wrap(err, "building output Mat")
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return errors.Errorf("could not write image: %s", path)
	}
	return nil
}

const nativeWriterAvailable = true
