package rawio

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"demosaic/pkg/demosaic"
)

// WriteFits writes raw as a 16-bit FITS primary HDU. Samples are stored
// offset by BZERO=32768 as the standard requires for unsigned data, and the
// pattern is recorded in BAYERPAT.
func WriteFits(w io.Writer, raw *demosaic.RawImage, pattern demosaic.CFAPattern) error {
	cards := []string{
		fitsCard("SIMPLE", "T"),
		fitsCard("BITPIX", "16"),
		fitsCard("NAXIS", "2"),
		fitsCard("NAXIS1", fmt.Sprint(raw.Width)),
		fitsCard("NAXIS2", fmt.Sprint(raw.Height)),
		fitsCard("BZERO", "32768"),
		fitsCard("BSCALE", "1"),
		fitsCard("BAYERPAT", fmt.Sprintf("'%-8s'", pattern.String())),
		fitsCard("XBAYROFF", "0"),
		fitsCard("YBAYROFF", "0"),
		fmt.Sprintf("%-80s", "END"),
	}
	header := strings.Join(cards, "")
	if pad := len(header) % fitsBlockLen; pad != 0 {
		header += strings.Repeat(" ", fitsBlockLen-pad)
	}
	if _, err := io.WriteString(w, header); err != nil {
		return errors.Wrap(err, "writing FITS header")
	}

	data := make([]byte, 2*raw.Width*raw.Height)
	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			signed := int16(int32(raw.At(x, y)) - 32768)
			binary.BigEndian.PutUint16(data[2*(y*raw.Width+x):], uint16(signed))
		}
	}
	if pad := len(data) % fitsBlockLen; pad != 0 {
		data = append(data, make([]byte, fitsBlockLen-pad)...)
	}
	_, err := w.Write(data)
	return errors.Wrap(err, "writing FITS data")
}

// WriteFitsFile writes raw to path.
func WriteFitsFile(path string, raw *demosaic.RawImage, pattern demosaic.CFAPattern) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating FITS file")
	}
	if err := WriteFits(f, raw, pattern); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fitsCard(keyword, value string) string {
	return fmt.Sprintf("%-8s= %20s", keyword, value) + strings.Repeat(" ", fitsRecordLen-30)
}

// SampleMosaic samples an RGB image through a Bayer filter, keeping one
// 16-bit channel per pixel. It produces synthetic sensor data with known
// ground truth.
func SampleMosaic(img image.Image, pattern demosaic.CFAPattern) *demosaic.RawImage {
	b := img.Bounds()
	raw := demosaic.NewRawImage(b.Dx(), b.Dy())
	xOffset, yOffset := pattern.RedOffset()
	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			c := color.RGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA64)
			var v uint16
			switch (y-yOffset)&1*2 + (x-xOffset)&1 {
			case 0:
				v = c.R
			case 3:
				v = c.B
			default:
				v = c.G
			}
			raw.Set(x, y, v)
		}
	}
	return raw
}
