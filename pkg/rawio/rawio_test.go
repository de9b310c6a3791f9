package rawio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"demosaic/pkg/demosaic"
)

func testMosaic(width, height int) *demosaic.RawImage {
	raw := demosaic.NewRawImage(width, height)
	for i := range raw.Pix {
		raw.Pix[i] = uint16(i * 997)
	}
	return raw
}

func TestFitsRoundTrip(t *testing.T) {
	raw := testMosaic(13, 7)
	raw.Pix[0] = 0
	raw.Pix[1] = 65535

	var buf bytes.Buffer
	require.NoError(t, WriteFits(&buf, raw, demosaic.GBRG))
	assert.Zero(t, buf.Len()%fitsBlockLen, "FITS output must be block aligned")

	fitsData, err := ReadFitsFromBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 13, fitsData.Width)
	assert.Equal(t, 7, fitsData.Height)
	assert.Equal(t, 16, fitsData.BitDepth)
	assert.Equal(t, raw.Pix, fitsData.Raw.Pix)

	p, ok := fitsData.Metadata.BayerPattern()
	require.True(t, ok)
	assert.Equal(t, demosaic.GBRG, p)
	assert.Equal(t, "True", fitsData.Metadata.GetString("SIMPLE"))
}

func TestBayerPatternOffsets(t *testing.T) {
	tests := []struct {
		pat        string
		xOff, yOff int
		want       demosaic.CFAPattern
	}{
		{"RGGB", 0, 0, demosaic.RGGB},
		{"RGGB", 1, 0, demosaic.GRBG},
		{"RGGB", 0, 1, demosaic.GBRG},
		{"RGGB", 1, 1, demosaic.BGGR},
		{"bggr", 1, 1, demosaic.RGGB},
		{"GRBG", 2, 0, demosaic.GRBG},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d_%d", tt.pat, tt.xOff, tt.yOff), func(t *testing.T) {
			m := NewFitsMetadata()
			m.Headers["BAYERPAT"] = tt.pat
			m.Headers["XBAYROFF"] = fmt.Sprint(tt.xOff)
			m.Headers["YBAYROFF"] = fmt.Sprint(tt.yOff)
			p, ok := m.BayerPattern()
			require.True(t, ok)
			assert.Equal(t, tt.want, p)
		})
	}

	m := NewFitsMetadata()
	_, ok := m.BayerPattern()
	assert.False(t, ok, "missing BAYERPAT")
	m.Headers["BAYERPAT"] = "CYGM"
	_, ok = m.BayerPattern()
	assert.False(t, ok, "non-Bayer pattern")
}

func fitsHeader(cards ...string) []byte {
	var sb strings.Builder
	for _, c := range cards {
		sb.WriteString(fmt.Sprintf("%-80s", c))
	}
	sb.WriteString(fmt.Sprintf("%-80s", "END"))
	for sb.Len()%fitsBlockLen != 0 {
		sb.WriteByte(' ')
	}
	return []byte(sb.String())
}

func TestReadFitsBitpix8(t *testing.T) {
	data := fitsHeader(
		"SIMPLE  =                    T",
		"BITPIX  =                    8",
		"NAXIS   =                    2",
		"NAXIS1  =                    2",
		"NAXIS2  =                    2",
		"BSCALE  =                  2.0 / doubled",
		"EXPTIME =                 30.5",
	)
	data = append(data, 1, 2, 3, 200)

	fitsData, err := ReadFitsFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 8, fitsData.BitDepth)
	assert.Equal(t, []uint16{2, 4, 6, 400}, fitsData.Raw.Pix)

	exp, ok := fitsData.Metadata.ExposureTime()
	require.True(t, ok)
	assert.Equal(t, 30.5, exp)
}

func TestReadFitsRejectsBadInput(t *testing.T) {
	_, err := ReadFitsFromBytes([]byte("SIMPLE"))
	assert.Error(t, err, "truncated header")

	cube := fitsHeader(
		"SIMPLE  =                    T",
		"BITPIX  =                   16",
		"NAXIS   =                    3",
		"NAXIS1  =                    2",
		"NAXIS2  =                    2",
	)
	_, err = ReadFitsFromBytes(cube)
	assert.Error(t, err, "three-axis data is not a mosaic")

	odd := fitsHeader(
		"SIMPLE  =                    T",
		"BITPIX  =                  -64",
		"NAXIS   =                    2",
		"NAXIS1  =                    2",
		"NAXIS2  =                    2",
	)
	_, err = ReadFitsFromBytes(odd)
	assert.Error(t, err, "BITPIX -64 is unsupported")

	huge := fitsHeader(
		"SIMPLE  =                    T",
		"BITPIX  =                   16",
		"NAXIS   =                    2",
		"NAXIS1  =                    4",
		"NAXIS2  =  2305843009213693953",
	)
	huge = append(huge, make([]byte, fitsBlockLen)...)
	require.NotPanics(t, func() { _, err = ReadFitsFromBytes(huge) })
	assert.Error(t, err, "dimensions overflow the sample count")

	header, err := ReadFitsMetadataOnly(writeTemp(t, huge))
	require.NoError(t, err, "header-only reads allocate nothing")
	assert.Equal(t, 4, header.Width)
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.fits")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadFitsFloatNaN(t *testing.T) {
	data := fitsHeader(
		"SIMPLE  =                    T",
		"BITPIX  =                  -32",
		"NAXIS   =                    2",
		"NAXIS1  =                    2",
		"NAXIS2  =                    2",
	)
	for _, v := range []float32{float32(math.NaN()), 12.4, -5, 1e9} {
		data = binary.BigEndian.AppendUint32(data, math.Float32bits(v))
	}

	fitsData, err := ReadFitsFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 12, 0, 65535}, fitsData.Raw.Pix)
}

func testRGB() *demosaic.RGBImage {
	img := demosaic.NewRGBImage(5, 3)
	img.SetRGB(0, 0, 100, 200, 300)
	img.SetRGB(4, 2, -7, 32767, 1)
	return img
}

func TestWriteTIFFAndPNG(t *testing.T) {
	img := testRGB()
	want := ToRGBA64(img)
	assert.Equal(t, color.RGBA64{0, 32767, 1, 0xffff}, want.RGBA64At(4, 2), "negative written as zero")

	var tbuf bytes.Buffer
	require.NoError(t, WriteTIFF(&tbuf, img))
	decoded, err := tiff.Decode(&tbuf)
	require.NoError(t, err)
	assertSameRGBA64(t, want, decoded)

	var pbuf bytes.Buffer
	require.NoError(t, WritePNG(&pbuf, img))
	decoded, err = png.Decode(&pbuf)
	require.NoError(t, err)
	assertSameRGBA64(t, want, decoded)
}

func assertSameRGBA64(t *testing.T, want *image.RGBA64, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	for y := 0; y < want.Bounds().Dy(); y++ {
		for x := 0; x < want.Bounds().Dx(); x++ {
			r, g, b, a := got.At(x, y).RGBA()
			c := want.RGBA64At(x, y)
			assert.Equal(t, [4]uint32{uint32(c.R), uint32(c.G), uint32(c.B), uint32(c.A)}, [4]uint32{r, g, b, a}, "(%d,%d)", x, y)
		}
	}
}

func TestWriteImageByExtension(t *testing.T) {
	dir := t.TempDir()
	img := testRGB()

	for _, name := range []string{"out.tif", "out.TIFF", "out.png"} {
		require.NoError(t, WriteImage(filepath.Join(dir, name), img), name)
	}
}

func TestLoadFits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.fits")
	raw := testMosaic(8, 6)
	require.NoError(t, WriteFitsFile(path, raw, demosaic.BGGR))

	in, err := Load(path)
	require.NoError(t, err)
	assert.True(t, in.HasPattern)
	assert.Equal(t, demosaic.BGGR, in.Pattern)
	assert.Equal(t, raw.Pix, in.Raw.Pix)
	assert.NotNil(t, in.Metadata)

	header, err := ReadFitsMetadataOnly(path)
	require.NoError(t, err)
	assert.Nil(t, header.Raw)
	assert.Equal(t, 8, header.Width)
	assert.Equal(t, "BGGR", header.Metadata.GetString("bayerpat"))

	_, err = Load(filepath.Join(dir, "missing.fits"))
	assert.Error(t, err)
}

func TestSampleMosaicFlatColorDemosaics(t *testing.T) {
	src := image.NewRGBA64(image.Rect(3, 2, 15, 12)) // non-zero Min
	fill := color.RGBA64{R: 1000, G: 2000, B: 3000, A: 0xffff}
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		for x := src.Rect.Min.X; x < src.Rect.Max.X; x++ {
			src.SetRGBA64(x, y, fill)
		}
	}

	for _, p := range []demosaic.CFAPattern{demosaic.RGGB, demosaic.GRBG, demosaic.GBRG, demosaic.BGGR} {
		raw := SampleMosaic(src, p)
		xOffset, yOffset := p.RedOffset()
		assert.Equal(t, uint16(1000), raw.At(xOffset, yOffset), "red at red offset")
		assert.Equal(t, uint16(3000), raw.At(xOffset^1, yOffset^1), "blue opposite red")

		out, err := demosaic.Demosaic(raw, p)
		require.NoError(t, err)
		// A flat color has no gradients and no green curvature, so every
		// pixel comes back exact.
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				r, g, b := out.RGB(x, y)
				assert.Equal(t, [3]int16{1000, 2000, 3000}, [3]int16{r, g, b}, "%s (%d,%d)", p, x, y)
			}
		}
	}
}

func TestRenderPreview(t *testing.T) {
	img := demosaic.NewRGBImage(1600, 400)
	for i := range img.Pix {
		img.Pix[i] = int16(i % 4096)
	}

	opts := DefaultPreviewOptions()
	opts.Pattern = demosaic.GRBG
	preview, err := RenderPreview(img, opts)
	require.NoError(t, err)
	assert.Equal(t, 800, preview.Bounds().Dx())
	assert.Equal(t, 200+captionHeight, preview.Bounds().Dy())

	// Swatch: GRBG puts red top-right.
	assert.Equal(t, siteColors[0], preview.RGBAAt(6+14, 200+6))
	assert.Equal(t, siteColors[3], preview.RGBAAt(6, 200+6+14))

	opts.Caption = false
	opts.MaxWidth = 0
	plain, err := RenderPreview(img, opts)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), plain.Bounds())

	data, err := RenderPreviewBytes(img, DefaultPreviewOptions())
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)

	_, err = RenderPreview(nil, opts)
	assert.Error(t, err)
}

func TestTo8(t *testing.T) {
	assert.Equal(t, uint8(0), to8(-3, 100))
	assert.Equal(t, uint8(127), to8(50, 100))
	assert.Equal(t, uint8(255), to8(100, 100))
	assert.Equal(t, uint8(255), to8(32767, 100))
}

func TestToneCurve(t *testing.T) {
	linear := toneCurve(0)
	assert.Equal(t, uint8(128), linear[128])

	lut := toneCurve(2.2)
	assert.Equal(t, uint8(0), lut[0])
	assert.Equal(t, uint8(255), lut[255])
	assert.Greater(t, lut[64], uint8(64), "gamma lifts shadows")
	for i := 1; i < len(lut); i++ {
		assert.GreaterOrEqual(t, lut[i], lut[i-1])
	}
}

func TestParseCard(t *testing.T) {
	tests := []struct {
		card      string
		key, want string
		ok        bool
	}{
		{"SIMPLE  =                    T", "SIMPLE", "True", true},
		{"EXPTIME =                 30.5 / seconds", "EXPTIME", "30.5", true},
		{"INSTRUME= 'ZWO ASI2600MC'      / it's a camera", "INSTRUME", "ZWO ASI2600MC", true},
		{"OBJECT  = 'O''Brien / M31'", "OBJECT", "O'Brien / M31", true},
		{"COMMENT   just text", "", "", false},
		{"HISTORY = ", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.card[:8], func(t *testing.T) {
			key, value, ok := parseCard(fmt.Sprintf("%-80s", tt.card))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.key, key)
				assert.Equal(t, tt.want, value)
			}
		})
	}
}
