package rawio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"demosaic/pkg/demosaic"
)

// PreviewOptions controls the 8-bit JPEG preview.
type PreviewOptions struct {
	MaxWidth   int                 // downscale wider images to this width; <= 0 keeps full size
	WhiteLevel int                 // sample mapped to 255; <= 0 uses the image maximum
	Gamma      float32             // display gamma; <= 0 or 1 is linear
	Pattern    demosaic.CFAPattern // shown in the caption and swatch
	Caption    bool                // draw the summary band
	Quality    int                 // JPEG quality
}

// DefaultPreviewOptions returns an 800px wide captioned preview.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{MaxWidth: 800, Caption: true, Quality: 90}
}

const captionHeight = 40

// WritePreview renders a preview and writes it to a JPEG file.
func WritePreview(img *demosaic.RGBImage, opts PreviewOptions, outputPath string) error {
	data, err := RenderPreviewBytes(img, opts)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(outputPath, data, 0o644), "write preview file")
}

// RenderPreviewBytes renders a preview and returns it as JPEG bytes.
func RenderPreviewBytes(img *demosaic.RGBImage, opts PreviewOptions) ([]byte, error) {
	preview, err := RenderPreview(img, opts)
	if err != nil {
		return nil, err
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, preview, &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.Wrap(err, "encode preview")
	}
	return buf.Bytes(), nil
}

// RenderPreview scales img to 8 bits, downsizes it with Lanczos
// resampling and, when requested, appends a caption band.
func RenderPreview(img *demosaic.RGBImage, opts PreviewOptions) (*image.RGBA, error) {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return nil, errors.New("no image data")
	}

	white := opts.WhiteLevel
	if white <= 0 {
		white = maxSample(img)
	}

	lut := toneCurve(opts.Gamma)
	full := image.NewRGBA(img.Bounds())
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.RGB(x, y)
			full.SetRGBA(x, y, color.RGBA{lut[to8(r, white)], lut[to8(g, white)], lut[to8(b, white)], 255})
		}
	}

	var scaled image.Image = full
	if opts.MaxWidth > 0 && img.Width > opts.MaxWidth {
		scaled = resize.Resize(uint(opts.MaxWidth), 0, full, resize.Lanczos3)
	}
	if !opts.Caption {
		if rgba, ok := scaled.(*image.RGBA); ok {
			return rgba, nil
		}
		out := image.NewRGBA(scaled.Bounds())
		draw.Draw(out, out.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
		return out, nil
	}

	sb := scaled.Bounds()
	imgW, imgH := sb.Dx(), sb.Dy()
	canvas := image.NewRGBA(image.Rect(0, 0, imgW, imgH+captionHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 255}), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, imgW, imgH), scaled, sb.Min, draw.Src)

	drawSwatch(canvas, opts.Pattern, 6, imgH+6, 14)

	face := basicfont.Face7x13
	textColor := color.RGBA{220, 220, 220, 255}
	line1 := fmt.Sprintf("%s  %dx%d", opts.Pattern, img.Width, img.Height)
	line2 := fmt.Sprintf("white=%d  R=%.0f G=%.0f B=%.0f", white,
		channelMean(img, demosaic.ChannelR), channelMean(img, demosaic.ChannelG), channelMean(img, demosaic.ChannelB))
	drawText(canvas, face, line1, 44, imgH+16, textColor)
	drawText(canvas, face, line2, 44, imgH+33, textColor)

	return canvas, nil
}

func maxSample(img *demosaic.RGBImage) int {
	m := 1
	for _, v := range img.Pix {
		if int(v) > m {
			m = int(v)
		}
	}
	return m
}

func to8(v int16, white int) uint8 {
	if v <= 0 {
		return 0
	}
	if int(v) >= white {
		return 255
	}
	return uint8(int(v) * 255 / white)
}

// toneCurve maps linear 8-bit levels through 1/gamma.
func toneCurve(gamma float32) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8(i)
	}
	if gamma <= 0 || gamma == 1 {
		return lut
	}
	for i := range lut {
		lut[i] = uint8(255*math32.Pow(float32(i)/255, 1/gamma) + 0.5)
	}
	return lut
}

func channelMean(img *demosaic.RGBImage, c demosaic.Channel) float64 {
	return demosaic.ChannelStatistics(img, c, nil, demosaic.StatMean).Mean
}

var siteColors = [4]color.RGBA{
	{220, 40, 40, 255},
	{40, 200, 40, 255},
	{40, 200, 40, 255},
	{40, 80, 230, 255},
}

// drawSwatch draws the 2x2 CFA tile as it sits on the sensor, red where
// the pattern's red offset puts it.
func drawSwatch(img *image.RGBA, pattern demosaic.CFAPattern, x0, y0, cell int) {
	xOffset, yOffset := pattern.RedOffset()
	for ty := 0; ty < 2; ty++ {
		for tx := 0; tx < 2; tx++ {
			site := ((ty+yOffset)&1)*2 + (tx+xOffset)&1
			r := image.Rect(x0+tx*cell, y0+ty*cell, x0+(tx+1)*cell, y0+(ty+1)*cell)
			draw.Draw(img, r, image.NewUniform(siteColors[site]), image.Point{}, draw.Src)
		}
	}
}

// drawText draws a string at (x, y) using the given font face.
func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
