package demosaic

import (
	"fmt"
	"image"
	"image/color"
)

// RawImage is a single-channel Bayer mosaic of unsigned 16-bit samples.
type RawImage struct {
	Pix    []uint16
	Stride int // elements per row
	Width  int
	Height int
}

// NewRawImage allocates a zeroed width x height mosaic.
func NewRawImage(width, height int) *RawImage {
	return &RawImage{
		Pix:    make([]uint16, width*height),
		Stride: width,
		Width:  width,
		Height: height,
	}
}

// NewRawImageFromPixels wraps a row-major pixel slice without copying.
func NewRawImageFromPixels(pixels []uint16, width, height int) *RawImage {
	return &RawImage{Pix: pixels, Stride: width, Width: width, Height: height}
}

func (m *RawImage) At(x, y int) uint16     { return m.Pix[y*m.Stride+x] }
func (m *RawImage) Set(x, y int, v uint16) { m.Pix[y*m.Stride+x] = v }

// Bounds returns the sensor rectangle, always anchored at the origin.
func (m *RawImage) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// Channel indexes a sample within an RGBImage pixel.
type Channel int

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
)

func (c Channel) String() string {
	switch c {
	case ChannelR:
		return "R"
	case ChannelG:
		return "G"
	case ChannelB:
		return "B"
	default:
		return "Unknown"
	}
}

// Channels lists the output channels in storage order.
var Channels = []Channel{ChannelR, ChannelG, ChannelB}

// RGBImage holds interleaved (R,G,B) signed 16-bit triples. Values are
// signed because the correction terms may push an estimate below zero.
type RGBImage struct {
	Pix    []int16
	Stride int // elements per row, 3 per pixel
	Width  int
	Height int
}

// NewRGBImage allocates a zeroed width x height three-channel image.
func NewRGBImage(width, height int) *RGBImage {
	return &RGBImage{
		Pix:    make([]int16, 3*width*height),
		Stride: 3 * width,
		Width:  width,
		Height: height,
	}
}

// PixOffset returns the index of the R sample of (x, y) in Pix.
func (m *RGBImage) PixOffset(x, y int) int { return y*m.Stride + 3*x }

// RGB returns the three samples at (x, y).
func (m *RGBImage) RGB(x, y int) (r, g, b int16) {
	i := m.PixOffset(x, y)
	s := m.Pix[i : i+3 : i+3]
	return s[0], s[1], s[2]
}

func (m *RGBImage) SetRGB(x, y int, r, g, b int16) {
	i := m.PixOffset(x, y)
	s := m.Pix[i : i+3 : i+3]
	s[0], s[1], s[2] = r, g, b
}

// Sample returns one channel at (x, y).
func (m *RGBImage) Sample(x, y int, c Channel) int16 {
	return m.Pix[m.PixOffset(x, y)+int(c)]
}

// ColorModel, Bounds and At let an RGBImage be handed to image encoders.
// Negative samples read as zero; the stored values are left untouched.
func (m *RGBImage) ColorModel() color.Model { return color.RGBA64Model }
func (m *RGBImage) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

func (m *RGBImage) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.RGBA64{}
	}
	r, g, b := m.RGB(x, y)
	return color.RGBA64{R: nonNegative(r), G: nonNegative(g), B: nonNegative(b), A: 0xffff}
}

func nonNegative(v int16) uint16 {
	if v < 0 {
		return 0
	}
	return uint16(v)
}

// Luminance returns (R + G + B) / 3 per pixel in row-major order.
func (m *RGBImage) Luminance() []float64 {
	out := make([]float64, m.Width*m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b := m.RGB(x, y)
			out[y*m.Width+x] = (float64(r) + float64(g) + float64(b)) / 3
		}
	}
	return out
}

func (m *RGBImage) String() string {
	return fmt.Sprintf("{RGBImage %dx%d}", m.Width, m.Height)
}
