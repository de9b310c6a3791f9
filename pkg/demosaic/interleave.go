package demosaic

import "image"

// Sampler reads a grid at an integer coordinate.
type Sampler func(x, y int) int32

// InterleaveX doubles the x resolution: even columns read a, odd columns read b.
func InterleaveX(a, b Sampler) Sampler {
	return func(x, y int) int32 {
		if x&1 == 0 {
			return a(x>>1, y)
		}
		return b(x>>1, y)
	}
}

// InterleaveY doubles the y resolution: even rows read a, odd rows read b.
func InterleaveY(a, b Sampler) Sampler {
	return func(x, y int) int32 {
		if y&1 == 0 {
			return a(x, y>>1)
		}
		return b(x, y>>1)
	}
}

// Interleave assembles one full-resolution channel, in the working grid where
// (0, 0) is red, from its four site planes.
func Interleave(s SitePlanes) Sampler {
	return InterleaveY(
		InterleaveX(s[SiteR].At, s[SiteGr].At),
		InterleaveX(s[SiteGb].At, s[SiteB].At),
	)
}

// Compose writes the r portion of dst from full-resolution channels given in
// working-grid coordinates, undoing the red-offset shift. Values narrow to
// int16 with two's-complement wrap-around; nothing is clamped.
func Compose(dst *RGBImage, channels [3]Sampler, pattern CFAPattern, r image.Rectangle) {
	xOffset, yOffset := pattern.RedOffset()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := dst.PixOffset(x, y)
			px := dst.Pix[i : i+3 : i+3]
			for c, ch := range channels {
				px[c] = int16(ch(x-xOffset, y-yOffset))
			}
		}
	}
}

// halfResBounds returns the half-resolution rectangle that covers the output
// rectangle r once shifted into the working grid.
func halfResBounds(r image.Rectangle, pattern CFAPattern) image.Rectangle {
	xOffset, yOffset := pattern.RedOffset()
	return image.Rect(
		(r.Min.X-xOffset)>>1,
		(r.Min.Y-yOffset)>>1,
		((r.Max.X-1-xOffset)>>1)+1,
		((r.Max.Y-1-yOffset)>>1)+1,
	)
}
