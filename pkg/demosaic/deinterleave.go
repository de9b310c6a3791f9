package demosaic

import "image"

// Deinterleave splits the border-extended mosaic into four half-resolution
// planes covering r. The mosaic is first shifted by the pattern's red offset,
// so (0, 0) of every returned plane is a red tile and the planes always come
// back in RGGB order.
func Deinterleave(raw *RawImage, pattern CFAPattern, r image.Rectangle) Mosaic {
	xOffset, yOffset := pattern.RedOffset()
	shifted := func(x, y int) int32 {
		return int32(raw.ClampedAt(x+xOffset, y+yOffset))
	}

	m := Mosaic{R: NewPlane(r), Gr: NewPlane(r), Gb: NewPlane(r), B: NewPlane(r)}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.R.Set(x, y, shifted(2*x, 2*y))
			m.Gr.Set(x, y, shifted(2*x+1, 2*y))
			m.Gb.Set(x, y, shifted(2*x, 2*y+1))
			m.B.Set(x, y, shifted(2*x+1, 2*y+1))
		}
	}
	return m
}
