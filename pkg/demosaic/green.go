package demosaic

import "image"

// avg returns floor((a+b+1)/2). The sum is formed in 64 bits so no pair of
// int32 inputs can overflow; the arithmetic shift floors negative sums.
func avg(a, b int32) int32 {
	return int32((int64(a) + int64(b) + 1) >> 1)
}

func absDiff(a, b int32) int64 {
	d := int64(a) - int64(b)
	if d < 0 {
		return -d
	}
	return d
}

// GreenAtRed estimates green at the red site (x, y). Horizontal and vertical
// neighbor averages are both formed; the one across the smaller gradient
// wins, and a tie falls to the vertical estimate.
func GreenAtRed(m Mosaic, x, y int) int32 {
	gv := avg(m.Gb.At(x, y-1), m.Gb.At(x, y))
	gvd := absDiff(m.Gb.At(x, y-1), m.Gb.At(x, y))
	gh := avg(m.Gr.At(x-1, y), m.Gr.At(x, y))
	ghd := absDiff(m.Gr.At(x-1, y), m.Gr.At(x, y))

	if ghd < gvd {
		return gh
	}
	return gv
}

// GreenAtBlue is GreenAtRed with the red and blue roles swapped, so every
// neighbor offset flips sign.
func GreenAtBlue(m Mosaic, x, y int) int32 {
	gv := avg(m.Gr.At(x, y+1), m.Gr.At(x, y))
	gvd := absDiff(m.Gr.At(x, y+1), m.Gr.At(x, y))
	gh := avg(m.Gb.At(x+1, y), m.Gb.At(x, y))
	ghd := absDiff(m.Gb.At(x+1, y), m.Gb.At(x, y))

	if ghd < gvd {
		return gh
	}
	return gv
}

// ReconstructGreen materializes both green planes over r. The mosaic must
// cover r grown by one sample on every side.
func ReconstructGreen(m Mosaic, r image.Rectangle) GreenPlanes {
	g := GreenPlanes{GAtR: NewPlane(r), GAtB: NewPlane(r)}
	g.GAtR.fill(func(x, y int) int32 { return GreenAtRed(m, x, y) })
	g.GAtB.fill(func(x, y int) int32 { return GreenAtBlue(m, x, y) })
	return g
}
