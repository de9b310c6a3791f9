package demosaic

import "image"

// Red and blue at a green site are a neighbor average of the native color,
// corrected by how far the measured green sits from the same average taken
// over the reconstructed green plane (the green second derivative).

func RedAtGr(m Mosaic, g GreenPlanes, x, y int) int32 {
	correction := m.Gr.At(x, y) - avg(g.GAtR.At(x, y), g.GAtR.At(x+1, y))
	return correction + avg(m.R.At(x, y), m.R.At(x+1, y))
}

func BlueAtGr(m Mosaic, g GreenPlanes, x, y int) int32 {
	correction := m.Gr.At(x, y) - avg(g.GAtB.At(x, y), g.GAtB.At(x, y-1))
	return correction + avg(m.B.At(x, y), m.B.At(x, y-1))
}

func RedAtGb(m Mosaic, g GreenPlanes, x, y int) int32 {
	correction := m.Gb.At(x, y) - avg(g.GAtR.At(x, y), g.GAtR.At(x, y+1))
	return correction + avg(m.R.At(x, y), m.R.At(x, y+1))
}

func BlueAtGb(m Mosaic, g GreenPlanes, x, y int) int32 {
	correction := m.Gb.At(x, y) - avg(g.GAtB.At(x, y), g.GAtB.At(x-1, y))
	return correction + avg(m.B.At(x, y), m.B.At(x-1, y))
}

// RedAtBlue interpolates along both diagonals, corrects each candidate with
// the green second derivative along the same diagonal, and keeps the one
// whose red samples differ least. A tie keeps the anti-diagonal.
func RedAtBlue(m Mosaic, g GreenPlanes, x, y int) int32 {
	gb := g.GAtB.At(x, y)

	rp := gb - avg(g.GAtR.At(x, y), g.GAtR.At(x+1, y+1)) + avg(m.R.At(x, y), m.R.At(x+1, y+1))
	rpd := absDiff(m.R.At(x, y), m.R.At(x+1, y+1))

	rn := gb - avg(g.GAtR.At(x+1, y), g.GAtR.At(x, y+1)) + avg(m.R.At(x+1, y), m.R.At(x, y+1))
	rnd := absDiff(m.R.At(x+1, y), m.R.At(x, y+1))

	if rpd < rnd {
		return rp
	}
	return rn
}

// BlueAtRed mirrors RedAtBlue; blue neighbors of a red tile lie up and left.
func BlueAtRed(m Mosaic, g GreenPlanes, x, y int) int32 {
	gr := g.GAtR.At(x, y)

	bp := gr - avg(g.GAtB.At(x, y), g.GAtB.At(x-1, y-1)) + avg(m.B.At(x, y), m.B.At(x-1, y-1))
	bpd := absDiff(m.B.At(x, y), m.B.At(x-1, y-1))

	bn := gr - avg(g.GAtB.At(x-1, y), g.GAtB.At(x, y-1)) + avg(m.B.At(x-1, y), m.B.At(x, y-1))
	bnd := absDiff(m.B.At(x-1, y), m.B.At(x, y-1))

	if bpd < bnd {
		return bp
	}
	return bn
}

// ReconstructRedBlue materializes the six red/blue planes over r. Both the
// mosaic and the green planes must cover r grown by one sample.
func ReconstructRedBlue(m Mosaic, g GreenPlanes, r image.Rectangle) RedBluePlanes {
	rb := RedBluePlanes{
		RAtGr: NewPlane(r), BAtGr: NewPlane(r),
		RAtGb: NewPlane(r), BAtGb: NewPlane(r),
		RAtB: NewPlane(r), BAtR: NewPlane(r),
	}
	rb.RAtGr.fill(func(x, y int) int32 { return RedAtGr(m, g, x, y) })
	rb.BAtGr.fill(func(x, y int) int32 { return BlueAtGr(m, g, x, y) })
	rb.RAtGb.fill(func(x, y int) int32 { return RedAtGb(m, g, x, y) })
	rb.BAtGb.fill(func(x, y int) int32 { return BlueAtGb(m, g, x, y) })
	rb.RAtB.fill(func(x, y int) int32 { return RedAtBlue(m, g, x, y) })
	rb.BAtR.fill(func(x, y int) int32 { return BlueAtRed(m, g, x, y) })
	return rb
}
