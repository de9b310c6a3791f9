package demosaic

// clampTile clamps v into [v mod 2, size-2+v mod 2] so that reads outside the
// image repeat the last complete 2x2 tile instead of mirroring a single row.
// The parity of v is taken Euclidean-style, so negative coordinates work.
func clampTile(v, size int) int {
	parity := v & 1
	lo, hi := parity, size-2+parity
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampedAt reads the mosaic at any integer coordinate, extending the edges by
// repeating whole CFA tiles.
func (m *RawImage) ClampedAt(x, y int) uint16 {
	return m.Pix[clampTile(y, m.Height)*m.Stride+clampTile(x, m.Width)]
}
