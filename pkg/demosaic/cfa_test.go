package demosaic

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedOffset(t *testing.T) {
	tests := []struct {
		pattern CFAPattern
		x, y    int
	}{
		{RGGB, 0, 0},
		{GRBG, 1, 0},
		{GBRG, 0, 1},
		{BGGR, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.pattern.String(), func(t *testing.T) {
			x, y := tt.pattern.RedOffset()
			assert.Equal(t, tt.x, x, "x offset")
			assert.Equal(t, tt.y, y, "y offset")
			assert.Equal(t, tt.pattern, PatternFromRedOffset(x, y))
		})
	}
}

func TestParseCFAPattern(t *testing.T) {
	for _, name := range []string{"RGGB", "grbg", " GbRg ", "BGGR"} {
		p, err := ParseCFAPattern(name)
		require.NoError(t, err, name)
		assert.True(t, p.Valid())
	}

	p, err := ParseCFAPattern("bggr")
	require.NoError(t, err)
	assert.Equal(t, BGGR, p)

	_, err = ParseCFAPattern("RGBW")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPattern), "should wrap ErrInvalidPattern")
}

func TestPatternValidity(t *testing.T) {
	assert.True(t, BGGR.Valid())
	assert.False(t, CFAPattern(4).Valid())
	assert.Equal(t, "Unknown", CFAPattern(9).String())
}

func TestClampTileRepeatsLastTile(t *testing.T) {
	tests := []struct {
		v, size, want int
	}{
		{0, 4, 0},
		{3, 4, 3},
		{-1, 4, 1},
		{-2, 4, 0},
		{-3, 4, 1},
		{4, 4, 2},
		{5, 4, 3},
		{9, 4, 3},
		{2, 2, 0},
		{-1, 2, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampTile(tt.v, tt.size), "clampTile(%d, %d)", tt.v, tt.size)
	}
}

func TestClampedAtPreservesParity(t *testing.T) {
	raw := rampImage(6, 4)
	for y := -5; y < 10; y++ {
		for x := -5; x < 12; x++ {
			v := int(raw.ClampedAt(x, y))
			sx, sy := v%6, v/6
			assert.Equal(t, x&1, sx&1, "column parity at (%d,%d)", x, y)
			assert.Equal(t, y&1, sy&1, "row parity at (%d,%d)", x, y)
		}
	}
}

// rampImage fills a mosaic with 0, 1, 2, ... in row-major order.
func rampImage(width, height int) *RawImage {
	raw := NewRawImage(width, height)
	for i := range raw.Pix {
		raw.Pix[i] = uint16(i)
	}
	return raw
}
