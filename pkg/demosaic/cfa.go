package demosaic

import (
	"strings"

	"github.com/pkg/errors"
)

// CFAPattern identifies the orientation of the 2x2 Bayer tile. The value is
// the row-major index of the red sample inside the tile, which matches the
// Android Camera2 enumeration:
//
//	0: R G   1: G R   2: G B   3: B G
//	   G B      B G      R G      G R
type CFAPattern uint8

const (
	RGGB CFAPattern = iota
	GRBG
	GBRG
	BGGR
)

var patternNames = map[CFAPattern]string{
	RGGB: "RGGB",
	GRBG: "GRBG",
	GBRG: "GBRG",
	BGGR: "BGGR",
}

func (p CFAPattern) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether p is one of the four Bayer orientations.
func (p CFAPattern) Valid() bool { return p <= BGGR }

// RedOffset returns the position of the red sample within the 2x2 tile.
// The result is only meaningful for a valid pattern.
func (p CFAPattern) RedOffset() (xOffset, yOffset int) {
	return int(p % 2), int(p / 2)
}

// ParseCFAPattern accepts the four-letter names used by FITS BAYERPAT headers
// and DNG tooling, case-insensitively.
func ParseCFAPattern(s string) (CFAPattern, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for p, n := range patternNames {
		if n == name {
			return p, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidPattern, "unknown CFA pattern %q", s)
}

// PatternFromRedOffset is the inverse of RedOffset.
func PatternFromRedOffset(xOffset, yOffset int) CFAPattern {
	return CFAPattern(yOffset&1*2 + xOffset&1)
}
