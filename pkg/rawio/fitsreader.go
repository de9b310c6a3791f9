package rawio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"demosaic/pkg/demosaic"
)

const (
	fitsRecordLen = 80
	fitsBlockLen  = 2880

	// maxFitsSamples bounds NAXIS1*NAXIS2 before anything is allocated.
	maxFitsSamples = 1 << 30
)

// FitsMetadata holds parsed FITS header key-value pairs. Keys are upper case;
// string values have their quotes removed.
type FitsMetadata struct {
	Headers map[string]string
}

// NewFitsMetadata creates an empty FitsMetadata.
func NewFitsMetadata() *FitsMetadata {
	return &FitsMetadata{Headers: make(map[string]string)}
}

func (m *FitsMetadata) lookup(key string) (string, bool) {
	v, ok := m.Headers[strings.ToUpper(key)]
	return strings.TrimSpace(v), ok
}

func (m *FitsMetadata) GetString(key string) string {
	v, _ := m.lookup(key)
	return v
}

func (m *FitsMetadata) GetDouble(key string) (float64, bool) {
	v, ok := m.lookup(key)
	if !ok {
		return 0, false
	}
	d, err := strconv.ParseFloat(v, 64)
	return d, err == nil
}

func (m *FitsMetadata) GetInt(key string) (int, bool) {
	v, ok := m.lookup(key)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	return i, err == nil
}

// GetDateTime parses DATE-OBS style values, which carry no zone.
func (m *FitsMetadata) GetDateTime(key string) (time.Time, bool) {
	v, ok := m.lookup(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02T15:04:05", v)
	return t, err == nil
}

func (m *FitsMetadata) CameraName() string { return m.GetString("INSTRUME") }

func (m *FitsMetadata) ExposureTime() (float64, bool) {
	for _, key := range []string{"EXPTIME", "EXPOSURE"} {
		if v, ok := m.GetDouble(key); ok {
			return v, true
		}
	}
	return 0, false
}

// BayerPattern resolves the CFA orientation from BAYERPAT. XBAYROFF and
// YBAYROFF move the pattern origin, which flips the red offset parity.
func (m *FitsMetadata) BayerPattern() (demosaic.CFAPattern, bool) {
	name := m.GetString("BAYERPAT")
	if name == "" {
		return 0, false
	}
	p, err := demosaic.ParseCFAPattern(name)
	if err != nil {
		return 0, false
	}
	xOff, _ := m.GetInt("XBAYROFF")
	yOff, _ := m.GetInt("YBAYROFF")
	if xOff == 0 && yOff == 0 {
		return p, true
	}
	x, y := p.RedOffset()
	return demosaic.PatternFromRedOffset(x+xOff, y+yOff), true
}

// FitsImageData holds a parsed FITS mosaic.
type FitsImageData struct {
	Raw      *demosaic.RawImage
	Width    int
	Height   int
	BitDepth int
	Metadata *FitsMetadata
}

// ReadFits reads FITS headers and pixel data from a file.
func ReadFits(filePath string) (*FitsImageData, error) {
	return readFitsFile(filePath, false)
}

// ReadFitsMetadataOnly reads only FITS headers without loading pixel data.
func ReadFitsMetadataOnly(filePath string) (*FitsImageData, error) {
	return readFitsFile(filePath, true)
}

// ReadFitsFromBytes reads FITS headers and pixel data from a byte slice.
func ReadFitsFromBytes(data []byte) (*FitsImageData, error) {
	return readFits(bytes.NewReader(data), false)
}

func readFitsFile(filePath string, headerOnly bool) (*FitsImageData, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "opening FITS file")
	}
	defer f.Close()
	return readFits(f, headerOnly)
}

// sampleFormat decodes one big-endian FITS sample of a given BITPIX.
type sampleFormat struct {
	size   int
	decode func(b []byte) float64
}

var sampleFormats = map[int]sampleFormat{
	8:   {1, func(b []byte) float64 { return float64(b[0]) }},
	16:  {2, func(b []byte) float64 { return float64(int16(binary.BigEndian.Uint16(b))) }},
	32:  {4, func(b []byte) float64 { return float64(int32(binary.BigEndian.Uint32(b))) }},
	-32: {4, func(b []byte) float64 { return float64(math.Float32frombits(binary.BigEndian.Uint32(b))) }},
}

func readFits(r io.Reader, headerOnly bool) (*FitsImageData, error) {
	metadata, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	naxis, _ := metadata.GetInt("NAXIS")
	width, _ := metadata.GetInt("NAXIS1")
	height, _ := metadata.GetInt("NAXIS2")
	if naxis != 2 || width <= 0 || height <= 0 {
		return nil, errors.Errorf("not a single-plane FITS mosaic: NAXIS=%d, NAXIS1=%d, NAXIS2=%d", naxis, width, height)
	}
	bitpix, _ := metadata.GetInt("BITPIX")

	result := &FitsImageData{
		Width:    width,
		Height:   height,
		BitDepth: 16,
		Metadata: metadata,
	}
	if bitpix == 8 {
		result.BitDepth = 8
	}
	if headerOnly {
		return result, nil
	}

	format, ok := sampleFormats[bitpix]
	if !ok {
		return nil, errors.Errorf("unsupported BITPIX: %d", bitpix)
	}
	if width > maxFitsSamples/height {
		return nil, errors.Errorf("FITS mosaic too large: %dx%d", width, height)
	}
	data := make([]byte, width*height*format.size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrapf(err, "reading BITPIX=%d pixel data", bitpix)
	}

	bzero, _ := metadata.GetDouble("BZERO")
	bscale, ok := metadata.GetDouble("BSCALE")
	if !ok {
		bscale = 1
	}
	raw := demosaic.NewRawImage(width, height)
	for i := range raw.Pix {
		v := format.decode(data[i*format.size:])*bscale + bzero
		if math.IsNaN(v) {
			v = 0
		}
		raw.Pix[i] = uint16(math.Max(0, math.Min(v, math.MaxUint16)))
	}
	result.Raw = raw
	return result, nil
}

// readHeader consumes whole header blocks up to and including the one
// holding END.
func readHeader(r io.Reader) (*FitsMetadata, error) {
	metadata := NewFitsMetadata()
	block := make([]byte, fitsBlockLen)
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, errors.Wrap(err, "reading FITS header block")
		}
		for off := 0; off < fitsBlockLen; off += fitsRecordLen {
			card := string(block[off : off+fitsRecordLen])
			if strings.TrimSpace(card[:8]) == "END" {
				return metadata, nil
			}
			if key, value, ok := parseCard(card); ok {
				metadata.Headers[key] = value
			}
		}
	}
}

// parseCard splits a value card into keyword and value, dropping any
// comment. Commentary cards and empty values report false.
func parseCard(card string) (string, string, bool) {
	key := strings.ToUpper(strings.TrimSpace(card[:8]))
	if key == "" || card[8:10] != "= " {
		return "", "", false
	}
	field := strings.TrimSpace(card[10:])

	var value string
	switch {
	case strings.HasPrefix(field, "'"):
		value = unquote(field)
	default:
		value, _, _ = strings.Cut(field, "/")
		value = strings.TrimSpace(value)
		switch value {
		case "T":
			value = "True"
		case "F":
			value = "False"
		}
	}
	return key, value, value != ""
}

// unquote reads a FITS string literal, where '' escapes a quote and
// trailing blanks are insignificant.
func unquote(field string) string {
	var sb strings.Builder
	for i := 1; i < len(field); i++ {
		if field[i] == '\'' {
			if i+1 < len(field) && field[i+1] == '\'' {
				sb.WriteByte('\'')
				i++
				continue
			}
			break
		}
		sb.WriteByte(field[i])
	}
	return strings.TrimRight(sb.String(), " ")
}
