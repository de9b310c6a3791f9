package demosaic

import "image"

// Plane is a half-resolution grid of int32 samples. Rect may start at
// negative coordinates when the plane carries a halo around a tile.
type Plane struct {
	Pix    []int32
	Stride int
	Rect   image.Rectangle
}

// NewPlane allocates a zeroed plane covering r.
func NewPlane(r image.Rectangle) *Plane {
	return &Plane{
		Pix:    make([]int32, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

func (p *Plane) offset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x - p.Rect.Min.X)
}

func (p *Plane) At(x, y int) int32     { return p.Pix[p.offset(x, y)] }
func (p *Plane) Set(x, y int, v int32) { p.Pix[p.offset(x, y)] = v }

// fill evaluates f at every coordinate of the plane.
func (p *Plane) fill(f func(x, y int) int32) {
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		row := p.Pix[(y-p.Rect.Min.Y)*p.Stride:]
		for x := p.Rect.Min.X; x < p.Rect.Max.X; x++ {
			row[x-p.Rect.Min.X] = f(x, y)
		}
	}
}

// Site names the four positions of the canonical RGGB tile.
type Site int

const (
	SiteR Site = iota
	SiteGr
	SiteGb
	SiteB
)

// siteAt maps a working-grid coordinate to its site by parity.
func siteAt(x, y int) Site {
	return Site(y&1*2 + x&1)
}

// Mosaic holds the four base planes, always in canonical RGGB order.
type Mosaic struct {
	R, Gr, Gb, B *Plane
}

// GreenPlanes holds green reconstructed at the red and blue sites.
type GreenPlanes struct {
	GAtR, GAtB *Plane
}

// RedBluePlanes holds red and blue reconstructed at the other three sites.
type RedBluePlanes struct {
	RAtGr, BAtGr *Plane
	RAtGb, BAtGb *Plane
	RAtB, BAtR   *Plane
}

// SitePlanes lists one channel's planes indexed by Site.
type SitePlanes [4]*Plane

// ChannelPlanes arranges base and derived planes per output channel.
func ChannelPlanes(m Mosaic, g GreenPlanes, rb RedBluePlanes) [3]SitePlanes {
	return [3]SitePlanes{
		ChannelR: {SiteR: m.R, SiteGr: rb.RAtGr, SiteGb: rb.RAtGb, SiteB: rb.RAtB},
		ChannelG: {SiteR: g.GAtR, SiteGr: m.Gr, SiteGb: m.Gb, SiteB: g.GAtB},
		ChannelB: {SiteR: rb.BAtR, SiteGr: rb.BAtGr, SiteGb: rb.BAtGb, SiteB: m.B},
	}
}
