package screen

import (
	"math"

	"github.com/janhubicka/colorscreen"
)

// TileSize is the fixed power-of-two period of every screen tile (§3, §4.C).
const TileSize = 128

// Type enumerates the historical screen layouts (§3). Random is the
// "no regular screen detected yet" marker used before detection succeeds.
type Type uint8

const (
	Random Type = iota
	Paget
	Thames
	Finlay
	Dufay
	WarnerPowrie
	Autochrome
)

func (t Type) String() string {
	switch t {
	case Paget:
		return "Paget"
	case Thames:
		return "Thames"
	case Finlay:
		return "Finlay"
	case Dufay:
		return "Dufay"
	case WarnerPowrie:
		return "WarnerPowrie"
	case Autochrome:
		return "Autochrome"
	default:
		return "Random"
	}
}

// cell is one in-tile (multiplier, add) weight pair for one channel.
type cell struct {
	mult, add float32
}

// Tile is one immutable period of the screen: a TileSize x TileSize grid
// of per-channel (mult,add) pairs, shared by reference across renderers
// once built (§4.C).
type Tile struct {
	r, g, b [TileSize * TileSize]cell
	empty   bool
}

// Empty returns the identity tile: rendering through it returns the
// source image unchanged (§4.C).
func Empty() *Tile {
	t := &Tile{empty: true}
	for i := range t.r {
		t.r[i] = cell{mult: 1, add: 0}
		t.g[i] = cell{mult: 1, add: 0}
		t.b[i] = cell{mult: 1, add: 0}
	}
	return t
}

// IsEmpty reports whether this is the identity tile.
func (t *Tile) IsEmpty() bool { return t.empty }

// At returns the (mult, add) weight for channel c ('r','g','b') at
// in-tile position (ix,iy), wrapping modulo TileSize so the periodicity
// invariant (§8 property 2) holds for any integer input.
func (t *Tile) At(channel byte, ix, iy int) (mult, add float32) {
	ix = ((ix % TileSize) + TileSize) % TileSize
	iy = ((iy % TileSize) + TileSize) % TileSize
	idx := iy*TileSize + ix
	var cl cell
	switch channel {
	case 'r':
		cl = t.r[idx]
	case 'g':
		cl = t.g[idx]
	default:
		cl = t.b[idx]
	}
	return cl.mult, cl.add
}

// Apply renders a single channel's contribution given an unadjusted
// luminosity l at in-tile position (ix,iy): l*mult + add (§4.C).
func (t *Tile) Apply(channel byte, ix, iy int, l float32) float32 {
	mult, add := t.At(channel, ix, iy)
	return l*mult + add
}

// ApplyRGB applies all three channels against a common luminosity.
func (t *Tile) ApplyRGB(ix, iy int, l float32) colorscreen.Rgb {
	return colorscreen.Rgb{
		Red:   t.Apply('r', ix, iy, l),
		Green: t.Apply('g', ix, iy, l),
		Blue:  t.Apply('b', ix, iy, l),
	}
}

// Build constructs the analytic tile for the given screen type. stripWidth
// is used by Dufay-style screens for the sub-pixel red-strip width
// fraction (§3 "optional sub-pixel strip widths for Dufay-style screens");
// pass 0 for types that ignore it.
func Build(t Type, stripWidth float64) (*Tile, error) {
	switch t {
	case Random:
		return Empty(), nil
	case Dufay:
		return buildDufay(stripWidth), nil
	case Paget, Finlay, Thames:
		return buildMosaic(t), nil
	case WarnerPowrie:
		return buildWarnerPowrie(), nil
	case Autochrome:
		return buildAutochrome(), nil
	default:
		return nil, colorscreen.ErrUnsupportedScreenType
	}
}

// buildDufay constructs the reseau of alternating red strips and
// blue/green checkerboard squares characteristic of Dufaycolor.
func buildDufay(stripWidth float64) *Tile {
	if stripWidth <= 0 || stripWidth >= 1 {
		stripWidth = 0.3
	}
	tile := &Tile{}
	redBand := int(stripWidth * TileSize)
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			idx := y*TileSize + x
			if x < redBand {
				tile.r[idx] = cell{mult: 1, add: 0}
				tile.g[idx] = cell{mult: 0, add: 0}
				tile.b[idx] = cell{mult: 0, add: 0}
				continue
			}
			// Remaining width alternates green/blue in a checkerboard.
			if (x+y)%2 == 0 {
				tile.r[idx] = cell{mult: 0, add: 0}
				tile.g[idx] = cell{mult: 1, add: 0}
				tile.b[idx] = cell{mult: 0, add: 0}
			} else {
				tile.r[idx] = cell{mult: 0, add: 0}
				tile.g[idx] = cell{mult: 0, add: 0}
				tile.b[idx] = cell{mult: 1, add: 0}
			}
		}
	}
	return tile
}

// buildMosaic constructs the diagonal rhomboid mosaic shared (with minor
// geometric variants) by Paget, Finlay and Thames screens: three bands of
// color repeated diagonally.
func buildMosaic(_ Type) *Tile {
	tile := &Tile{}
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			idx := y*TileSize + x
			switch (x + y) % 3 {
			case 0:
				tile.r[idx] = cell{mult: 1}
			case 1:
				tile.g[idx] = cell{mult: 1}
			default:
				tile.b[idx] = cell{mult: 1}
			}
		}
	}
	return tile
}

// buildWarnerPowrie constructs the fine line-screen pattern (alternating
// thin R/G/B lines) used by Warner-Powrie plates.
func buildWarnerPowrie() *Tile {
	tile := &Tile{}
	band := TileSize / 3
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			idx := y*TileSize + x
			switch x / band % 3 {
			case 0:
				tile.r[idx] = cell{mult: 1}
			case 1:
				tile.g[idx] = cell{mult: 1}
			default:
				tile.b[idx] = cell{mult: 1}
			}
		}
	}
	return tile
}

// buildAutochrome constructs a randomized-grain approximation. True
// Autochrome screens have irregular potato-starch grains with no lattice
// period; this tile approximates the average statistical behavior
// (equal-area R/G/B) over one nominal period so the rest of the pipeline
// (which always operates through a periodic tile) still applies. A finer
// stochastic model belongs in the detector's patch statistics, not here.
func buildAutochrome() *Tile {
	tile := &Tile{}
	state := uint32(0x9e3779b9)
	next := func() uint32 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return state
	}
	for i := range tile.r {
		switch next() % 3 {
		case 0:
			tile.r[i] = cell{mult: 1}
		case 1:
			tile.g[i] = cell{mult: 1}
		default:
			tile.b[i] = cell{mult: 1}
		}
	}
	return tile
}

// WithBlur convolves base with an isotropic Gaussian of the given pixel
// radius, wrapping at the tile period so the result stays periodic
// (§4.C initialize_with_blur). A radius <= 0 returns base unchanged.
func WithBlur(base *Tile, radius float64) *Tile {
	if radius <= 0 {
		return base
	}
	kernel := gaussianKernel1D(radius)
	tmpR := separableBlurChannel(base.r[:], kernel)
	tmpG := separableBlurChannel(base.g[:], kernel)
	tmpB := separableBlurChannel(base.b[:], kernel)

	out := &Tile{}
	copy(out.r[:], tmpR)
	copy(out.g[:], tmpG)
	copy(out.b[:], tmpB)
	return out
}

func gaussianKernel1D(radius float64) []float32 {
	half := int(math.Ceil(radius * 3))
	size := half*2 + 1
	k := make([]float32, size)
	sigma2 := 2 * radius * radius
	var sum float64
	for i := range k {
		x := float64(i - half)
		v := math.Exp(-(x * x) / sigma2)
		k[i] = float32(v)
		sum += v
	}
	for i := range k {
		k[i] = float32(float64(k[i]) / sum)
	}
	return k
}

// separableBlurChannel runs horizontal then vertical passes of the 1D
// kernel over a TileSize x TileSize toroidal buffer of (mult,add) cells,
// blurring mult and add independently.
func separableBlurChannel(src []cell, kernel []float32) []cell {
	half := len(kernel) / 2
	horiz := make([]cell, TileSize*TileSize)
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			var m, a float32
			for k, w := range kernel {
				sx := ((x + k - half) % TileSize + TileSize) % TileSize
				c := src[y*TileSize+sx]
				m += c.mult * w
				a += c.add * w
			}
			horiz[y*TileSize+x] = cell{mult: m, add: a}
		}
	}
	out := make([]cell, TileSize*TileSize)
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			var m, a float32
			for k, w := range kernel {
				sy := ((y + k - half) % TileSize + TileSize) % TileSize
				c := horiz[sy*TileSize+x]
				m += c.mult * w
				a += c.add * w
			}
			out[y*TileSize+x] = cell{mult: m, add: a}
		}
	}
	return out
}
