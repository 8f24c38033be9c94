package analyze

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/janhubicka/colorscreen"
)

// Mode selects an analyzer's sampling strategy (§4.G).
type Mode uint8

const (
	// Fast samples the nominal center of each colored element.
	Fast Mode = iota
	// Precise accumulates weighted scalar luminosity over every covered
	// image pixel.
	Precise
	// PreciseRGB accumulates the full RGB triple instead of luminosity,
	// for original-color rendering.
	PreciseRGB
	// Color is Precise RGB accumulation intended for color-calibration
	// use; behaviorally identical to PreciseRGB (§4.G).
	Color
)

// DefaultCollectionThreshold is the minimum screen multiplier (§4.G)
// above which a pixel contributes to the cell it projects into.
const DefaultCollectionThreshold = 0.8

// channelGrid is one channel's owned accumulation array. Go has no
// atomic float32, so accumulation uses atomic.Uint32 compare-and-swap on
// the IEEE-754 bit pattern.
type channelGrid struct {
	width, height int
	value         []uint32
	weight        []uint32
}

func newChannelGrid(width, height int) *channelGrid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &channelGrid{
		width: width, height: height,
		value:  make([]uint32, width*height),
		weight: make([]uint32, width*height),
	}
}

func (g *channelGrid) index(ex, ey int) (int, bool) {
	if ex < 0 || ey < 0 || ex >= g.width || ey >= g.height {
		return 0, false
	}
	return ey*g.width + ex, true
}

func (g *channelGrid) addAtomic(ex, ey int, value, weight float32) {
	idx, ok := g.index(ex, ey)
	if !ok {
		return
	}
	atomicAddFloat32(&g.value[idx], value)
	atomicAddFloat32(&g.weight[idx], weight)
}

func (g *channelGrid) setSample(ex, ey int, value float32) {
	idx, ok := g.index(ex, ey)
	if !ok {
		return
	}
	atomic.StoreUint32(&g.value[idx], math.Float32bits(value))
	atomic.StoreUint32(&g.weight[idx], math.Float32bits(1))
}

// normalize divides every cell's accumulated value by its accumulated
// weight, falling back to fallback(ex,ey) where no pixel contributed
// (§4.G: "if weight is zero, fall back to the unadjusted image value").
func (g *channelGrid) normalize(fallback func(ex, ey int) float32) {
	for ey := 0; ey < g.height; ey++ {
		for ex := 0; ex < g.width; ex++ {
			idx := ey*g.width + ex
			w := math.Float32frombits(atomic.LoadUint32(&g.weight[idx]))
			if w > 0 {
				v := math.Float32frombits(atomic.LoadUint32(&g.value[idx]))
				atomic.StoreUint32(&g.value[idx], math.Float32bits(v/w))
			} else {
				atomic.StoreUint32(&g.value[idx], math.Float32bits(fallback(ex, ey)))
			}
		}
	}
}

func (g *channelGrid) at(ex, ey int) float32 {
	idx, ok := g.index(ex, ey)
	if !ok {
		return 0
	}
	return math.Float32frombits(atomic.LoadUint32(&g.value[idx]))
}

func atomicAddFloat32(addr *uint32, delta float32) {
	for {
		old := atomic.LoadUint32(addr)
		next := math.Float32frombits(old) + delta
		if atomic.CompareAndSwapUint32(addr, old, math.Float32bits(next)) {
			return
		}
	}
}

// Result is one analyzer output (§3 "Analyzer result"): three
// independently-scaled per-channel grids plus a shared known-pixels
// bitmap, fingerprinted by the caller on (image id, transform params,
// screen id, mode) for lookup via the tile cache (component I).
type Result struct {
	Geometry         Geometry
	Mode             Mode
	OriginX, OriginY float64 // screen-space coordinate of channel grid entry (0,0)

	red, green, blue *channelGrid

	knownWidth, knownHeight int
	known                   []uint64 // atomic-OR packed known-pixels bitmap, at unit (unscaled) resolution
}

func newResult(geom Geometry, mode Mode, originX, originY float64, scrWidth, scrHeight float64) *Result {
	redW, redH := geom.gridSize(0, scrWidth, scrHeight)
	greenW, greenH := geom.gridSize(1, scrWidth, scrHeight)
	blueW, blueH := geom.gridSize(2, scrWidth, scrHeight)
	knownW, knownH := int(math.Ceil(scrWidth))+1, int(math.Ceil(scrHeight))+1
	if knownW < 1 {
		knownW = 1
	}
	if knownH < 1 {
		knownH = 1
	}
	return &Result{
		Geometry: geom, Mode: mode,
		OriginX: originX, OriginY: originY,
		red:   newChannelGrid(redW, redH),
		green: newChannelGrid(greenW, greenH),
		blue:  newChannelGrid(blueW, blueH),
		knownWidth: knownW, knownHeight: knownH,
		known: make([]uint64, (knownW*knownH+63)/64),
	}
}

func (g Geometry) gridSize(ch int, scrWidth, scrHeight float64) (int, int) {
	w := int(math.Ceil(scrWidth*g.ScaleX[ch])) + 1
	h := int(math.Ceil(scrHeight*g.ScaleY[ch])) + 1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (r *Result) markKnown(ex, ey int) {
	if ex < 0 || ey < 0 || ex >= r.knownWidth || ey >= r.knownHeight {
		return
	}
	bit := ey*r.knownWidth + ex
	w, b := bit/64, uint(bit%64)
	mask := uint64(1) << b
	for {
		old := atomic.LoadUint64(&r.known[w])
		if old&mask != 0 {
			return
		}
		if atomic.CompareAndSwapUint64(&r.known[w], old, old|mask) {
			return
		}
	}
}

// KnownAt reports whether the entry at unscaled screen-space (ex,ey)
// relative to the result's origin had at least one contributing sample.
func (r *Result) KnownAt(ex, ey int) bool {
	if ex < 0 || ey < 0 || ex >= r.knownWidth || ey >= r.knownHeight {
		return false
	}
	bit := ey*r.knownWidth + ex
	w, b := bit/64, uint(bit%64)
	return atomic.LoadUint64(&r.known[w])&(uint64(1)<<b) != 0
}

// Dimensions returns the size, in unscaled screen-space cells, of the
// known_pixels bitmap KnownAt indexes into — the extent a caller like
// package stitch needs to bound an overlap search.
func (r *Result) Dimensions() (width, height int) {
	return r.knownWidth, r.knownHeight
}

// ValueAt returns the raw grid cell for channel (0=red,1=green,2=blue)
// at that channel's own entry-grid index.
func (r *Result) ValueAt(channel, ex, ey int) float32 {
	switch channel {
	case 0:
		return r.red.at(ex, ey)
	case 1:
		return r.green.at(ex, ey)
	default:
		return r.blue.at(ex, ey)
	}
}

// RGBAt returns the three channel grids sampled at the same screen-space
// point, each through its own scale (so Dufay's doubled red resolution
// is honored automatically).
func (r *Result) RGBAt(scrX, scrY float64) colorscreen.Rgb {
	return colorscreen.Rgb{
		Red:   r.channelNearest(0, scrX, scrY),
		Green: r.channelNearest(1, scrX, scrY),
		Blue:  r.channelNearest(2, scrX, scrY),
	}
}

func (r *Result) channelGrid(channel int) *channelGrid {
	switch channel {
	case 0:
		return r.red
	case 1:
		return r.green
	default:
		return r.blue
	}
}

func (r *Result) channelNearest(channel int, scrX, scrY float64) float32 {
	g := r.channelGrid(channel)
	ex := int((scrX - r.OriginX) * r.Geometry.ScaleX[channel])
	ey := int((scrY - r.OriginY) * r.Geometry.ScaleY[channel])
	return g.at(ex, ey)
}

// BicubicInterpolate samples a smoothly interpolated color at scrX,scrY
// (§4.G contract: "sampling a cell ... returns a smoothly
// bicubic-interpolated value"). patchProportions narrows the red
// channel's sample footprint for Dufay-style sub-pixel strips (§4.D
// PatchProportions); pass (1,1,1) for mosaic screens.
func (r *Result) BicubicInterpolate(scrX, scrY float64, patchR, patchG, patchB float64) colorscreen.Rgb {
	return colorscreen.Rgb{
		Red:   r.bicubicChannel(0, scrX, scrY, patchR),
		Green: r.bicubicChannel(1, scrX, scrY, patchG),
		Blue:  r.bicubicChannel(2, scrX, scrY, patchB),
	}
}

func (r *Result) bicubicChannel(channel int, scrX, scrY, proportion float64) float32 {
	g := r.channelGrid(channel)
	if proportion <= 0 {
		proportion = 1
	}
	// A narrower element footprint means samples further into the
	// neighbor's territory get less weight; approximate this by
	// shrinking the fractional offset toward the nearest integer cell.
	fx := (scrX-r.OriginX)*r.Geometry.ScaleX[channel] - 0.5
	fy := (scrY-r.OriginY)*r.Geometry.ScaleY[channel] - 0.5
	ix, iy := floorInt(fx), floorInt(fy)
	tx, ty := fx-float64(ix), fy-float64(iy)
	tx *= proportion
	ty *= proportion

	var vals [4][4]float64
	for j := -1; j <= 2; j++ {
		for i := -1; i <= 2; i++ {
			vals[j+1][i+1] = float64(g.at(ix+i, iy+j))
		}
	}
	return float32(colorscreen.BicubicSample2D(vals, tx, ty))
}

// Percentile returns the channel's low-th and high-th percentile cell
// values (e.g. 3 and 97), for display normalization (§4.G ancillary).
// Every cell of the channel grid is counted; the known-pixels bitmap is
// not consulted.
func (r *Result) Percentile(channel int, low, high float64) (lowVal, highVal float32) {
	g := r.channelGrid(channel)
	values := make([]float32, 0, g.width*g.height)
	for ey := 0; ey < g.height; ey++ {
		for ex := 0; ex < g.width; ex++ {
			values = append(values, g.at(ex, ey))
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return percentileOf(values, low), percentileOf(values, high)
}

func percentileOf(sorted []float32, p float64) float32 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + float32(frac)*(sorted[hi]-sorted[lo])
}

// CompareContrastDrift compares this result against another over their
// overlapping cell range and returns the mean absolute difference of
// their green-channel cells (red and blue are not compared), used to flag
// contrast drift between stitched tiles (§4.G ancillary).
func (r *Result) CompareContrastDrift(other *Result) float64 {
	w := minInt(r.green.width, other.green.width)
	h := minInt(r.green.height, other.green.height)
	if w == 0 || h == 0 {
		return 0
	}
	var sum float64
	var count int
	for ey := 0; ey < h; ey++ {
		for ex := 0; ex < w; ex++ {
			a := r.green.at(ex, ey)
			b := other.green.at(ex, ey)
			sum += math.Abs(float64(a - b))
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
