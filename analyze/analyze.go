package analyze

import (
	"math"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/imagebuf"
	"github.com/janhubicka/colorscreen/internal/parallel"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/transform"
)

// ScreenRect is a screen-space rectangle to analyze, in lattice-period
// units (the same units as transform.Params.Coordinate1/2).
type ScreenRect struct {
	X, Y, Width, Height float64
}

// Params controls one analysis pass.
type Params struct {
	Mode Mode

	// CollectionThreshold is the minimum screen multiplier a pixel's
	// channel must clear to contribute (§4.G); DefaultCollectionThreshold
	// is used when zero.
	CollectionThreshold float64

	// Pool parallelizes row accumulation; a private pool sized to
	// GOMAXPROCS is used when nil (§4.G: "parallelized across rows via a
	// work-stealing scheduler").
	Pool *parallel.WorkerPool
}

var channelBytes = [3]byte{'r', 'g', 'b'}

// Analyze runs the §4.G analyzer pipeline over img, restricted to rect
// in screen space, sampling through tr and tile.
func Analyze(img *imagebuf.Image, tr *transform.Transform, tile *screen.Tile, geom Geometry, rect ScreenRect, p Params) (*Result, error) {
	if img == nil || tr == nil || tile == nil {
		return nil, colorscreen.ErrInvalidParameters
	}
	threshold := p.CollectionThreshold
	if threshold <= 0 {
		threshold = DefaultCollectionThreshold
	}

	result := newResult(geom, p.Mode, rect.X, rect.Y, rect.Width, rect.Height)

	imgRange := tr.GetRange(rect.X, rect.Y, rect.Width, rect.Height)
	minX, minY := imgRange.XShift, imgRange.YShift
	maxX, maxY := minX+imgRange.Width, minY+imgRange.Height
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > img.Width() {
		maxX = img.Width()
	}
	if maxY > img.Height() {
		maxY = img.Height()
	}
	if maxX <= minX || maxY <= minY {
		normalizeFallback(result, tr, img, p.Mode, rect)
		return result, nil
	}

	if p.Mode == Fast {
		runFast(result, tr, img, geom)
		normalizeFallback(result, tr, img, p.Mode, rect)
		return result, nil
	}

	pool := p.Pool
	ownPool := false
	if pool == nil {
		pool = parallel.NewWorkerPool(0)
		ownPool = true
	}
	if ownPool {
		defer pool.Close()
	}

	rows := maxY - minY
	work := make([]func(), rows)
	for i := 0; i < rows; i++ {
		y := minY + i
		work[i] = func() {
			analyzeRow(result, tr, tile, img, geom, rect, threshold, p.Mode, y, minX, maxX)
		}
	}
	pool.ExecuteAll(work)

	normalizeFallback(result, tr, img, p.Mode, rect)
	return result, nil
}

func analyzeRow(result *Result, tr *transform.Transform, tile *screen.Tile, img *imagebuf.Image, geom Geometry, rect ScreenRect, threshold float64, mode Mode, y, minX, maxX int) {
	for x := minX; x < maxX; x++ {
		scr := tr.ToScr(colorscreen.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5})
		if scr.X < rect.X || scr.Y < rect.Y || scr.X >= rect.X+rect.Width || scr.Y >= rect.Y+rect.Height {
			continue
		}

		fracX := scr.X - math.Floor(scr.X)
		fracY := scr.Y - math.Floor(scr.Y)
		tileIx := int(fracX * screen.TileSize)
		tileIy := int(fracY * screen.TileSize)

		knownEx := floorInt(scr.X - rect.X)
		knownEy := floorInt(scr.Y - rect.Y)
		markedKnown := false

		for ch := 0; ch < 3; ch++ {
			mult, _ := tile.At(channelBytes[ch], tileIx, tileIy)
			if float64(mult) <= threshold {
				continue
			}
			weight := mult
			value := sampleValue(img, x, y, mode, ch)
			ex, ey := geom.entryCoord(ch, scr.X-rect.X, scr.Y-rect.Y)
			result.channelGrid(ch).addAtomic(ex, ey, weight*value, weight)
			if !markedKnown {
				result.markKnown(knownEx, knownEy)
				markedKnown = true
			}
		}
	}
}

func runFast(result *Result, tr *transform.Transform, img *imagebuf.Image, geom Geometry) {
	for ch := 0; ch < 3; ch++ {
		g := result.channelGrid(ch)
		for ey := 0; ey < g.height; ey++ {
			for ex := 0; ex < g.width; ex++ {
				sx := (float64(ex)+0.5)/geom.ScaleX[ch] + result.OriginX
				sy := (float64(ey)+0.5)/geom.ScaleY[ch] + result.OriginY
				imgPt := tr.ToImg(colorscreen.Point{X: sx, Y: sy})
				ix, iy := int(math.Round(imgPt.X)), int(math.Round(imgPt.Y))
				if ix < 0 || iy < 0 || ix >= img.Width() || iy >= img.Height() {
					continue
				}
				value := sampleValue(img, ix, iy, Fast, ch)
				g.setSample(ex, ey, value)
				result.markKnown(floorInt(sx-result.OriginX), floorInt(sy-result.OriginY))
			}
		}
	}
}

// normalizeFallback divides every cell by its accumulated weight,
// falling back to the unadjusted image value at that screen point where
// no pixel contributed (§4.G).
func normalizeFallback(result *Result, tr *transform.Transform, img *imagebuf.Image, mode Mode, rect ScreenRect) {
	for ch := 0; ch < 3; ch++ {
		channel := ch
		g := result.channelGrid(ch)
		g.normalize(func(ex, ey int) float32 {
			sx := float64(ex)/result.Geometry.ScaleX[channel] + rect.X
			sy := float64(ey)/result.Geometry.ScaleY[channel] + rect.Y
			imgPt := tr.ToImg(colorscreen.Point{X: sx, Y: sy})
			ix, iy := int(math.Round(imgPt.X)), int(math.Round(imgPt.Y))
			if ix < 0 || iy < 0 || ix >= img.Width() || iy >= img.Height() {
				return 0
			}
			return sampleValue(img, ix, iy, mode, channel)
		})
	}
}

// sampleValue returns the contribution value for channel at (x,y): the
// Rec. 709 luminance in Fast/Precise modes, the matching RGB component
// in PreciseRGB/Color modes (§4.G: "identical to Precise but
// accumulates the full RGB triple").
func sampleValue(img *imagebuf.Image, x, y int, mode Mode, channel int) float32 {
	if img.HasRGB() {
		rgb := img.GetRGBPixel(x, y)
		switch mode {
		case PreciseRGB, Color:
			switch channel {
			case 0:
				return rgb.Red
			case 1:
				return rgb.Green
			default:
				return rgb.Blue
			}
		default:
			return rgb.Luminance()
		}
	}
	return img.GetGrayPixel(x, y)
}
