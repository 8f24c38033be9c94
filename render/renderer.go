package render

import (
	"sync"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/analyze"
	"github.com/janhubicka/colorscreen/imagebuf"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/transform"
)

// Variant selects which of the eight sample_pixel_* behaviors (§4.H)
// a Renderer answers.
type Variant uint8

const (
	Original Variant = iota
	PreviewGrid
	Realistic
	Fast
	Interpolated
	Predictive
	Combined
	Diff
)

// Renderer answers the shared sample_pixel_* contract for one variant
// over a borrowed image, transform, screen tile and analyzer result
// (§4.H: "owns a borrowed image, a borrowed/owned screen-to-image
// transform, borrowed screen tile ... render parameters, a precomputed
// gray/LUT table, an output bit depth, and possibly a cached
// saturation-correction matrix per region").
type Renderer struct {
	Image     *imagebuf.Image
	Transform *transform.Transform
	Tile      *screen.Tile    // borrowed; nil valid only for Original/PreviewGrid
	Analyzer  *analyze.Result // borrowed; required by Interpolated/Predictive/Combined/Diff
	Variant   Variant
	Params    Parameters

	mu                 sync.Mutex
	pipeline           pipeline
	outputLUT          *colorscreen.GammaLUT
	blurredTile        []colorscreen.Rgb
	blurredW, blurredH int
	precomputed        bool
	lastKey            precomputeKey
}

type precomputeKey struct {
	imageID          uint64
	grayMin, grayMax int
	gamma            float64
	model            colorscreen.ColorModel
	blurRadius       float64
}

// New constructs a Renderer. tile and analyzer may be nil for variants
// that do not need them.
func New(img *imagebuf.Image, tr *transform.Transform, tile *screen.Tile, analyzer *analyze.Result, variant Variant, params Parameters) (*Renderer, error) {
	if img == nil || tr == nil {
		return nil, colorscreen.ErrInvalidParameters
	}
	return &Renderer{
		Image: img, Transform: tr, Tile: tile, Analyzer: analyzer,
		Variant: variant, Params: params.Validate(),
	}, nil
}

// PrecomputeAll builds the renderer's gray LUT, color pipeline, and (for
// Realistic with a nonzero blur radius) the blurred screen tile. It is
// idempotent and cache-key-checked against the image id and the subset
// of Params that affects precomputed state (§4.H).
func (r *Renderer) PrecomputeAll(progress *colorscreen.ProgressHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := precomputeKey{
		imageID: r.Image.ID(),
		grayMin: r.Params.GrayMin, grayMax: r.Params.GrayMax,
		gamma: r.Params.Gamma, model: r.Params.ColorModel,
		blurRadius: r.Params.ScreenBlurRadius,
	}
	if r.precomputed && key == r.lastKey {
		return nil
	}
	if progress != nil && progress.CancelRequested() {
		return colorscreen.ErrCancelled
	}

	r.outputLUT = colorscreen.GetGammaLUT(int(r.Image.MaxRaw())+1, r.Params.Gamma, r.Params.GrayMin, r.Params.GrayMax)
	r.Image.LinearizeWith(r.outputLUT)
	r.pipeline = buildPipeline(r.Params, r.outputLUT)

	if r.Variant == Realistic && r.Tile != nil && r.Params.ScreenBlurRadius > 0 {
		r.buildBlurredTile()
	} else {
		r.blurredTile = nil
	}

	r.precomputed = true
	r.lastKey = key
	return nil
}

func (r *Renderer) buildBlurredTile() {
	const n = screen.TileSize
	plane := make([]colorscreen.Rgb, n*n)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			plane[iy*n+ix] = r.Tile.ApplyRGB(ix, iy, 1)
		}
	}
	r.blurredTile = BlurRGBPlane(plane, n, n, r.Params.ScreenBlurRadius, r.Params.ScreenBlurRadius)
	r.blurredW, r.blurredH = n, n
}

// PrecomputeImgRange is the range-scoped precompute hook of §4.H; this
// renderer's cached state (gray LUT, blurred tile) is range-independent,
// so it delegates to PrecomputeAll.
func (r *Renderer) PrecomputeImgRange(rect imagebuf.Rect) error {
	return r.PrecomputeAll(nil)
}

func (r *Renderer) ensurePrecomputed() {
	r.mu.Lock()
	done := r.precomputed
	r.mu.Unlock()
	if !done {
		r.PrecomputeAll(nil)
	}
}

// SamplePixelImg samples the renderer's output at image pixel
// coordinates (x,y) (§4.H sample_pixel_img).
func (r *Renderer) SamplePixelImg(x, y float64) colorscreen.Rgb {
	r.ensurePrecomputed()
	switch r.Variant {
	case Original:
		return originalColor(r, x, y)
	case PreviewGrid:
		return previewGridColor(r, x, y)
	case Realistic:
		return r.pipeline.apply(realisticDye(r, x, y))
	case Fast:
		return r.pipeline.apply(fastDye(r, x, y))
	case Interpolated:
		return r.pipeline.apply(interpolatedDye(r, x, y))
	case Predictive:
		return predictiveColor(r, x, y)
	case Combined:
		return r.pipeline.apply(combinedDye(r, x, y))
	case Diff:
		return diffColor(r, x, y)
	default:
		return colorscreen.Rgb{}
	}
}

// SamplePixelScr samples at screen-space coordinates (§4.H
// sample_pixel_scr).
func (r *Renderer) SamplePixelScr(scrX, scrY float64) colorscreen.Rgb {
	img := r.Transform.ToImg(colorscreen.Point{X: scrX, Y: scrY})
	return r.SamplePixelImg(img.X, img.Y)
}

// SamplePixelFinal samples at output-canvas coordinates, accounting for
// the image's active crop (§4.H sample_pixel_final). A stitch project's
// rotation baseline is applied one layer up, in package stitch.
func (r *Renderer) SamplePixelFinal(fx, fy float64) colorscreen.Rgb {
	crop := r.Image.CropRect()
	return r.SamplePixelImg(fx+float64(crop.X), fy+float64(crop.Y))
}

// RenderPixelRGB8 samples and quantizes to 8-bit RGB (§4.H
// render_pixel_* variants).
func (r *Renderer) RenderPixelRGB8(x, y float64) [3]uint8 {
	q := quantize(r.SamplePixelImg(x, y), 8)
	return [3]uint8{uint8(q[0]), uint8(q[1]), uint8(q[2])}
}

// GetColorData downscales the renderer's output into dst (§4.H
// get_color_data), using the shared downscale template.
func (r *Renderer) GetColorData(dst []colorscreen.Rgb, originX, originY float64, dstW, dstH int, pixelSize float64) {
	Downscale(dst, originX, originY, dstW, dstH, pixelSize, r.SamplePixelImg, nil)
}
