package render

import (
	"testing"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/imagebuf"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/transform"
)

func flatRGBImage(w, h int, maxRaw uint16, fill uint16) *imagebuf.Image {
	px := make([]uint16, w*h*3)
	for i := range px {
		px[i] = fill
	}
	img, err := imagebuf.NewRGB(px, nil, w, h, maxRaw, imagebuf.Metadata{})
	if err != nil {
		panic(err)
	}
	return img
}

func identityTransform(t *testing.T) *transform.Transform {
	t.Helper()
	p := transform.DefaultParams(screen.Paget, 50, 50, colorscreen.Vec2{X: 1, Y: 0}, colorscreen.Vec2{X: 0, Y: 1})
	tr, err := transform.New(p)
	if err != nil {
		t.Fatalf("transform.New: %v", err)
	}
	return tr
}

func TestRendererOriginalVariantSamplesInRange(t *testing.T) {
	img := flatRGBImage(100, 100, 255, 128)
	tr := identityTransform(t)
	r, err := New(img, tr, nil, nil, Original, DefaultParameters(255, 8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := r.SamplePixelImg(50, 50)
	if c.Red <= 0 || c.Red > 1 || c.Green <= 0 || c.Blue <= 0 {
		t.Fatalf("expected a mid-gray color in (0,1], got %+v", c)
	}
}

func TestRendererRealisticVariantUsesTile(t *testing.T) {
	img := flatRGBImage(100, 100, 255, 200)
	tr := identityTransform(t)
	tile, err := screen.Build(screen.Paget, 0)
	if err != nil {
		t.Fatalf("screen.Build: %v", err)
	}
	params := DefaultParameters(255, 8)
	params.ScreenBlurRadius = 1.0
	r, err := New(img, tr, tile, nil, Realistic, params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.PrecomputeAll(nil); err != nil {
		t.Fatalf("PrecomputeAll: %v", err)
	}
	if r.blurredTile == nil {
		t.Fatal("expected a blurred tile to have been precomputed")
	}
	c := r.SamplePixelImg(50, 50)
	if c.Red < 0 || c.Red > 1 {
		t.Fatalf("sample out of range: %+v", c)
	}
}

func TestRendererPrecomputeAllIsIdempotent(t *testing.T) {
	img := flatRGBImage(50, 50, 255, 100)
	tr := identityTransform(t)
	r, err := New(img, tr, nil, nil, Original, DefaultParameters(255, 8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.PrecomputeAll(nil); err != nil {
		t.Fatalf("first PrecomputeAll: %v", err)
	}
	lut := r.outputLUT
	if err := r.PrecomputeAll(nil); err != nil {
		t.Fatalf("second PrecomputeAll: %v", err)
	}
	if r.outputLUT != lut {
		t.Fatal("expected the same cached LUT pointer across idempotent PrecomputeAll calls")
	}
}

func TestRendererPrecomputeAllRebuildsOnParamChange(t *testing.T) {
	img := flatRGBImage(50, 50, 255, 100)
	tr := identityTransform(t)
	params := DefaultParameters(255, 8)
	r, err := New(img, tr, nil, nil, Original, params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.PrecomputeAll(nil); err != nil {
		t.Fatalf("PrecomputeAll: %v", err)
	}
	r.Params.Gamma = 2.2
	if err := r.PrecomputeAll(nil); err != nil {
		t.Fatalf("PrecomputeAll after change: %v", err)
	}
	if r.lastKey.gamma != 2.2 {
		t.Fatalf("expected cache key to reflect new gamma, got %v", r.lastKey.gamma)
	}
}

func TestDownscaleFillsEveryDestinationPixel(t *testing.T) {
	dst := make([]colorscreen.Rgb, 4*4)
	Downscale(dst, 0, 0, 4, 4, 1.0, func(x, y float64) colorscreen.Rgb {
		return colorscreen.Rgb{Red: float32(x), Green: float32(y), Blue: 1}
	}, nil)
	for i, c := range dst {
		if c.Blue != 1 {
			t.Fatalf("pixel %d: expected blue=1, got %+v", i, c)
		}
	}
}

func TestDownscaleRejectsMismatchedLength(t *testing.T) {
	dst := make([]colorscreen.Rgb, 3)
	Downscale(dst, 0, 0, 4, 4, 1.0, func(x, y float64) colorscreen.Rgb { return colorscreen.Rgb{} }, nil)
	for _, c := range dst {
		if c != (colorscreen.Rgb{}) {
			t.Fatal("expected dst left untouched on length mismatch")
		}
	}
}

func TestRenderTilePaintsNonZeroPixels(t *testing.T) {
	img := flatRGBImage(100, 100, 255, 128)
	tr := identityTransform(t)
	r, err := New(img, tr, nil, nil, Original, DefaultParameters(255, 8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const w, h = 8, 8
	stride := w * 3
	buf := make([]byte, stride*h)
	if err := RenderTile(r, buf, stride, w, h, 10, 10, 1.0, nil); err != nil {
		t.Fatalf("RenderTile: %v", err)
	}
	nonZero := false
	for _, b := range buf {
		if b != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected RenderTile to paint non-zero pixels for a mid-gray scan")
	}
}

func TestRenderTileRejectsShortStride(t *testing.T) {
	img := flatRGBImage(10, 10, 255, 128)
	tr := identityTransform(t)
	r, _ := New(img, tr, nil, nil, Original, DefaultParameters(255, 8))
	buf := make([]byte, 8)
	if err := RenderTile(r, buf, 1, 8, 8, 0, 0, 1.0, nil); err == nil {
		t.Fatal("expected an error for a stride shorter than width*3")
	}
}

func TestBlurRGBPlanePreservesFlatField(t *testing.T) {
	const n = 8
	src := make([]colorscreen.Rgb, n*n)
	for i := range src {
		src[i] = colorscreen.Rgb{Red: 0.5, Green: 0.5, Blue: 0.5}
	}
	out := BlurRGBPlane(src, n, n, 2.0, 2.0)
	for i, c := range out {
		if c.Red < 0.49 || c.Red > 0.51 {
			t.Fatalf("pixel %d: expected a flat field to survive blur unchanged, got %+v", i, c)
		}
	}
}
