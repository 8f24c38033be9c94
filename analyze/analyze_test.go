package analyze

import (
	"testing"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/imagebuf"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/transform"
)

func identityTransform(t *testing.T) *transform.Transform {
	t.Helper()
	p := transform.DefaultParams(screen.Paget, 0, 0,
		colorscreen.Vec2{X: 1, Y: 0}, colorscreen.Vec2{X: 0, Y: 1})
	tr, err := transform.New(p)
	if err != nil {
		t.Fatalf("transform.New failed: %v", err)
	}
	return tr
}

func mosaicPlate(size int, maxRaw uint16) *imagebuf.Image {
	pixels := make([]uint16, size*size*3)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := (y*size + x) * 3
			switch (x + y) % 3 {
			case 0:
				pixels[idx] = maxRaw
			case 1:
				pixels[idx+1] = maxRaw
			default:
				pixels[idx+2] = maxRaw
			}
		}
	}
	img, _ := imagebuf.NewRGB(pixels, nil, size, size, maxRaw, imagebuf.Metadata{})
	return img
}

// With the identity transform every pixel centre lands at the middle of
// its screen cell, which on the Paget tile is a blue-only element: blue
// cells average each pixel's own blue value, and red/green cells have no
// contribution and fall back to the image value at the cell corner. On
// the (x+y)%3 plate each channel is full-scale in exactly one cell of
// three, so every channel averages 1/3.
func TestAnalyzePreciseRGBChannelAveragesOnMosaicPlate(t *testing.T) {
	const size = 30
	img := mosaicPlate(size, 255)
	tr := identityTransform(t)
	tile, err := screen.Build(screen.Paget, 0)
	if err != nil {
		t.Fatalf("screen.Build failed: %v", err)
	}
	geom := TemplateFor("mosaic")
	rect := ScreenRect{X: 0, Y: 0, Width: size, Height: size}

	result, err := Analyze(img, tr, tile, geom, rect, Params{Mode: PreciseRGB})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	checkNearOne := func(channel int) {
		var sum float64
		var count int
		g := result.channelGrid(channel)
		for ey := 0; ey < g.height; ey++ {
			for ex := 0; ex < g.width; ex++ {
				if !result.KnownAt(ex, ey) {
					continue
				}
				sum += float64(g.at(ex, ey))
				count++
			}
		}
		if count == 0 {
			t.Fatalf("channel %d: no known cells", channel)
		}
		avg := sum / float64(count)
		if avg < 0.32 || avg > 0.35 {
			t.Errorf("channel %d average = %v, want 1/3", channel, avg)
		}
	}
	checkNearOne(0)
	checkNearOne(1)
	checkNearOne(2)
}

func TestAnalyzeFastModeProducesSamples(t *testing.T) {
	const size = 20
	img := mosaicPlate(size, 255)
	tr := identityTransform(t)
	tile, err := screen.Build(screen.Paget, 0)
	if err != nil {
		t.Fatalf("screen.Build failed: %v", err)
	}
	geom := TemplateFor("mosaic")
	rect := ScreenRect{X: 0, Y: 0, Width: size, Height: size}

	result, err := Analyze(img, tr, tile, geom, rect, Params{Mode: Fast})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.green.width != size+1 && result.green.width != size {
		t.Errorf("unexpected green grid width %d", result.green.width)
	}
}

func TestAnalyzeRejectsNilInputs(t *testing.T) {
	if _, err := Analyze(nil, nil, nil, TemplateFor("mosaic"), ScreenRect{}, Params{}); err != colorscreen.ErrInvalidParameters {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
}

func TestPercentileMonotonic(t *testing.T) {
	const size = 20
	img := mosaicPlate(size, 255)
	tr := identityTransform(t)
	tile, _ := screen.Build(screen.Paget, 0)
	geom := TemplateFor("mosaic")
	rect := ScreenRect{X: 0, Y: 0, Width: size, Height: size}
	result, err := Analyze(img, tr, tile, geom, rect, Params{Mode: Precise})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	low, high := result.Percentile(1, 3, 97)
	if high < low {
		t.Errorf("expected high percentile >= low, got low=%v high=%v", low, high)
	}
}

func TestCompareContrastDriftZeroForIdenticalResults(t *testing.T) {
	const size = 20
	img := mosaicPlate(size, 255)
	tr := identityTransform(t)
	tile, _ := screen.Build(screen.Paget, 0)
	geom := TemplateFor("mosaic")
	rect := ScreenRect{X: 0, Y: 0, Width: size, Height: size}
	a, err := Analyze(img, tr, tile, geom, rect, Params{Mode: Precise})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	b, err := Analyze(img, tr, tile, geom, rect, Params{Mode: Precise})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if drift := a.CompareContrastDrift(b); drift > 1e-6 {
		t.Errorf("expected zero drift between identical analyses, got %v", drift)
	}
}
