package detect

import (
	"testing"

	"github.com/janhubicka/colorscreen"
)

func syntheticPlate(width, height, period int) func(x, y int) colorscreen.Rgb {
	red := colorscreen.Rgb{Red: 1, Green: 0, Blue: 0}
	green := colorscreen.Rgb{Red: 0, Green: 1, Blue: 0}
	blue := colorscreen.Rgb{Red: 0, Green: 0, Blue: 1}
	return func(x, y int) colorscreen.Rgb {
		switch (x/period + y/period) % 3 {
		case 0:
			return red
		case 1:
			return green
		default:
			return blue
		}
	}
}

func TestClassifyPerfectPatches(t *testing.T) {
	getPixel := syntheticPlate(64, 64, 8)
	p := DefaultParameters()
	p.Red = colorscreen.Rgb{Red: 1, Green: 0, Blue: 0}
	p.Green = colorscreen.Rgb{Red: 0, Green: 1, Blue: 0}
	p.Blue = colorscreen.Rgb{Red: 0, Green: 0, Blue: 1}
	p.Black = colorscreen.Rgb{Red: 0, Green: 0, Blue: 0}

	classes := Classify(64, 64, getPixel, p)
	// A pixel keeps its patch class only when every in-bounds 3x3
	// neighbor shares it, so the one-pixel rim of each 8x8 patch next to
	// a differently colored patch is Unknown.
	classAt := func(x, y int) Class {
		return [3]Class{ClassRed, ClassGreen, ClassBlue}[(x/8+y/8)%3]
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			want := classAt(x, y)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx >= 0 && ny >= 0 && nx < 64 && ny < 64 && classAt(nx, ny) != classAt(x, y) {
						want = Unknown
					}
				}
			}
			if got := classes[y*64+x]; got != want {
				t.Fatalf("pixel (%d,%d) classified %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestFloodFillRejectsSmallComponents(t *testing.T) {
	classes := make([]Class, 10*10)
	classes[5*10+5] = ClassRed // single isolated pixel
	patches := FloodFill(classes, 10, 10, 0, 0, 5)
	if len(patches) != 0 {
		t.Errorf("expected isolated single-pixel component to be rejected, got %d patches", len(patches))
	}
}

func TestFloodFillFindsLargeComponent(t *testing.T) {
	classes := make([]Class, 20*20)
	for y := 2; y < 8; y++ {
		for x := 2; x < 8; x++ {
			classes[y*20+x] = ClassGreen
		}
	}
	patches := FloodFill(classes, 20, 20, 0, 0, 5)
	if len(patches) != 1 {
		t.Fatalf("expected exactly one patch, got %d", len(patches))
	}
	if patches[0].PixelCount != 36 {
		t.Errorf("expected 36 pixels, got %d", patches[0].PixelCount)
	}
	wantCX, wantCY := 4.5, 4.5
	if patches[0].CentroidX != wantCX || patches[0].CentroidY != wantCY {
		t.Errorf("centroid = (%v,%v), want (%v,%v)", patches[0].CentroidX, patches[0].CentroidY, wantCX, wantCY)
	}
}

func TestDetectOnSyntheticPlate(t *testing.T) {
	getPixel := syntheticPlate(512, 512, 16)
	p := DefaultParameters()
	p.Red = colorscreen.Rgb{Red: 1, Green: 0, Blue: 0}
	p.Green = colorscreen.Rgb{Red: 0, Green: 1, Blue: 0}
	p.Blue = colorscreen.Rgb{Red: 0, Green: 0, Blue: 1}
	p.Black = colorscreen.Rgb{Red: 0, Green: 0, Blue: 0}

	screen, err := Detect(512, 512, getPixel, p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(screen.Patches) == 0 {
		t.Fatal("expected patches on a synthetic plate")
	}
	// The 3x3 agreement rule leaves each 16x16 patch's rim unclassified
	// except along the image border: 32*14+2 = 450 of the 512 columns
	// (and rows) keep their class, so 450*450 pixels are covered.
	if got, want := screen.PatchBitmap.Count(), 450*450; got != want {
		t.Errorf("patch bitmap covers %d pixels on a perfect synthetic plate, want %d", got, want)
	}
}

func TestDetectNoPatchesFound(t *testing.T) {
	getPixel := func(x, y int) colorscreen.Rgb { return colorscreen.Rgb{} }
	p := DefaultParameters()
	p.Black = colorscreen.Rgb{}
	_, err := Detect(32, 32, getPixel, p, nil)
	if err != colorscreen.ErrNoPatchesFound {
		t.Fatalf("expected ErrNoPatchesFound, got %v", err)
	}
}
