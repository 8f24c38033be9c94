package imagebuf

import (
	"testing"

	"github.com/janhubicka/colorscreen"
)

func TestNewGrayRejectsMismatchedLength(t *testing.T) {
	_, err := NewGray(make([]uint16, 3), 2, 2, 65535, Metadata{})
	if err == nil {
		t.Fatal("expected error for mismatched pixel slice length")
	}
}

func TestLinearizeRoundTripsEndpoints(t *testing.T) {
	pixels := []uint16{0, 65535, 32768, 100}
	img, err := NewGray(pixels, 2, 2, 65535, Metadata{})
	if err != nil {
		t.Fatal(err)
	}
	img.Linearize(1.0) // linear gamma: raw/max == linear value

	if got := img.GetGrayPixel(0, 0); got != 0 {
		t.Errorf("GetGrayPixel(0,0) = %v, want 0", got)
	}
	if got := img.GetGrayPixel(1, 0); got < 0.999 || got > 1.0 {
		t.Errorf("GetGrayPixel(1,0) = %v, want ~1.0", got)
	}
}

func TestContentIDsAreUniqueAndStable(t *testing.T) {
	img1, _ := NewGray(make([]uint16, 4), 2, 2, 255, Metadata{})
	img2, _ := NewGray(make([]uint16, 4), 2, 2, 255, Metadata{})
	if img1.ID() == img2.ID() {
		t.Fatal("distinct images must not share a content id")
	}
	id := img1.ID()
	img1.Linearize(2.2)
	if img1.ID() != id {
		t.Fatal("content id must not change after Linearize")
	}
}

func TestCropRejectsOutOfBounds(t *testing.T) {
	img, _ := NewGray(make([]uint16, 100), 10, 10, 255, Metadata{})
	if err := img.Crop(Rect{X: 5, Y: 5, Width: 10, Height: 10}); err == nil {
		t.Fatal("expected error cropping past image bounds")
	}
	if err := img.Crop(Rect{X: 1, Y: 1, Width: 5, Height: 5}); err != nil {
		t.Fatalf("unexpected error for valid crop: %v", err)
	}
}

func TestGetImgRGBPixelFallsBackToGray(t *testing.T) {
	pixels := make([]uint16, 25)
	for i := range pixels {
		pixels[i] = 32768
	}
	img, err := NewGray(pixels, 5, 5, 65535, Metadata{})
	if err != nil {
		t.Fatal(err)
	}
	img.Linearize(1.0)
	c := img.GetImgRGBPixel(2.5, 2.5)
	if c.Red != c.Green || c.Green != c.Blue {
		t.Errorf("expected gray fallback to replicate channels, got %+v", c)
	}
}

func TestRowPoolReusesBuffers(t *testing.T) {
	p := NewRowPool(4)
	a := p.Get(16)
	a[0] = 1
	p.Put(a)
	b := p.Get(16)
	if b[0] != 0 {
		t.Error("pooled buffer must be cleared before reuse")
	}
}

var _ = colorscreen.ErrInvalidParameters
