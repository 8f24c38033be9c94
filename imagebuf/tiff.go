package imagebuf

import (
	"image"
	"io"

	"golang.org/x/image/tiff"
)

// DecodeTIFF reads a decoded grayscale or RGB frame at up to 16
// bits/channel, matching the §6 image-input contract. The returned Image
// is not yet linearized; callers must call Linearize/LinearizeWith before
// sampling.
func DecodeTIFF(r io.Reader, meta Metadata) (*Image, error) {
	m, err := tiff.Decode(r)
	if err != nil {
		return nil, &LoadError{Reason: err.Error()}
	}

	b := m.Bounds()
	width, height := b.Dx(), b.Dy()

	switch src := m.(type) {
	case *image.Gray16:
		gray := make([]uint16, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				gray[y*width+x] = src.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			}
		}
		return NewGray(gray, width, height, 65535, meta)
	default:
		rgb := make([]uint16, width*height*3)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r16, g16, b16, _ := m.At(b.Min.X+x, b.Min.Y+y).RGBA()
				i := (y*width + x) * 3
				rgb[i], rgb[i+1], rgb[i+2] = uint16(r16), uint16(g16), uint16(b16)
			}
		}
		return NewRGB(rgb, nil, width, height, 65535, meta)
	}
}

// LoadError reports a failure to decode an externally supplied image
// (§4.B: LoadFailed(reason)). It is a package-local type with the same
// shape as colorscreen.LoadError, not an alias of it: errors.As with a
// *colorscreen.LoadError target does not match it.
type LoadError struct{ Reason string }

func (e *LoadError) Error() string { return "imagebuf: load failed: " + e.Reason }
