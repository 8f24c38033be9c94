package imagebuf

import (
	"sync"
	"sync/atomic"

	"github.com/janhubicka/colorscreen"
)

// Common errors for image operations (§4.B failure modes).
var (
	ErrInvalidDimensions = colorscreen.ErrInvalidParameters
)

// Metadata holds the EXIF-style fields §3 names: camera model, lens,
// f-stop, focal length, DPI, pixel pitch, fill factor, plus an optional
// ICC profile.
type Metadata struct {
	Camera      string
	Lens        string
	FStop       float64
	FocalLength float64
	DPI         float64
	PixelPitch  float64
	FillFactor  float64
	ICCProfile  []byte
	Gamma       float64
}

// Rect is an integer crop rectangle in image pixel coordinates.
type Rect struct {
	X, Y, Width, Height int
}

var nextContentID atomic.Uint64

// Image is the owned scanned-plate pixmap (§3 "Image"). It owns a
// grayscale plane, an optional interleaved RGB plane, one linearization
// LUT applied to every channel, metadata, and a stable content id.
//
// An Image is safe for concurrent read access once Linearize has been
// called; Crop and Linearize themselves require the caller to hold the
// only reference (they are not safe to call concurrently with readers).
type Image struct {
	width, height int
	maxRaw        uint16

	gray []uint16 // width*height, row-major; nil if no grayscale plane
	rgb  []uint16 // width*height*3, row-major interleaved; nil if no RGB plane

	meta Metadata
	crop Rect

	id uint64

	lutMu      sync.RWMutex
	linearized bool
	grayLUT    *colorscreen.GammaLUT
}

// NewGray creates an Image owning a single grayscale plane. pixels must
// have length width*height; it is taken by reference, not copied.
func NewGray(pixels []uint16, width, height int, maxRaw uint16, meta Metadata) (*Image, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return nil, colorscreen.ErrInvalidParameters
	}
	img := &Image{
		width: width, height: height, maxRaw: maxRaw,
		gray: pixels, meta: meta,
		crop: Rect{0, 0, width, height},
		id:   nextContentID.Add(1),
	}
	return img, nil
}

// NewRGB creates an Image owning an interleaved RGB plane (3 samples per
// pixel, row-major). An optional grayscale plane may additionally be
// supplied (e.g. a panchromatic channel read alongside a color scan); pass
// nil if none.
func NewRGB(rgbPixels []uint16, grayPixels []uint16, width, height int, maxRaw uint16, meta Metadata) (*Image, error) {
	if width <= 0 || height <= 0 || len(rgbPixels) != width*height*3 {
		return nil, colorscreen.ErrInvalidParameters
	}
	if grayPixels != nil && len(grayPixels) != width*height {
		return nil, colorscreen.ErrInvalidParameters
	}
	img := &Image{
		width: width, height: height, maxRaw: maxRaw,
		gray: grayPixels, rgb: rgbPixels, meta: meta,
		crop: Rect{0, 0, width, height},
		id:   nextContentID.Add(1),
	}
	return img, nil
}

// ID returns the stable content id assigned once at construction. It never
// changes and is the basis for every cache key downstream (§4.B).
func (img *Image) ID() uint64 { return img.id }

// Width and Height return the image dimensions in pixels.
func (img *Image) Width() int  { return img.width }
func (img *Image) Height() int { return img.height }

// MaxRaw returns the maximum raw sample value (e.g. 65535 for full 16-bit,
// or a smaller value if the scanner's ADC has fewer effective bits).
func (img *Image) MaxRaw() uint16 { return img.maxRaw }

// Metadata returns the image's metadata record.
func (img *Image) Metadata() Metadata { return img.meta }

// HasRGB reports whether an interleaved RGB plane is present.
func (img *Image) HasRGB() bool { return img.rgb != nil }

// HasGray reports whether a grayscale plane is present.
func (img *Image) HasGray() bool { return img.gray != nil }

// CropRect returns the currently active crop rectangle, in original-image
// pixel coordinates.
func (img *Image) CropRect() Rect { return img.crop }

// Crop records the given rectangle, which must lie within the original
// bounds, as the active crop (see CropRect). Crop does not copy pixel
// data, and the pixel accessors keep taking full-image coordinates: they
// are not restricted to the crop rectangle.
func (img *Image) Crop(r Rect) error {
	if r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0 {
		return colorscreen.ErrInvalidParameters
	}
	if r.X+r.Width > img.width || r.Y+r.Height > img.height {
		return colorscreen.ErrInvalidParameters
	}
	img.crop = r
	return nil
}

// rawGray returns the raw grayscale sample at (x,y) in full-image
// coordinates, or 0 if there is no grayscale plane or the point is
// out of bounds.
func (img *Image) rawGray(x, y int) uint16 {
	if img.gray == nil || x < 0 || y < 0 || x >= img.width || y >= img.height {
		return 0
	}
	return img.gray[y*img.width+x]
}

// rawRGB returns the raw (r,g,b) sample at (x,y), falling back to the
// grayscale plane replicated across channels if there is no RGB plane.
func (img *Image) rawRGB(x, y int) (r, g, b uint16) {
	if x < 0 || y < 0 || x >= img.width || y >= img.height {
		return 0, 0, 0
	}
	if img.rgb != nil {
		i := (y*img.width + x) * 3
		return img.rgb[i], img.rgb[i+1], img.rgb[i+2]
	}
	v := img.rawGray(x, y)
	return v, v, v
}

// Linearize populates the raw→linear[0,1] lookup table (§4.B). A single
// table is used for the gray plane and all three RGB channels; there is
// no separate table per channel.
// gamma selects a simple power-law curve; callers wanting an sRGB or ICC
// transfer function should build the corresponding colorscreen.GammaLUT
// externally and call LinearizeWith instead. Must be called before any
// sampling request; see GetGrayPixel/GetRGBPixel.
func (img *Image) Linearize(gamma float64) {
	grayMax, grayMin := int(img.maxRaw), 0
	lut := colorscreen.GetGammaLUT(int(img.maxRaw)+1, gamma, grayMin, grayMax)
	img.LinearizeWith(lut)
}

// LinearizeWith installs a pre-built lookup table, e.g. one shared via
// colorscreen.GetGammaLUT (testable property 5: "two renderers built over
// the same (image_id, gamma, gray_range) share the same LUT pointer").
func (img *Image) LinearizeWith(lut *colorscreen.GammaLUT) {
	img.lutMu.Lock()
	img.grayLUT = lut
	img.linearized = true
	img.lutMu.Unlock()
}

// Linearized reports whether Linearize/LinearizeWith has been called.
func (img *Image) Linearized() bool {
	img.lutMu.RLock()
	defer img.lutMu.RUnlock()
	return img.linearized
}

func (img *Image) linearize(raw uint16) float32 {
	img.lutMu.RLock()
	lut := img.grayLUT
	img.lutMu.RUnlock()
	if lut == nil {
		if img.maxRaw == 0 {
			return 0
		}
		return float32(raw) / float32(img.maxRaw)
	}
	return lut.Linearize(int(raw))
}

// GetGrayPixel returns the linearized grayscale sample at integer
// coordinates (x,y), or 0 if out of bounds.
func (img *Image) GetGrayPixel(x, y int) float32 {
	return img.linearize(img.rawGray(x, y))
}

// GetRGBPixel returns the linearized RGB sample at integer coordinates
// (x,y) if an RGB plane is present, or the grayscale value replicated
// across channels otherwise.
func (img *Image) GetRGBPixel(x, y int) colorscreen.Rgb {
	r, g, b := img.rawRGB(x, y)
	return colorscreen.Rgb{
		Red:   img.linearize(r),
		Green: img.linearize(g),
		Blue:  img.linearize(b),
	}
}

// GetImgRGBPixel samples the RGB plane at a fractional image coordinate
// using bicubic interpolation over its 4x4 neighborhood, per §4.B ("if
// present, get_img_rgb_pixel uses bicubic interpolation ... if absent the
// grayscale plane is used").
func (img *Image) GetImgRGBPixel(x, y float64) colorscreen.Rgb {
	ix, iy := int(x), int(y)
	tx, ty := x-float64(ix), y-float64(iy)

	var rv, gv, bv [4][4]float64
	for row := -1; row <= 2; row++ {
		for col := -1; col <= 2; col++ {
			c := img.GetRGBPixel(ix+col, iy+row)
			rv[row+1][col+1] = float64(c.Red)
			gv[row+1][col+1] = float64(c.Green)
			bv[row+1][col+1] = float64(c.Blue)
		}
	}
	return colorscreen.Rgb{
		Red:   float32(colorscreen.BicubicSample2D(rv, tx, ty)),
		Green: float32(colorscreen.BicubicSample2D(gv, tx, ty)),
		Blue:  float32(colorscreen.BicubicSample2D(bv, tx, ty)),
	}
}
