package tilecache

import (
	"github.com/janhubicka/colorscreen/analyze"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/transform"
)

// Key is the content fingerprint §4.I maps to a cached analyzer result:
// "(image_id, graydata_id, screen_id, gamma, mode, mesh_id,
// transform_params, rgb_or_luma)". Every field is a comparable value so
// Key itself is usable directly as a map key.
type Key struct {
	ImageID    uint64
	GrayDataID uint64
	ScreenID   uint64
	Gamma      float64
	Mode       analyze.Mode
	MeshID     uint64 // 0 if the transform carries no deformation mesh

	// The remaining fields are transform.Params flattened out so Key stays
	// a plain comparable struct (transform.Params itself is comparable,
	// but flattening keeps the cache key's shape legible and stable if a
	// field is ever added to Params for reasons unrelated to analyzer
	// content, e.g. a debug-only annotation).
	ScreenType                     screen.Type
	CenterX, CenterY               float64
	Coord1X, Coord1Y               float64
	Coord2X, Coord2Y               float64
	TiltXX, TiltXY, TiltYX, TiltYY float64
	K1                             float64
	StripWidth                     float64

	RGBOrLuma bool // true = RGB channels tracked, false = luma only
}

// NewKey builds a Key from the raw content ids plus a transform, the
// shape every tilecache caller assembles before calling Cache.Get.
func NewKey(imageID, grayDataID, screenID uint64, gamma float64, mode analyze.Mode, tr *transform.Transform, rgbOrLuma bool) Key {
	p := tr.Params()
	var meshID uint64
	if p.Mesh != nil {
		meshID = p.Mesh.ID()
	}
	return Key{
		ImageID: imageID, GrayDataID: grayDataID, ScreenID: screenID,
		Gamma: gamma, Mode: mode, MeshID: meshID,
		ScreenType: p.ScreenType,
		CenterX:    p.CenterX, CenterY: p.CenterY,
		Coord1X: p.Coordinate1.X, Coord1Y: p.Coordinate1.Y,
		Coord2X: p.Coordinate2.X, Coord2Y: p.Coordinate2.Y,
		TiltXX: p.TiltXX, TiltXY: p.TiltXY, TiltYX: p.TiltYX, TiltYY: p.TiltYY,
		K1:         p.K1,
		StripWidth: p.StripWidth,
		RGBOrLuma:  rgbOrLuma,
	}
}
