package stitch

import (
	"testing"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/analyze"
	"github.com/janhubicka/colorscreen/imagebuf"
	"github.com/janhubicka/colorscreen/render"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/transform"
)

// flatTile builds a fully analyzed, flat-gray placed tile offset by
// (shiftX,shiftY) screen-space units from the grid origin, so adjacent
// tiles in a test grid can overlap exactly like two neighboring scans.
func flatTile(t *testing.T, path string, row, col int, shiftX, shiftY float64, fill uint16) *PlacedTile {
	t.Helper()
	const w, h = 120, 120
	px := make([]uint16, w*h*3)
	for i := range px {
		px[i] = fill
	}
	img, err := imagebuf.NewRGB(px, nil, w, h, 255, imagebuf.Metadata{})
	if err != nil {
		t.Fatalf("NewRGB: %v", err)
	}

	p := transform.DefaultParams(screen.Paget, 60+shiftX, 60+shiftY, colorscreen.Vec2{X: 1, Y: 0}, colorscreen.Vec2{X: 0, Y: 1})
	tr, err := transform.New(p)
	if err != nil {
		t.Fatalf("transform.New: %v", err)
	}

	tile, err := screen.Build(screen.Paget, 0)
	if err != nil {
		t.Fatalf("screen.Build: %v", err)
	}

	geom := analyze.TemplateFor("mosaic")
	rect := analyze.ScreenRect{X: shiftX, Y: shiftY, Width: 100, Height: 100}
	result, err := analyze.Analyze(img, tr, tile, geom, rect, analyze.Params{Mode: analyze.Fast})
	if err != nil {
		t.Fatalf("analyze.Analyze: %v", err)
	}

	return &PlacedTile{
		Spec:       TileSpec{Path: path, Row: row, Col: col},
		Image:      img,
		Transform:  tr,
		ScreenTile: tile,
		Analyzer:   result,
	}
}

func testProject(t *testing.T) *Project {
	t.Helper()
	params := DefaultParams(screen.Paget)
	pr, err := NewProject(params, 1, 2, []TileSpec{
		{Path: "a.tif", Row: 0, Col: 0},
		{Path: "b.tif", Row: 0, Col: 1},
	})
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	pr.Tiles[0] = flatTile(t, "a.tif", 0, 0, 0, 0, 150)
	pr.Tiles[1] = flatTile(t, "b.tif", 0, 1, 80, 0, 150)
	return pr
}

func TestFindBestMatchLocatesKnownShift(t *testing.T) {
	pr := testProject(t)
	m, err := FindBestMatch(pr.Tiles[0], pr.Tiles[1], Right, pr.Params)
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if m.DX <= 0 {
		t.Fatalf("expected a positive horizontal shift, got %+v", m)
	}
}

func TestProjectAnalyzeAllRejectsRotationMismatch(t *testing.T) {
	pr := testProject(t)

	goodTransform := pr.Tiles[0].Transform
	goodTile := pr.Tiles[0].ScreenTile
	goodResult := pr.Tiles[0].Analyzer

	bad := transform.DefaultParams(screen.Paget, 60, 60, colorscreen.Vec2{X: 1, Y: 0}, colorscreen.Vec2{X: 0, Y: 1})
	bad.TiltXX, bad.TiltXY, bad.TiltYX, bad.TiltYY = 0.9, -0.4, 0.4, 0.9
	badTransform, err := transform.New(bad)
	if err != nil {
		t.Fatalf("transform.New: %v", err)
	}

	calls := 0
	load := func(path string) (*imagebuf.Image, error) { return pr.Tiles[0].Image, nil }
	analyzeFn := func(img *imagebuf.Image) (*transform.Transform, *screen.Tile, *analyze.Result, error) {
		calls++
		if calls == 1 {
			return goodTransform, goodTile, goodResult, nil
		}
		return badTransform, goodTile, goodResult, nil
	}
	if err := pr.AnalyzeAll(load, analyzeFn); err == nil {
		t.Fatal("expected AnalyzeAll to reject a rotation-inconsistent tile")
	}
}

func TestRegisterAllDetectsDiagonalMismatch(t *testing.T) {
	pr, err := NewProject(DefaultParams(screen.Paget), 2, 2, []TileSpec{
		{Row: 0, Col: 0}, {Row: 0, Col: 1},
		{Row: 1, Col: 0}, {Row: 1, Col: 1},
	})
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	pr.Tiles[0] = flatTile(t, "00", 0, 0, 0, 0, 150)
	pr.Tiles[1] = flatTile(t, "01", 0, 1, 80, 0, 150)
	pr.Tiles[2] = flatTile(t, "10", 1, 0, 0, 80, 150)
	pr.Tiles[3] = flatTile(t, "11", 1, 1, 80, 80, 150)

	horizontal, vertical, err := pr.RegisterAll()
	if err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	// Every tile here is a flat uniform field, so FindBestMatch's scoring
	// cannot distinguish candidate offsets and its tie-breaking is
	// deterministic: the diagonal consistency check must hold on an
	// internally consistent grid. Corrupting one leg of the diagonal
	// directly (bypassing FindBestMatch, which content alone can't be
	// made to disagree with itself) must then be caught.
	corrupted := horizontal
	m := corrupted[[2]int{1, 0}]
	m.DX++
	corrupted[[2]int{1, 0}] = m

	if err := checkDiagonals(pr, corrupted, vertical); err == nil {
		t.Fatal("expected a diagonal consistency error after corrupting one match")
	}
}

func TestComputeViewportUnionsPlacedTiles(t *testing.T) {
	pr := testProject(t)
	horizontal, vertical, err := pr.RegisterAll()
	if err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	pr.Place(horizontal, vertical)
	vp := pr.ComputeViewport()
	if vp.Width <= 120 || vp.Height < 100 {
		t.Fatalf("expected a viewport wider than a single tile, got %+v", vp)
	}
}

func rendererFor(t *testing.T, pt *PlacedTile) *render.Renderer {
	t.Helper()
	r, err := render.New(pt.Image, pt.Transform, pt.ScreenTile, pt.Analyzer, render.Original, render.DefaultParameters(255, 8))
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	if err := r.PrecomputeAll(nil); err != nil {
		t.Fatalf("PrecomputeAll: %v", err)
	}
	return r
}

func TestPaintFillsOwnedPixels(t *testing.T) {
	pr := testProject(t)
	horizontal, vertical, err := pr.RegisterAll()
	if err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	pr.Place(horizontal, vertical)
	vp := pr.ComputeViewport()

	renderers := []*render.Renderer{rendererFor(t, pr.Tiles[0]), rendererFor(t, pr.Tiles[1])}
	canvas, err := Paint(pr, renderers, vp)
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}
	var nonZero int
	for _, c := range canvas.Pixels {
		if c.Red > 0 || c.Green > 0 || c.Blue > 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Fatal("expected Paint to fill at least some pixels owned by a tile")
	}
}

func TestPaintRejectsRendererCountMismatch(t *testing.T) {
	pr := testProject(t)
	_, err := Paint(pr, []*render.Renderer{rendererFor(t, pr.Tiles[0])}, Viewport{Width: 10, Height: 10})
	if err == nil {
		t.Fatal("expected an error when renderer count does not match tile count")
	}
}

func TestDiffFlagsExcessiveDivergence(t *testing.T) {
	pr := testProject(t)
	// Replace the second tile with a very different flat fill so its
	// overlap with the first diverges past the default thresholds.
	pr.Tiles[1] = flatTile(t, "b.tif", 0, 1, 80, 0, 250)

	horizontal, vertical, err := pr.RegisterAll()
	if err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	renderers := []*render.Renderer{rendererFor(t, pr.Tiles[0]), rendererFor(t, pr.Tiles[1])}
	_, err = Diff(pr, renderers, horizontal, vertical, nil)
	if err == nil {
		t.Fatal("expected Diff to flag an excessive-divergence overlap")
	}
}

func TestResidencyCacheEvictsUnderBudget(t *testing.T) {
	var evicted []uint64
	c := NewResidencyCache(1, func(k uint64) { evicted = append(evicted, k) })
	c.Acquire(1)
	c.Release(1)
	c.Acquire(2)
	if !c.Resident(2) {
		t.Fatal("expected key 2 to be resident")
	}
	if c.Resident(1) {
		t.Fatal("expected key 1 to have been evicted under a budget of 1")
	}
	if len(evicted) != 1 || evicted[0] != 1 {
		t.Fatalf("expected eviction callback for key 1, got %+v", evicted)
	}
}

func TestResidencyCachePinnedSurvivesPressure(t *testing.T) {
	c := NewResidencyCache(1, nil)
	c.Acquire(1) // pinned, never released
	c.Acquire(2)
	if !c.Resident(1) {
		t.Fatal("expected pinned key 1 to survive eviction pressure")
	}
}
