package screen

import "testing"

func TestPeriodicity(t *testing.T) {
	tile, err := Build(Dufay, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	for _, pos := range [][2]int{{0, 0}, {5, 5}, {127, 127}, {64, 0}} {
		x, y := pos[0], pos[1]
		m1, a1 := tile.At('r', x, y)
		m2, a2 := tile.At('r', x+TileSize, y+TileSize)
		if m1 != m2 || a1 != a2 {
			t.Errorf("tile not periodic at (%d,%d): (%v,%v) != (%v,%v)", x, y, m1, a1, m2, a2)
		}
	}
}

func TestEmptyTileIsIdentity(t *testing.T) {
	tile := Empty()
	got := tile.ApplyRGB(10, 20, 0.5)
	if got.Red != 0.5 || got.Green != 0.5 || got.Blue != 0.5 {
		t.Errorf("empty tile must act as identity, got %+v", got)
	}
}

func TestBuildUnsupportedType(t *testing.T) {
	_, err := Build(Type(255), 0)
	if err == nil {
		t.Fatal("expected error for unsupported screen type")
	}
}

func TestWithBlurZeroRadiusIsNoop(t *testing.T) {
	base, _ := Build(Paget, 0)
	blurred := WithBlur(base, 0)
	if blurred != base {
		t.Error("zero radius must return the same tile pointer")
	}
}

func TestCacheReturnsSameTileForSameKey(t *testing.T) {
	ClearCache()
	t1, err := GetOrBuild(Finlay, 1.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	t2, err := GetOrBuild(Finlay, 1.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Error("expected cache hit to return the same tile pointer")
	}
}

func TestDufayRedBandIsPureRed(t *testing.T) {
	tile := buildDufay(0.3)
	m, _ := tile.At('r', 0, 0)
	gm, _ := tile.At('g', 0, 0)
	bm, _ := tile.At('b', 0, 0)
	if m != 1 || gm != 0 || bm != 0 {
		t.Errorf("expected pure red at (0,0), got r=%v g=%v b=%v", m, gm, bm)
	}
}
