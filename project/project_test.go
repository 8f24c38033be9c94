package project

import (
	"strings"
	"testing"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/solver"
)

func sampleDoc() Document {
	doc := Default(screen.Dufay)
	doc.ScreenShift = colorscreen.Vec2{X: 2.5, Y: -1}
	doc.K1 = 0.01
	doc.Brightness = 1.2
	doc.ControlPoints = []solver.ControlPoint{
		{ImagePoint: colorscreen.Point{X: 10, Y: 20}, ScreenPoint: colorscreen.Point{X: 1, Y: 2}, Tag: solver.TagDetected, Locked: false},
		{ImagePoint: colorscreen.Point{X: 30, Y: 40}, ScreenPoint: colorscreen.Point{X: 3, Y: 4}, Tag: solver.TagUserPlaced, Locked: true},
	}
	doc.StitchTiles = []StitchImageRecord{
		{Filename: "a.tif", Angle: 0, Ratio: 1, Position: colorscreen.Vec2{X: 0, Y: 0}, Size: colorscreen.Vec2{X: 1000, Y: 800}},
		{Filename: "b.tif", Angle: 0.5, Ratio: 1, Position: colorscreen.Vec2{X: 900, Y: 0}, Size: colorscreen.Vec2{X: 1000, Y: 800}},
	}
	return doc
}

func TestCSPRoundTrip(t *testing.T) {
	doc := sampleDoc()
	var buf strings.Builder
	if err := doc.WriteCSP(&buf); err != nil {
		t.Fatalf("WriteCSP: %v", err)
	}

	parsed, err := ParseCSP(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ParseCSP: %v", err)
	}

	var second strings.Builder
	if err := parsed.WriteCSP(&second); err != nil {
		t.Fatalf("WriteCSP (second): %v", err)
	}
	if buf.String() != second.String() {
		t.Fatalf("round trip not byte-identical:\n--- first ---\n%s\n--- second ---\n%s", buf.String(), second.String())
	}

	if parsed.ScreenType != screen.Dufay {
		t.Fatalf("screen_type: got %v", parsed.ScreenType)
	}
	if len(parsed.ControlPoints) != 2 || !parsed.ControlPoints[1].Locked {
		t.Fatalf("control points not round-tripped: %+v", parsed.ControlPoints)
	}
	if len(parsed.StitchTiles) != 2 || parsed.StitchTiles[1].Filename != "b.tif" {
		t.Fatalf("stitch tiles not round-tripped: %+v", parsed.StitchTiles)
	}
}

func TestCSPLegacyScreenTypeAlias(t *testing.T) {
	src := strings.Replace(minimalValidCSP(), "screen_type: Paget\n", "screen_type: PagetFinlay\n", 1)
	doc, err := ParseCSP(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseCSP: %v", err)
	}
	if doc.ScreenType != screen.Finlay {
		t.Fatalf("expected PagetFinlay to alias to Finlay, got %v", doc.ScreenType)
	}
}

func TestCSPLegacyBlurRadiusAlias(t *testing.T) {
	src := strings.Replace(minimalValidCSP(), "scren_blur_radius: 0", "scren_blur_radius: 3.5", 1)
	doc, err := ParseCSP(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseCSP: %v", err)
	}
	if doc.ScreenBlurRadius != 3.5 {
		t.Fatalf("expected scren_blur_radius to populate ScreenBlurRadius, got %v", doc.ScreenBlurRadius)
	}

	src2 := strings.Replace(minimalValidCSP(), "scren_blur_radius: 0", "screen_blur_radius: 3.5", 1)
	doc2, err := ParseCSP(strings.NewReader(src2))
	if err != nil {
		t.Fatalf("ParseCSP (non-misspelled alias): %v", err)
	}
	if doc2.ScreenBlurRadius != 3.5 {
		t.Fatalf("expected screen_blur_radius to populate ScreenBlurRadius, got %v", doc2.ScreenBlurRadius)
	}

	var buf strings.Builder
	if err := doc.WriteCSP(&buf); err != nil {
		t.Fatalf("WriteCSP: %v", err)
	}
	if !strings.Contains(buf.String(), "scren_blur_radius: 3.5") {
		t.Fatal("expected write to always emit the misspelled keyword")
	}
	if strings.Contains(buf.String(), "\nscreen_blur_radius:") {
		t.Fatal("expected write to never emit the correctly-spelled keyword")
	}
}

func TestCSPRejectsBadHeader(t *testing.T) {
	_, err := ParseCSP(strings.NewReader("screen_alignment_version: 2\n"))
	if err == nil {
		t.Fatal("expected a header mismatch error")
	}
}

func TestCSPRejectsUnknownKeyword(t *testing.T) {
	src := minimalValidCSP() + "bogus_keyword: 1\n"
	_, err := ParseCSP(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected an unknown-keyword error")
	}
}

func TestCSPRejectsWrongFieldCount(t *testing.T) {
	src := strings.Replace(minimalValidCSP(), "screen_shift: 0 0", "screen_shift: 0 0 0", 1)
	_, err := ParseCSP(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected a field-count error for screen_shift with 3 values")
	}
}

func TestCSPRejectsBlankLine(t *testing.T) {
	src := minimalValidCSP() + "\n"
	_, err := ParseCSP(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected strict parsing to reject a blank line")
	}
}

func TestWritePTORequiresTiles(t *testing.T) {
	doc := Default(screen.Paget)
	var buf strings.Builder
	if err := doc.WritePTO(&buf); err == nil {
		t.Fatal("expected WritePTO to reject a document with no stitch tiles")
	}
}

func TestWritePTOEmitsImageLines(t *testing.T) {
	doc := sampleDoc()
	var buf strings.Builder
	if err := doc.WritePTO(&buf); err != nil {
		t.Fatalf("WritePTO: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "n\"a.tif\"") || !strings.Contains(out, "n\"b.tif\"") {
		t.Fatalf("expected an i line per tile, got:\n%s", out)
	}
	if strings.Contains(out, "\r") {
		t.Fatal("expected PTO output to be LF-only")
	}
}

func minimalValidCSP() string {
	var buf strings.Builder
	doc := Default(screen.Paget)
	_ = doc.WriteCSP(&buf)
	return buf.String()
}
