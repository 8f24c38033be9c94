package colorscreen

import "testing"

func TestColorModelNameRoundTrip(t *testing.T) {
	for m := ColorModelNone; m <= ColorModelAutochrome2; m++ {
		name := m.String()
		if got := ColorModelByName(name); got != m {
			t.Errorf("ColorModelByName(%q) = %v, want %v", name, got, m)
		}
	}
}

func TestColorModelByNameUnknownFallsBackToNone(t *testing.T) {
	if got := ColorModelByName("not-a-model"); got != ColorModelNone {
		t.Errorf("expected ColorModelNone for unknown name, got %v", got)
	}
}

func TestDyeToXYZWhiteHasPositiveLuminance(t *testing.T) {
	white := Rgb{Red: 1, Green: 1, Blue: 1}
	for m := ColorModelNone; m <= ColorModelAutochrome2; m++ {
		xyz := m.DyeToXYZ(white)
		if xyz.Y <= 0 {
			t.Errorf("model %v: DyeToXYZ(white).Y = %v, want > 0", m, xyz.Y)
		}
	}
}
