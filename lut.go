package colorscreen

import "sync"

// GammaLUT maps a raw scanner value in [0, MaxInput] to a linear float32 in
// [0,1], built once per (MaxInput, Gamma, GrayMin, GrayMax) key and shared by
// every Image and renderer that asks for it (§4.A, §4.B).
//
// GammaLUT is immutable after construction; callers never mutate Table.
type GammaLUT struct {
	MaxInput        int
	Gamma           float64
	GrayMin, GrayMax int

	// Table holds MaxInput+1 entries, Table[raw] = linear value.
	Table []float32
}

// gammaLUTKey identifies a LUT in the process-wide cache.
type gammaLUTKey struct {
	maxInput         int
	gamma            float64
	grayMin, grayMax int
}

type gammaLUTCache struct {
	mu      sync.Mutex
	entries map[gammaLUTKey]*GammaLUT
}

var lutCache = &gammaLUTCache{entries: make(map[gammaLUTKey]*GammaLUT)}

// GetGammaLUT returns the shared GammaLUT for the given key, building it if
// this is the first request. Rule: tables are only rebuilt when the key
// changes; otherwise the existing table is borrowed (property 5, §8).
//
// If grayMin > grayMax the safe fallback curve (the full [0, maxInput]
// range with the requested gamma, no contrast stretch) is substituted
// rather than rejecting the call; callers
// that need to reject this precondition do so at a higher level (see
// render.Parameters.Validate).
func GetGammaLUT(maxInput int, gamma float64, grayMin, grayMax int) *GammaLUT {
	if grayMin > grayMax {
		grayMin, grayMax = 0, maxInput
	}
	key := gammaLUTKey{maxInput, gamma, grayMin, grayMax}

	lutCache.mu.Lock()
	defer lutCache.mu.Unlock()

	if lut, ok := lutCache.entries[key]; ok {
		return lut
	}

	lut := buildGammaLUT(maxInput, gamma, grayMin, grayMax)
	lutCache.entries[key] = lut
	return lut
}

func buildGammaLUT(maxInput int, gamma float64, grayMin, grayMax int) *GammaLUT {
	table := make([]float32, maxInput+1)
	span := grayMax - grayMin
	if span <= 0 {
		span = 1
	}
	for raw := 0; raw <= maxInput; raw++ {
		stretched := float64(raw-grayMin) / float64(span)
		if stretched < 0 {
			stretched = 0
		}
		if stretched > 1 {
			stretched = 1
		}
		table[raw] = GammaToLinear(float32(stretched), gamma)
	}
	return &GammaLUT{
		MaxInput: maxInput,
		Gamma:    gamma,
		GrayMin:  grayMin,
		GrayMax:  grayMax,
		Table:    table,
	}
}

// Linearize maps a raw scanner value to its linear [0,1] equivalent,
// clamping out-of-range input to the table bounds.
func (l *GammaLUT) Linearize(raw int) float32 {
	if raw < 0 {
		raw = 0
	}
	if raw > l.MaxInput {
		raw = l.MaxInput
	}
	return l.Table[raw]
}

// ClearGammaLUTCache drops every cached table. Exposed for tests and for
// long-running hosts that want to bound memory after processing a batch of
// differently-profiled scans.
func ClearGammaLUTCache() {
	lutCache.mu.Lock()
	defer lutCache.mu.Unlock()
	lutCache.entries = make(map[gammaLUTKey]*GammaLUT)
}
