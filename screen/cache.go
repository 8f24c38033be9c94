package screen

import (
	cachepkg "github.com/janhubicka/colorscreen/internal/cache"
)

// Key identifies a unique built tile: screen type, blur radius (quantized
// to avoid float-key fragmentation) and strip width. Screen tiles are
// always fetched through this cache and released by reference (§4.C).
type Key struct {
	Type       Type
	BlurMilli  int // radius * 1000, rounded
	StripMilli int // stripWidth * 1000, rounded
}

// cache is the process-wide screen-tile cache, built on the generic
// soft-limit Cache[K,V] (internal/cache.Cache). Every screen tile is
// fetched through it, and it is shared process-wide behind its own
// internal mutexes.
var cache = cachepkg.New[Key, *Tile](256)

// Get returns the cached tile for key, building and caching it first on a
// miss. The blur/strip fields of key are converted back to float radii
// for Build/WithBlur.
func Get(key Key) (*Tile, error) {
	if t, ok := cache.Get(key); ok {
		return t, nil
	}

	base, err := Build(key.Type, float64(key.StripMilli)/1000)
	if err != nil {
		return nil, err
	}
	tile := WithBlur(base, float64(key.BlurMilli)/1000)
	cache.Set(key, tile)
	return tile, nil
}

// GetOrBuild is a convenience wrapper taking float parameters directly,
// quantizing them into a Key for cache lookup.
func GetOrBuild(t Type, blurRadius, stripWidth float64) (*Tile, error) {
	return Get(Key{
		Type:       t,
		BlurMilli:  int(blurRadius*1000 + 0.5),
		StripMilli: int(stripWidth*1000 + 0.5),
	})
}

// ClearCache empties the process-wide screen-tile cache. Intended for
// tests and long-running hosts that want to reclaim memory between
// unrelated projects.
func ClearCache() { cache.Clear() }

// CacheLen reports how many tiles are currently cached.
func CacheLen() int { return cache.Len() }
