// Package tilecache provides the bounded, refcounted LRU cache of
// analyzer results that sits between a screen detector and a renderer
// (§4.I). Entries are keyed by the full fingerprint that determines an
// analyzer's content: image, gray-data pass, screen, gamma, mode, mesh
// and transform parameters, and whether it tracks RGB or luma channels.
// A get/release discipline pins entries while referenced; eviction only
// ever touches unpinned entries, oldest first.
package tilecache
