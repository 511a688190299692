// Package raster memoizes rasterized labels and node shapes.
//
// # Overview
//
// Laying out glyphs and filling anti-aliased shapes is the dominant cost of a
// paint. A [Cache] stores one bitmap per content key and replays it with a
// single blit, so repainting a stable viewport costs O(visible items).
//
// Keys identify content, never objects: [NodeKey] combines a style word with a
// label hash and [TextKey] uses the raw label, so two items with identical
// style and label share one bitmap. No canonicalization beyond the key string
// is attempted.
//
// # Scale
//
// Bitmaps are resolution-baked. The cache is synchronized to one render scale
// (device pixel ratio × zoom × supersampling). [Cache.Scale] regenerates every
// entry from its stored factory, which is O(cache size); callers debounce
// rapid zoom changes themselves and never call Scale per frame.
//
// # Styles
//
// Factories resolve fonts and colors through a [Registry]. Referencing a style
// that was never registered fails with [*MissingStyleError]; the cache passes
// that error through unchanged and stores nothing.
//
// A Cache is not safe for concurrent use. It is owned by the render loop.
package raster
