// Package capture snapshots small fixed-resolution rasters from two live
// video sources, carrying each source's media-timeline timestamp.
//
// Each source is captured independently. When the playback engine exposes
// a per-frame presentation callback, capture is driven by the source's own
// compositor clock and re-arms itself after every frame. When it does not,
// a polling fallback captures on a shared tick, but only while the two
// sources' current times agree closely enough to be treated as synced.
//
// Captured pixel buffers live in a small fixed arena per source and are
// recycled by slot index rather than copied, so a sample is superseded,
// never mutated, by the next capture from the same source.
package capture
