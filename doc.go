// Package framecmp compares two simultaneously playing video renditions
// in real time, reporting where and how much they differ.
//
// A Session snapshots a small fixed-resolution raster from each rendition
// whenever its compositor presents a frame, pairs the two capture streams
// into timestamp-aligned frame pairs, and computes perceptual quality
// metrics (PSNR, SSIM, multi-scale SSIM, and a reimplementation of the
// VMAF model) from each pair, throttled to a CPU budget so continuous
// playback never falls behind.
//
// The whole pipeline runs cooperatively on a single scheduling thread:
// capture callbacks, the matcher and metric computation never block, and
// a slow metric pass degrades update frequency rather than playback,
// because rendering always consumes the last known-good result.
//
// Decoding, demuxing, manifest and DRM handling belong to the external
// playback engine, which the core sees only through the capture.Source
// interface.
package framecmp
