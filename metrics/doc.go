// Package metrics implements the per-pair picture quality metrics used by
// the comparison core: PSNR, SSIM and multi-scale SSIM, together with the
// grayscale plane representation and byte heatmap grid they share.
//
// Every function in this package is a pure function of its raster inputs.
// The stateful VMAF feature pipeline lives in the vmaf package; the session
// facade in the root package ties both together.
//
// All metrics operate on the small fixed-resolution rasters produced by the
// capture subsystem, so none of them allocate more than a few kilobytes per
// call.
package metrics
