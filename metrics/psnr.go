package metrics

import (
	"image"
	"math"
)

// PSNRCap is the value reported for identical inputs instead of +Inf.
const PSNRCap = 60.0

// PSNR computes the peak signal-to-noise ratio between two equally sized
// RGBA rasters in decibels. The mean squared error is taken across the R,
// G and B channels of every pixel on a unit scale, so
//
//	dB = -10 * log10(mse)
//
// Identical inputs (mse == 0) are clamped to PSNRCap rather than returning
// infinity, as are near-identical inputs whose dB value would exceed it.
func PSNR(a, b *image.RGBA) float64 {
	ba, bb := a.Bounds(), b.Bounds()
	w, h := ba.Dx(), ba.Dy()
	if w != bb.Dx() || h != bb.Dy() || w == 0 || h == 0 {
		return 0
	}
	var sum float64
	for y := 0; y < h; y++ {
		ra := a.Pix[(y+ba.Min.Y-a.Rect.Min.Y)*a.Stride:]
		rb := b.Pix[(y+bb.Min.Y-b.Rect.Min.Y)*b.Stride:]
		for x := 0; x < w; x++ {
			oa := (x + ba.Min.X - a.Rect.Min.X) * 4
			ob := (x + bb.Min.X - b.Rect.Min.X) * 4
			for c := 0; c < 3; c++ {
				d := (float64(ra[oa+c]) - float64(rb[ob+c])) / 255.0
				sum += d * d
			}
		}
	}
	mse := sum / float64(3*w*h)
	return mseToDb(mse)
}

func mseToDb(mse float64) float64 {
	if mse == 0 {
		return PSNRCap
	}
	db := -10 * math.Log10(mse)
	if db > PSNRCap {
		db = PSNRCap
	}
	return db
}

// PSNRHeatmap computes PSNR per 11x11 block and writes each block's dB
// value, scaled against the 60dB cap, into a heatmap grid.
func PSNRHeatmap(a, b *image.RGBA) *Heatmap {
	ba, bb := a.Bounds(), b.Bounds()
	w, h := ba.Dx(), ba.Dy()
	if w != bb.Dx() || h != bb.Dy() {
		return NewHeatmap(1, 1)
	}
	gw, gh := gridDims(w, h)
	heat := NewHeatmap(gw, gh)
	for by := 0; by < gh; by++ {
		for bx := 0; bx < gw; bx++ {
			x0, y0 := bx*ssimBlock, by*ssimBlock
			x1, y1 := x0+ssimBlock, y0+ssimBlock
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}
			var sum float64
			for y := y0; y < y1; y++ {
				ra := a.Pix[(y+ba.Min.Y-a.Rect.Min.Y)*a.Stride:]
				rb := b.Pix[(y+bb.Min.Y-b.Rect.Min.Y)*b.Stride:]
				for x := x0; x < x1; x++ {
					oa := (x + ba.Min.X - a.Rect.Min.X) * 4
					ob := (x + bb.Min.X - b.Rect.Min.X) * 4
					for c := 0; c < 3; c++ {
						d := (float64(ra[oa+c]) - float64(rb[ob+c])) / 255.0
						sum += d * d
					}
				}
			}
			mse := sum / float64(3*(x1-x0)*(y1-y0))
			heat.SetScore(bx, by, mseToDb(mse)/PSNRCap)
		}
	}
	return heat
}
