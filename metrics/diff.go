package metrics

import "image"

// DiffHeatmap builds the raw-difference grid used by the grayscale and
// temperature palettes: per-block mean absolute RGB difference, amplified
// by amp, inverted so the grid keeps the heatmap convention of higher
// values meaning better local quality.
func DiffHeatmap(a, b *image.RGBA, amp int) *Heatmap {
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
						d := float64(ra[oa+c]) - float64(rb[ob+c])
						if d < 0 {
							d = -d
						}
						sum += d
					}
				}
			}
			n := float64(3 * (x1 - x0) * (y1 - y0))
			diff := sum / n * float64(amp)
			if diff > 255 {
				diff = 255
			}
			heat.Data[by*gw+bx] = byte(255 - diff)
		}
	}
	return heat
}
