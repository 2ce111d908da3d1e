package vmaf

import "github.com/opd-ai/framecmp/metrics"

// mirror reflects an out-of-range index back into [0,n). Every convolution
// in this package uses mirrored edges so border statistics stay unbiased.
func mirror(i, n int) int {
	if i < 0 {
		i = -i
	}
	if i >= n {
		i = 2*n - 2 - i
	}
	if i < 0 {
		// Degenerate planes narrower than the filter support.
		i = 0
	}
	return i
}

// convolveSep applies a symmetric separable filter horizontally then
// vertically.
func convolveSep(p metrics.Plane, taps []float64) metrics.Plane {
	return convolveVert(convolveHoriz(p, taps), taps)
}

func convolveHoriz(p metrics.Plane, taps []float64) metrics.Plane {
	out := metrics.NewPlane(p.W, p.H)
	r := len(taps) / 2
	for y := 0; y < p.H; y++ {
		row := p.Pix[y*p.W : (y+1)*p.W]
		for x := 0; x < p.W; x++ {
			var sum float64
			for k, t := range taps {
				sum += t * row[mirror(x+k-r, p.W)]
			}
			out.Pix[y*p.W+x] = sum
		}
	}
	return out
}

func convolveVert(p metrics.Plane, taps []float64) metrics.Plane {
	out := metrics.NewPlane(p.W, p.H)
	r := len(taps) / 2
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			var sum float64
			for k, t := range taps {
				sum += t * p.Pix[mirror(y+k-r, p.H)*p.W+x]
			}
			out.Pix[y*p.W+x] = sum
		}
	}
	return out
}

// decimate2x keeps every other row and column, starting at (0,0).
func decimate2x(p metrics.Plane) metrics.Plane {
	ow := (p.W + 1) / 2
	oh := (p.H + 1) / 2
	out := metrics.NewPlane(ow, oh)
	for y := 0; y < oh; y++ {
		for x := 0; x < ow; x++ {
			out.Pix[y*ow+x] = p.Pix[(2*y)*p.W+2*x]
		}
	}
	return out
}

// mulPlanes returns the element-wise product of two equally sized planes.
func mulPlanes(a, b metrics.Plane) metrics.Plane {
	out := metrics.NewPlane(a.W, a.H)
	for i := range out.Pix {
		out.Pix[i] = a.Pix[i] * b.Pix[i]
	}
	return out
}
