package metrics

import "math"

// msssimScales is the number of dyadic scales evaluated.
const msssimScales = 3

// msssimWeights are the Wang et al. (2003) exponents for the three finest
// scales, renormalized to sum to 1. Index 0 is the full-resolution scale.
var msssimWeights = [msssimScales]float64{0.071, 0.453, 0.476}

// MSSSIM computes multi-scale structural similarity over three scales,
// each obtained by 2x box-blur downsampling of the previous one. All
// scales contribute their contrast-structure component; only the coarsest
// scale contributes the luminance term. The heatmap is assembled on the
// finest scale's block grid, with coarser grids nearest-upsampled back up.
func MSSSIM(ref, dis Plane) (float64, *Heatmap) {
	r, d := ref, dis
	grids := make([]ssimGrid, msssimScales)
	for s := 0; s < msssimScales; s++ {
		if s > 0 {
			r = downsample2x(r)
			d = downsample2x(d)
		}
		grids[s] = ssimComponents(r, d)
	}

	score := 1.0
	for s := 0; s < msssimScales; s++ {
		score *= powClamped(mean(grids[s].cs), msssimWeights[s])
	}
	score *= powClamped(mean(grids[msssimScales-1].lum), msssimWeights[msssimScales-1])

	fine := grids[0]
	heat := NewHeatmap(fine.w, fine.h)
	for by := 0; by < fine.h; by++ {
		for bx := 0; bx < fine.w; bx++ {
			cell := 1.0
			for s := 0; s < msssimScales; s++ {
				g := grids[s]
				// Nearest-neighbor lookup of the coarser block covering
				// this finest-scale block.
				gx := bx * g.w / fine.w
				gy := by * g.h / fine.h
				cell *= powClamped(g.cs[gy*g.w+gx], msssimWeights[s])
				if s == msssimScales-1 {
					cell *= powClamped(g.lum[gy*g.w+gx], msssimWeights[s])
				}
			}
			heat.SetScore(bx, by, cell)
		}
	}
	return score, heat
}

// powClamped raises a similarity component to an exponent, clamping the
// base at zero first. Covariance can go negative on inverted content and
// a fractional power of a negative base is undefined.
func powClamped(v, w float64) float64 {
	if v < 0 {
		v = 0
	}
	return math.Pow(v, w)
}

func mean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
