package vmaf

import (
	"math"

	"github.com/opd-ai/framecmp/metrics"
)

// vifScales is the number of dyadic scales the VIF feature is computed at.
const vifScales = 4

// vifSigmaNsq is the additive noise-floor variance of the visual channel
// model. Blocks whose reference variance falls below it are treated as
// noise-dominated.
const vifSigmaNsq = 2.0

// vifFloorTerm is the fixed contribution a noise-dominated block adds to
// both the numerator and denominator accumulators, so near-flat content
// pulls the ratio toward 1 instead of toward a degenerate 0/0.
const vifFloorTerm = 1.0

// vifFilters holds the per-scale separable low-pass taps, the same taps as
// the published integer model evaluated in floating point. The scale-s
// statistics use vifFilters[s]; decimation into scale s+1 uses
// vifFilters[s+1] as its anti-aliasing filter.
var vifFilters = [vifScales][]float64{
	{
		0.00745626912, 0.0142655009, 0.0250313189, 0.0402820669,
		0.0594526194, 0.0804751068, 0.0999041125, 0.113746084,
		0.118773937, 0.113746084, 0.0999041125, 0.0804751068,
		0.0594526194, 0.0402820669, 0.0250313189, 0.0142655009,
		0.00745626912,
	},
	{
		0.0189780835, 0.0558981663, 0.120920904, 0.192116052,
		0.224173605, 0.192116052, 0.120920904, 0.0558981663,
		0.0189780835,
	},
	{0.054488685, 0.244201347, 0.402619958, 0.244201347, 0.054488685},
	{0.166378498, 0.667243004, 0.166378498},
}

// VIF computes the four-scale Visual Information Fidelity feature between
// a reference and distorted grayscale plane.
//
// At each scale both planes are low-pass filtered to obtain local mean,
// variance and covariance at every pixel. Noise-dominated positions
// (reference variance below vifSigmaNsq) contribute vifFloorTerm to both
// accumulators; elsewhere the gain covariance/refVariance, clamped to
// [0, enhnGainLimit], feeds the usual log2-domain information ratio.
// enhnGainLimit is 100 for the standard models and 1.0 for neg.
//
// Between scales both planes are decimated 2x using the next scale's own
// anti-aliasing filter before the statistics are recomputed.
func VIF(ref, dis metrics.Plane, enhnGainLimit float64) [vifScales]float64 {
	var scores [vifScales]float64
	r, d := ref, dis
	for s := 0; s < vifScales; s++ {
		taps := vifFilters[s]
		mu1 := convolveSep(r, taps)
		mu2 := convolveSep(d, taps)
		rr := convolveSep(mulPlanes(r, r), taps)
		dd := convolveSep(mulPlanes(d, d), taps)
		rd := convolveSep(mulPlanes(r, d), taps)

		var num, den float64
		for i := range mu1.Pix {
			m1 := mu1.Pix[i]
			m2 := mu2.Pix[i]
			sigma1 := rr.Pix[i] - m1*m1
			sigma2 := dd.Pix[i] - m2*m2
			sigma12 := rd.Pix[i] - m1*m2
			if sigma1 < 0 {
				sigma1 = 0
			}
			if sigma2 < 0 {
				sigma2 = 0
			}

			if sigma1 < vifSigmaNsq {
				num += vifFloorTerm
				den += vifFloorTerm
				continue
			}

			g := sigma12 / sigma1
			if g < 0 {
				g = 0
			}
			if g > enhnGainLimit {
				g = enhnGainLimit
			}
			sv := sigma2 - g*sigma12
			if sv < 0 {
				sv = 0
			}
			num += math.Log2(1 + g*g*sigma1/(sv+vifSigmaNsq))
			den += math.Log2(1 + sigma1/vifSigmaNsq)
		}

		if den > 0 {
			scores[s] = num / den
		} else {
			scores[s] = 1
		}

		if s < vifScales-1 {
			next := vifFilters[s+1]
			r = decimate2x(convolveSep(r, next))
			d = decimate2x(convolveSep(d, next))
		}
	}
	return scores
}
