package vmaf

import (
	"math"

	"github.com/opd-ai/framecmp/metrics"
)

// admLevels is the depth of the wavelet decomposition.
const admLevels = 4

// cosOneDegSq is cos(1 deg) squared, the co-directionality threshold of
// the enhancement exception in the decoupling step.
const cosOneDegSq = 0.9996954135

// Daubechies-2 analysis filter pair.
var (
	db2Lo = []float64{0.482962913144690, 0.836516303737469, 0.224143868041857, -0.129409522550921}
	db2Hi = []float64{-0.129409522550921, -0.224143868041857, 0.836516303737469, -0.482962913144690}
)

// admCSF holds the contrast-sensitivity weights per decomposition level
// (finest first) and orientation (horizontal, vertical, diagonal),
// following Watson's DWT noise visibility model: sensitivity rises toward
// the coarser levels and the diagonal orientation is attenuated.
var admCSF = [admLevels][3]float64{
	{0.203, 0.203, 0.112},
	{0.389, 0.389, 0.243},
	{0.560, 0.560, 0.412},
	{0.613, 0.613, 0.531},
}

// subbands is one level of a 2D wavelet decomposition.
type subbands struct {
	a, h, v, d metrics.Plane
}

// ADM2 computes the Additive Detail Metric between a reference and
// distorted grayscale plane.
//
// Both planes go through a 4-level 2D db2 decomposition. At each level the
// distorted detail bands are decoupled into a gain-clamped restored
// component and an artifact residual; the restored gain is limited to
// [0,1] per coefficient except where the reference and distorted
// orientation vectors are within ~1 degree of each other and
// co-directional, in which case the gain may rise up to enhnGainLimit
// (1.0 for the neg model, which disables the exception). A masking
// threshold built from the 3x3 neighborhood of CSF-weighted artifact
// magnitude is subtracted from the restored magnitude before the
// cube-root-sum-of-cubes energies are pooled into the final ratio.
func ADM2(ref, dis metrics.Plane, enhnGainLimit float64) float64 {
	r, d := ref, dis
	var num, den float64
	for level := 0; level < admLevels; level++ {
		ob := dwt2(r)
		tb := dwt2(d)
		n, dn := admLevel(ob, tb, level, enhnGainLimit)
		num += n
		den += dn
		r = ob.a
		d = tb.a
	}
	if den == 0 {
		return 1
	}
	return num / den
}

// admLevel scores a single decomposition level, returning its numerator
// and denominator contributions.
func admLevel(o, t subbands, level int, enhnGainLimit float64) (float64, float64) {
	bw, bh := o.h.W, o.h.H
	oBands := [3]metrics.Plane{o.h, o.v, o.d}
	tBands := [3]metrics.Plane{t.h, t.v, t.d}

	restored := [3]metrics.Plane{}
	artifact := [3]metrics.Plane{}
	for th := 0; th < 3; th++ {
		restored[th] = metrics.NewPlane(bw, bh)
		artifact[th] = metrics.NewPlane(bw, bh)
	}

	// Decoupling. The orientation decision comes from the horizontal and
	// vertical bands and is applied to all three.
	for i := 0; i < bw*bh; i++ {
		oh, ov := o.h.Pix[i], o.v.Pix[i]
		th, tv := t.h.Pix[i], t.v.Pix[i]
		dp := oh*th + ov*tv
		similar := dp >= 0 && dp*dp >= cosOneDegSq*(oh*oh+ov*ov)*(th*th+tv*tv)
		for b := 0; b < 3; b++ {
			oc := oBands[b].Pix[i]
			tc := tBands[b].Pix[i]
			var rc float64
			if oc != 0 {
				k := tc / oc
				if k < 0 {
					k = 0
				}
				if k > 1 {
					k = 1
				}
				rc = k * oc
			}
			if similar {
				rc = tc
				if lim := enhnGainLimit * math.Abs(oc); math.Abs(rc) > lim {
					if rc < 0 {
						rc = -lim
					} else {
						rc = lim
					}
				}
			}
			restored[b].Pix[i] = rc
			artifact[b].Pix[i] = tc - rc
		}
	}

	// Masking threshold: 3x3 neighborhood of CSF-weighted artifact
	// magnitude summed across all three orientations, center cell
	// weighted twice, scaled by 1/30.
	thr := metrics.NewPlane(bw, bh)
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			var sum float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					i := mirror(y+dy, bh)*bw + mirror(x+dx, bw)
					var cell float64
					for b := 0; b < 3; b++ {
						cell += admCSF[level][b] * math.Abs(artifact[b].Pix[i])
					}
					if dx == 0 && dy == 0 {
						cell *= 2
					}
					sum += cell
				}
			}
			thr.Pix[y*bw+x] = sum / 30
		}
	}

	// Pool cube-root-sum-of-cubes energies, each side padded with a small
	// per-band floor so near-flat content cannot produce a degenerate
	// ratio.
	floor := math.Cbrt(float64(bw*bh) / 32.0)
	var num, den float64
	for b := 0; b < 3; b++ {
		w := admCSF[level][b]
		var nAcc, dAcc float64
		for i := 0; i < bw*bh; i++ {
			m := w*math.Abs(restored[b].Pix[i]) - thr.Pix[i]
			if m < 0 {
				m = 0
			}
			nAcc += m * m * m
			oc := w * math.Abs(oBands[b].Pix[i])
			dAcc += oc * oc * oc
		}
		num += math.Cbrt(nAcc) + floor
		den += math.Cbrt(dAcc) + floor
	}
	return num, den
}

// dwt2 performs one level of 2D db2 decomposition with mirrored edges.
func dwt2(p metrics.Plane) subbands {
	bw := (p.W + 1) / 2
	bh := (p.H + 1) / 2
	lo := metrics.NewPlane(bw, p.H)
	hi := metrics.NewPlane(bw, p.H)
	for y := 0; y < p.H; y++ {
		row := p.Pix[y*p.W : (y+1)*p.W]
		for n := 0; n < bw; n++ {
			var sl, sh float64
			for k := 0; k < 4; k++ {
				v := row[mirror(2*n+k-1, p.W)]
				sl += db2Lo[k] * v
				sh += db2Hi[k] * v
			}
			lo.Pix[y*bw+n] = sl
			hi.Pix[y*bw+n] = sh
		}
	}

	out := subbands{
		a: metrics.NewPlane(bw, bh),
		h: metrics.NewPlane(bw, bh),
		v: metrics.NewPlane(bw, bh),
		d: metrics.NewPlane(bw, bh),
	}
	for x := 0; x < bw; x++ {
		for n := 0; n < bh; n++ {
			var al, ah, dl, dh float64
			for k := 0; k < 4; k++ {
				y := mirror(2*n+k-1, p.H)
				lv := lo.Pix[y*bw+x]
				hv := hi.Pix[y*bw+x]
				al += db2Lo[k] * lv
				ah += db2Hi[k] * lv
				dl += db2Lo[k] * hv
				dh += db2Hi[k] * hv
			}
			out.a.Pix[n*bw+x] = al
			out.h.Pix[n*bw+x] = ah
			out.v.Pix[n*bw+x] = dl
			out.d.Pix[n*bw+x] = dh
		}
	}
	return out
}
