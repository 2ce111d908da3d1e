package metrics

// SSIM constants for 8-bit content: C1 = (k1*L)^2, C2 = (k2*L)^2 with
// k1 = 0.01, k2 = 0.03, L = 255.
const (
	ssimC1 = 6.5025
	ssimC2 = 58.5225

	// ssimBlock is the side of the non-overlapping local statistics window.
	ssimBlock = 11
)

// ssimGrid holds per-block luminance and contrast-structure components.
// Partial blocks at the right/bottom edge use their actual pixel counts.
type ssimGrid struct {
	lum  []float64
	cs   []float64
	w, h int
}

func gridDims(w, h int) (int, int) {
	return (w + ssimBlock - 1) / ssimBlock, (h + ssimBlock - 1) / ssimBlock
}

// ssimComponents computes local mean/variance/covariance over each
// non-overlapping 11x11 block and splits the SSIM formula into its
// luminance and contrast-structure factors. MS-SSIM recombines them with
// per-scale weights; plain SSIM multiplies them per block.
func ssimComponents(ref, dis Plane) ssimGrid {
	gw, gh := gridDims(ref.W, ref.H)
	g := ssimGrid{
		lum: make([]float64, gw*gh),
		cs:  make([]float64, gw*gh),
		w:   gw,
		h:   gh,
	}
	for by := 0; by < gh; by++ {
		for bx := 0; bx < gw; bx++ {
			x0, y0 := bx*ssimBlock, by*ssimBlock
			x1, y1 := x0+ssimBlock, y0+ssimBlock
			if x1 > ref.W {
				x1 = ref.W
			}
			if y1 > ref.H {
				y1 = ref.H
			}
			var s1, s2, s11, s22, s12 float64
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					a := ref.At(x, y)
					b := dis.At(x, y)
					s1 += a
					s2 += b
					s11 += a * a
					s22 += b * b
					s12 += a * b
				}
			}
			n := float64((x1 - x0) * (y1 - y0))
			mu1 := s1 / n
			mu2 := s2 / n
			var1 := s11/n - mu1*mu1
			var2 := s22/n - mu2*mu2
			cov := s12/n - mu1*mu2
			i := by*gw + bx
			g.lum[i] = (2*mu1*mu2 + ssimC1) / (mu1*mu1 + mu2*mu2 + ssimC1)
			g.cs[i] = (2*cov + ssimC2) / (var1 + var2 + ssimC2)
		}
	}
	return g
}

// SSIM computes the structural similarity between two grayscale planes of
// identical dimensions. The scalar score is the average over all blocks of
// the combined formula
//
//	((2*mu1*mu2+C1)*(2*cov+C2)) / ((mu1^2+mu2^2+C1)*(var1+var2+C2))
//
// and the returned heatmap carries each block's score scaled to a byte.
func SSIM(ref, dis Plane) (float64, *Heatmap) {
	g := ssimComponents(ref, dis)
	heat := NewHeatmap(g.w, g.h)
	var sum float64
	for i := range g.lum {
		s := g.lum[i] * g.cs[i]
		sum += s
		heat.SetScore(i%g.w, i/g.w, s)
	}
	return sum / float64(len(g.lum)), heat
}
