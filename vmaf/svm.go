package vmaf

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Features is the 6-element regression input in extraction order.
type Features struct {
	ADM2    float64
	Motion2 float64
	VIF     [vifScales]float64
}

func (f Features) vector() []float64 {
	return []float64{f.ADM2, f.Motion2, f.VIF[0], f.VIF[1], f.VIF[2], f.VIF[3]}
}

// Score runs the nu-SVR regression over a raw feature vector and returns
// the final model score in [0,100].
//
// Each feature is normalized with the model's per-feature slope and
// intercept, the kernel sum over all support vectors with an RBF kernel
// exp(-gamma*||x-sv||^2) is offset by rho, and the result is denormalized
// through the model's score slope and intercept. The phone model then
// applies its quadratic transform and rectifies the result to be at least
// the pre-transform score. All models clamp to [0,100].
func (m *Model) Score(f Features) float64 {
	x := f.vector()
	norm := make([]float64, featureCount)
	for i := range norm {
		norm[i] = m.Slopes[i]*x[i] + m.Intercepts[i]
	}

	var sum float64
	for i, sv := range m.SupportVectors {
		d := floats.Distance(norm, sv, 2)
		sum += m.Coeffs[i] * math.Exp(-m.Gamma*d*d)
	}
	sum -= m.Rho

	score := sum*m.ScoreSlope + m.ScoreIntercept
	if t := m.Transform; t != nil {
		transformed := t.P0 + t.P1*score + t.P2*score*score
		if transformed > score {
			score = transformed
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
