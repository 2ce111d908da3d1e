package vmaf

import "github.com/opd-ai/framecmp/metrics"

// Compute extracts the full feature set for one reference/distorted
// grayscale pair and regresses it into the model's 0-100 score.
//
// The motion feature is computed from the reference plane and mutates st;
// passing st == nil yields motion2 == 0 and makes the call a pure
// function of the pair. Both planes must have identical dimensions.
func Compute(ref, dis metrics.Plane, st *TemporalState, m *Model) (float64, Features) {
	f := Features{
		ADM2:    ADM2(ref, dis, m.EnhnGainLimit),
		Motion2: Motion2(ref, st),
		VIF:     VIF(ref, dis, m.EnhnGainLimit),
	}
	return m.Score(f), f
}
