package vmaf

import (
	"math"

	"github.com/opd-ai/framecmp/metrics"
)

// motionFilter is the 5-tap Gaussian applied before frame differencing.
var motionFilter = []float64{0.0625, 0.25, 0.375, 0.25, 0.0625}

// TemporalState carries the single frame of history the Motion feature
// needs: the previous frame's blurred grayscale and its motion score.
//
// One instance exists per active comparison session. It must be reset on
// session start and whenever the model selection changes, because motion
// history blended across models would make scores incomparable.
type TemporalState struct {
	prevBlur   metrics.Plane
	prevMotion float64
	primed     bool
}

// Reset discards all carried history. The next Motion2 call behaves like
// the first frame of a session and reports 0.
func (s *TemporalState) Reset() {
	s.prevBlur = metrics.Plane{}
	s.prevMotion = 0
	s.primed = false
}

// Motion2 computes the temporal motion feature for the current reference
// frame.
//
// The frame is blurred with a 5-tap Gaussian and compared against the
// previous blurred frame by mean absolute difference. The reported value
// is min(currentMotion, previousMotion), which needs exactly one frame of
// carried state. With st == nil the feature is 0 and the call is a pure
// function of the current frame; with a fresh state the first call also
// reports 0. Calling with a non-nil state mutates it.
func Motion2(cur metrics.Plane, st *TemporalState) float64 {
	if st == nil {
		return 0
	}
	blur := convolveSep(cur, motionFilter)
	if !st.primed {
		st.prevBlur = blur
		st.prevMotion = 0
		st.primed = true
		return 0
	}
	var sum float64
	for i := range blur.Pix {
		sum += math.Abs(blur.Pix[i] - st.prevBlur.Pix[i])
	}
	motion := sum / float64(len(blur.Pix))
	out := math.Min(motion, st.prevMotion)
	st.prevBlur = blur
	st.prevMotion = motion
	return out
}
