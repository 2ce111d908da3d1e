package framecmp

import (
	"math"
	"testing"
)

func TestHistoryRecordAndScores(t *testing.T) {
	h := NewHistory()
	h.Record(MetricPSNR, 1.000, 40)
	h.Record(MetricPSNR, 1.033, 41)
	h.Record(MetricVMAF, 1.000, 95)

	if h.Len(MetricPSNR) != 2 {
		t.Errorf("PSNR series length = %d, want 2", h.Len(MetricPSNR))
	}
	scores := h.Scores(MetricPSNR)
	if scores[1000] != 40 || scores[1033] != 41 {
		t.Errorf("PSNR series = %v, want keys 1000 and 1033", scores)
	}
	if h.Len(MetricSSIM) != 0 {
		t.Errorf("SSIM series length = %d, want 0", h.Len(MetricSSIM))
	}
}

func TestHistoryKeyRounding(t *testing.T) {
	// Re-recording within the same rounded millisecond overwrites rather
	// than growing the series.
	h := NewHistory()
	h.Record(MetricSSIM, 2.0004, 0.95)
	h.Record(MetricSSIM, 2.0001, 0.97)
	if h.Len(MetricSSIM) != 1 {
		t.Fatalf("series length = %d, want 1", h.Len(MetricSSIM))
	}
	if got := h.Scores(MetricSSIM)[2000]; got != 0.97 {
		t.Errorf("score at key 2000 = %v, want the later 0.97", got)
	}
	if KeySeconds(2000) != 2.0 {
		t.Errorf("KeySeconds(2000) = %v, want 2.0", KeySeconds(2000))
	}
}

func TestHistoryScoresIsACopy(t *testing.T) {
	h := NewHistory()
	h.Record(MetricVMAF, 0, 90)
	scores := h.Scores(MetricVMAF)
	scores[0] = 10
	if got := h.Scores(MetricVMAF)[0]; got != 90 {
		t.Errorf("mutating the returned map changed the history: %v", got)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory()
	h.Record(MetricPSNR, 0, 40)
	h.Record(MetricVMAF, 0, 95)
	h.ClearMetric(MetricVMAF)
	if h.Len(MetricVMAF) != 0 {
		t.Error("ClearMetric left VMAF scores behind")
	}
	if h.Len(MetricPSNR) != 1 {
		t.Error("ClearMetric touched another series")
	}
	h.Clear()
	if h.Len(MetricPSNR) != 0 {
		t.Error("Clear left scores behind")
	}
}

func TestHistoryStats(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Stats(MetricVMAF); ok {
		t.Fatal("Stats reported ok on an empty series")
	}
	for i, score := range []float64{80, 90, 100} {
		h.Record(MetricVMAF, float64(i), score)
	}
	st, ok := h.Stats(MetricVMAF)
	if !ok {
		t.Fatal("Stats not ok with recorded scores")
	}
	if st.Count != 3 || st.Min != 80 || st.Max != 100 {
		t.Errorf("stats = %+v, want count 3, min 80, max 100", st)
	}
	if st.Mean != 90 {
		t.Errorf("mean = %v, want 90", st.Mean)
	}
	// Harmonic mean of 80, 90, 100 is 3/(1/80+1/90+1/100) ~= 89.26,
	// sitting below the arithmetic mean.
	if st.HarmonicMean >= st.Mean || math.Abs(st.HarmonicMean-89.26) > 0.01 {
		t.Errorf("harmonic mean = %v, want ~89.26", st.HarmonicMean)
	}
	if st.StdDev <= 0 {
		t.Errorf("stddev = %v, want > 0", st.StdDev)
	}
}
