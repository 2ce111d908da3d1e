package framecmp

import (
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// historyKey rounds a media timestamp to the millisecond used as the
// history map key.
func historyKey(ts float64) int64 {
	if ts < 0 {
		return int64(ts*1000 - 0.5)
	}
	return int64(ts*1000 + 0.5)
}

// KeySeconds converts a history key back to seconds.
func KeySeconds(key int64) float64 { return float64(key) / 1000 }

// History is the in-memory score record of one session: per metric type,
// a mapping from rounded timestamp to scalar score. Append-only during a
// session; cleared on session end, and the VMAF series alone is cleared
// on model change.
type History struct {
	mu     sync.RWMutex
	series [metricCount]map[int64]float64
}

// NewHistory creates an empty history.
func NewHistory() *History {
	h := &History{}
	for i := range h.series {
		h.series[i] = make(map[int64]float64)
	}
	return h
}

// Record appends one score.
func (h *History) Record(m MetricType, ts, score float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.series[m][historyKey(ts)] = score
}

// Scores returns a copy of one metric's series for display or export.
func (h *History) Scores(m MetricType) map[int64]float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[int64]float64, len(h.series[m]))
	for k, v := range h.series[m] {
		out[k] = v
	}
	return out
}

// Len returns the number of recorded scores for a metric.
func (h *History) Len(m MetricType) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.series[m])
}

// Clear drops every series. Called on session end.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.series {
		h.series[i] = make(map[int64]float64)
	}
}

// ClearMetric drops a single metric's series. Called for VMAF on model
// change, because scores from different models must not pool together.
func (h *History) ClearMetric(m MetricType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.series[m] = make(map[int64]float64)
}

// HistoryStats are pooled statistics over one metric's recorded scores.
type HistoryStats struct {
	Count        int
	Min          float64
	Max          float64
	Mean         float64
	HarmonicMean float64
	StdDev       float64
}

// Stats pools a metric's series. ok is false while the series is empty.
func (h *History) Stats(m MetricType) (HistoryStats, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	series := h.series[m]
	if len(series) == 0 {
		return HistoryStats{}, false
	}
	v := make([]float64, 0, len(series))
	for _, s := range series {
		v = append(v, s)
	}
	mean, std := stat.MeanStdDev(v, nil)
	return HistoryStats{
		Count:        len(v),
		Min:          floats.Min(v),
		Max:          floats.Max(v),
		Mean:         mean,
		HarmonicMean: stat.HarmonicMean(v, nil),
		StdDev:       std,
	}, true
}
