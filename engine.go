package framecmp

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/framecmp/compositor"
	"github.com/opd-ai/framecmp/match"
	"github.com/opd-ai/framecmp/metrics"
	"github.com/opd-ai/framecmp/vmaf"
)

// MetricType identifies one of the reported quality metrics.
type MetricType int

const (
	// MetricPSNR is peak signal-to-noise ratio in dB, capped at 60.
	MetricPSNR MetricType = iota
	// MetricSSIM is single-scale structural similarity.
	MetricSSIM
	// MetricMSSSIM is multi-scale structural similarity.
	MetricMSSSIM
	// MetricVMAF is the VMAF model score in [0,100].
	MetricVMAF
	metricCount
)

// String returns the metric's configuration name.
func (m MetricType) String() string {
	switch m {
	case MetricPSNR:
		return "psnr"
	case MetricSSIM:
		return "ssim"
	case MetricMSSSIM:
		return "msssim"
	case MetricVMAF:
		return "vmaf"
	default:
		return fmt.Sprintf("MetricType(%d)", int(m))
	}
}

// Result carries everything one metric pass produced for a matched pair.
// A nil score means that metric could not be computed this tick
// (throttled or capture failure); consumers must not substitute stale
// values for it themselves, re-rendering the previous Result instead.
type Result struct {
	PSNR   *float64
	SSIM   *float64
	MSSSIM *float64
	VMAF   *float64

	// Heatmap is the per-block grid for the configured palette.
	Heatmap *metrics.Heatmap

	// Features are the raw VMAF regression inputs, useful for export.
	Features vmaf.Features

	// Timestamp is the matched pair's presentation timestamp.
	Timestamp float64
}

// Score returns the named metric's score from the result, nil when it was
// not computed.
func (r *Result) Score(m MetricType) *float64 {
	switch m {
	case MetricPSNR:
		return r.PSNR
	case MetricSSIM:
		return r.SSIM
	case MetricMSSSIM:
		return r.MSSSIM
	case MetricVMAF:
		return r.VMAF
	default:
		return nil
	}
}

// Engine computes every metric for a matched raster pair.
//
// The engine owns the one piece of persistent state the metrics need, the
// VMAF temporal motion history, plus the session-scoped diagnostic
// counters. Both live on this explicit session object rather than at
// package level, so they are constructed on session start and dropped on
// session end.
type Engine struct {
	model    *vmaf.Model
	temporal vmaf.TemporalState

	computes uint64
}

// NewEngine creates a metric engine bound to a VMAF model.
func NewEngine(id vmaf.ModelID) (*Engine, error) {
	m, err := vmaf.Lookup(id)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"function": "NewEngine",
		"model":    string(id),
	}).Info("Metric engine created")
	return &Engine{model: m}, nil
}

// Model returns the active VMAF model id.
func (e *Engine) Model() vmaf.ModelID { return e.model.ID }

// SetModel switches the VMAF constant tables. The temporal motion state
// is reset because history accumulated under one model must not blend
// into scores of another.
func (e *Engine) SetModel(id vmaf.ModelID) error {
	m, err := vmaf.Lookup(id)
	if err != nil {
		return err
	}
	e.model = m
	e.temporal.Reset()
	logrus.WithFields(logrus.Fields{
		"function": "Engine.SetModel",
		"model":    string(id),
	}).Info("VMAF model switched, temporal state reset")
	return nil
}

// ResetTemporal discards the carried motion history. The next VMAF call
// reports motion2 == 0.
func (e *Engine) ResetTemporal() { e.temporal.Reset() }

// Computes returns how many metric passes this engine has run.
func (e *Engine) Computes() uint64 { return e.computes }

// Compute runs every metric over a matched pair and assembles the heatmap
// for the requested palette. Rendition A is treated as the reference.
//
// Mismatched raster dimensions make every score nil; this only happens if
// a source swapped surfaces mid-tick and is treated like a capture
// failure, retried next tick.
func (e *Engine) Compute(pair match.Pair, pal compositor.Palette, amp int) *Result {
	res := &Result{Timestamp: pair.Timestamp}
	if pair.A.Pix == nil || pair.B.Pix == nil ||
		pair.A.Pix.Bounds() != pair.B.Pix.Bounds() {
		return res
	}
	e.computes++

	grayA := metrics.Grayscale(pair.A.Pix)
	grayB := metrics.Grayscale(pair.B.Pix)

	psnr := metrics.PSNR(pair.A.Pix, pair.B.Pix)
	ssim, ssimHeat := metrics.SSIM(grayA, grayB)
	msssim, msHeat := metrics.MSSSIM(grayA, grayB)
	vmafScore, feats := vmaf.Compute(grayA, grayB, &e.temporal, e.model)

	res.PSNR = &psnr
	res.SSIM = &ssim
	res.MSSSIM = &msssim
	res.VMAF = &vmafScore
	res.Features = feats

	switch pal {
	case compositor.PaletteSSIM:
		res.Heatmap = ssimHeat
	case compositor.PaletteMSSSIM:
		res.Heatmap = msHeat
	case compositor.PalettePSNR:
		res.Heatmap = metrics.PSNRHeatmap(pair.A.Pix, pair.B.Pix)
	case compositor.PaletteVMAF:
		res.Heatmap = vmafHeatmap(ssimHeat, vmafScore)
	default:
		res.Heatmap = metrics.DiffHeatmap(pair.A.Pix, pair.B.Pix, amp)
	}

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.WithFields(logrus.Fields{
			"function":  "Engine.Compute",
			"timestamp": pair.Timestamp,
			"psnr":      psnr,
			"ssim":      ssim,
			"msssim":    msssim,
			"vmaf":      vmafScore,
		}).Trace("Metric pass complete")
	}
	return res
}

// vmafHeatmap scales the structural block grid by the frame's VMAF score,
// so the spatial detail comes from SSIM blocks while the overall level
// tracks the perceptual model.
func vmafHeatmap(ssimHeat *metrics.Heatmap, score float64) *metrics.Heatmap {
	heat := metrics.NewHeatmap(ssimHeat.W, ssimHeat.H)
	f := score / 100
	for i, v := range ssimHeat.Data {
		heat.Data[i] = byte(float64(v) * f)
	}
	return heat
}
