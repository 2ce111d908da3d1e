package framecmp

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/framecmp/capture"
	"github.com/opd-ai/framecmp/compositor"
	"github.com/opd-ai/framecmp/match"
	"github.com/opd-ai/framecmp/schedule"
	"github.com/opd-ai/framecmp/vmaf"
)

// ErrNotActive is returned by operations that need a started session.
var ErrNotActive = errors.New("framecmp: session not active")

// ScoreCallback receives the latest scalar score for one metric after
// every computed pair. score is nil when the metric could not be computed
// that tick; grade is only meaningful for a non-nil score.
type ScoreCallback func(timestamp float64, score *float64, grade Grade)

// Session is one active A/B comparison.
//
// It owns both sources' capture arenas, the frame matcher, the adaptive
// scheduler, the metric engine (and with it the VMAF temporal state) and
// the score history. All of this is constructed on Start and discarded on
// Stop; nothing lives at package level.
//
// The pipeline itself is single-threaded and cooperative: capture
// callbacks, Tick and seek-settle handling must all run on the same
// scheduling thread. The mutex only protects read access from other
// threads (UI queries of history, latest scores and configuration).
type Session struct {
	mu  sync.RWMutex
	cfg *Config

	arenas  [2]*capture.Arena
	pair    *capture.Pair
	matcher *match.Matcher
	sched   *schedule.Scheduler
	engine  *Engine
	history *History

	callbacks [metricCount]ScoreCallback

	last         *Result
	frontDirty   bool
	presentation bool
	active       bool
}

// NewSession wires a comparison over two playback sources. The session is
// inert until Start.
func NewSession(srcA, srcB capture.Source, cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine, err := NewEngine(cfg.Model)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:     cfg,
		engine:  engine,
		sched:   schedule.New(cfg.Scheduler),
		history: NewHistory(),
	}
	s.arenas[0] = capture.NewArena(cfg.RasterWidth, cfg.RasterHeight)
	s.arenas[1] = capture.NewArena(cfg.RasterWidth, cfg.RasterHeight)
	s.matcher = match.NewMatcher(s.recycle, s.onMatch)

	capA := capture.NewCapturer(srcA, capture.SourceA, s.arenas[0], s.matcher.Ingest)
	capB := capture.NewCapturer(srcB, capture.SourceB, s.arenas[1], s.matcher.Ingest)
	s.pair = capture.NewPair(srcA, srcB, capA, capB)
	s.pair.OnSettled(s.onSettled)

	logrus.WithFields(logrus.Fields{
		"function": "NewSession",
		"raster":   fmt.Sprintf("%dx%d", cfg.RasterWidth, cfg.RasterHeight),
		"palette":  cfg.Palette.String(),
		"model":    string(cfg.Model),
	}).Info("Comparison session created")
	return s, nil
}

// recycle returns a sample's raster slot to its source's arena once the
// matcher holds no role referencing it. Without this the arenas exhaust
// after four captures per source and capture stalls permanently.
func (s *Session) recycle(sa capture.Sample) {
	s.arenas[sa.Source].Release(sa.Slot)
}

// Start activates capture. When both sources are already paused, one
// immediate capture and metric pass runs so the UI has a result before
// the first seek or play.
func (s *Session) Start() {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()

	s.presentation = s.pair.Start()
	if s.pair.Paused() {
		s.pair.CaptureBoth()
		s.computeFront(true)
	}
}

// Stop synchronously cancels capture and discards temporal state,
// history and buffered samples. Because the pipeline is single-threaded,
// teardown is atomic with respect to any in-flight callback.
func (s *Session) Stop() {
	s.mu.Lock()
	s.active = false
	s.last = nil
	s.frontDirty = false
	s.mu.Unlock()

	s.pair.Stop()
	s.matcher.Reset()
	s.engine.ResetTemporal()
	s.history.Clear()
	s.sched.Reset()
	logrus.WithFields(logrus.Fields{
		"function": "Session.Stop",
	}).Info("Comparison session stopped")
}

// Active reports whether the session is started.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Tick is the scheduling tick, driven by the host's animation loop. It
// runs the polling capture fallback when presentation callbacks are
// unavailable, then lets the adaptive scheduler gate a metric pass over
// the current front pair. Skipped ticks leave the previous Result in
// place for re-rendering.
func (s *Session) Tick() {
	s.mu.RLock()
	active := s.active
	dirty := s.frontDirty
	s.mu.RUnlock()
	if !active {
		return
	}

	if !s.presentation && !s.pair.Paused() {
		s.pair.Tick()
		s.mu.RLock()
		dirty = s.frontDirty
		s.mu.RUnlock()
	}

	if !s.sched.ShouldCompute() || !dirty {
		return
	}
	s.computeFront(false)
}

// onMatch runs synchronously from a capture callback after the matcher
// promoted a new front pair.
func (s *Session) onMatch(match.Pair) {
	s.mu.Lock()
	s.frontDirty = true
	s.mu.Unlock()
}

// onSettled runs after a paused-state seek settles on either source.
// While paused no throttling applies: every settle gets one full
// synchronous metric pass, favoring interactive correctness.
func (s *Session) onSettled() {
	if !s.Active() {
		return
	}
	s.computeFront(true)
}

// computeFront runs the metric engine over the current front pair.
// Throttled (playback) passes are measured and fed back to the
// scheduler; synchronous (paused) passes are not, so a burst of seeks
// does not inflate the playback skip interval.
func (s *Session) computeFront(synchronous bool) {
	front, ok := s.matcher.Front()
	if !ok {
		return
	}

	s.mu.RLock()
	pal := s.cfg.Palette
	amp := s.cfg.Amplification
	s.mu.RUnlock()

	start := s.sched.Begin()
	res := s.engine.Compute(front, pal, amp)
	if !synchronous {
		s.sched.RecordCost(start)
	}

	s.mu.Lock()
	s.last = res
	s.frontDirty = false
	callbacks := s.callbacks
	s.mu.Unlock()

	for m := MetricType(0); m < metricCount; m++ {
		score := res.Score(m)
		if score != nil {
			s.history.Record(m, res.Timestamp, *score)
		}
		if cb := callbacks[m]; cb != nil {
			grade := GradePoor
			if score != nil {
				grade = GradeScore(m, *score)
			}
			cb(res.Timestamp, score, grade)
		}
	}
}

// OnScore registers the per-metric callback invoked with the latest
// scalar score (or nil) after every metric pass.
func (s *Session) OnScore(m MetricType, cb ScoreCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks[m] = cb
}

// Latest returns the most recent metric result, nil before the first
// pass. The render step keeps using this between passes, so there is
// never a freeze or a half-updated overlay.
func (s *Session) Latest() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// History exposes the session's score record.
func (s *Session) History() *History { return s.history }

// Matcher exposes matcher statistics for diagnostics.
func (s *Session) Matcher() *match.Matcher { return s.matcher }

// SetModel switches the VMAF model on a live session. Accumulated VMAF
// history and the temporal motion state are invalidated: scores from
// different models are not comparable and must not blend.
func (s *Session) SetModel(id vmaf.ModelID) error {
	if err := s.engine.SetModel(id); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg.Model = id
	s.mu.Unlock()
	s.history.ClearMetric(MetricVMAF)
	return nil
}

// SetPalette changes the heatmap palette for subsequent passes.
func (s *Session) SetPalette(p compositor.Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Palette = p
}

// SetAmplification changes the difference amplification factor.
func (s *Session) SetAmplification(amp int) error {
	if !compositor.ValidAmplification(amp) {
		return fmt.Errorf("framecmp: amplification %d not in {1,2,4,8}", amp)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Amplification = amp
	return nil
}

// Composite blends the latest heatmap over rendition B's front raster
// into dst, using the configured palette and amplification. It returns
// ErrNotActive before the first metric pass.
func (s *Session) Composite(dst *image.RGBA) error {
	s.mu.RLock()
	res := s.last
	pal := s.cfg.Palette
	amp := s.cfg.Amplification
	s.mu.RUnlock()
	if res == nil || res.Heatmap == nil {
		return ErrNotActive
	}
	front, ok := s.matcher.Front()
	if !ok {
		return ErrNotActive
	}
	return compositor.Blend(dst, front.B.Pix, res.Heatmap, pal, amp)
}
