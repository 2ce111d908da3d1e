// Package schedule decides, once per scheduling tick, whether the metric
// engine may run this tick.
//
// Recomputing every metric on every matched pair can exceed budget on
// slow hardware. The scheduler keeps an exponential moving average of the
// engine's measured wall-clock cost and derives a skip interval from it,
// so a slow VMAF call degrades metric update frequency, never playback
// smoothness. While playback is paused no throttling applies: every
// seek-settle event gets one full synchronous recompute, favoring
// interactive correctness over frame-rate smoothness.
package schedule

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TimeProvider abstracts the clock for deterministic testing.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Since returns the elapsed time since t.
func (DefaultTimeProvider) Since(t time.Time) time.Duration { return time.Since(t) }

// Config defines the throttling parameters.
type Config struct {
	// Alpha is the EMA smoothing factor for the measured cost.
	Alpha float64
	// TargetCost is the per-tick CPU budget the engine should stay under.
	TargetCost time.Duration
}

// DefaultConfig returns the production throttling parameters: a fast
// moving average that tracks load changes within a handful of samples,
// and a 2ms per-tick budget.
func DefaultConfig() *Config {
	return &Config{
		Alpha:      0.2,
		TargetCost: 2 * time.Millisecond,
	}
}

// Scheduler gates metric engine invocations by measured cost.
//
// ShouldCompute is called once per scheduling tick; it returns true every
// skipInterval-th tick, where skipInterval = ceil(ema / target). The
// interval is recomputed after every actual invocation via RecordCost.
type Scheduler struct {
	mu  sync.Mutex
	cfg *Config
	tp  TimeProvider

	emaMs        float64
	skipInterval int
	tick         int
	invocations  uint64
}

// New creates a scheduler. A nil config selects DefaultConfig.
func New(cfg *Config) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logrus.WithFields(logrus.Fields{
		"function":    "schedule.New",
		"alpha":       cfg.Alpha,
		"target_cost": cfg.TargetCost,
	}).Info("Creating adaptive scheduler")
	return &Scheduler{
		cfg:          cfg,
		tp:           DefaultTimeProvider{},
		skipInterval: 1,
	}
}

// SetTimeProvider sets the time provider for deterministic testing.
// If tp is nil, DefaultTimeProvider is used.
func (s *Scheduler) SetTimeProvider(tp TimeProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tp == nil {
		tp = DefaultTimeProvider{}
	}
	s.tp = tp
}

// ShouldCompute advances the tick counter and reports whether the metric
// engine should run this tick. Skipped ticks re-render with the previous
// result instead.
func (s *Scheduler) ShouldCompute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick++
	return s.tick%s.skipInterval == 0
}

// Begin returns a start timestamp for a measured invocation.
func (s *Scheduler) Begin() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tp.Now()
}

// RecordCost folds a measured invocation cost into the moving average and
// recomputes the skip interval so the throttle tracks load changes within
// a handful of samples.
func (s *Scheduler) RecordCost(start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	costMs := float64(s.tp.Since(start)) / float64(time.Millisecond)
	if s.invocations == 0 {
		s.emaMs = costMs
	} else {
		s.emaMs = s.cfg.Alpha*costMs + (1-s.cfg.Alpha)*s.emaMs
	}
	s.invocations++

	targetMs := float64(s.cfg.TargetCost) / float64(time.Millisecond)
	interval := int(math.Ceil(s.emaMs / targetMs))
	if interval < 1 {
		interval = 1
	}
	s.skipInterval = interval

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.WithFields(logrus.Fields{
			"function":      "Scheduler.RecordCost",
			"cost_ms":       costMs,
			"ema_ms":        s.emaMs,
			"skip_interval": s.skipInterval,
		}).Trace("Cost recorded")
	}
}

// SkipInterval returns the current skip interval in ticks.
func (s *Scheduler) SkipInterval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipInterval
}

// AverageCost returns the current cost EMA.
func (s *Scheduler) AverageCost() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.emaMs * float64(time.Millisecond))
}

// Reset clears the moving average and tick state, returning the
// scheduler to its unthrottled initial behavior.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emaMs = 0
	s.skipInterval = 1
	s.tick = 0
	s.invocations = 0
}
