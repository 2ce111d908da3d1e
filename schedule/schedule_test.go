package schedule

import (
	"testing"
	"time"
)

// mockTimeProvider returns scripted elapsed durations, one per
// Since call.
type mockTimeProvider struct {
	now      time.Time
	elapsed  []time.Duration
	sinceIdx int
}

func (m *mockTimeProvider) Now() time.Time { return m.now }

func (m *mockTimeProvider) Since(time.Time) time.Duration {
	d := m.elapsed[m.sinceIdx]
	if m.sinceIdx < len(m.elapsed)-1 {
		m.sinceIdx++
	}
	return d
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Alpha != 0.2 {
		t.Errorf("Alpha = %v, want 0.2", cfg.Alpha)
	}
	if cfg.TargetCost != 2*time.Millisecond {
		t.Errorf("TargetCost = %v, want 2ms", cfg.TargetCost)
	}
}

func TestSchedulerUnthrottledInitially(t *testing.T) {
	s := New(nil)
	for i := 0; i < 5; i++ {
		if !s.ShouldCompute() {
			t.Fatalf("tick %d skipped before any cost was recorded", i)
		}
	}
}

func TestSchedulerDerivesSkipInterval(t *testing.T) {
	cases := []struct {
		cost time.Duration
		want int
	}{
		{500 * time.Microsecond, 1},
		{2 * time.Millisecond, 1},
		{3 * time.Millisecond, 2},
		{10 * time.Millisecond, 5},
		{11 * time.Millisecond, 6},
	}
	for _, tc := range cases {
		s := New(nil)
		s.SetTimeProvider(&mockTimeProvider{elapsed: []time.Duration{tc.cost}})
		s.RecordCost(s.Begin())
		if got := s.SkipInterval(); got != tc.want {
			t.Errorf("cost %v: skip interval = %d, want %d", tc.cost, got, tc.want)
		}
	}
}

func TestSchedulerComputesEveryNthTick(t *testing.T) {
	s := New(nil)
	s.SetTimeProvider(&mockTimeProvider{elapsed: []time.Duration{10 * time.Millisecond}})
	s.RecordCost(s.Begin()) // interval 5

	computed := 0
	for i := 0; i < 20; i++ {
		if s.ShouldCompute() {
			computed++
		}
	}
	if computed != 4 {
		t.Errorf("computed %d of 20 ticks at interval 5, want 4", computed)
	}
}

func TestSchedulerEMAConvergence(t *testing.T) {
	s := New(nil)
	mtp := &mockTimeProvider{elapsed: []time.Duration{
		10 * time.Millisecond,
		2 * time.Millisecond,
		2 * time.Millisecond,
	}}
	s.SetTimeProvider(mtp)

	// The first sample seeds the average directly.
	s.RecordCost(s.Begin())
	if got := s.AverageCost(); got != 10*time.Millisecond {
		t.Fatalf("seed average = %v, want 10ms", got)
	}

	// Subsequent samples blend with alpha 0.2: 0.2*2 + 0.8*10 = 8.4.
	s.RecordCost(s.Begin())
	if got := s.AverageCost(); got != time.Duration(8.4*float64(time.Millisecond)) {
		t.Errorf("average after one blend = %v, want 8.4ms", got)
	}
	// 0.2*2 + 0.8*8.4 = 7.12, still above target so interval stays 4.
	s.RecordCost(s.Begin())
	if got := s.SkipInterval(); got != 4 {
		t.Errorf("skip interval = %d, want ceil(7.12/2) = 4", got)
	}
}

func TestSchedulerReset(t *testing.T) {
	s := New(nil)
	s.SetTimeProvider(&mockTimeProvider{elapsed: []time.Duration{20 * time.Millisecond}})
	s.RecordCost(s.Begin())
	if s.SkipInterval() != 10 {
		t.Fatalf("skip interval = %d, want 10", s.SkipInterval())
	}
	s.Reset()
	if s.SkipInterval() != 1 {
		t.Errorf("skip interval after Reset = %d, want 1", s.SkipInterval())
	}
	if s.AverageCost() != 0 {
		t.Errorf("average after Reset = %v, want 0", s.AverageCost())
	}
	if !s.ShouldCompute() {
		t.Error("first tick after Reset skipped")
	}
	// A fresh first sample seeds the average again instead of blending
	// with the discarded history.
	s.SetTimeProvider(&mockTimeProvider{elapsed: []time.Duration{4 * time.Millisecond}})
	s.RecordCost(s.Begin())
	if got := s.AverageCost(); got != 4*time.Millisecond {
		t.Errorf("post-Reset seed average = %v, want 4ms", got)
	}
}
