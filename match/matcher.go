// Package match pairs the two capture streams of a comparison session
// into timestamp-aligned frame pairs.
//
// The two renditions' compositors are independently clocked and can run
// up to one frame out of phase, so naively pairing "latest A" with
// "latest B" mismatches roughly half the time. The matcher keeps the
// current and previous capture from each source and tries the three
// phase-consistent pairings in priority order, accepting the first whose
// timestamp delta is inside the tolerance.
package match

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/framecmp/capture"
)

// Tolerance is the maximum presentation-timestamp delta, in seconds, for
// two samples to form a valid pair.
const Tolerance = 0.010

// Pair is a matched pair of samples. It is consumed once by the metric
// engine and the render step and is not retained beyond the next
// successful match.
type Pair struct {
	A, B capture.Sample
	// Timestamp is the match's presentation timestamp.
	Timestamp float64
}

type slot struct {
	s     capture.Sample
	valid bool
}

// Matcher maintains four sample slots (current and previous per source)
// and a front pair that the render and metric steps consume. Between
// successful matches the front keeps holding the last good pair, so
// consumers never see a freeze, a torn pair, or a silently unmatched one.
//
// All methods must run on the single scheduling thread; a capture
// callback fully updates its slot and attempts a match before returning,
// so the matcher never observes a half-updated slot.
type Matcher struct {
	cur  [2]slot
	prev [2]slot

	front    [2]slot
	hasFront bool

	lastMatch   float64
	hasLast     bool
	recycle     func(capture.Sample)
	onMatch     func(Pair)
	matches     uint64
	dedupSkips  uint64
	missedSides uint64
}

// NewMatcher builds a matcher. recycle is invoked when a sample's buffer
// slot leaves all matcher roles and can be reused by its arena; onMatch
// fires on every accepted pair, after the front has been promoted.
func NewMatcher(recycle func(capture.Sample), onMatch func(Pair)) *Matcher {
	return &Matcher{recycle: recycle, onMatch: onMatch}
}

// Ingest stores a new capture and attempts a match.
func (m *Matcher) Ingest(s capture.Sample) {
	src := int(s.Source)

	// Shift cur to prev; the displaced prev leaves its last role here.
	old := m.prev[src]
	m.prev[src] = m.cur[src]
	m.cur[src] = slot{s: s, valid: true}
	m.releaseIfUnused(old)

	a, b, ok := m.candidate()
	if !ok {
		return
	}

	ts := a.Timestamp
	if m.hasLast && math.Abs(ts-m.lastMatch) < Tolerance {
		// Both sources' callbacks fired for the same presented frame; a
		// second acceptance would pair a fresh capture with a now-stale
		// previous one and oscillate between two nearly identical frames.
		m.dedupSkips++
		return
	}

	oldA, oldB := m.front[0], m.front[1]
	m.front[0] = slot{s: a, valid: true}
	m.front[1] = slot{s: b, valid: true}
	m.hasFront = true
	m.lastMatch = ts
	m.hasLast = true
	m.matches++
	m.releaseIfUnused(oldA)
	m.releaseIfUnused(oldB)

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.WithFields(logrus.Fields{
			"function":  "Matcher.Ingest",
			"timestamp": ts,
			"delta":     math.Abs(a.Timestamp - b.Timestamp),
		}).Trace("Pair matched")
	}
	if m.onMatch != nil {
		m.onMatch(Pair{A: a, B: b, Timestamp: ts})
	}
}

// candidate tries the three pairings in priority order: both current
// (compositors in phase), current A against previous B (B one frame
// ahead), previous A against current B (A one frame ahead).
func (m *Matcher) candidate() (capture.Sample, capture.Sample, bool) {
	try := [][2]slot{
		{m.cur[0], m.cur[1]},
		{m.cur[0], m.prev[1]},
		{m.prev[0], m.cur[1]},
	}
	for _, t := range try {
		if !t[0].valid || !t[1].valid {
			continue
		}
		if math.Abs(t[0].s.Timestamp-t[1].s.Timestamp) < Tolerance {
			return t[0].s, t[1].s, true
		}
	}
	m.missedSides++
	return capture.Sample{}, capture.Sample{}, false
}

// Front returns the current front pair. ok is false until the first
// successful match of the session.
func (m *Matcher) Front() (Pair, bool) {
	if !m.hasFront {
		return Pair{}, false
	}
	return Pair{
		A:         m.front[0].s,
		B:         m.front[1].s,
		Timestamp: m.lastMatch,
	}, true
}

// Matches returns the number of accepted pairs.
func (m *Matcher) Matches() uint64 { return m.matches }

// DedupSkips returns how many candidate pairs were rejected by the
// duplicate-timestamp guard.
func (m *Matcher) DedupSkips() uint64 { return m.dedupSkips }

// Reset drops all slots, recycling their buffers, and clears the front.
func (m *Matcher) Reset() {
	for src := 0; src < 2; src++ {
		held := []slot{m.cur[src], m.prev[src], m.front[src]}
		m.cur[src] = slot{}
		m.prev[src] = slot{}
		m.front[src] = slot{}
		// The front often shares a buffer with cur or prev; release each
		// distinct slot exactly once.
		seen := map[int]bool{}
		for _, sl := range held {
			if !sl.valid || seen[sl.s.Slot] {
				continue
			}
			seen[sl.s.Slot] = true
			if m.recycle != nil {
				m.recycle(sl.s)
			}
		}
	}
	m.hasFront = false
	m.hasLast = false
}

// releaseIfUnused hands a sample's buffer back to its arena once no
// matcher role references its slot anymore.
func (m *Matcher) releaseIfUnused(sl slot) {
	if !sl.valid || m.recycle == nil {
		return
	}
	src := int(sl.s.Source)
	for _, held := range []slot{m.cur[src], m.prev[src], m.front[src]} {
		if held.valid && held.s.Slot == sl.s.Slot {
			return
		}
	}
	m.recycle(sl.s)
}
