package capture

import (
	"image"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

// SyncWindow is the maximum media-time disagreement, in seconds, under
// which the polling fallback treats the two sources as synced and captures
// a tick. One frame at 60fps.
const SyncWindow = 0.016

// Source abstracts the presentable surface and clock of one rendition
// inside the external playback engine. It is the only thing the core
// depends on from the engine: no manifest, DRM or ABR knowledge.
type Source interface {
	// Frame returns the currently composited frame. It fails when the
	// surface is protected (pixel readback disallowed) or not yet ready;
	// such failures are non-fatal and retried on the next tick.
	Frame() (image.Image, error)

	// CurrentTime returns the source's media-timeline position in seconds.
	CurrentTime() float64

	// Paused reports whether playback is paused.
	Paused() bool

	// RequestFrameCallback registers a one-shot callback fired when the
	// source's own compositor presents the next frame, with an accurate
	// media timestamp. It returns false when the platform cannot provide
	// presentation callbacks, selecting the polling fallback instead.
	RequestFrameCallback(fn func(mediaTime float64)) bool

	// OnSeeked registers a persistent listener invoked every time a seek
	// on this source settles.
	OnSeeked(fn func())
}

// Capturer snapshots one source into fixed-resolution arena-backed
// rasters and hands the resulting samples to a sink.
type Capturer struct {
	src   Source
	id    SourceID
	arena *Arena
	sink  func(Sample)

	active       bool
	presentation bool
	seq          uint64
	failures     uint64
}

// NewCapturer wires a source to an arena and a sample sink. The sink is
// invoked synchronously from the capture callback, so it must fully ingest
// the sample before returning.
func NewCapturer(src Source, id SourceID, arena *Arena, sink func(Sample)) *Capturer {
	return &Capturer{src: src, id: id, arena: arena, sink: sink}
}

// Start activates capture. If the source supports presentation callbacks
// the capturer arms one immediately and re-arms after every frame;
// otherwise it reports false and the caller drives it through Poll.
func (c *Capturer) Start() bool {
	c.active = true
	c.presentation = c.src.RequestFrameCallback(c.onPresented)
	logrus.WithFields(logrus.Fields{
		"function":     "Capturer.Start",
		"source":       c.id.String(),
		"presentation": c.presentation,
	}).Info("Capture started")
	return c.presentation
}

// Stop deactivates capture. A presentation callback already in flight
// sees the inactive flag and does not re-arm, so teardown is atomic with
// respect to the shared scheduling thread.
func (c *Capturer) Stop() {
	c.active = false
	logrus.WithFields(logrus.Fields{
		"function": "Capturer.Stop",
		"source":   c.id.String(),
	}).Info("Capture stopped")
}

// Presentation reports whether the capturer runs on presentation
// callbacks rather than the polling fallback.
func (c *Capturer) Presentation() bool { return c.presentation }

// Failures returns how many capture attempts were abandoned because the
// source could not be read.
func (c *Capturer) Failures() uint64 { return c.failures }

// onPresented is the presentation-driven capture path: snapshot, emit,
// re-arm.
func (c *Capturer) onPresented(mediaTime float64) {
	if !c.active {
		return
	}
	c.CaptureNow(mediaTime)
	// The sink may have stopped the capturer while ingesting the sample;
	// re-arming then would leave a stale registration behind.
	if c.active {
		c.src.RequestFrameCallback(c.onPresented)
	}
}

// Poll captures on a shared tick at the source's current time. Used by
// the polling fallback and by paused/seek-settled capture.
func (c *Capturer) Poll() {
	if !c.active {
		return
	}
	c.CaptureNow(c.src.CurrentTime())
}

// CaptureNow draws the source into a free arena slot at the given media
// timestamp and emits the sample. Draw failures abandon the capture for
// this tick without emitting; the slot goes straight back to the arena.
func (c *Capturer) CaptureNow(mediaTime float64) {
	slot, buf, ok := c.arena.Acquire()
	if !ok {
		// Every buffer is still in flight; drop this capture.
		c.failures++
		return
	}
	frame, err := c.src.Frame()
	if err != nil {
		c.arena.Release(slot)
		c.failures++
		logrus.WithFields(logrus.Fields{
			"function": "Capturer.CaptureNow",
			"source":   c.id.String(),
			"error":    err,
		}).Debug("Capture abandoned, will retry next tick")
		return
	}
	xdraw.ApproxBiLinear.Scale(buf, buf.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
	c.seq++
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.WithFields(logrus.Fields{
			"function":   "Capturer.CaptureNow",
			"source":     c.id.String(),
			"media_time": mediaTime,
			"seq":        c.seq,
		}).Trace("Frame captured")
	}
	c.sink(Sample{
		Pix:       buf,
		Timestamp: mediaTime,
		Source:    c.id,
		Slot:      slot,
		Seq:       c.seq,
	})
}

// Pair drives the two capturers of a comparison session as a unit: the
// polling fallback, paused capture and seek-settled capture all need to
// see both sources at once.
type Pair struct {
	A, B      *Capturer
	srcA      Source
	srcB      Source
	onSettled func()
}

// NewPair builds the paired driver and subscribes to both sources'
// seek-settled events. Both are listened to because each source may
// finish seeking at a different wall-clock moment.
func NewPair(srcA, srcB Source, a, b *Capturer) *Pair {
	p := &Pair{A: a, B: b, srcA: srcA, srcB: srcB}
	srcA.OnSeeked(p.seekSettled)
	srcB.OnSeeked(p.seekSettled)
	return p
}

// OnSettled registers the session hook run after a paused-state capture
// triggered by a seek settling on either source.
func (p *Pair) OnSettled(fn func()) { p.onSettled = fn }

// Start activates both capturers and reports whether the presentation
// strategy is in effect. The polling fallback is used unless both sources
// deliver presentation callbacks, since matching needs timestamps of
// comparable accuracy from each side.
func (p *Pair) Start() bool {
	pa := p.A.Start()
	pb := p.B.Start()
	if pa != pb {
		logrus.WithFields(logrus.Fields{
			"function":       "Pair.Start",
			"presentation_a": pa,
			"presentation_b": pb,
		}).Info("Mixed capture capability, falling back to polling")
	}
	return pa && pb
}

// Stop deactivates both capturers.
func (p *Pair) Stop() {
	p.A.Stop()
	p.B.Stop()
}

// Tick drives the polling fallback: capture both sources only when their
// current times agree within SyncWindow, otherwise skip this tick.
func (p *Pair) Tick() {
	ta := p.srcA.CurrentTime()
	tb := p.srcB.CurrentTime()
	d := ta - tb
	if d < 0 {
		d = -d
	}
	if d > SyncWindow {
		return
	}
	p.A.Poll()
	p.B.Poll()
}

// CaptureBoth snapshots both sources immediately at their current times.
// Used once when both sources pause and again whenever a seek settles.
func (p *Pair) CaptureBoth() {
	p.A.Poll()
	p.B.Poll()
}

// Paused reports whether both sources are paused.
func (p *Pair) Paused() bool {
	return p.srcA.Paused() && p.srcB.Paused()
}

// seekSettled handles a settle event from either source while paused.
func (p *Pair) seekSettled() {
	if !p.Paused() {
		return
	}
	p.CaptureBoth()
	if p.onSettled != nil {
		p.onSettled()
	}
}
