package framecmp

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/framecmp/compositor"
	"github.com/opd-ai/framecmp/vmaf"
)

// playbackStub simulates one rendition of the playback engine: a
// scriptable frame, media clock, pause state and the optional
// presentation-callback capability.
type playbackStub struct {
	frame        *image.RGBA
	now          float64
	paused       bool
	presentation bool

	pending  func(float64)
	onSeeked func()
}

func (p *playbackStub) Frame() (image.Image, error) { return p.frame, nil }
func (p *playbackStub) CurrentTime() float64        { return p.now }
func (p *playbackStub) Paused() bool                { return p.paused }

func (p *playbackStub) RequestFrameCallback(fn func(float64)) bool {
	if !p.presentation {
		return false
	}
	p.pending = fn
	return true
}

func (p *playbackStub) OnSeeked(fn func()) { p.onSeeked = fn }

// present fires the armed presentation callback at the given media time.
func (p *playbackStub) present(mediaTime float64) {
	fn := p.pending
	p.pending = nil
	if fn != nil {
		p.now = mediaTime
		fn(mediaTime)
	}
}

// seek jumps the media clock and fires the settle event.
func (p *playbackStub) seek(to float64) {
	p.now = to
	if p.onSeeked != nil {
		p.onSeeked()
	}
}

func newStubs(sigma float64) (*playbackStub, *playbackStub) {
	ref := gradientFrame(120, 68)
	a := &playbackStub{frame: ref, paused: true}
	b := &playbackStub{frame: noisyFrame(ref, sigma, 42), paused: true}
	return a, b
}

func TestSessionPausedStartComputesImmediately(t *testing.T) {
	srcA, srcB := newStubs(5)
	srcA.now, srcB.now = 5.0, 5.0

	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)
	require.Nil(t, s.Latest(), "result before Start")

	s.Start()
	res := s.Latest()
	require.NotNil(t, res, "paused Start must produce an immediate result")
	require.NotNil(t, res.PSNR)
	require.NotNil(t, res.SSIM)
	require.NotNil(t, res.MSSSIM)
	require.NotNil(t, res.VMAF)

	assert.InDelta(t, 34, *res.PSNR, 3, "PSNR of per-channel sigma=5 noise")
	assert.Greater(t, *res.SSIM, 0.9)
	assert.Greater(t, *res.MSSSIM, 0.9)
	assert.GreaterOrEqual(t, *res.VMAF, 85.0, "VMAF(hd) of per-channel sigma=5 noise")
	assert.LessOrEqual(t, *res.VMAF, 97.0)
	assert.Equal(t, 5.0, res.Timestamp)
}

func TestSessionIdenticalRenditions(t *testing.T) {
	ref := gradientFrame(120, 68)
	srcA := &playbackStub{frame: ref, paused: true}
	srcB := &playbackStub{frame: ref, paused: true}

	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)
	s.Start()

	res := s.Latest()
	require.NotNil(t, res)
	assert.Equal(t, 60.0, *res.PSNR, "identical renditions clamp at the PSNR cap")
	assert.InDelta(t, 1.0, *res.SSIM, 1e-6)
	assert.Greater(t, *res.VMAF, 90.0)
}

func TestSessionPollingPlayback(t *testing.T) {
	srcA, srcB := newStubs(5)
	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)
	s.Start()
	require.Equal(t, uint64(1), s.Matcher().Matches())

	srcA.paused, srcB.paused = false, false
	const dt = 1.0 / 30.0
	for i := 1; i <= 10; i++ {
		srcA.now = float64(i) * dt
		srcB.now = float64(i) * dt
		s.Tick()
	}
	assert.GreaterOrEqual(t, s.Matcher().Matches(), uint64(10))
	assert.GreaterOrEqual(t, s.History().Len(MetricPSNR), 1)

	// Out-of-sync sources skip capture entirely.
	matched := s.Matcher().Matches()
	srcA.now = 2.0
	srcB.now = 2.5
	s.Tick()
	assert.Equal(t, matched, s.Matcher().Matches(), "out-of-sync tick must not capture")
}

func TestSessionSustainedPlaybackRecyclesBuffers(t *testing.T) {
	srcA, srcB := newStubs(5)
	srcA.paused, srcB.paused = false, false
	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)
	s.Start()

	// Far more captures than arena slots: displaced samples must flow
	// back to their arenas or capture stalls after four frames.
	const dt = 1.0 / 30.0
	for i := 1; i <= 60; i++ {
		srcA.now = float64(i) * dt
		srcB.now = float64(i) * dt
		s.Tick()
	}
	assert.Zero(t, s.pair.A.Failures(), "A-side capture starved of buffers")
	assert.Zero(t, s.pair.B.Failures(), "B-side capture starved of buffers")
	assert.GreaterOrEqual(t, s.Matcher().Matches(), uint64(55))
	for _, arena := range s.arenas {
		assert.GreaterOrEqual(t, arena.FreeSlots(), 1)
	}
}

func TestSessionPresentationPlayback(t *testing.T) {
	srcA, srcB := newStubs(5)
	srcA.presentation = true
	srcB.presentation = true
	srcA.paused, srcB.paused = false, false

	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)
	s.Start()
	require.NotNil(t, srcA.pending, "presentation capture must arm on Start")

	srcA.present(1.000)
	srcB.present(1.002)
	require.Equal(t, uint64(1), s.Matcher().Matches())

	s.Tick()
	res := s.Latest()
	require.NotNil(t, res)
	assert.Equal(t, 1.0, res.Timestamp)

	// Without a new match the next tick recomputes nothing.
	computes := s.engine.Computes()
	s.Tick()
	assert.Equal(t, computes, s.engine.Computes(), "clean front must not recompute")
}

func TestSessionScoreCallbacks(t *testing.T) {
	srcA, srcB := newStubs(5)
	srcA.now, srcB.now = 3.0, 3.0

	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)

	type event struct {
		ts    float64
		score *float64
		grade Grade
	}
	var vmafEvents []event
	s.OnScore(MetricVMAF, func(ts float64, score *float64, grade Grade) {
		vmafEvents = append(vmafEvents, event{ts, score, grade})
	})

	s.Start()
	require.Len(t, vmafEvents, 1)
	require.NotNil(t, vmafEvents[0].score)
	assert.Equal(t, 3.0, vmafEvents[0].ts)
	assert.Equal(t, GradeScore(MetricVMAF, *vmafEvents[0].score), vmafEvents[0].grade)
}

func TestSessionSeekSettleWhilePaused(t *testing.T) {
	srcA, srcB := newStubs(5)
	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)
	s.Start()

	srcB.now = 42.5
	srcA.seek(42.5)
	res := s.Latest()
	require.NotNil(t, res)
	assert.Equal(t, 42.5, res.Timestamp, "settle must recompute at the seek target")
}

func TestSessionModelSwitchInvalidatesVMAFHistory(t *testing.T) {
	srcA, srcB := newStubs(5)
	srcA.now, srcB.now = 1.0, 1.0
	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)
	s.Start()
	require.GreaterOrEqual(t, s.History().Len(MetricVMAF), 1)
	psnrLen := s.History().Len(MetricPSNR)

	require.NoError(t, s.SetModel(vmaf.Model4K))
	assert.Equal(t, 0, s.History().Len(MetricVMAF), "VMAF history must not survive a model switch")
	assert.Equal(t, psnrLen, s.History().Len(MetricPSNR), "other metrics keep their history")

	assert.ErrorIs(t, s.SetModel("uhd"), vmaf.ErrUnknownModel)
}

func TestSessionComposite(t *testing.T) {
	srcA, srcB := newStubs(5)
	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)

	dst := image.NewRGBA(image.Rect(0, 0, 120, 68))
	assert.ErrorIs(t, s.Composite(dst), ErrNotActive, "composite before any pass")

	s.Start()
	require.NoError(t, s.Composite(dst))

	require.NoError(t, s.SetAmplification(8))
	s.SetPalette(compositor.PaletteTemperature)
	require.NoError(t, s.Composite(dst))
	assert.Error(t, s.SetAmplification(3))
}

func TestSessionStopTearsDownAtomically(t *testing.T) {
	srcA, srcB := newStubs(5)
	s, err := NewSession(srcA, srcB, nil)
	require.NoError(t, err)
	s.Start()
	require.True(t, s.Active())
	require.NotNil(t, s.Latest())

	s.Stop()
	assert.False(t, s.Active())
	assert.Nil(t, s.Latest(), "results must not survive Stop")
	assert.Equal(t, 0, s.History().Len(MetricPSNR))
	_, ok := s.Matcher().Front()
	assert.False(t, ok, "front pair must not survive Stop")

	// Every arena slot is back in its pool, so a restarted session has
	// the full buffer budget.
	for _, arena := range s.arenas {
		assert.Equal(t, 4, arena.FreeSlots())
	}

	// Callbacks and ticks after Stop are inert.
	s.Tick()
	srcA.seek(9.0)
	assert.Nil(t, s.Latest())

	// The session restarts cleanly.
	srcB.now = 9.0
	s.Start()
	assert.NotNil(t, s.Latest())
}

func TestSessionInvalidConfig(t *testing.T) {
	srcA, srcB := newStubs(0)
	_, err := NewSession(srcA, srcB, &Config{RasterWidth: 120, RasterHeight: 68, Amplification: 5, Model: vmaf.ModelHD})
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Model = "uhd"
	_, err = NewSession(srcA, srcB, cfg)
	assert.ErrorIs(t, err, vmaf.ErrUnknownModel)
}
