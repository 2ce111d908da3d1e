package metrics

// Heatmap is the rectangular byte grid handed to the heatmap compositor.
//
// This is the only contract the metric engine honors toward rendering: a
// row-major single-channel grid with its dimensions reported alongside the
// data, every value in [0,255]. Higher values mean better local quality.
type Heatmap struct {
	Data []byte
	W, H int
}

// NewHeatmap allocates a zeroed heatmap grid.
func NewHeatmap(w, h int) *Heatmap {
	return &Heatmap{Data: make([]byte, w*h), W: w, H: h}
}

// SetScore writes a unit-range score into cell (x, y), clamping to [0,1]
// before scaling to a byte. Block scores can dip slightly negative on
// pathological content; the clamp keeps the texture contract intact.
func (h *Heatmap) SetScore(x, y int, score float64) {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	h.Data[y*h.W+x] = byte(score*255 + 0.5)
}

// At returns the byte value at cell (x, y).
func (h *Heatmap) At(x, y int) byte { return h.Data[y*h.W+x] }
