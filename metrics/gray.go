package metrics

import "image"

// Plane is a single-channel float raster in row-major order.
//
// Grayscale conversion and all downstream metric math operate on Plane
// values in the [0,255] range. Plane is passed by value; the backing pixel
// slice is shared, so callers must not mutate a Plane handed to a metric
// while the call is in flight.
type Plane struct {
	Pix  []float64
	W, H int
}

// NewPlane allocates a zeroed plane of the given dimensions.
func NewPlane(w, h int) Plane {
	return Plane{Pix: make([]float64, w*h), W: w, H: h}
}

// At returns the value at (x, y). No bounds checking beyond the slice's own.
func (p Plane) At(x, y int) float64 { return p.Pix[y*p.W+x] }

// Set stores v at (x, y).
func (p Plane) Set(x, y int, v float64) { p.Pix[y*p.W+x] = v }

// Grayscale converts an RGBA raster to a luma plane using BT.601 weights.
func Grayscale(img *image.RGBA) Plane {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	p := NewPlane(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[(y+b.Min.Y-img.Rect.Min.Y)*img.Stride:]
		for x := 0; x < w; x++ {
			o := (x + b.Min.X - img.Rect.Min.X) * 4
			r := float64(row[o])
			g := float64(row[o+1])
			bl := float64(row[o+2])
			p.Pix[y*w+x] = 0.299*r + 0.587*g + 0.114*bl
		}
	}
	return p
}

// downsample2x halves a plane in each dimension with a 2x2 box average.
// Odd trailing rows/columns are folded into the last output cell.
func downsample2x(p Plane) Plane {
	ow := (p.W + 1) / 2
	oh := (p.H + 1) / 2
	out := NewPlane(ow, oh)
	for y := 0; y < oh; y++ {
		y0 := 2 * y
		y1 := y0 + 1
		if y1 >= p.H {
			y1 = p.H - 1
		}
		for x := 0; x < ow; x++ {
			x0 := 2 * x
			x1 := x0 + 1
			if x1 >= p.W {
				x1 = p.W - 1
			}
			sum := p.At(x0, y0) + p.At(x1, y0) + p.At(x0, y1) + p.At(x1, y1)
			out.Set(x, y, sum/4)
		}
	}
	return out
}
