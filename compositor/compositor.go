// Package compositor blends a metric heatmap over one source's own pixels.
//
// The metric engine's only obligation toward this package is the texture
// contract: a rectangular single-channel byte grid with its dimensions
// reported alongside the data, higher values meaning better local
// quality. This package provides the CPU reference implementation of the
// single blend pass a GPU compositor would run, shared by the
// raw-difference and false-color palettes.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/opd-ai/framecmp/metrics"
)

// Palette selects the false-color mapping of the blend pass.
type Palette int

const (
	// PaletteGrayscale shows the raw-difference grid as gray levels.
	PaletteGrayscale Palette = iota
	// PaletteTemperature shows the raw-difference grid on a blue-to-red ramp.
	PaletteTemperature
	// PalettePSNR overlays the per-block PSNR grid.
	PalettePSNR
	// PaletteSSIM overlays the per-block SSIM grid.
	PaletteSSIM
	// PaletteMSSSIM overlays the per-block MS-SSIM grid.
	PaletteMSSSIM
	// PaletteVMAF overlays the VMAF-weighted grid.
	PaletteVMAF
)

// String returns the configuration name of the palette.
func (p Palette) String() string {
	switch p {
	case PaletteGrayscale:
		return "grayscale"
	case PaletteTemperature:
		return "temperature"
	case PalettePSNR:
		return "psnr"
	case PaletteSSIM:
		return "ssim"
	case PaletteMSSSIM:
		return "msssim"
	case PaletteVMAF:
		return "vmaf"
	default:
		return fmt.Sprintf("Palette(%d)", int(p))
	}
}

// ErrUnknownPalette is returned by ParsePalette for unrecognized names.
var ErrUnknownPalette = errors.New("compositor: unknown palette")

// ParsePalette maps a configuration string to a Palette.
func ParsePalette(s string) (Palette, error) {
	for p := PaletteGrayscale; p <= PaletteVMAF; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPalette, s)
}

// MetricDriven reports whether the palette overlays a metric grid rather
// than the raw pixel difference.
func (p Palette) MetricDriven() bool { return p >= PalettePSNR }

// ValidAmplification reports whether amp is a recognized amplification
// factor. The blend pass only supports power-of-two steps.
func ValidAmplification(amp int) bool {
	return amp == 1 || amp == 2 || amp == 4 || amp == 8
}

// ErrGridMismatch is returned when the heatmap grid is empty or its
// dimensions do not describe its data.
var ErrGridMismatch = errors.New("compositor: heatmap grid does not match its dimensions")

// Blend composites the heatmap over src into dst in a single pass,
// equivalent to the shader pass a GPU build would use. Opacity is
// inversely proportional to local quality and scaled by amp, so pristine
// regions show the source untouched and damaged regions show the palette
// color. dst and src must share dimensions; dst may alias src.
func Blend(dst, src *image.RGBA, heat *metrics.Heatmap, pal Palette, amp int) error {
	if heat == nil || heat.W <= 0 || heat.H <= 0 || len(heat.Data) != heat.W*heat.H {
		return ErrGridMismatch
	}
	if !ValidAmplification(amp) {
		return fmt.Errorf("compositor: amplification %d not in {1,2,4,8}", amp)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
		return fmt.Errorf("compositor: dst %dx%d does not match src %dx%d",
			dst.Bounds().Dx(), dst.Bounds().Dy(), w, h)
	}

	for y := 0; y < h; y++ {
		gy := y * heat.H / h
		for x := 0; x < w; x++ {
			gx := x * heat.W / w
			quality := heat.At(gx, gy)

			// Inverse-quality opacity, amplified and saturated.
			badness := int(255-quality) * amp
			if badness > 255 {
				badness = 255
			}
			c := pal.colorFor(byte(badness))

			so := src.PixOffset(x+b.Min.X, y+b.Min.Y)
			do := dst.PixOffset(x+dst.Bounds().Min.X, y+dst.Bounds().Min.Y)
			alpha := int(c.A)
			inv := 255 - alpha
			dst.Pix[do] = byte((int(c.R)*alpha + int(src.Pix[so])*inv) / 255)
			dst.Pix[do+1] = byte((int(c.G)*alpha + int(src.Pix[so+1])*inv) / 255)
			dst.Pix[do+2] = byte((int(c.B)*alpha + int(src.Pix[so+2])*inv) / 255)
			dst.Pix[do+3] = 255
		}
	}
	return nil
}

// colorFor maps an amplified badness level to the palette's overlay color
// with its blend alpha.
func (p Palette) colorFor(badness byte) color.RGBA {
	switch p {
	case PaletteGrayscale:
		return color.RGBA{R: badness, G: badness, B: badness, A: badness}
	default:
		// Blue-to-red temperature ramp shared by all false-color modes.
		return color.RGBA{R: badness, G: 0, B: 255 - badness, A: badness}
	}
}
