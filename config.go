package framecmp

import (
	"fmt"

	"github.com/opd-ai/framecmp/compositor"
	"github.com/opd-ai/framecmp/schedule"
	"github.com/opd-ai/framecmp/vmaf"
)

// Config holds the recognized session options.
type Config struct {
	// RasterWidth and RasterHeight set the fixed metric raster size every
	// source frame is downscaled into. The default is deliberately small:
	// metric cost grows linearly with the pixel count and the comparison
	// targets interactive update rates, not archival accuracy.
	RasterWidth  int
	RasterHeight int

	// Amplification scales the difference overlay. One of 1, 2, 4, 8.
	Amplification int

	// Palette selects the heatmap rendering mode.
	Palette compositor.Palette

	// Model selects the VMAF constant tables. Changing it on a live
	// session invalidates accumulated VMAF history and temporal state,
	// because scores from different models are not comparable.
	Model vmaf.ModelID

	// Scheduler overrides the throttling parameters. Nil selects
	// schedule.DefaultConfig.
	Scheduler *schedule.Config
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		RasterWidth:   120,
		RasterHeight:  68,
		Amplification: 1,
		Palette:       compositor.PaletteSSIM,
		Model:         vmaf.ModelHD,
	}
}

// Validate checks the option ranges.
func (c *Config) Validate() error {
	if c.RasterWidth <= 0 || c.RasterHeight <= 0 {
		return fmt.Errorf("framecmp: invalid raster size %dx%d", c.RasterWidth, c.RasterHeight)
	}
	if !compositor.ValidAmplification(c.Amplification) {
		return fmt.Errorf("framecmp: amplification %d not in {1,2,4,8}", c.Amplification)
	}
	if _, err := vmaf.Lookup(c.Model); err != nil {
		return err
	}
	return nil
}
