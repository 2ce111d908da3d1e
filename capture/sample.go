package capture

import (
	"fmt"
	"image"
)

// SourceID identifies which of the two compared renditions a sample
// belongs to.
type SourceID int

const (
	// SourceA is the left/reference rendition.
	SourceA SourceID = iota
	// SourceB is the right/distorted rendition.
	SourceB
)

// String returns "A" or "B".
func (id SourceID) String() string {
	switch id {
	case SourceA:
		return "A"
	case SourceB:
		return "B"
	default:
		return fmt.Sprintf("Source(%d)", int(id))
	}
}

// Sample is one captured raster together with the media-timeline timestamp
// it was presented at. Samples are immutable once emitted: the next
// capture from the same source supersedes them via a fresh arena slot.
type Sample struct {
	// Pix is the fixed-resolution RGBA raster, backed by an arena slot.
	Pix *image.RGBA
	// Timestamp is the source's media time in seconds.
	Timestamp float64
	// Source identifies the rendition the sample came from.
	Source SourceID
	// Slot is the arena slot index backing Pix, used for recycling.
	Slot int
	// Seq is a per-source capture sequence number.
	Seq uint64
}
