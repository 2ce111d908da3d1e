package capture

import "image"

// arenaSlots is the number of buffers each source's arena holds: current,
// previous, front and one in-flight capture target.
const arenaSlots = 4

// Arena is a small fixed pool of raster buffers for one source.
//
// Buffers move between roles (in-flight, current, previous, front) by slot
// index exchange on each successful match, never by copying pixel data, so
// there is no hidden aliasing between the matcher's slots and the buffer a
// capture is currently drawing into.
type Arena struct {
	bufs []*image.RGBA
	free []int
}

// NewArena allocates an arena of fixed-size raster buffers.
func NewArena(w, h int) *Arena {
	a := &Arena{
		bufs: make([]*image.RGBA, arenaSlots),
		free: make([]int, 0, arenaSlots),
	}
	for i := range a.bufs {
		a.bufs[i] = image.NewRGBA(image.Rect(0, 0, w, h))
		a.free = append(a.free, i)
	}
	return a
}

// Acquire checks out a free slot to draw into. ok is false when every slot
// is in use, which means a capture fired before the matcher recycled the
// previous one; the caller skips that capture and retries next tick.
func (a *Arena) Acquire() (slot int, buf *image.RGBA, ok bool) {
	if len(a.free) == 0 {
		return 0, nil, false
	}
	slot = a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	return slot, a.bufs[slot], true
}

// Release returns a slot to the free list.
func (a *Arena) Release(slot int) {
	a.free = append(a.free, slot)
}

// FreeSlots reports how many slots are currently available.
func (a *Arena) FreeSlots() int { return len(a.free) }
