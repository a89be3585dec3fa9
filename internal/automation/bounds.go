package automation

import "sync/atomic"

// Bounds is the last observed display size in pixels.
type Bounds struct {
	Width  float64
	Height float64
}

// BoundsHint caches the display size used to pre-validate move_mouse
// coordinates. It is a racily-refreshable hint, not a source of truth:
// every screen_size query overwrites it, and validation falls back to
// non-negativity checks until a first value has been captured.
type BoundsHint struct {
	v atomic.Pointer[Bounds]
}

// Get returns the cached bounds, or nil when no display size has been
// observed yet.
func (h *BoundsHint) Get() *Bounds {
	return h.v.Load()
}

// Set overwrites the cached bounds. Zero or negative sizes are ignored.
func (h *BoundsHint) Set(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	h.v.Store(&Bounds{Width: width, Height: height})
}
