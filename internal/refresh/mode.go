// Package refresh decides between full and partial panel refreshes.
package refresh

import "github.com/koios/epaper-weather/internal/canvas"

// DefaultEvery is the wake period of forced full refreshes
const DefaultEvery = 12

// Mode is the panel refresh strategy for one wake cycle
type Mode int

const (
	// Full re-initializes the panel and clears ghosting
	Full Mode = iota
	// Partial updates the whole panel in the fast driver mode
	Partial
)

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Partial:
		return "partial"
	default:
		return "unknown"
	}
}

// SelectMode returns Full on a fresh boot or every 12th wake
func SelectMode(counter int, fresh bool) Mode {
	return Selector{Every: DefaultEvery}.Select(counter, fresh)
}

// Selector is SelectMode with a configurable period
type Selector struct {
	Every int
}

// Select returns Full iff fresh or counter is a multiple of the period.
// A non-positive period falls back to DefaultEvery.
func (s Selector) Select(counter int, fresh bool) Mode {
	every := s.Every
	if every <= 0 {
		every = DefaultEvery
	}
	if fresh || counter%every == 0 {
		return Full
	}
	return Partial
}

// Apply configures the addressable window once per cycle, before rotation is set.
// Partial still spans the whole panel.
func Apply(c canvas.Canvas, mode Mode) {
	if mode == Full {
		c.SetFullWindow()
		return
	}
	c.SetPartialWindow(0, 0, c.Width(), c.Height())
}
