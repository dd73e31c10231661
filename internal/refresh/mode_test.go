package refresh

import (
	"testing"

	"github.com/koios/epaper-weather/internal/canvas"
)

func TestSelectMode(t *testing.T) {
	for c := 0; c <= 60; c++ {
		got := SelectMode(c, false)
		want := Partial
		if c%12 == 0 {
			want = Full
		}
		if got != want {
			t.Errorf("SelectMode(%d, false) = %v, want %v", c, got, want)
		}

		if SelectMode(c, true) != Full {
			t.Errorf("SelectMode(%d, true) should always be full", c)
		}
	}
}

func TestSelector(t *testing.T) {
	tests := []struct {
		name    string
		every   int
		counter int
		want    Mode
	}{
		{"period 6 hits", 6, 18, Full},
		{"period 6 misses", 6, 13, Partial},
		{"zero period falls back", 0, 24, Full},
		{"negative period falls back", -3, 13, Partial},
		{"period 1 always full", 1, 7, Full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Selector{Every: tt.every}).Select(tt.counter, false); got != tt.want {
				t.Errorf("Select(%d) = %v, want %v", tt.counter, got, tt.want)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	if Full.String() != "full" || Partial.String() != "partial" {
		t.Errorf("unexpected names %q, %q", Full, Partial)
	}
	if Mode(9).String() != "unknown" {
		t.Errorf("Mode(9) = %q", Mode(9))
	}
}

// windowRecorder records window calls and ignores the rest of the canvas
type windowRecorder struct {
	canvas.Canvas
	full    int
	partial []int
}

func (w *windowRecorder) Width() int     { return 800 }
func (w *windowRecorder) Height() int    { return 480 }
func (w *windowRecorder) SetFullWindow() { w.full++ }
func (w *windowRecorder) SetPartialWindow(x, y, width, height int) {
	w.partial = []int{x, y, width, height}
}

func TestApply(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		rec := &windowRecorder{}
		Apply(rec, Full)
		if rec.full != 1 || rec.partial != nil {
			t.Errorf("full=%d partial=%v", rec.full, rec.partial)
		}
	})

	t.Run("partial spans the panel", func(t *testing.T) {
		rec := &windowRecorder{}
		Apply(rec, Partial)
		want := []int{0, 0, 800, 480}
		if rec.full != 0 || len(rec.partial) != 4 {
			t.Fatalf("full=%d partial=%v", rec.full, rec.partial)
		}
		for i := range want {
			if rec.partial[i] != want[i] {
				t.Errorf("partial window = %v, want %v", rec.partial, want)
				break
			}
		}
	})
}
