package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sync"
)

// Panel is the physical display behind a Framebuffer. All rectangles are in
// native panel coordinates.
type Panel interface {
	Bounds() image.Rectangle
	// Write transfers the r part of src (starting at sp) into panel RAM.
	Write(r image.Rectangle, src image.Image, sp image.Point) error
	// Refresh shows panel RAM, in the fast partial mode when partial is set.
	Refresh(partial bool, window image.Rectangle) error
	PowerOff() error
}

// PNGPanel is a headless panel that writes every refresh to a PNG file
type PNGPanel struct {
	mu       sync.Mutex
	path     string
	rotation int
	ram      *image.Gray

	refreshes   int
	lastPartial bool
}

// NewPNGPanel creates a width x height native panel. The PNG is written in
// logical orientation for the given rotation; an empty path keeps the frame
// in memory only.
func NewPNGPanel(path string, width, height, rotation int) *PNGPanel {
	ram := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(ram, ram.Rect, image.NewUniform(White), image.Point{}, draw.Src)
	return &PNGPanel{path: path, rotation: rotation, ram: ram}
}

func (p *PNGPanel) Bounds() image.Rectangle {
	return p.ram.Rect
}

func (p *PNGPanel) Write(r image.Rectangle, src image.Image, sp image.Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	draw.Draw(p.ram, r, src, sp, draw.Src)
	return nil
}

// Refresh encodes the panel RAM and replaces the output file
func (p *PNGPanel) Refresh(partial bool, window image.Rectangle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refreshes++
	p.lastPartial = partial

	if p.path == "" {
		return nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Rotate(p.ram, p.rotation)); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("failed to replace frame: %w", err)
	}
	return nil
}

func (p *PNGPanel) PowerOff() error {
	return nil
}

// Snapshot returns a copy of the panel RAM in logical orientation
func (p *PNGPanel) Snapshot() *image.Gray {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Rotate(p.ram, p.rotation)
}

// Refreshes returns the refresh count and whether the last one was partial
func (p *PNGPanel) Refreshes() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshes, p.lastPartial
}
