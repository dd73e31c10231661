// Package canvas provides the drawing surface the dashboard is rendered on.
//
// The Canvas interface follows the Adafruit GFX / GxEPD2 vocabulary the panel
// firmware world uses: a text cursor at the glyph baseline, rotation applied at
// pixel level, 1-bit bitmaps and a paged commit loop in which the drawing
// callback runs once per physical page.
package canvas

import (
	"image/color"

	"golang.org/x/image/font"
)

// Monochrome colors
var (
	Black color.Color = color.Gray{Y: 0}
	White color.Color = color.Gray{Y: 0xff}
)

// Bitmap is a 1-bit image in drawBitmap layout: rows top to bottom, most
// significant bit first, every row padded to a whole byte.
type Bitmap []byte

// Canvas is the drawing surface of a panel.
type Canvas interface {
	// Width and Height are the logical dimensions after rotation.
	Width() int
	Height() int

	SetRotation(r int)
	SetFont(face font.Face)
	SetTextColor(c color.Color)
	// SetCursor places the text cursor; y is the baseline.
	SetCursor(x, y int)
	Print(s string)
	Printf(format string, args ...interface{})

	// DrawBitmap paints the set bits of bmp with c; clear bits are left untouched.
	DrawBitmap(x, y int, bmp Bitmap, w, h int, c color.Color)

	// TextBounds measures s as if printed with the cursor at (x, y).
	TextBounds(s string, x, y int) (bx, by, w, h int)

	SetFullWindow()
	SetPartialWindow(x, y, w, h int)

	FirstPage()
	NextPage() bool
}

// Paint runs the page loop: draw is invoked once per physical page until the
// canvas reports no more pages. It returns the number of passes.
func Paint(c Canvas, draw func(Canvas)) int {
	passes := 0
	c.FirstPage()
	for {
		draw(c)
		passes++
		if !c.NextPage() {
			return passes
		}
	}
}

// BitmapStride returns the bytes per row of a w pixel wide bitmap
func BitmapStride(w int) int {
	return (w + 7) / 8
}
