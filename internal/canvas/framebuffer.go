package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Framebuffer is a 1-bit Canvas committed to a Panel page by page.
//
// Pixels live in native panel orientation; rotation is applied when a pixel
// is set. Each page is a band of PageHeight native rows. During a pass only
// pixels inside the current band are stored, so a drawing callback repeated
// once per page ends up painting every band exactly once.
type Framebuffer struct {
	panel      Panel
	native     *image1bit.VerticalLSB
	pageHeight int

	rotation int
	face     font.Face
	ink      color.Color
	cursor   image.Point

	partial bool
	window  image.Rectangle // native coordinates

	page   int
	passes int
	err    error
}

// NewFramebuffer creates a framebuffer sized to the panel.
// pageHeight <= 0 or >= the panel height commits in a single page.
func NewFramebuffer(panel Panel, pageHeight int) *Framebuffer {
	b := panel.Bounds()
	native := image.Rect(0, 0, b.Dx(), b.Dy())
	if pageHeight <= 0 || pageHeight > native.Dy() {
		pageHeight = native.Dy()
	}

	f := &Framebuffer{
		panel:      panel,
		native:     image1bit.NewVerticalLSB(native),
		pageHeight: pageHeight,
		ink:        Black,
		window:     native,
	}
	f.clear()
	return f
}

// Width is the logical width after rotation
func (f *Framebuffer) Width() int {
	if f.rotation%2 == 1 {
		return f.native.Rect.Dy()
	}
	return f.native.Rect.Dx()
}

// Height is the logical height after rotation
func (f *Framebuffer) Height() int {
	if f.rotation%2 == 1 {
		return f.native.Rect.Dx()
	}
	return f.native.Rect.Dy()
}

// SetRotation sets quarter turns clockwise, modulo 4
func (f *Framebuffer) SetRotation(r int) {
	f.rotation = ((r % 4) + 4) % 4
}

func (f *Framebuffer) SetFont(face font.Face) {
	f.face = face
}

func (f *Framebuffer) SetTextColor(c color.Color) {
	f.ink = c
}

func (f *Framebuffer) SetCursor(x, y int) {
	f.cursor = image.Pt(x, y)
}

// Cursor returns the current text cursor
func (f *Framebuffer) Cursor() image.Point {
	return f.cursor
}

// Print draws s at the cursor and advances it; without a font nothing is drawn
func (f *Framebuffer) Print(s string) {
	if f.face == nil {
		return
	}
	d := font.Drawer{
		Dst:  logicalView{f},
		Src:  image.NewUniform(f.ink),
		Face: f.face,
		Dot:  fixed.P(f.cursor.X, f.cursor.Y),
	}
	d.DrawString(s)
	f.cursor.X = d.Dot.X.Round()
}

func (f *Framebuffer) Printf(format string, args ...interface{}) {
	f.Print(fmt.Sprintf(format, args...))
}

// DrawBitmap draws the set bits of a row-major MSB-first bitmap
func (f *Framebuffer) DrawBitmap(x, y int, bmp Bitmap, w, h int, c color.Color) {
	stride := BitmapStride(w)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			idx := j*stride + i/8
			if idx >= len(bmp) {
				return
			}
			if bmp[idx]&(0x80>>uint(i&7)) != 0 {
				f.setPixel(x+i, y+j, c)
			}
		}
	}
}

// TextBounds measures s with the cursor at (x, y).
// bx, by is the top-left of the inked box, so bx-x is the left bearing.
func (f *Framebuffer) TextBounds(s string, x, y int) (bx, by, w, h int) {
	if f.face == nil || s == "" {
		return x, y, 0, 0
	}
	b, _ := font.BoundString(f.face, s)
	return x + b.Min.X.Floor(), y + b.Min.Y.Floor(), (b.Max.X - b.Min.X).Ceil(), (b.Max.Y - b.Min.Y).Ceil()
}

// SetFullWindow selects the whole panel with a full refresh
func (f *Framebuffer) SetFullWindow() {
	f.partial = false
	f.window = f.native.Rect
}

// SetPartialWindow selects a logical rectangle with a partial refresh.
// The rectangle is mapped with the rotation in effect at the time of the call.
func (f *Framebuffer) SetPartialWindow(x, y, w, h int) {
	f.partial = true
	f.window = f.toNativeRect(image.Rect(x, y, x+w, y+h))
}

// Partial reports whether the partial window is selected
func (f *Framebuffer) Partial() bool {
	return f.partial
}

// FirstPage starts a commit: the buffer is cleared to white and page 0 is current
func (f *Framebuffer) FirstPage() {
	f.page = 0
	f.passes = 0
	f.err = nil
	f.clear()
}

// NextPage writes the current band to the panel and advances.
// After the last band the panel is refreshed and false is returned.
func (f *Framebuffer) NextPage() bool {
	f.passes++

	band := f.pageRect().Intersect(f.window)
	if !band.Empty() && f.err == nil {
		if err := f.panel.Write(band, f.native, band.Min); err != nil {
			f.err = fmt.Errorf("failed to write page %d: %w", f.page, err)
		}
	}

	f.page++
	if f.page < f.pageCount() {
		return true
	}

	if f.err == nil {
		if err := f.panel.Refresh(f.partial, f.window); err != nil {
			f.err = fmt.Errorf("failed to refresh panel: %w", err)
		}
	}
	return false
}

// Pages is the number of pages per commit
func (f *Framebuffer) Pages() int {
	return f.pageCount()
}

// Passes is the number of pages written by the last commit
func (f *Framebuffer) Passes() int {
	return f.passes
}

// Err returns the first panel error of the last commit
func (f *Framebuffer) Err() error {
	return f.err
}

// Image returns the buffer in logical orientation
func (f *Framebuffer) Image() *image.Gray {
	return Rotate(f.native, f.rotation)
}

func (f *Framebuffer) pageCount() int {
	return (f.native.Rect.Dy() + f.pageHeight - 1) / f.pageHeight
}

func (f *Framebuffer) pageRect() image.Rectangle {
	top := f.page * f.pageHeight
	return image.Rect(0, top, f.native.Rect.Dx(), top+f.pageHeight).Intersect(f.native.Rect)
}

func (f *Framebuffer) clear() {
	draw.Draw(f.native, f.native.Rect, &image.Uniform{C: image1bit.On}, image.Point{}, draw.Src)
}

// toNative maps a logical pixel to native coordinates
func (f *Framebuffer) toNative(x, y int) (int, int) {
	w, h := f.native.Rect.Dx(), f.native.Rect.Dy()
	switch f.rotation {
	case 1:
		return w - 1 - y, x
	case 2:
		return w - 1 - x, h - 1 - y
	case 3:
		return y, h - 1 - x
	default:
		return x, y
	}
}

func (f *Framebuffer) toNativeRect(r image.Rectangle) image.Rectangle {
	r = r.Intersect(image.Rect(0, 0, f.Width(), f.Height()))
	if r.Empty() {
		return image.Rectangle{}
	}
	x0, y0 := f.toNative(r.Min.X, r.Min.Y)
	x1, y1 := f.toNative(r.Max.X-1, r.Max.Y-1)
	return image.Rect(min(x0, x1), min(y0, y1), max(x0, x1)+1, max(y0, y1)+1)
}

func (f *Framebuffer) setPixel(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= f.Width() || y >= f.Height() {
		return
	}
	nx, ny := f.toNative(x, y)
	if ny < f.page*f.pageHeight || ny >= (f.page+1)*f.pageHeight {
		return
	}
	f.native.Set(nx, ny, c)
}

// logicalView exposes the framebuffer as a rotated draw.Image for font.Drawer
type logicalView struct {
	f *Framebuffer
}

func (v logicalView) ColorModel() color.Model { return image1bit.BitModel }

func (v logicalView) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.f.Width(), v.f.Height())
}

func (v logicalView) At(x, y int) color.Color {
	nx, ny := v.f.toNative(x, y)
	return v.f.native.At(nx, ny)
}

func (v logicalView) Set(x, y int, c color.Color) {
	v.f.setPixel(x, y, c)
}

// Rotate copies a native image into logical orientation for rotation r
func Rotate(src image.Image, r int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	r = ((r % 4) + 4) % 4

	lw, lh := w, h
	if r%2 == 1 {
		lw, lh = h, w
	}
	dst := image.NewGray(image.Rect(0, 0, lw, lh))

	for y := 0; y < lh; y++ {
		for x := 0; x < lw; x++ {
			var nx, ny int
			switch r {
			case 1:
				nx, ny = w-1-y, x
			case 2:
				nx, ny = w-1-x, h-1-y
			case 3:
				nx, ny = y, h-1-x
			default:
				nx, ny = x, y
			}
			dst.Set(x, y, color.GrayModel.Convert(src.At(b.Min.X+nx, b.Min.Y+ny)))
		}
	}
	return dst
}
