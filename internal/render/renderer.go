// Package render draws the weather dashboard onto a canvas.
package render

import (
	"github.com/koios/epaper-weather/internal/canvas"
	"github.com/koios/epaper-weather/internal/fonts"
	"github.com/koios/epaper-weather/internal/icons"
	"github.com/koios/epaper-weather/pkg/models"
)

// Renderer draws the fixed dashboard layout.
// Render only draws, so it can run once per physical page.
type Renderer struct {
	layout Layout
	fonts  *fonts.Set
	icons  *icons.Resolver
	glyphs *icons.GlyphStore
}

// NewRenderer creates a renderer; glyphs missing from the store are skipped
func NewRenderer(layout Layout, faces *fonts.Set, resolver *icons.Resolver, glyphs *icons.GlyphStore) *Renderer {
	if layout.Title == "" {
		layout.Title = DefaultTitle
	}
	return &Renderer{
		layout: layout,
		fonts:  faces,
		icons:  resolver,
		glyphs: glyphs,
	}
}

// Layout returns the geometry in use
func (r *Renderer) Layout() Layout {
	return r.layout
}

// Draw runs the page loop and returns the number of passes
func (r *Renderer) Draw(c canvas.Canvas, snap *models.DashboardSnapshot) int {
	return canvas.Paint(c, func(c canvas.Canvas) {
		r.Render(c, snap)
	})
}

// Render paints one pass of the dashboard
func (r *Renderer) Render(c canvas.Canvas, snap *models.DashboardSnapshot) {
	left, top := r.layout.OffsetLeft, r.layout.OffsetTop

	c.SetRotation(r.layout.Rotation)
	c.SetTextColor(canvas.Black)

	c.SetFont(r.fonts.Title)
	r.printCentered(c, r.layout.Title, r.layout.Title, 0, top+titleY)

	// current conditions
	r.drawGlyph(c, left+currentIconX, top+currentIconY, r.icons.Resolve(snap.ForecastNow, icons.Large))
	c.SetCursor(left+currentTempX, top+currentTempY)
	c.SetFont(r.fonts.Huge)
	c.Print(FormatTemperature(snap.TemperatureOutside))

	// wind and outdoor humidity
	c.SetFont(r.fonts.Bold)
	r.drawGlyph(c, left+windIconX, top+detailsY-smallIcon/2, icons.Wind)
	c.SetCursor(left+windTextX, top+detailsY+smallIcon/4)
	c.Print(FormatWind(snap.WindSpeed))

	r.drawGlyph(c, left+humidityIconX, top+detailsY-smallIcon/2, icons.Humidity)
	c.SetCursor(left+humidityTextX, top+detailsY+smallIcon/4)
	c.Print(FormatHumidity(snap.HumidityOutside))

	for i, fc := range snap.Forecasts {
		r.drawForecast(c, left+forecastColumns[i], top+forecastY, fc)
	}

	// indoor climate
	r.drawGlyph(c, left+indoorIconX, top+indoorY, icons.LivingRoom)
	r.drawGlyph(c, left+indoorGlyphX, top+indoorY, icons.Thermometer40)
	r.drawGlyph(c, left+indoorGlyphX, top+indoorHumidityY, icons.Humidity40)

	c.SetFont(r.fonts.Bold)
	c.SetCursor(left+indoorTextX, top+indoorTempTextY)
	c.Print(FormatTemperature(snap.TemperatureInside))
	c.SetCursor(left+indoorTextX, top+indoorHumidTextY)
	c.Print(FormatHumidity(snap.HumidityInside))

	for i, x := range dogColumns {
		dog := icons.Dog
		if i%2 == 1 {
			dog = icons.DogInverted
		}
		r.drawGlyph(c, left+x, top+dogsY, dog)
	}

	c.SetFont(r.fonts.Book)
	r.printCentered(c, FormatFooter(snap.Time), footerReference, footerNudge, top+footerY)
}

// drawForecast draws one cell anchored at (x, y): time label, small icon, temperature
func (r *Renderer) drawForecast(c canvas.Canvas, x, y int, fc models.Forecast) {
	c.SetFont(r.fonts.Book)
	c.SetCursor(x, y)
	c.Print(fc.DisplayTime)

	r.drawGlyph(c, x+forecastIconDX, y+forecastIconDY, r.icons.Resolve(fc.Condition, icons.Small))

	c.SetCursor(ForecastTempCursor(x, y, fc.Temperature))
	c.SetFont(r.fonts.Bold)
	c.Print(FormatForecastTemperature(fc.Temperature))
}

// printCentered prints text centered by the bounding box of measure, shifted nudge px left
func (r *Renderer) printCentered(c canvas.Canvas, text, measure string, nudge, y int) {
	bx, _, bw, _ := c.TextBounds(measure, 0, 0)
	c.SetCursor(CenterX(c.Width(), bx, bw)-nudge, y)
	c.Print(text)
}

func (r *Renderer) drawGlyph(c canvas.Canvas, x, y int, h icons.Handle) {
	if r.glyphs == nil {
		return
	}
	bmp, ok := r.glyphs.Get(h)
	if !ok {
		return
	}
	c.DrawBitmap(x, y, bmp, h.Width, h.Height, canvas.Black)
}
