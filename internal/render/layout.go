package render

import (
	"fmt"

	"github.com/koios/epaper-weather/pkg/models"
)

// Layout positions, relative to the top and left margins
const (
	titleY = 80

	currentIconX = 10
	currentIconY = 110
	currentTempX = 110
	currentTempY = 190

	detailsY      = 250
	windIconX     = 30
	windTextX     = 90
	humidityIconX = 230
	humidityTextX = 290

	forecastY       = detailsY + 60
	forecastIconDX  = 15
	forecastIconDY  = 8
	forecastTempDX  = 15
	forecastTempDY  = 10 + smallIcon + 28
	forecastNudgeDX = -5
	forecastNudgeDY = 2

	indoorIconX      = 30
	indoorY          = 430
	indoorGlyphX     = 120
	indoorHumidityY  = 470
	indoorTextX      = 165
	indoorTempTextY  = 460
	indoorHumidTextY = 500

	dogsY = 550

	footerY     = 670
	footerNudge = 10

	smallIcon = 45
)

// twoDigitThreshold is the smallest forecast value printed with two integer digits
const twoDigitThreshold = 9.995

// DefaultTitle is printed centered at the top
const DefaultTitle = "WETTER"

// footerReference is measured instead of the real footer so the position does
// not jump with the width of the time digits
const footerReference = "STAND 11:11"

var forecastColumns = [4]int{30, 130, 230, 330}

var dogColumns = [4]int{60, 140, 220, 300}

// Layout is the panel geometry the renderer draws into
type Layout struct {
	OffsetLeft int
	OffsetTop  int
	Rotation   int
	Title      string
}

// LayoutFromProfile takes margins and rotation from a panel profile
func LayoutFromProfile(p *models.PanelProfile, title string) Layout {
	if title == "" {
		title = DefaultTitle
	}
	return Layout{
		OffsetLeft: p.OffsetLeft,
		OffsetTop:  p.OffsetTop,
		Rotation:   p.Rotation,
		Title:      title,
	}
}

// CenterX returns the cursor x that centers a text box of width boxWidth
// whose ink starts boxLeft pixels right of the cursor.
func CenterX(width, boxLeft, boxWidth int) int {
	return (width-boxWidth)/2 - boxLeft
}

// FormatTemperature prints one decimal with a Celsius suffix
func FormatTemperature(v float64) string {
	return fmt.Sprintf("%.1f°C", v)
}

// FormatForecastTemperature prints a rounded integer with a Celsius suffix
func FormatForecastTemperature(v float64) string {
	return fmt.Sprintf("%.0f°C", v)
}

func FormatWind(v float64) string {
	return fmt.Sprintf("%.1fkm/h", v)
}

func FormatHumidity(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func FormatFooter(t string) string {
	return "STAND " + t
}

// ForecastTempCursor returns the temperature cursor of a forecast cell whose
// top-left anchor is (cellX, cellY). Two-digit values move 5px left and 2px down.
func ForecastTempCursor(cellX, cellY int, temp float64) (int, int) {
	x, y := cellX+forecastTempDX, cellY+forecastTempDY
	if temp >= twoDigitThreshold {
		x += forecastNudgeDX
		y += forecastNudgeDY
	}
	return x, y
}
