// Package fonts loads the TrueType faces used on the dashboard.
package fonts

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Point sizes of the dashboard faces
const (
	TitleSize = 32
	HugeSize  = 48
	TextSize  = 14
)

// DefaultDPI matches the resolution bitmap panel fonts are converted at
const DefaultDPI = 141

// Set is the group of faces the dashboard draws with
type Set struct {
	Title font.Face // bold, title
	Huge  font.Face // bold, outdoor temperature
	Book  font.Face // regular, labels and footer
	Bold  font.Face // bold, values
}

// Load parses the regular and bold TTF files; empty paths use the Go fonts.
func Load(bookPath, boldPath string, dpi float64) (*Set, error) {
	book, err := readTTF(bookPath, goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := readTTF(boldPath, gobold.TTF)
	if err != nil {
		return nil, err
	}
	return New(book, bold, dpi)
}

// New builds a Set from raw TTF data
func New(bookTTF, boldTTF []byte, dpi float64) (*Set, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	book, err := truetype.Parse(bookTTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(boldTTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	face := func(f *truetype.Font, size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{Size: size, DPI: dpi, Hinting: font.HintingFull})
	}

	return &Set{
		Title: face(bold, TitleSize),
		Huge:  face(bold, HugeSize),
		Book:  face(book, TextSize),
		Bold:  face(bold, TextSize),
	}, nil
}

// Default returns the Go fonts at DefaultDPI
func Default() *Set {
	set, err := New(goregular.TTF, gobold.TTF, DefaultDPI)
	if err != nil {
		panic(err) // embedded fonts always parse
	}
	return set
}

func readTTF(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	return data, nil
}
