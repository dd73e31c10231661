package icons

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestBitmapFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 2))
	for x := 0; x < 10; x++ {
		img.Set(x, 0, color.White)
		img.Set(x, 1, color.NRGBA{}) // transparent
	}
	img.Set(0, 0, color.Black)
	img.Set(9, 0, color.Black)
	img.Set(8, 1, color.NRGBA{A: 0xff})
	img.Set(3, 1, color.NRGBA{A: 0x10}) // mostly transparent black stays clear

	bmp := BitmapFromImage(img)

	want := []byte{0x80, 0x40, 0x00, 0x80}
	if !bytes.Equal(bmp, want) {
		t.Errorf("bitmap = %08b, want %08b", bmp, want)
	}
}

func TestLoadGlyphs(t *testing.T) {
	sun := image.NewGray(image.Rect(0, 0, 45, 45))
	sun.SetGray(0, 0, color.Gray{Y: 0})
	for i := 1; i < len(sun.Pix); i++ {
		sun.Pix[i] = 0xff
	}

	fsys := fstest.MapFS{
		"weather_small_sunny.png": {Data: encodePNG(t, sun)},
	}

	handles := []Handle{
		{Key: "weather_small_sunny", Width: 45, Height: 45},
		{Key: "weather_small_fog", Width: 45, Height: 45},
	}

	store, err := LoadGlyphs(fsys, handles, zap.NewNop())
	if err != nil {
		t.Fatalf("LoadGlyphs: %v", err)
	}

	bmp, ok := store.Get(handles[0])
	if !ok {
		t.Fatal("sunny glyph not loaded")
	}
	if len(bmp) != 6*45 {
		t.Errorf("bitmap length = %d, want %d", len(bmp), 6*45)
	}
	if bmp[0] != 0x80 {
		t.Errorf("first byte = %08b, want 10000000", bmp[0])
	}

	if _, ok := store.Get(handles[1]); ok {
		t.Error("missing asset should not be loaded")
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestLoadGlyphs_Errors(t *testing.T) {
	h := Handle{Key: "icon_humidity", Width: 45, Height: 45}

	tests := []struct {
		name string
		data []byte
	}{
		{"wrong size", encodePNG(t, image.NewGray(image.Rect(0, 0, 40, 40)))},
		{"not a png", []byte("GIF89a nope")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"icon_humidity.png": {Data: tt.data}}
			if _, err := LoadGlyphs(fsys, []Handle{h}, zap.NewNop()); err == nil {
				t.Error("expected error")
			}
		})
	}
}
