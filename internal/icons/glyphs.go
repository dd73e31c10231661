package icons

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io/fs"
	"sync"

	"github.com/koios/epaper-weather/internal/canvas"
	"go.uber.org/zap"
)

// GlyphStore holds decoded glyph bitmaps by key
type GlyphStore struct {
	mu     sync.RWMutex
	glyphs map[string]canvas.Bitmap
}

// NewGlyphStore creates an empty store
func NewGlyphStore() *GlyphStore {
	return &GlyphStore{glyphs: make(map[string]canvas.Bitmap)}
}

// Put stores a bitmap under key
func (s *GlyphStore) Put(key string, bmp canvas.Bitmap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.glyphs[key] = bmp
}

// Get returns the bitmap of h, if loaded
func (s *GlyphStore) Get(h Handle) (canvas.Bitmap, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bmp, ok := s.glyphs[h.Key]
	return bmp, ok
}

// Len returns the number of loaded glyphs
func (s *GlyphStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.glyphs)
}

// LoadGlyphs decodes <key>.png from fsys for every handle.
// Missing files are skipped and draw nothing; a file of the wrong size is an error.
func LoadGlyphs(fsys fs.FS, handles []Handle, logger *zap.Logger) (*GlyphStore, error) {
	store := NewGlyphStore()

	for _, h := range handles {
		name := h.Key + ".png"
		f, err := fsys.Open(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("Glyph asset missing", zap.String("key", h.Key))
				continue
			}
			return nil, fmt.Errorf("failed to open glyph %s: %w", name, err)
		}

		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode glyph %s: %w", name, err)
		}

		b := img.Bounds()
		if b.Dx() != h.Width || b.Dy() != h.Height {
			return nil, fmt.Errorf("glyph %s is %dx%d, want %dx%d", name, b.Dx(), b.Dy(), h.Width, h.Height)
		}

		store.Put(h.Key, BitmapFromImage(img))
	}

	logger.Info("Loaded glyphs",
		zap.Int("loaded", store.Len()),
		zap.Int("expected", len(handles)))

	return store, nil
}

// BitmapFromImage packs img into a row-major MSB-first bitmap.
// Opaque dark pixels become set bits.
func BitmapFromImage(img image.Image) canvas.Bitmap {
	b := img.Bounds()
	stride := canvas.BitmapStride(b.Dx())
	bmp := make(canvas.Bitmap, stride*b.Dy())

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			_, _, _, a := c.RGBA()
			gray := color.GrayModel.Convert(c).(color.Gray)
			if a >= 0x8000 && gray.Y < 0x80 {
				bmp[y*stride+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return bmp
}
