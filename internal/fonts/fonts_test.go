package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

func TestLoad_Defaults(t *testing.T) {
	set, err := Load("", "", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for name, face := range map[string]font.Face{"title": set.Title, "huge": set.Huge, "book": set.Book, "bold": set.Bold} {
		if face == nil {
			t.Errorf("%s face is nil", name)
		}
	}

	huge := font.MeasureString(set.Huge, "10.0")
	text := font.MeasureString(set.Bold, "10.0")
	if huge <= text {
		t.Errorf("huge face (%v) should be wider than text face (%v)", huge, text)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bold.ttf")
	if err := os.WriteFile(path, gobold.TTF, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load("", path, DefaultDPI); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.ttf")
	os.WriteFile(garbage, []byte("not a font"), 0644)

	tests := []struct {
		name string
		book string
		bold string
	}{
		{"missing file", filepath.Join(dir, "none.ttf"), ""},
		{"unparsable bold", "", garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.book, tt.bold, DefaultDPI); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefault(t *testing.T) {
	if Default().Book == nil {
		t.Error("default book face is nil")
	}
}
