package models

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultProfileID names the built-in 7.5" panel profile
const DefaultProfileID = "epd75-bw"

// PanelProfile represents a <id>.yaml panel geometry file
type PanelProfile struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Width      int    `yaml:"width" json:"width"`   // native columns
	Height     int    `yaml:"height" json:"height"` // native rows
	Rotation   int    `yaml:"rotation" json:"rotation"`
	PageHeight int    `yaml:"page_height" json:"page_height"` // native rows per page, 0 = single page

	// Borders of the visible area inside the frame
	OffsetLeft   int `yaml:"offset_left" json:"offset_left"`
	OffsetTop    int `yaml:"offset_top" json:"offset_top"`
	OffsetRight  int `yaml:"offset_right" json:"offset_right"`
	OffsetBottom int `yaml:"offset_bottom" json:"offset_bottom"`

	// Runtime fields (not in file)
	FilePath string `yaml:"-" json:"filePath"`
}

// ValidationError represents a validation error for a specific field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// DefaultProfile returns the profile of the 800x480 panel mounted in portrait
func DefaultProfile() PanelProfile {
	return PanelProfile{
		ID:           DefaultProfileID,
		Name:         "7.5in black/white 800x480",
		Width:        800,
		Height:       480,
		Rotation:     1,
		OffsetLeft:   18,
		OffsetTop:    35,
		OffsetRight:  23,
		OffsetBottom: 80,
	}
}

// Validate checks a profile and returns one error per offending field
func (p PanelProfile) Validate() []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, ValidationError{Field: "id", Message: "Field 'id' is required", Code: "required"})
	}
	if p.Width <= 0 {
		errs = append(errs, ValidationError{Field: "width", Message: "Field 'width' must be positive", Code: "out_of_range"})
	}
	if p.Height <= 0 {
		errs = append(errs, ValidationError{Field: "height", Message: "Field 'height' must be positive", Code: "out_of_range"})
	}
	if p.Rotation < 0 || p.Rotation > 3 {
		errs = append(errs, ValidationError{Field: "rotation", Message: "Field 'rotation' must be one of: 0, 1, 2, 3", Code: "invalid_option"})
	}
	if p.PageHeight < 0 || (p.Height > 0 && p.PageHeight > p.Height) {
		errs = append(errs, ValidationError{Field: "page_height", Message: "Field 'page_height' must be between 0 and height", Code: "out_of_range"})
	}

	offsets := []struct {
		name  string
		value int
	}{
		{"offset_left", p.OffsetLeft},
		{"offset_top", p.OffsetTop},
		{"offset_right", p.OffsetRight},
		{"offset_bottom", p.OffsetBottom},
	}
	for _, o := range offsets {
		if o.value < 0 {
			errs = append(errs, ValidationError{
				Field:   o.name,
				Message: fmt.Sprintf("Field '%s' must not be negative", o.name),
				Code:    "out_of_range",
			})
		}
	}

	return errs
}

// LoadProfile loads a panel profile YAML file
func LoadProfile(path string) (*PanelProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var profile PanelProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}

	profile.FilePath = path

	if errs := profile.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid profile %s: %s", path, errs[0].Message)
	}

	return &profile, nil
}

// SkippedProfile is a profile file LoadProfiles could not use
type SkippedProfile struct {
	Path string
	Err  error
}

// ProfileRegistry manages the collection of available panel profiles
type ProfileRegistry struct {
	profiles map[string]*PanelProfile
	skipped  []SkippedProfile
}

// NewProfileRegistry creates a registry holding only the built-in profile
func NewProfileRegistry() *ProfileRegistry {
	r := &ProfileRegistry{}
	r.reset()
	return r
}

func (r *ProfileRegistry) reset() {
	def := DefaultProfile()
	r.profiles = map[string]*PanelProfile{def.ID: &def}
	r.skipped = nil
}

// LoadProfiles scans a directory for *.yaml / *.yml profiles.
// Invalid files are skipped and reported by Skipped; files may override the
// built-in profile.
func (r *ProfileRegistry) LoadProfiles(dir string) error {
	r.reset()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read profiles directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		profile, err := LoadProfile(path)
		if err != nil {
			r.skipped = append(r.skipped, SkippedProfile{Path: path, Err: err})
			continue
		}
		r.profiles[profile.ID] = profile
	}

	return nil
}

// Skipped returns the files the last LoadProfiles rejected, in directory order
func (r *ProfileRegistry) Skipped() []SkippedProfile {
	return append([]SkippedProfile(nil), r.skipped...)
}

// GetProfile returns a profile by ID
func (r *ProfileRegistry) GetProfile(id string) (*PanelProfile, bool) {
	p, exists := r.profiles[id]
	return p, exists
}

// GetAllProfiles returns all loaded profiles
func (r *ProfileRegistry) GetAllProfiles() map[string]*PanelProfile {
	// Return a copy to prevent external modification
	result := make(map[string]*PanelProfile, len(r.profiles))
	for k, v := range r.profiles {
		result[k] = v
	}
	return result
}

// GetProfilesList returns all profiles sorted by ID
func (r *ProfileRegistry) GetProfilesList() []*PanelProfile {
	list := make([]*PanelProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
