// Package icons maps weather conditions to glyph handles.
package icons

import (
	"fmt"

	"github.com/koios/epaper-weather/pkg/models"
)

// SizeClass selects one of the two weather icon tables
type SizeClass int

const (
	Large SizeClass = iota
	Small
)

func (s SizeClass) String() string {
	if s == Small {
		return "small"
	}
	return "large"
}

// Pixels is the edge length of square icons in this class
func (s SizeClass) Pixels() int {
	if s == Small {
		return 45
	}
	return 100
}

// Handle is an opaque reference to a glyph asset
type Handle struct {
	Key    string
	Width  int
	Height int
}

// Table maps condition codes to glyph keys
type Table map[models.WeatherCondition]string

// FallbackCondition is drawn for codes a table does not know
const FallbackCondition = models.ConditionSunny

// DefaultLarge is the 100px icon table
var DefaultLarge = Table{
	models.ConditionClearNight:        "weather_clear_night",
	models.ConditionCloudy:            "weather_cloudy",
	models.ConditionFog:               "weather_foggy",
	models.ConditionHail:              "weather_thunderstorm",
	models.ConditionLightning:         "weather_thunderstorm",
	models.ConditionLightningRainy:    "weather_thunderstorm",
	models.ConditionPartlyCloudy:      "weather_partly_cloudy",
	models.ConditionNightPartlyCloudy: "weather_partly_cloudy_night",
	models.ConditionPouring:           "weather_rainy",
	models.ConditionRainy:             "weather_rainy",
	models.ConditionSnowy:             "weather_snowing",
	models.ConditionSnowyRainy:        "weather_snowing",
	models.ConditionSunny:             "weather_sunny",
	models.ConditionWindy:             "weather_wind",
	models.ConditionWindyVariant:      "weather_wind",
}

// DefaultSmall is the 45px icon table
var DefaultSmall = Table{
	models.ConditionClearNight:        "weather_small_clear_night",
	models.ConditionCloudy:            "weather_small_cloudy",
	models.ConditionFog:               "weather_small_foggy",
	models.ConditionHail:              "weather_small_thunderstorm",
	models.ConditionLightning:         "weather_small_thunderstorm",
	models.ConditionLightningRainy:    "weather_small_thunderstorm",
	models.ConditionPartlyCloudy:      "weather_small_partly_cloudy",
	models.ConditionNightPartlyCloudy: "weather_small_partly_cloudy_night",
	models.ConditionPouring:           "weather_small_rainy",
	models.ConditionRainy:             "weather_small_rainy",
	models.ConditionSnowy:             "weather_small_snowing",
	models.ConditionSnowyRainy:        "weather_small_snowing",
	models.ConditionSunny:             "weather_small_sunny",
	models.ConditionWindy:             "weather_small_wind",
	models.ConditionWindyVariant:      "weather_small_wind",
}

// Fixed glyphs that do not depend on the weather
var (
	Wind          = Handle{Key: "weather_small_wind", Width: 45, Height: 45}
	Humidity      = Handle{Key: "icon_humidity", Width: 45, Height: 45}
	LivingRoom    = Handle{Key: "icon_living_room", Width: 80, Height: 80}
	Thermometer40 = Handle{Key: "icon40_thermometer", Width: 40, Height: 40}
	Humidity40    = Handle{Key: "icon40_humidity", Width: 40, Height: 40}
	Dog           = Handle{Key: "image_dog", Width: 80, Height: 50}
	DogInverted   = Handle{Key: "image_dog_inv", Width: 80, Height: 50}
)

// Decorations lists the fixed glyphs
var Decorations = []Handle{Wind, Humidity, LivingRoom, Thermometer40, Humidity40, Dog, DogInverted}

// Resolver looks up weather icons in two independent tables
type Resolver struct {
	tables [2]map[models.WeatherCondition]Handle
}

// NewResolver copies the tables; each must map the fallback condition.
func NewResolver(large, small Table) (*Resolver, error) {
	r := &Resolver{}
	for size, table := range map[SizeClass]Table{Large: large, Small: small} {
		if _, ok := table[FallbackCondition]; !ok {
			return nil, fmt.Errorf("%s icon table has no %q fallback", size, FallbackCondition)
		}

		px := size.Pixels()
		handles := make(map[models.WeatherCondition]Handle, len(table))
		for cond, key := range table {
			if key == "" {
				return nil, fmt.Errorf("%s icon table has an empty key for %q", size, cond)
			}
			handles[cond] = Handle{Key: key, Width: px, Height: px}
		}
		r.tables[size] = handles
	}
	return r, nil
}

// NewDefaultResolver uses DefaultLarge and DefaultSmall
func NewDefaultResolver() *Resolver {
	r, err := NewResolver(DefaultLarge, DefaultSmall)
	if err != nil {
		panic(err) // default tables carry the fallback
	}
	return r
}

// Resolve returns the icon for cond; unknown codes get the sunny icon of the same size.
func (r *Resolver) Resolve(cond models.WeatherCondition, size SizeClass) Handle {
	if size != Small {
		size = Large
	}
	table := r.tables[size]
	if h, ok := table[cond]; ok {
		return h
	}
	return table[FallbackCondition]
}

// Known reports whether cond has its own entry in the size class table
func (r *Resolver) Known(cond models.WeatherCondition, size SizeClass) bool {
	if size != Small {
		size = Large
	}
	_, ok := r.tables[size][cond]
	return ok
}

// Handles returns every distinct handle the resolver can produce plus the decorations
func (r *Resolver) Handles() []Handle {
	seen := make(map[string]bool)
	var out []Handle
	add := func(h Handle) {
		if !seen[h.Key] {
			seen[h.Key] = true
			out = append(out, h)
		}
	}
	for _, table := range r.tables {
		for _, cond := range models.Conditions {
			if h, ok := table[cond]; ok {
				add(h)
			}
		}
		for _, h := range table {
			add(h)
		}
	}
	for _, h := range Decorations {
		add(h)
	}
	return out
}
