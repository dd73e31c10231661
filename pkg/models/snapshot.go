package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// WeatherCondition is a Home Assistant weather condition code (e.g. "partlycloudy")
type WeatherCondition string

// Weather condition vocabulary reported by the Home Assistant weather integration
const (
	ConditionClearNight        WeatherCondition = "clear-night"
	ConditionCloudy            WeatherCondition = "cloudy"
	ConditionFog               WeatherCondition = "fog"
	ConditionHail              WeatherCondition = "hail"
	ConditionLightning         WeatherCondition = "lightning"
	ConditionLightningRainy    WeatherCondition = "lightning-rainy"
	ConditionPartlyCloudy      WeatherCondition = "partlycloudy"
	ConditionNightPartlyCloudy WeatherCondition = "night-partly-cloudy"
	ConditionPouring           WeatherCondition = "pouring"
	ConditionRainy             WeatherCondition = "rainy"
	ConditionSnowy             WeatherCondition = "snowy"
	ConditionSnowyRainy        WeatherCondition = "snowy-rainy"
	ConditionSunny             WeatherCondition = "sunny"
	ConditionWindy             WeatherCondition = "windy"
	ConditionWindyVariant      WeatherCondition = "windy-variant"
)

// Conditions lists every known condition code
var Conditions = []WeatherCondition{
	ConditionClearNight,
	ConditionCloudy,
	ConditionFog,
	ConditionHail,
	ConditionLightning,
	ConditionLightningRainy,
	ConditionPartlyCloudy,
	ConditionNightPartlyCloudy,
	ConditionPouring,
	ConditionRainy,
	ConditionSnowy,
	ConditionSnowyRainy,
	ConditionSunny,
	ConditionWindy,
	ConditionWindyVariant,
}

// ForecastOffsets are the forecast horizons in hours, in display order
var ForecastOffsets = [4]int{2, 4, 6, 8}

// Forecast is one forward forecast cell
type Forecast struct {
	Condition   WeatherCondition `json:"condition"`
	Temperature float64          `json:"temperature"`
	DisplayTime string           `json:"display_time"`
}

// DashboardSnapshot is the flat data record rendered once per wake cycle
type DashboardSnapshot struct {
	TemperatureInside  float64          `json:"temperature_inside"`
	HumidityInside     float64          `json:"humidity_inside"`
	TemperatureOutside float64          `json:"temperature_outside"`
	HumidityOutside    float64          `json:"humidity_outside"`
	WindSpeed          float64          `json:"wind_speed"`
	ForecastNow        WeatherCondition `json:"weather_forecast_now"`
	Forecasts          [4]Forecast      `json:"forecasts"`
	Time               string           `json:"time"`
	Timestamp          string           `json:"timestamp"`

	// Received is false when the payload carried no attributes object, so an
	// all-zero record can be told apart from measured zeros. Rendering ignores it.
	Received bool `json:"received"`
}

// statePayload is the Home Assistant /api/states/<entity> envelope
type statePayload struct {
	Attributes map[string]json.RawMessage `json:"attributes"`
}

// DecodeSnapshot maps a state payload onto a DashboardSnapshot.
// Missing or mistyped attributes default to 0 or "". Malformed JSON yields the
// all-default snapshot together with the decode error.
func DecodeSnapshot(raw []byte) (DashboardSnapshot, error) {
	var snap DashboardSnapshot

	var payload statePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return snap, fmt.Errorf("failed to decode state payload: %w", err)
	}

	attrs := payload.Attributes
	snap.Received = attrs != nil

	snap.TemperatureInside = attrFloat(attrs, "temperature_inside")
	snap.HumidityInside = attrFloat(attrs, "humidity_inside")
	snap.TemperatureOutside = attrFloat(attrs, "temperature_outside")
	snap.HumidityOutside = attrFloat(attrs, "humidity_outside")
	snap.WindSpeed = attrFloat(attrs, "wind_speed")
	snap.ForecastNow = WeatherCondition(attrString(attrs, "weather_forecast_now"))

	for i, hours := range ForecastOffsets {
		key := fmt.Sprintf("weather_forecast_%dh", hours)
		snap.Forecasts[i] = Forecast{
			Condition:   WeatherCondition(attrString(attrs, key)),
			Temperature: attrFloat(attrs, key+"_temp"),
			DisplayTime: attrString(attrs, key+"_time"),
		}
	}

	snap.Time = attrString(attrs, "time")
	snap.Timestamp = attrString(attrs, "timestamp")

	return snap, nil
}

// attrFloat reads a number or a numeric string; anything else is 0
func attrFloat(attrs map[string]json.RawMessage, key string) float64 {
	raw, ok := attrs[key]
	if !ok {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// attrString reads a string; numbers and booleans keep their JSON text, null is ""
func attrString(attrs map[string]json.RawMessage, key string) string {
	raw, ok := attrs[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	text := strings.TrimSpace(string(raw))
	if text == "null" || strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return ""
	}
	return text
}
