package models

import "testing"

const fullPayload = `{
  "entity_id": "sensor.epaper_esp8266_data",
  "state": "ok",
  "attributes": {
    "temperature_inside": 21.4,
    "humidity_inside": "45.5",
    "temperature_outside": -3.25,
    "humidity_outside": 88,
    "wind_speed": 12.7,
    "weather_forecast_now": "partlycloudy",
    "weather_forecast_2h": "rainy",
    "weather_forecast_2h_temp": 4.2,
    "weather_forecast_2h_time": "14:00",
    "weather_forecast_4h": "cloudy",
    "weather_forecast_4h_temp": 9.99,
    "weather_forecast_4h_time": "16:00",
    "weather_forecast_6h": "fog",
    "weather_forecast_6h_temp": 11,
    "weather_forecast_6h_time": "18:00",
    "weather_forecast_8h": "clear-night",
    "weather_forecast_8h_temp": 2,
    "weather_forecast_8h_time": "20:00",
    "time": "12:10",
    "timestamp": "2024-01-05T12:10:00+01:00"
  }
}`

func TestDecodeSnapshot_Full(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(fullPayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !snap.Received {
		t.Error("Received = false, want true")
	}
	if snap.TemperatureInside != 21.4 {
		t.Errorf("TemperatureInside = %v, want 21.4", snap.TemperatureInside)
	}
	if snap.HumidityInside != 45.5 {
		t.Errorf("HumidityInside = %v, want 45.5 (numeric string)", snap.HumidityInside)
	}
	if snap.TemperatureOutside != -3.25 {
		t.Errorf("TemperatureOutside = %v, want -3.25", snap.TemperatureOutside)
	}
	if snap.ForecastNow != ConditionPartlyCloudy {
		t.Errorf("ForecastNow = %q, want partlycloudy", snap.ForecastNow)
	}

	want := [4]Forecast{
		{ConditionRainy, 4.2, "14:00"},
		{ConditionCloudy, 9.99, "16:00"},
		{ConditionFog, 11, "18:00"},
		{ConditionClearNight, 2, "20:00"},
	}
	if snap.Forecasts != want {
		t.Errorf("Forecasts = %+v, want %+v", snap.Forecasts, want)
	}
	if snap.Time != "12:10" {
		t.Errorf("Time = %q, want 12:10", snap.Time)
	}
	if snap.Timestamp != "2024-01-05T12:10:00+01:00" {
		t.Errorf("Timestamp = %q", snap.Timestamp)
	}
}

func TestDecodeSnapshot_EmptyObject(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Received {
		t.Error("Received = true for a payload without attributes")
	}
	if snap.TemperatureOutside != 0.0 {
		t.Errorf("TemperatureOutside = %v, want 0", snap.TemperatureOutside)
	}
	if snap.ForecastNow != "" {
		t.Errorf("ForecastNow = %q, want empty", snap.ForecastNow)
	}
	if snap != (DashboardSnapshot{}) {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"attributes": {`))
	if err == nil {
		t.Fatal("expected decode error")
	}
	if snap != (DashboardSnapshot{}) {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}

func TestDecodeSnapshot_MistypedAttributes(t *testing.T) {
	payload := `{"attributes": {
		"temperature_outside": "n/a",
		"wind_speed": null,
		"humidity_outside": true,
		"weather_forecast_now": null,
		"time": 1210,
		"weather_forecast_2h": {"nested": 1}
	}}`

	snap, err := DecodeSnapshot([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.TemperatureOutside != 0 || snap.WindSpeed != 0 || snap.HumidityOutside != 0 {
		t.Errorf("mistyped numbers should default to 0: %+v", snap)
	}
	if snap.ForecastNow != "" {
		t.Errorf("null condition should be empty, got %q", snap.ForecastNow)
	}
	if snap.Time != "1210" {
		t.Errorf("numeric time should keep its text, got %q", snap.Time)
	}
	if snap.Forecasts[0].Condition != "" {
		t.Errorf("object condition should be empty, got %q", snap.Forecasts[0].Condition)
	}
	if !snap.Received {
		t.Error("Received should be true when attributes are present")
	}
}
