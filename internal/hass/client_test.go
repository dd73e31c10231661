package hass

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
)

const statePayload = `{"entity_id":"sensor.epaper_esp8266_data","attributes":{
	"temperature_outside": 12.5,
	"weather_forecast_now": "rainy",
	"weather_forecast_2h_temp": "10.4",
	"time": "08:40"
}}`

func TestNewClient_RequiresEndpoint(t *testing.T) {
	if _, err := NewClient("  ", "tok", zap.NewNop()); !errors.Is(err, ErrEmptyEndpoint) {
		t.Errorf("err = %v, want ErrEmptyEndpoint", err)
	}
}

func TestBearer(t *testing.T) {
	tests := map[string]string{
		"abc":        "Bearer abc",
		"Bearer abc": "Bearer abc",
		" abc ":      "Bearer abc",
		"":           "",
	}
	for in, want := range tests {
		if got := bearer(in); got != want {
			t.Errorf("bearer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFetch_Success(t *testing.T) {
	var gotAuth, gotType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(statePayload))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "secret", zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	snap := client.Fetch(context.Background())

	if gotMethod != http.MethodGet {
		t.Errorf("method = %s, want GET", gotMethod)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if !snap.Received || snap.TemperatureOutside != 12.5 || snap.ForecastNow != models.ConditionRainy {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Forecasts[0].Temperature != 10.4 {
		t.Errorf("forecast temp = %v, want 10.4", snap.Forecasts[0].Temperature)
	}
	if snap.Time != "08:40" {
		t.Errorf("time = %q", snap.Time)
	}
}

func TestFetchState_FailuresYieldEmptyObject(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "401: Unauthorized", http.StatusUnauthorized)
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, _ := NewClient(server.URL, "tok", zap.NewNop())
			if got := string(client.FetchState(context.Background())); got != "{}" {
				t.Errorf("FetchState = %q, want {}", got)
			}

			snap := client.Fetch(context.Background())
			if snap != (models.DashboardSnapshot{}) {
				t.Errorf("expected zero snapshot, got %+v", snap)
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(statePayload))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "tok", zap.NewNop(), WithTimeout(20*time.Millisecond))
	snap := client.Fetch(context.Background())
	if snap.Received || snap.TemperatureOutside != 0 {
		t.Errorf("timed out fetch should yield defaults, got %+v", snap)
	}
}

func TestFetch_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, _ := NewClient(url, "tok", zap.NewNop())
	if got := string(client.FetchState(context.Background())); got != "{}" {
		t.Errorf("FetchState = %q, want {}", got)
	}
}

func TestFetch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"attributes": {"temperature_outside": 3`))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "", zap.NewNop())
	if snap := client.Fetch(context.Background()); snap != (models.DashboardSnapshot{}) {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}

func TestGet_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("empty token should not send Authorization")
		}
		http.Error(w, strings.Repeat("x", 500), http.StatusForbidden)
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "", zap.NewNop())
	_, err := client.Get(context.Background())

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusForbidden || len(se.Body) != 200 {
		t.Errorf("status = %d, body length = %d", se.StatusCode, len(se.Body))
	}
	if !IsAuthError(err) {
		t.Error("403 should be an auth error")
	}
}

func TestGet_ResponseSizeLimit(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		wantErr  bool
		wantRead int
	}{
		{"under limit", 99, false, 99},
		{"at limit", 100, false, 100},
		{"one byte over", 101, true, 0},
		{"far over", 1000, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(strings.Repeat("a", tt.size)))
			}))
			defer server.Close()

			client, _ := NewClient(server.URL, "", zap.NewNop(), WithMaxResponseSize(100))
			raw, err := client.Get(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrResponseTooLarge) {
					t.Fatalf("err = %v, want ErrResponseTooLarge", err)
				}
				if raw != nil {
					t.Errorf("oversized body returned %d bytes", len(raw))
				}
				return
			}
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if len(raw) != tt.wantRead {
				t.Errorf("read %d bytes, want %d", len(raw), tt.wantRead)
			}
		})
	}
}

func TestFetch_OversizedBodyYieldsDefaults(t *testing.T) {
	// a valid payload padded past the limit must not be decoded as a cut prefix
	padded := strings.Replace(statePayload, `"time": "08:40"`, `"time": "08:40", "pad": "`+strings.Repeat("x", 512)+`"`, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(padded))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "", zap.NewNop(), WithMaxResponseSize(int64(len(statePayload))))
	if got := string(client.FetchState(context.Background())); got != "{}" {
		t.Errorf("FetchState = %q, want {}", got)
	}
	if snap := client.Fetch(context.Background()); snap != (models.DashboardSnapshot{}) {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}
