package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
)

func TestEventHandler_Handle(t *testing.T) {
	tests := []struct {
		name      string
		request   models.RefreshRequest
		wantErr   bool
		wantCycle bool
		wantForce bool
	}{
		{"refresh request", models.RefreshRequest{Type: RefreshRequestType}, false, true, false},
		{"empty type", models.RefreshRequest{}, false, true, false},
		{"force full", models.RefreshRequest{Type: RefreshRequestType, ForceFull: true}, false, true, true},
		{"wrong type", models.RefreshRequest{Type: "render_request"}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			station := &fakeStation{}
			h := NewEventHandler(station, zap.NewNop())

			report, err := h.Handle(context.Background(), &tt.request)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := len(station.cycles) == 1; got != tt.wantCycle {
				t.Fatalf("cycle run = %v, want %v", got, tt.wantCycle)
			}
			if !tt.wantCycle {
				if report != nil {
					t.Error("rejected request returned a report")
				}
				return
			}
			if station.cycles[0] != tt.wantForce {
				t.Errorf("forceFull = %v, want %v", station.cycles[0], tt.wantForce)
			}
			if report == nil || report.Type != "cycle_report" {
				t.Errorf("report = %+v", report)
			}
		})
	}
}

func TestEventHandler_CycleErrorKeepsReport(t *testing.T) {
	station := &fakeStation{err: errors.New("panel gone")}
	h := NewEventHandler(station, zap.NewNop())

	report, err := h.Handle(context.Background(), &models.RefreshRequest{Type: RefreshRequestType})
	if err == nil {
		t.Fatal("expected error")
	}
	if report == nil {
		t.Error("report should be returned with the error")
	}
}
