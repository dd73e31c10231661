package models

import "time"

// WakeState is the counter retained across deep-sleep power cycles
type WakeState struct {
	Counter int `json:"counter"`
}

// CycleReport summarizes one completed wake cycle
type CycleReport struct {
	Type         string    `json:"type"`
	DeviceID     string    `json:"device_id"`
	Counter      int       `json:"counter"`
	FreshBoot    bool      `json:"fresh_boot"`
	Mode         string    `json:"mode"`
	DataReceived bool      `json:"data_received"`
	Pages        int       `json:"pages"`
	RenderOutput string    `json:"render_output"` // base64 encoded PNG
	RenderedAt   time.Time `json:"rendered_at"`
}

// RefreshRequest asks a running station to start a wake cycle now
type RefreshRequest struct {
	Type      string `json:"type"`
	ForceFull bool   `json:"force_full"`
	Reason    string `json:"reason,omitempty"`
}
