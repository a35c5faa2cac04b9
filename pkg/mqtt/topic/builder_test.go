package topic

import "testing"

func TestBuilder(t *testing.T) {
	b := NewBuilder("fleet/v1")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"telemetry", b.Telemetry("V001"), "fleet/v1/telemetry/V001"},
		{"telemetry wildcard", b.TelemetryWildcard(), "fleet/v1/telemetry/+"},
		{"command", b.Command("V001"), "fleet/v1/command/V001"},
		{"status", b.Status("V002"), "fleet/v1/status/V002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestVehicleID(t *testing.T) {
	b := NewBuilder("fleet/v1")

	tests := []struct {
		topic string
		want  string
	}{
		{"fleet/v1/telemetry/V001", "V001"},
		{"fleet/v1/command/abc-123", "abc-123"},
		{"fleet/v1/telemetry/", ""},
		{"nodelimiter", ""},
	}

	for _, tt := range tests {
		if got := b.VehicleID(tt.topic); got != tt.want {
			t.Errorf("VehicleID(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
