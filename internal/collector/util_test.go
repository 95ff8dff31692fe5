package collector

import "testing"

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		part  uint64
		total uint64
		want  float64
	}{
		{"Zero total", 5, 0, 0},
		{"Empty", 0, 100, 0},
		{"Full", 100, 100, 100},
		{"Quarter", 25, 100, 25},
		{"Rounded", 1, 3, 33.33},
		{"Large", 512 << 30, 1 << 40, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percent(tt.part, tt.total); got != tt.want {
				t.Errorf("percent(%d, %d) = %v, want %v", tt.part, tt.total, got, tt.want)
			}
		})
	}

	if got := percent(0.5, 2.0); got != 25 {
		t.Errorf("percent(0.5, 2.0) = %v, want 25", got)
	}
}
