package config

import (
	"testing"
	"time"
)

func TestClampClusters(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultMaxClusters},
		{1, MinClusters},
		{2, 2},
		{10, 10},
		{20, 20},
		{500, MaxClusters},
		{-3, MinClusters},
	}
	for _, tt := range tests {
		if got := ClampClusters(tt.in); got != tt.want {
			t.Errorf("ClampClusters(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampThreshold(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, DefaultThreshold},
		{0.05, MinThreshold},
		{0.4, 0.4},
		{0.9, 0.9},
		{7.5, MaxThreshold},
	}
	for _, tt := range tests {
		if got := ClampThreshold(tt.in); got != tt.want {
			t.Errorf("ClampThreshold(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "90s", want: 90 * time.Second},
		{in: "5m", want: 5 * time.Minute},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "2d", want: 48 * time.Hour},
		{in: "1d2h", want: 26 * time.Hour},
		{in: "", wantErr: true},
		{in: "sideways", wantErr: true},
		{in: "5x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDuration(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimeRef(t *testing.T) {
	t.Run("absolute", func(t *testing.T) {
		got, err := ParseTimeRef("2024-03-05 10:00:00")
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("ParseTimeRef = %v, want %v", got, want)
		}
	})

	t.Run("relative", func(t *testing.T) {
		got, err := ParseTimeRef("2h")
		if err != nil {
			t.Fatal(err)
		}
		diff := time.Until(got.Add(2 * time.Hour))
		if diff < -time.Minute || diff > time.Minute {
			t.Errorf("ParseTimeRef(2h) = %v, want about two hours ago", got)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := ParseTimeRef("not a time"); err == nil {
			t.Error("expected an error")
		}
	})
}
