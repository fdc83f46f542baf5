package timestamp

import (
	"strings"
	"testing"
	"time"
)

func TestBucketSize(t *testing.T) {
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		span time.Duration
		want time.Duration
	}{
		{name: "one hour span picks minutes", span: time.Hour, want: time.Minute},
		{name: "twenty seconds picks seconds", span: 20 * time.Second, want: time.Second},
		{name: "sub-second span floors to one second", span: 500 * time.Millisecond, want: time.Second},
		{name: "one day span", span: 24 * time.Hour, want: time.Hour},
		{name: "two hours picks five minutes", span: 2 * time.Hour, want: 5 * time.Minute},
		{name: "one year span picks weeks", span: 365 * 24 * time.Hour, want: 7 * 24 * time.Hour},
		{name: "zero span", span: 0, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BucketSize(base, base.Add(tt.span), TargetBuckets); got != tt.want {
				t.Errorf("BucketSize(span=%v) = %v, want %v", tt.span, got, tt.want)
			}
		})
	}
}

func TestBuildCoverage(t *testing.T) {
	base := time.Date(2024, 3, 5, 10, 0, 30, 0, time.UTC)
	var ts []time.Time
	for i := 0; i < 95; i++ {
		ts = append(ts, base.Add(time.Duration(i)*37*time.Second))
	}

	h := Build(ts, 5*time.Minute)

	total := 0
	for _, b := range h.Buckets {
		total += b.Count
		if b.End.Sub(b.Start) != 5*time.Minute {
			t.Errorf("bucket size %v, want 5m", b.End.Sub(b.Start))
		}
	}
	if total != len(ts) {
		t.Errorf("bucket counts sum to %d, want %d", total, len(ts))
	}

	if first := h.Buckets[0].Start; first != base.Truncate(5*time.Minute) {
		t.Errorf("first bucket starts at %v, want floor of min", first)
	}
	last := h.Buckets[len(h.Buckets)-1]
	max := ts[len(ts)-1]
	if max.Before(last.Start) || !max.Before(last.End) {
		t.Errorf("max timestamp %v outside final bucket [%v, %v)", max, last.Start, last.End)
	}
}

func TestBuildEmpty(t *testing.T) {
	h := Build(nil, time.Minute)
	if len(h.Buckets) != 0 {
		t.Errorf("Build(nil) produced %d buckets", len(h.Buckets))
	}
	if h.Anomalies() != nil {
		t.Error("empty histogram reported anomalies")
	}
	if h.RenderASCII() != "" {
		t.Error("empty histogram rendered output")
	}
}

func TestAnomalies(t *testing.T) {
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	// 120 minutes at 5 lines/min with a 10x spike over minutes
	// 60-74.
	var ts []time.Time
	for minute := 0; minute < 120; minute++ {
		n := 5
		if minute >= 60 && minute < 75 {
			n = 50
		}
		for i := 0; i < n; i++ {
			ts = append(ts, base.Add(time.Duration(minute)*time.Minute+time.Duration(i)*time.Second))
		}
	}

	h := Build(ts, time.Minute)
	anomalies := h.Anomalies()
	if len(anomalies) == 0 {
		t.Fatal("expected anomalies in the spike window")
	}

	spikeStart := base.Add(60 * time.Minute)
	spikeEnd := base.Add(75 * time.Minute)
	for _, a := range anomalies {
		if a.Bucket.Start.Before(spikeStart) || !a.Bucket.Start.Before(spikeEnd) {
			t.Errorf("anomaly at %v outside the spike window", a.Bucket.Start)
		}
		if a.Deviation < 2 {
			t.Errorf("anomaly deviation %v, want at least 2 sigma", a.Deviation)
		}
		if !strings.HasSuffix(a.Label, "σ") {
			t.Errorf("label %q missing the sigma suffix", a.Label)
		}
	}
}

func TestAnomaliesUniform(t *testing.T) {
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	var ts []time.Time
	for minute := 0; minute < 30; minute++ {
		for i := 0; i < 4; i++ {
			ts = append(ts, base.Add(time.Duration(minute)*time.Minute))
		}
	}
	if anomalies := Build(ts, time.Minute).Anomalies(); len(anomalies) != 0 {
		t.Errorf("uniform histogram reported %d anomalies", len(anomalies))
	}
}

func TestRenderASCII(t *testing.T) {
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.Local)
	ts := []time.Time{
		base, base, base, base,
		base.Add(time.Minute),
		base.Add(2 * time.Minute), base.Add(2 * time.Minute),
	}

	out := Build(ts, time.Minute).RenderASCII()
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("rendered %d lines, want 3:\n%s", len(lines), out)
	}

	if !strings.HasPrefix(lines[0], "2024-03-05 10:00:00 │") {
		t.Errorf("line 0 = %q, want timestamp and bar delimiter prefix", lines[0])
	}
	// The fullest bucket gets a solid 40-cell bar.
	if got := strings.Count(lines[0], "█"); got != 40 {
		t.Errorf("max bucket has %d solid cells, want 40", got)
	}
	// 1 of 4 rounds to a quarter bar.
	if got := strings.Count(lines[1], "█"); got != 10 {
		t.Errorf("quarter bucket has %d solid cells, want 10", got)
	}
	if got := strings.Count(lines[1], "░"); got != 30 {
		t.Errorf("quarter bucket has %d light cells, want 30", got)
	}
	if !strings.HasSuffix(lines[2], " 2") {
		t.Errorf("line 2 = %q, want trailing count", lines[2])
	}
}
