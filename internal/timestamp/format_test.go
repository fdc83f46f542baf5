package timestamp

import (
	"fmt"
	"testing"
	"time"
)

func TestExtractByFormat(t *testing.T) {
	tests := []struct {
		name string
		line string
		want time.Time
	}{
		{
			name: "iso8601",
			line: "2024-03-05T14:30:15Z GET /healthz 200",
			want: time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC),
		},
		{
			name: "iso8601",
			line: "2024-03-05T14:30:15.250+02:00 worker started",
			want: time.Date(2024, 3, 5, 14, 30, 15, 250_000_000, time.FixedZone("", 2*3600)),
		},
		{
			name: "clf",
			line: `10.0.0.1 - - [05/Mar/2024:14:30:15 +0000] "GET / HTTP/1.1" 200 512`,
			want: time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC),
		},
		{
			name: "simple",
			line: "2024-03-05 14:30:15 INFO startup complete",
			want: time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC),
		},
		{
			name: "epoch_ms",
			line: "1709649015250 metric cpu=42",
			want: time.UnixMilli(1709649015250).UTC(),
		},
		{
			name: "epoch_s",
			line: "1709649015 metric cpu=42",
			want: time.Unix(1709649015, 0).UTC(),
		},
		{
			name: "bracket",
			line: "[2024-03-05 14:30:15.123] DEBUG cache warm",
			want: time.Date(2024, 3, 5, 14, 30, 15, 123_000_000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.name, tt.line[:10]), func(t *testing.T) {
			f := findFormat(t, tt.name)
			got, ok := f.Extract(tt.line)
			if !ok {
				t.Fatalf("%s did not match %q", tt.name, tt.line)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Extract = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSyslogUsesCurrentYear(t *testing.T) {
	f := findFormat(t, "syslog")
	got, ok := f.Extract("Mar  5 14:30:15 host sshd[123]: accepted")
	if !ok {
		t.Fatal("syslog recognizer did not match")
	}
	want := time.Date(time.Now().Year(), 3, 5, 14, 30, 15, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtractRejectsIllFormed(t *testing.T) {
	tests := []struct {
		format string
		line   string
	}{
		{"iso8601", "2024-13-45T99:99:99Z impossible"},
		{"syslog", "Zzz 5 14:30:15 bad month"},
		{"epoch_ms", "9999649015250 too far in the future"},
		{"epoch_s", "123456 short number"},
		{"clf", "no bracket 05/Mar/2024:14:30:15"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f := findFormat(t, tt.format)
			if ts, ok := f.Extract(tt.line); ok {
				t.Errorf("%s accepted %q as %v", tt.format, tt.line, ts)
			}
		})
	}
}

func TestEpochRangesAvoidRequestIds(t *testing.T) {
	f := findFormat(t, "epoch_s")
	for _, line := range []string{
		"request 1234567890 handled",  // leading 12, outside 14-19
		"port 8080 opened",
		"id 2000000000 assigned",
	} {
		if _, ok := f.Extract(line); ok {
			t.Errorf("epoch_s matched %q", line)
		}
	}
}

func TestDetect(t *testing.T) {
	isoLines := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("2024-03-05T14:%02d:00Z request %d", i%60, i)
		}
		return out
	}

	t.Run("dominant format wins", func(t *testing.T) {
		sample := isoLines(80)
		for i := 0; i < 20; i++ {
			sample = append(sample, "no timestamp here")
		}
		f := Detect(sample)
		if f == nil || f.Name != "iso8601" {
			t.Fatalf("Detect = %v, want iso8601", f)
		}
	})

	t.Run("below half is none", func(t *testing.T) {
		sample := isoLines(40)
		for i := 0; i < 60; i++ {
			sample = append(sample, "plain line without any date")
		}
		if f := Detect(sample); f != nil {
			t.Errorf("Detect = %s, want none at 40%% confidence", f.Name)
		}
	})

	t.Run("empty sample is none", func(t *testing.T) {
		if f := Detect(nil); f != nil {
			t.Errorf("Detect(nil) = %s, want none", f.Name)
		}
	})

	t.Run("catalogue order breaks ties", func(t *testing.T) {
		// Space-separated datetimes satisfy both iso8601 and simple;
		// the earlier catalogue entry must win.
		sample := make([]string, 10)
		for i := range sample {
			sample[i] = fmt.Sprintf("2024-03-05 14:30:%02d INFO tick", i)
		}
		f := Detect(sample)
		if f == nil || f.Name != "iso8601" {
			t.Fatalf("Detect = %v, want iso8601 by catalogue order", f)
		}
	})
}

func findFormat(t *testing.T, name string) *Format {
	t.Helper()
	for _, f := range Catalogue() {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("format %s not in catalogue", name)
	return nil
}
