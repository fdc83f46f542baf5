package gen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wagok/LogExplorerMCP/internal/timestamp"
)

func testScenario() Scenario {
	sc := Default()
	sc.Start = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	sc.Seed = 42
	return sc
}

func TestWriteDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	if err := Write(&first, testScenario()); err != nil {
		t.Fatal(err)
	}
	if err := Write(&second, testScenario()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("same scenario and seed produced different output")
	}

	other := testScenario()
	other.Seed = 43
	var third bytes.Buffer
	if err := Write(&third, other); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(first.Bytes(), third.Bytes()) {
		t.Error("different seeds produced identical output")
	}
}

func TestWriteLinesParse(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testScenario()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 100 {
		t.Fatalf("generated only %d lines", len(lines))
	}

	f := timestamp.Detect(lines[:timestamp.SampleSize])
	if f == nil || f.Name != "iso8601" {
		t.Fatalf("generated log did not detect as iso8601: %v", f)
	}
	for i, line := range lines {
		if _, ok := f.Extract(line); !ok {
			t.Fatalf("line %d has no parseable timestamp: %q", i, line)
		}
	}
}

func TestWriteSpikeRaisesErrorRate(t *testing.T) {
	var buf bytes.Buffer
	sc := testScenario()
	if err := Write(&buf, sc); err != nil {
		t.Fatal(err)
	}

	inWindow, outWindow := 0, 0
	spikeStart := sc.Start.Add(60 * time.Minute)
	spikeEnd := sc.Start.Add(75 * time.Minute)
	f := findISO(t)
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.Contains(line, "ERROR") {
			continue
		}
		ts, ok := f.Extract(line)
		if !ok {
			continue
		}
		if !ts.Before(spikeStart) && ts.Before(spikeEnd) {
			inWindow++
		} else {
			outWindow++
		}
	}
	// Per-minute rates: 15 spike minutes vs 105 quiet ones. The
	// spike runs at 10x, so even 3x is a generous margin.
	if inWindow*105 <= 3*outWindow*15 {
		t.Errorf("spike window rate too low: %d errors in 15 min vs %d in 105 min", inWindow, outWindow)
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	doc := `
rate: 30
seed: 7
patterns:
  - template: "INFO ping from {ip}"
    level: INFO
    weight: 100
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Rate != 30 || sc.Seed != 7 {
		t.Errorf("rate=%d seed=%d, want overrides applied", sc.Rate, sc.Seed)
	}
	if len(sc.Patterns) != 1 || sc.Patterns[0].Weight != 100 {
		t.Errorf("patterns = %+v, want the single yaml pattern", sc.Patterns)
	}
	// Unset fields keep their defaults.
	if sc.Duration != Default().Duration {
		t.Errorf("duration = %q, want default %q", sc.Duration, Default().Duration)
	}
}

func TestWriteRejectsBadScenario(t *testing.T) {
	sc := testScenario()
	sc.Rate = 0
	if err := Write(&bytes.Buffer{}, sc); err == nil {
		t.Error("expected an error for zero rate")
	}

	sc = testScenario()
	sc.Duration = "sideways"
	if err := Write(&bytes.Buffer{}, sc); err == nil {
		t.Error("expected an error for a bad duration")
	}
}

func findISO(t *testing.T) *timestamp.Format {
	t.Helper()
	for _, f := range timestamp.Catalogue() {
		if f.Name == "iso8601" {
			return f
		}
	}
	t.Fatal("iso8601 missing from catalogue")
	return nil
}
