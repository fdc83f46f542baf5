// Package gen produces synthetic log files for exercising the
// clustering and timeline tools. Generation is deterministic under
// a fixed seed.
package gen

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wagok/LogExplorerMCP/internal/config"
)

// Scenario describes the shape of a synthetic log.
type Scenario struct {
	Start    time.Time     `yaml:"start"`
	Duration string        `yaml:"duration"` // e.g. "2h", "90m"
	Rate     int           `yaml:"rate"`     // baseline lines per minute
	Format   string        `yaml:"format"`   // iso8601 or simple
	Seed     int64         `yaml:"seed"`
	Patterns []PatternSpec `yaml:"patterns"`
	Spikes   []SpikeSpec   `yaml:"spikes"`
}

// PatternSpec is one weighted line shape. Placeholders {ip},
// {user}, {num} and {id} are filled per line.
type PatternSpec struct {
	Template string `yaml:"template"`
	Level    string `yaml:"level"`
	Weight   int    `yaml:"weight"`
}

// SpikeSpec multiplies the rate of lines at one level inside a
// window, for exercising anomaly detection.
type SpikeSpec struct {
	Offset   string `yaml:"offset"`   // from scenario start
	Duration string `yaml:"duration"`
	Level    string `yaml:"level"`
	Factor   int    `yaml:"factor"`
}

// Default returns a scenario with three populations of INFO lines,
// sparse WARN and ERROR populations, and an ERROR spike in the
// second hour.
func Default() Scenario {
	return Scenario{
		Start:    time.Now().Add(-2 * time.Hour).Truncate(time.Minute),
		Duration: "2h",
		Rate:     8,
		Format:   "iso8601",
		Seed:     1,
		Patterns: []PatternSpec{
			{Template: "INFO Request {id} completed in {num}ms", Level: "INFO", Weight: 50},
			{Template: "INFO User {user} logged in from {ip}", Level: "INFO", Weight: 25},
			{Template: "INFO Cache refresh finished, {num} entries", Level: "INFO", Weight: 15},
			{Template: "WARN Slow query took {num}ms", Level: "WARN", Weight: 7},
			{Template: "ERROR Connection to {ip} refused", Level: "ERROR", Weight: 3},
		},
		Spikes: []SpikeSpec{
			{Offset: "60m", Duration: "15m", Level: "ERROR", Factor: 10},
		},
	}
}

// Load reads a scenario from a YAML file, filling unset fields from
// the default.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	sc := Default()
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return sc, nil
}

type window struct {
	start, end time.Time
	level      string
	factor     int
}

// Write emits the scenario's lines to w, minute by minute; second
// offsets within a minute are randomized.
func Write(w io.Writer, sc Scenario) error {
	dur, err := config.ParseDuration(sc.Duration)
	if err != nil {
		return fmt.Errorf("scenario duration: %w", err)
	}
	if sc.Rate <= 0 || len(sc.Patterns) == 0 {
		return fmt.Errorf("scenario needs a positive rate and at least one pattern")
	}

	var spikes []window
	for _, s := range sc.Spikes {
		off, err := config.ParseDuration(s.Offset)
		if err != nil {
			return fmt.Errorf("spike offset: %w", err)
		}
		sdur, err := config.ParseDuration(s.Duration)
		if err != nil {
			return fmt.Errorf("spike duration: %w", err)
		}
		spikes = append(spikes, window{
			start:  sc.Start.Add(off),
			end:    sc.Start.Add(off + sdur),
			level:  s.Level,
			factor: s.Factor,
		})
	}

	rng := rand.New(rand.NewSource(sc.Seed))
	bw := bufio.NewWriter(w)

	end := sc.Start.Add(dur)
	for minute := sc.Start; minute.Before(end); minute = minute.Add(time.Minute) {
		for _, p := range sc.Patterns {
			// expected lines this minute, in hundredths
			expected := sc.Rate * p.Weight
			for _, sp := range spikes {
				if p.Level == sp.level && !minute.Before(sp.start) && minute.Before(sp.end) {
					expected *= sp.factor
				}
			}
			n := expected / 100
			if rem := expected % 100; rem > 0 && rng.Intn(100) < rem {
				n++
			}
			for i := 0; i < n; i++ {
				ts := minute.Add(time.Duration(rng.Intn(60)) * time.Second)
				if _, err := fmt.Fprintf(bw, "%s %s\n", stamp(ts, sc.Format), fill(p.Template, rng)); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

func stamp(t time.Time, format string) string {
	switch format {
	case "simple":
		return t.Format("2006-01-02 15:04:05")
	default:
		return t.Format("2006-01-02T15:04:05Z07:00")
	}
}

var users = []string{"alice", "bob", "carol", "dave", "erin", "frank"}

func fill(template string, rng *rand.Rand) string {
	out := template
	for strings.Contains(out, "{ip}") {
		ip := fmt.Sprintf("10.%d.%d.%d", rng.Intn(256), rng.Intn(256), rng.Intn(256))
		out = strings.Replace(out, "{ip}", ip, 1)
	}
	for strings.Contains(out, "{user}") {
		out = strings.Replace(out, "{user}", users[rng.Intn(len(users))], 1)
	}
	for strings.Contains(out, "{num}") {
		out = strings.Replace(out, "{num}", fmt.Sprintf("%d", rng.Intn(5000)), 1)
	}
	for strings.Contains(out, "{id}") {
		out = strings.Replace(out, "{id}", fmt.Sprintf("req-%06d", rng.Intn(1000000)), 1)
	}
	return out
}
