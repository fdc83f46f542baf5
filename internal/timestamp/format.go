// Package timestamp infers the dominant timestamp format of a log
// file, extracts instants from lines, and builds bucketed
// histograms with anomaly marking.
package timestamp

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// SampleSize is the number of lines inspected during format
// detection.
const SampleSize = 100

// minConfidence is the fraction of sample lines that must parse for
// a format to be accepted.
const minConfidence = 0.5

// Format is one entry of the recognizer catalogue: a named matcher
// paired with an explicit parse step. A closed set of variants is
// enough here; no interface needed.
type Format struct {
	Name  string
	re    *regexp.Regexp
	parse func(m []string) (time.Time, error)
}

// Extract pulls a timestamp out of a line. A line that matches the
// recognizer but fails to parse (say, month 13) yields ok=false;
// detection is never re-run because of it.
func (f *Format) Extract(line string) (time.Time, bool) {
	m := f.re.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	t, err := f.parse(m)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var monthAbbrev = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

var (
	iso8601Re = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})[T ](\d{2}:\d{2}:\d{2})(\.\d{1,9})?(Z|[+-]\d{2}:\d{2})?`)
	clfRe     = regexp.MustCompile(`\[(\d{2}/[A-Z][a-z]{2}/\d{4}:\d{2}:\d{2}:\d{2} [+-]\d{4})\]`)
	syslogRe  = regexp.MustCompile(`\b([A-Z][a-z]{2}) +(\d{1,2}) (\d{2}):(\d{2}):(\d{2})\b`)
	simpleRe  = regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`)
	// The epoch ranges are deliberately narrow (years 2014-2033) so
	// request ids and port numbers do not collide with them.
	epochMsRe = regexp.MustCompile(`\b(1[4-9]\d{11})\b`)
	epochSRe  = regexp.MustCompile(`\b(1[4-9]\d{8})\b`)
	bracketRe = regexp.MustCompile(`\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})(\.\d{1,9})?\]`)
)

// Catalogue builds the ordered recognizer set. Order matters twice:
// detection breaks confidence ties by it, and the syslog variant
// pins the current year at construction so one ingest pass cannot
// split across a year change.
func Catalogue() []*Format {
	year := time.Now().Year()

	return []*Format{
		{
			Name: "iso8601",
			re:   iso8601Re,
			parse: func(m []string) (time.Time, error) {
				s := m[1] + "T" + m[2] + m[3] + m[4]
				layout := "2006-01-02T15:04:05.999999999"
				if m[4] != "" {
					layout += "Z07:00"
				}
				return time.Parse(layout, s)
			},
		},
		{
			Name: "clf",
			re:   clfRe,
			parse: func(m []string) (time.Time, error) {
				// The numeric offset is honored rather than dropped
				// in favor of the local zone.
				return time.Parse("02/Jan/2006:15:04:05 -0700", m[1])
			},
		},
		{
			Name: "syslog",
			re:   syslogRe,
			parse: func(m []string) (time.Time, error) {
				month, ok := monthAbbrev[m[1]]
				if !ok {
					return time.Time{}, fmt.Errorf("unknown month %q", m[1])
				}
				day, _ := strconv.Atoi(m[2])
				hh, _ := strconv.Atoi(m[3])
				mm, _ := strconv.Atoi(m[4])
				ss, _ := strconv.Atoi(m[5])
				if day < 1 || day > 31 || hh > 23 || mm > 59 || ss > 59 {
					return time.Time{}, fmt.Errorf("out of range: %q", m[0])
				}
				return time.Date(year, month, day, hh, mm, ss, 0, time.Local), nil
			},
		},
		{
			Name: "simple",
			re:   simpleRe,
			parse: func(m []string) (time.Time, error) {
				return time.Parse("2006-01-02 15:04:05", m[1])
			},
		},
		{
			Name: "epoch_ms",
			re:   epochMsRe,
			parse: func(m []string) (time.Time, error) {
				ms, err := strconv.ParseInt(m[1], 10, 64)
				if err != nil {
					return time.Time{}, err
				}
				return time.UnixMilli(ms).UTC(), nil
			},
		},
		{
			Name: "epoch_s",
			re:   epochSRe,
			parse: func(m []string) (time.Time, error) {
				sec, err := strconv.ParseInt(m[1], 10, 64)
				if err != nil {
					return time.Time{}, err
				}
				return time.Unix(sec, 0).UTC(), nil
			},
		},
		{
			Name: "bracket",
			re:   bracketRe,
			parse: func(m []string) (time.Time, error) {
				return time.Parse("2006-01-02 15:04:05.999999999", m[1]+m[2])
			},
		},
	}
}

// Detect scores every catalogue entry against the sample and
// returns the recognizer with the highest confidence, or nil when
// none parses more than half of the sample. Ties keep the earlier
// catalogue entry.
func Detect(sample []string) *Format {
	if len(sample) == 0 {
		return nil
	}

	var best *Format
	bestConf := 0.0
	for _, f := range Catalogue() {
		valid := 0
		for _, line := range sample {
			if _, ok := f.Extract(line); ok {
				valid++
			}
		}
		conf := float64(valid) / float64(len(sample))
		if conf > bestConf {
			best, bestConf = f, conf
		}
	}
	if bestConf <= minConfidence {
		return nil
	}
	return best
}
