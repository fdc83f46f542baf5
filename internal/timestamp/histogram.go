package timestamp

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TargetBuckets is the bucket count the auto sizer aims for.
const TargetBuckets = 20

// barWidth is the cell width of the ASCII histogram bars.
const barWidth = 40

// canonicalSizes are the allowed bucket durations, largest first.
var canonicalSizes = []time.Duration{
	30 * 24 * time.Hour,
	7 * 24 * time.Hour,
	24 * time.Hour,
	6 * time.Hour,
	time.Hour,
	15 * time.Minute,
	5 * time.Minute,
	time.Minute,
	time.Second,
}

// Bucket is one fixed-duration counting interval.
type Bucket struct {
	Start time.Time
	End   time.Time
	Count int
}

// Histogram is a contiguous run of equal-sized buckets covering an
// observed time span.
type Histogram struct {
	Size    time.Duration
	Buckets []Bucket
}

// Anomaly marks a bucket whose count exceeds the histogram mean by
// more than two standard deviations.
type Anomaly struct {
	Bucket    Bucket
	Deviation float64 // (count-mean)/sigma, rounded to one decimal
	Label     string  // e.g. "3.2σ"
}

// BucketSize picks the largest canonical duration not exceeding
// span/target, never returning zero: spans under a second still get
// one-second buckets.
func BucketSize(min, max time.Time, target int) time.Duration {
	if target <= 0 {
		target = TargetBuckets
	}
	limit := max.Sub(min) / time.Duration(target)
	for _, s := range canonicalSizes {
		if s <= limit {
			return s
		}
	}
	return time.Second
}

// Build counts the timestamps into sequential buckets of the given
// size. The first bucket is aligned to the floor of the earliest
// instant; buckets run contiguously until the latest instant is
// covered, so every timestamp lands in exactly one bucket.
func Build(ts []time.Time, size time.Duration) Histogram {
	h := Histogram{Size: size}
	if len(ts) == 0 || size <= 0 {
		return h
	}

	min, max := ts[0], ts[0]
	for _, t := range ts[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}

	first := min.Truncate(size)
	n := int(max.Sub(first)/size) + 1
	h.Buckets = make([]Bucket, n)
	for i := range h.Buckets {
		start := first.Add(time.Duration(i) * size)
		h.Buckets[i] = Bucket{Start: start, End: start.Add(size)}
	}
	for _, t := range ts {
		h.Buckets[int(t.Sub(first)/size)].Count++
	}
	return h
}

// Anomalies reports the buckets whose counts sit more than two
// population standard deviations above the mean.
func (h Histogram) Anomalies() []Anomaly {
	n := len(h.Buckets)
	if n == 0 {
		return nil
	}

	sum := 0
	for _, b := range h.Buckets {
		sum += b.Count
	}
	mean := float64(sum) / float64(n)

	variance := 0.0
	for _, b := range h.Buckets {
		d := float64(b.Count) - mean
		variance += d * d
	}
	sigma := math.Sqrt(variance / float64(n))
	if sigma == 0 {
		return nil
	}

	var out []Anomaly
	for _, b := range h.Buckets {
		if float64(b.Count) <= mean+2*sigma {
			continue
		}
		dev := math.Round(10*(float64(b.Count)-mean)/sigma) / 10
		out = append(out, Anomaly{
			Bucket:    b,
			Deviation: dev,
			Label:     fmt.Sprintf("%.1fσ", dev),
		})
	}
	return out
}

// RenderASCII draws one line per bucket: the bucket's local start
// time, a bar of solid and light blocks scaled to the largest
// count, and the numeric count.
func (h Histogram) RenderASCII() string {
	if len(h.Buckets) == 0 {
		return ""
	}

	maxCount := 0
	for _, b := range h.Buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	var sb strings.Builder
	for i, b := range h.Buckets {
		filled := 0
		if maxCount > 0 {
			filled = int(math.Round(barWidth * float64(b.Count) / float64(maxCount)))
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(b.Start.Local().Format("2006-01-02 15:04:05"))
		sb.WriteString(" │")
		sb.WriteString(strings.Repeat("█", filled))
		sb.WriteString(strings.Repeat("░", barWidth-filled))
		sb.WriteString(fmt.Sprintf(" %d", b.Count))
	}
	return sb.String()
}
