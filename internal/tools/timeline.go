package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/wagok/LogExplorerMCP/internal/config"
	"github.com/wagok/LogExplorerMCP/internal/engine"
	"github.com/wagok/LogExplorerMCP/internal/timestamp"
)

// TimelineArgs selects the timestamp series to histogram: the whole
// file, or one cluster's admissions.
type TimelineArgs struct {
	File       string `json:"file"`
	ClusterID  *int   `json:"cluster_id"`
	BucketSize string `json:"bucket_size"` // auto, minute, hour, day
}

// BucketOut is one histogram bucket in a result document.
type BucketOut struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Count int    `json:"count"`
}

// AnomalyOut marks a bucket counted far above the mean.
type AnomalyOut struct {
	Start     string `json:"start"`
	Count     int    `json:"count"`
	Deviation string `json:"deviation"`
}

// TimelineResult is a bucketed histogram with its rendering and
// outliers.
type TimelineResult struct {
	File          string       `json:"file"`
	ClusterID     *int         `json:"cluster_id,omitempty"`
	BucketSize    string       `json:"bucket_size"`
	TimeRange     *TimeRange   `json:"time_range"`
	Buckets       []BucketOut  `json:"buckets"`
	Visualization string       `json:"visualization"`
	Anomalies     []AnomalyOut `json:"anomalies"`
}

// Timeline builds a temporal histogram over the file's timestamps,
// optionally scoped to a single cluster, with anomaly marking and
// an ASCII rendering.
func (t *Tools) Timeline(ctx context.Context, args TimelineArgs) any {
	var series []time.Time
	if args.ClusterID != nil {
		_, cl, err := t.resolveCluster(ctx, args.File, *args.ClusterID)
		if err != nil {
			return errResult(err)
		}
		series = cl.Timestamps
	} else {
		sess, err := t.engine.Session(ctx, args.File, defaultParams())
		if err != nil {
			return errResult(err)
		}
		if sess.Format == nil {
			return ErrorResult{Error: fmt.Sprintf("No timestamp format detected in %s", args.File)}
		}
		series = sess.Timestamps
	}
	if len(series) == 0 {
		return ErrorResult{Error: fmt.Sprintf("No timestamps found in %s", args.File)}
	}

	min, max := series[0], series[0]
	for _, ts := range series[1:] {
		if ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}

	size, err := resolveBucketSize(args.BucketSize, min, max)
	if err != nil {
		return errResult(err)
	}

	h := timestamp.Build(series, size)
	res := TimelineResult{
		File:          args.File,
		ClusterID:     args.ClusterID,
		BucketSize:    size.String(),
		TimeRange:     newTimeRange(min, max),
		Visualization: h.RenderASCII(),
	}
	for _, b := range h.Buckets {
		res.Buckets = append(res.Buckets, BucketOut{
			Start: b.Start.Format(time.RFC3339),
			End:   b.End.Format(time.RFC3339),
			Count: b.Count,
		})
	}
	for _, a := range h.Anomalies() {
		res.Anomalies = append(res.Anomalies, AnomalyOut{
			Start:     a.Bucket.Start.Format(time.RFC3339),
			Count:     a.Bucket.Count,
			Deviation: a.Label,
		})
	}
	return res
}

func resolveBucketSize(name string, min, max time.Time) (time.Duration, error) {
	switch name {
	case "", "auto":
		return timestamp.BucketSize(min, max, timestamp.TargetBuckets), nil
	case "minute":
		return time.Minute, nil
	case "hour":
		return time.Hour, nil
	case "day":
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unknown bucket_size %q (want auto, minute, hour or day)", name)
}

// GrepArgs is a counted search over raw lines.
type GrepArgs struct {
	File         string `json:"file"`
	Pattern      string `json:"pattern"`
	MaxExamples  int    `json:"max_examples"`
	ContextLines int    `json:"context_lines"`
}

// GrepResult is the total hit count plus a bounded sample.
type GrepResult struct {
	File         string         `json:"file"`
	Pattern      string         `json:"pattern"`
	TotalMatches int            `json:"total_matches"`
	Matches      []engine.Match `json:"matches"`
	Hint         string         `json:"hint,omitempty"`
}

// FetchArgs is a raw-line window request.
type FetchArgs struct {
	File   string `json:"file"`
	Filter string `json:"filter"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// FetchResult is a window of raw lines with line numbers.
type FetchResult struct {
	File         string             `json:"file"`
	Filter       string             `json:"filter,omitempty"`
	Offset       int                `json:"offset"`
	Limit        int                `json:"limit"`
	Lines        []engine.FetchLine `json:"lines"`
	TotalScanned int                `json:"total_scanned"`
}

// Grep counts the lines matching a pattern and returns a bounded
// number of examples, hinting at fetch when truncated.
func (t *Tools) Grep(ctx context.Context, args GrepArgs) any {
	maxExamples := args.MaxExamples
	if maxExamples == 0 {
		maxExamples = config.DefaultGrepExamples
	}
	maxExamples = config.ClampInt(maxExamples, 1, config.MaxGrepExamples)
	contextLines := config.ClampInt(args.ContextLines, 0, config.MaxContextLines)

	data, err := t.engine.Grep(ctx, args.File, args.Pattern, maxExamples, contextLines)
	if err != nil {
		return errResult(err)
	}

	res := GrepResult{
		File:         args.File,
		Pattern:      args.Pattern,
		TotalMatches: data.TotalMatches,
		Matches:      data.Matches,
	}
	if data.TotalMatches > len(data.Matches) {
		res.Hint = fmt.Sprintf("showing %d of %d matches; use fetch with this pattern as filter to page through the rest",
			len(data.Matches), data.TotalMatches)
	}
	return res
}

// Fetch returns raw matching lines in a windowed page.
func (t *Tools) Fetch(ctx context.Context, args FetchArgs) any {
	limit := args.Limit
	if limit == 0 {
		limit = config.DefaultFetchLimit
	}
	limit = config.ClampInt(limit, 1, config.MaxFetchLimit)
	offset := args.Offset
	if offset < 0 {
		offset = 0
	}

	data, err := t.engine.Fetch(ctx, args.File, args.Filter, offset, limit)
	if err != nil {
		return errResult(err)
	}
	return FetchResult{
		File:         args.File,
		Filter:       args.Filter,
		Offset:       offset,
		Limit:        limit,
		Lines:        data.Lines,
		TotalScanned: data.TotalScanned,
	}
}
