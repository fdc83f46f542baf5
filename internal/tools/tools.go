// Package tools implements the six log-exploration operations over
// the engine. Every handler takes a structured argument object and
// returns a structured result; failures are encoded as
// {error: string} documents rather than raised, so a single bad
// call never disturbs the session or the transport.
package tools

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wagok/LogExplorerMCP/internal/cluster"
	"github.com/wagok/LogExplorerMCP/internal/config"
	"github.com/wagok/LogExplorerMCP/internal/engine"
)

// Tools exposes the tool surface over one engine instance.
type Tools struct {
	engine *engine.Engine
}

// New creates the tool surface.
func New(e *engine.Engine) *Tools {
	return &Tools{engine: e}
}

// ErrorResult is the uniform failure document.
type ErrorResult struct {
	Error string `json:"error"`
}

func errResult(err error) ErrorResult {
	return ErrorResult{Error: err.Error()}
}

// TimeRange reports an observed timestamp span.
type TimeRange struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
}

func newTimeRange(min, max time.Time) *TimeRange {
	return &TimeRange{
		Start:    min.Format(time.RFC3339),
		End:      max.Format(time.RFC3339),
		Duration: max.Sub(min).String(),
	}
}

// OverviewArgs selects a file for a quick survey.
type OverviewArgs struct {
	File string `json:"file"`
}

// OverviewResult summarizes a file without exposing any raw lines.
type OverviewResult struct {
	File            string     `json:"file"`
	SizeBytes       int64      `json:"size_bytes"`
	SizeHuman       string     `json:"size_human"`
	TotalLines      int        `json:"total_lines"`
	TimestampFormat *string    `json:"timestamp_format"`
	TimeRange       *TimeRange `json:"time_range"`
}

// Overview reports file size, line count, the detected timestamp
// format and the covered time range.
func (t *Tools) Overview(ctx context.Context, args OverviewArgs) any {
	info, err := os.Stat(args.File)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrorResult{Error: fmt.Sprintf("File not found: %s", args.File)}
		}
		return errResult(err)
	}

	sess, err := t.engine.Session(ctx, args.File, defaultParams())
	if err != nil {
		return errResult(err)
	}

	res := OverviewResult{
		File:       args.File,
		SizeBytes:  info.Size(),
		SizeHuman:  humanBytes(info.Size()),
		TotalLines: sess.TotalLines,
	}
	if sess.Format != nil {
		name := sess.Format.Name
		res.TimestampFormat = &name
	}
	if min, max, ok := sess.TimeRange(); ok {
		res.TimeRange = newTimeRange(min, max)
	}
	return res
}

// ClusterArgs selects and tunes a clustering pass.
type ClusterArgs struct {
	File        string  `json:"file"`
	MaxClusters int     `json:"max_clusters"`
	Threshold   float64 `json:"threshold"`
	Filter      string  `json:"filter"`
	ForceRefresh bool   `json:"force_refresh"`
}

// ClusterResult lists the induced clusters, biggest first.
type ClusterResult struct {
	File       string         `json:"file"`
	TotalLines int            `json:"total_lines"`
	Clusters   []cluster.View `json:"clusters"`
}

// Cluster groups the file's lines into templates. Out-of-range
// parameters are clamped, not rejected.
func (t *Tools) Cluster(ctx context.Context, args ClusterArgs) any {
	p := engine.Params{
		MaxClusters:  config.ClampClusters(args.MaxClusters),
		Threshold:    config.ClampThreshold(args.Threshold),
		Filter:       args.Filter,
		ForceRefresh: args.ForceRefresh,
	}
	sess, err := t.engine.Session(ctx, args.File, p)
	if err != nil {
		return errResult(err)
	}

	views := sess.Clusters.Stats()
	for i := range views {
		if len(views[i].Examples) > 3 {
			views[i].Examples = views[i].Examples[:3]
		}
	}
	return ClusterResult{File: args.File, TotalLines: sess.TotalLines, Clusters: views}
}

// DrillArgs names a parent cluster to refine.
type DrillArgs struct {
	File           string `json:"file"`
	ClusterID      int    `json:"cluster_id"`
	MaxSubclusters int    `json:"max_subclusters"`
}

// DrillResult echoes the parent and lists its sub-clusters.
type DrillResult struct {
	File           string         `json:"file"`
	ClusterID      int            `json:"cluster_id"`
	ParentTemplate string         `json:"parent_template"`
	ParentCount    int            `json:"parent_count"`
	Subclusters    []cluster.View `json:"subclusters"`
}

// ClusterDrill re-scans the file and sub-clusters the lines that
// belong to the given cluster.
func (t *Tools) ClusterDrill(ctx context.Context, args DrillArgs) any {
	maxSub := args.MaxSubclusters
	if maxSub == 0 {
		maxSub = config.DefaultSubclusters
	}
	maxSub = config.ClampInt(maxSub, config.MinClusters, config.MaxClusters)

	sess, parent, err := t.resolveCluster(ctx, args.File, args.ClusterID)
	if err != nil {
		return errResult(err)
	}

	sub, err := t.engine.Drill(ctx, sess, parent, maxSub)
	if err != nil {
		return errResult(err)
	}
	views := sub.Stats()
	for i := range views {
		if len(views[i].Examples) > 3 {
			views[i].Examples = views[i].Examples[:3]
		}
	}
	return DrillResult{
		File:           args.File,
		ClusterID:      args.ClusterID,
		ParentTemplate: parent.Template.Pattern,
		ParentCount:    parent.Count,
		Subclusters:    views,
	}
}

// resolveCluster finds the session that issued the id, preferring
// any cached pass over the file and falling back to a
// default-parameter ingest.
func (t *Tools) resolveCluster(ctx context.Context, file string, id int) (*engine.Session, *cluster.Cluster, error) {
	if sess, cl := t.engine.Store().FindCluster(file, id); cl != nil {
		return sess, cl, nil
	}
	sess, err := t.engine.Session(ctx, file, defaultParams())
	if err != nil {
		return nil, nil, err
	}
	if cl := sess.Clusters.Get(id); cl != nil {
		return sess, cl, nil
	}
	return nil, nil, fmt.Errorf("Unknown cluster id %d (never issued or evicted)", id)
}

func defaultParams() engine.Params {
	return engine.Params{
		MaxClusters: config.DefaultMaxClusters,
		Threshold:   config.DefaultThreshold,
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
