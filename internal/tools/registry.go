package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler describes one tool for transports: its metadata plus a
// dispatch closure over raw JSON arguments.
type Handler struct {
	Name        string
	Description string
	InputSchema map[string]any
	Call        func(ctx context.Context, args json.RawMessage) any
}

func dispatch[A any](t *Tools, fn func(*Tools, context.Context, A) any) func(context.Context, json.RawMessage) any {
	return func(ctx context.Context, raw json.RawMessage) any {
		var args A
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return ErrorResult{Error: fmt.Sprintf("invalid arguments: %v", err)}
			}
		}
		return fn(t, ctx, args)
	}
}

func schema(required []string, props map[string]any) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// Handlers enumerates the tool surface in a transport-neutral form.
func (t *Tools) Handlers() []Handler {
	fileProp := map[string]any{"type": "string", "description": "path to the log file"}

	return []Handler{
		{
			Name:        "overview",
			Description: "File size, line count, detected timestamp format and covered time range. Start here before clustering.",
			InputSchema: schema([]string{"file"}, map[string]any{
				"file": fileProp,
			}),
			Call: dispatch(t, (*Tools).Overview),
		},
		{
			Name:        "cluster",
			Description: "Group similar lines into templates with counts and examples. Use filter to scope, then cluster_drill to refine.",
			InputSchema: schema([]string{"file"}, map[string]any{
				"file":          fileProp,
				"max_clusters":  map[string]any{"type": "integer", "description": "cluster cap, 2-20 (default 10)"},
				"threshold":     map[string]any{"type": "number", "description": "similarity threshold, 0.1-0.9 (default 0.4)"},
				"filter":        map[string]any{"type": "string", "description": "substring, or /regex/ between slashes"},
				"force_refresh": map[string]any{"type": "boolean", "description": "re-read the file even when cached"},
			}),
			Call: dispatch(t, (*Tools).Cluster),
		},
		{
			Name:        "cluster_drill",
			Description: "Split one cluster into finer sub-clusters by re-scanning its member lines.",
			InputSchema: schema([]string{"file", "cluster_id"}, map[string]any{
				"file":            fileProp,
				"cluster_id":      map[string]any{"type": "integer", "description": "id from a previous cluster call"},
				"max_subclusters": map[string]any{"type": "integer", "description": "sub-cluster cap (default 5)"},
			}),
			Call: dispatch(t, (*Tools).ClusterDrill),
		},
		{
			Name:        "timeline",
			Description: "Bucketed histogram of timestamps with anomaly marking, for the whole file or one cluster.",
			InputSchema: schema([]string{"file"}, map[string]any{
				"file":        fileProp,
				"cluster_id":  map[string]any{"type": "integer", "description": "restrict to one cluster's lines"},
				"bucket_size": map[string]any{"type": "string", "enum": []string{"auto", "minute", "hour", "day"}},
			}),
			Call: dispatch(t, (*Tools).Timeline),
		},
		{
			Name:        "grep",
			Description: "Count lines matching a pattern and return a few examples with optional context.",
			InputSchema: schema([]string{"file", "pattern"}, map[string]any{
				"file":          fileProp,
				"pattern":       map[string]any{"type": "string", "description": "substring, or /regex/ between slashes"},
				"max_examples":  map[string]any{"type": "integer", "description": "examples to return (default 5)"},
				"context_lines": map[string]any{"type": "integer", "description": "context lines around each example (default 0)"},
			}),
			Call: dispatch(t, (*Tools).Grep),
		},
		{
			Name:        "fetch",
			Description: "Page through raw matching lines with line numbers.",
			InputSchema: schema([]string{"file"}, map[string]any{
				"file":   fileProp,
				"filter": map[string]any{"type": "string", "description": "substring, or /regex/ between slashes"},
				"offset": map[string]any{"type": "integer", "description": "matches to skip (default 0)"},
				"limit":  map[string]any{"type": "integer", "description": "lines to return (default 100)"},
			}),
			Call: dispatch(t, (*Tools).Fetch),
		},
	}
}
