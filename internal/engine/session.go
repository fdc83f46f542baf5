package engine

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/wagok/LogExplorerMCP/internal/cluster"
	"github.com/wagok/LogExplorerMCP/internal/timestamp"
)

// maxLineBytes bounds the scanner buffer; longer lines are an
// error, not a crash.
const maxLineBytes = 1024 * 1024

// Params selects an ingest pass.
type Params struct {
	MaxClusters  int
	Threshold    float64
	Filter       string
	ForceRefresh bool
}

// Engine ties the session store to the streaming passes. It is the
// single owner of the cache; tool handlers hold an Engine, not a
// global.
type Engine struct {
	store *Store
}

// New creates an Engine over the given store.
func New(store *Store) *Engine {
	return &Engine{store: store}
}

// Store exposes the underlying session store.
func (e *Engine) Store() *Store {
	return e.store
}

// Matcher reports whether a line is selected by a user pattern.
type Matcher func(string) bool

// CompileFilter builds a line matcher from a user pattern. A
// pattern wrapped in forward slashes compiles as a regular
// expression; anything else matches as a plain substring. The empty
// pattern selects every line.
func CompileFilter(pat string) (Matcher, error) {
	if pat == "" {
		return func(string) bool { return true }, nil
	}
	if len(pat) > 2 && strings.HasPrefix(pat, "/") && strings.HasSuffix(pat, "/") {
		re, err := regexp.Compile(pat[1 : len(pat)-1])
		if err != nil {
			return nil, fmt.Errorf("Invalid regex: %v", err)
		}
		return re.MatchString, nil
	}
	return func(s string) bool { return strings.Contains(s, pat) }, nil
}

// Session returns the memoized result of an ingest pass for the
// given file and parameters, running the pass if needed. Only
// passes that run to completion are cached; a cancelled pass
// discards its partial result.
func (e *Engine) Session(ctx context.Context, path string, p Params) (*Session, error) {
	key := Key{
		Path:        filepath.Clean(path),
		MaxClusters: p.MaxClusters,
		Threshold:   p.Threshold,
		Filter:      p.Filter,
	}
	if !p.ForceRefresh {
		if sess, ok := e.store.Get(key); ok {
			return sess, nil
		}
	}

	sess, err := e.ingest(ctx, key)
	if err != nil {
		return nil, err
	}
	e.store.Put(sess)
	return sess, nil
}

// ingest streams the file once. The first SampleSize lines are held
// back for format detection, then replayed; after that the pass is
// purely line-at-a-time, so memory stays bounded by the clusterer
// and the timestamp series.
func (e *Engine) ingest(ctx context.Context, key Key) (*Session, error) {
	f, err := openLog(key.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	match, err := CompileFilter(key.Filter)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		Key:      key,
		Clusters: cluster.New(key.Threshold, key.MaxClusters),
	}

	admit := func(line string) {
		if strings.TrimSpace(line) == "" || !match(line) {
			return
		}
		var ts time.Time
		hasTS := false
		if sess.Format != nil {
			ts, hasTS = sess.Format.Extract(line)
		}
		sess.Clusters.Add(line, ts, hasTS)
		if hasTS {
			sess.Timestamps = append(sess.Timestamps, ts)
		}
		sess.TotalLines++
	}

	var sample []string
	sampling := true
	scanner := newLineScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := scanner.Text()
		if sampling {
			sample = append(sample, line)
			if len(sample) == timestamp.SampleSize {
				sess.Format = timestamp.Detect(sample)
				for _, l := range sample {
					admit(l)
				}
				sample, sampling = nil, false
			}
			continue
		}
		admit(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", key.Path, err)
	}

	// Short file: the sample never filled.
	if sampling {
		sess.Format = timestamp.Detect(sample)
		for _, l := range sample {
			admit(l)
		}
	}

	return sess, nil
}

// Drill re-scans the session's file and sub-clusters the lines
// belonging to parent. A line belongs when its merge similarity
// against the parent's template reaches the membership floor; the
// sub-clusterer itself runs at the tighter drill threshold.
func (e *Engine) Drill(ctx context.Context, sess *Session, parent *cluster.Cluster, maxSub int) (*cluster.Clusterer, error) {
	f, err := openLog(sess.Key.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	match, err := CompileFilter(sess.Key.Filter)
	if err != nil {
		return nil, err
	}

	sub := cluster.New(cluster.DrillThreshold, maxSub)
	scanner := newLineScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := scanner.Text()
		if !match(line) {
			continue
		}
		if sess.Clusters.Similarity(parent, line) < cluster.MembershipFloor {
			continue
		}
		var ts time.Time
		hasTS := false
		if sess.Format != nil {
			ts, hasTS = sess.Format.Extract(line)
		}
		sub.Add(line, ts, hasTS)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", sess.Key.Path, err)
	}
	return sub, nil
}

func openLog(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("File not found: %s", path)
		}
		return nil, err
	}
	return f, nil
}

func newLineScanner(f *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return scanner
}
