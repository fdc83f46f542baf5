// Package engine runs ingest passes over log files and memoizes
// their results for the life of the process.
//
// An ingest pass streams a file once: it detects the dominant
// timestamp format from a leading sample, feeds every selected line
// to an online clusterer, and records the parsed timestamps. The
// session cache keys completed passes by (path, cluster cap,
// threshold, filter) so later tool calls over the same file reuse
// the clusters without re-reading. Drill-down, grep and fetch are
// separate streaming scans.
package engine

import (
	"sync"
	"time"

	"github.com/wagok/LogExplorerMCP/internal/cluster"
	"github.com/wagok/LogExplorerMCP/internal/timestamp"
)

// Key identifies one memoized ingest pass.
type Key struct {
	Path        string
	MaxClusters int
	Threshold   float64
	Filter      string
}

// Session is the result of a completed ingest pass.
type Session struct {
	Key        Key
	TotalLines int // lines admitted to the clusterer (post-filter)
	Clusters   *cluster.Clusterer
	Timestamps []time.Time
	Format     *timestamp.Format // nil when no format was detected
}

// TimeRange returns the observed span of the session's timestamps.
func (s *Session) TimeRange() (min, max time.Time, ok bool) {
	if len(s.Timestamps) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = s.Timestamps[0], s.Timestamps[0]
	for _, t := range s.Timestamps[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return min, max, true
}

// Store memoizes completed ingest passes. Entries are never
// invalidated automatically; callers opt out with ForceRefresh.
// The mutex matters once follow mode or an embedding server adds
// concurrent callers.
type Store struct {
	mu       sync.Mutex
	sessions map[Key]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[Key]*Session)}
}

// Get returns the memoized session for k, if any.
func (s *Store) Get(k Key) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[k]
	return sess, ok
}

// Put stores a completed session, overwriting any previous entry
// for its key.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Key] = sess
}

// FindCluster scans the store for a session of the given path that
// holds the cluster id, regardless of the pass parameters. Used to
// resolve drill-down and timeline references against whichever
// clustering run issued the id.
func (s *Store) FindCluster(path string, id int) (*Session, *cluster.Cluster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, sess := range s.sessions {
		if k.Path != path {
			continue
		}
		if cl := sess.Clusters.Get(id); cl != nil {
			return sess, cl
		}
	}
	return nil, nil
}
