// Package follow streams appended log lines into a live clusterer.
//
// It is "tail -f" pointed at the template miner: new lines are
// admitted as they arrive and a snapshot of the top clusters is
// published at a fixed interval. Truncation and rotation are
// detected by watching the file size and path.
package follow

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wagok/LogExplorerMCP/internal/cluster"
	"github.com/wagok/LogExplorerMCP/internal/timestamp"
)

// Options configures a follower.
type Options struct {
	FilePath    string
	MaxClusters int
	Threshold   float64
	Interval    time.Duration // snapshot cadence
	FromStart   bool          // cluster existing content before following
	Publish     func([]cluster.View) error
}

// Follower feeds a file's growth into a clusterer.
type Follower struct {
	opts     Options
	clusters *cluster.Clusterer
	format   *timestamp.Format
	file     *os.File
	offset   int64
	watcher  *fsnotify.Watcher
	partial  string
}

// New creates a Follower with the given options.
func New(opts Options) *Follower {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	return &Follower{
		opts:     opts,
		clusters: cluster.New(opts.Threshold, opts.MaxClusters),
	}
}

// Run follows the file until the context is cancelled.
func (f *Follower) Run(ctx context.Context) error {
	if err := f.open(); err != nil {
		return fmt.Errorf("opening %s: %w", f.opts.FilePath, err)
	}
	defer f.close()

	if f.opts.FromStart {
		if err := f.consume(); err != nil {
			return err
		}
	} else if err := f.seekEnd(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	f.watcher = watcher
	defer watcher.Close()
	if err := watcher.Add(f.opts.FilePath); err != nil {
		return err
	}

	ticker := time.NewTicker(f.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return f.publish()

		case <-ticker.C:
			if err := f.publish(); err != nil {
				return err
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if err := f.handle(event); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (f *Follower) handle(event fsnotify.Event) error {
	switch {
	case event.Op&fsnotify.Write != 0:
		return f.consume()
	case event.Op&fsnotify.Remove != 0 || event.Op&fsnotify.Rename != 0:
		return f.reopen()
	}
	return nil
}

// consume reads from the stored offset to EOF, admitting each
// complete line. A trailing fragment without a newline is kept for
// the next write.
func (f *Follower) consume() error {
	stat, err := f.file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < f.offset {
		// Truncated in place; start over from the top.
		f.offset = 0
		f.partial = ""
	}
	if _, err := f.file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}

	reader := bufio.NewReader(f.file)
	for {
		chunk, err := reader.ReadString('\n')
		if err == io.EOF {
			f.partial += chunk
			break
		}
		if err != nil {
			return err
		}
		f.admit(f.partial + strings.TrimRight(chunk, "\r\n"))
		f.partial = ""
	}

	f.offset, err = f.file.Seek(0, io.SeekCurrent)
	return err
}

func (f *Follower) admit(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if f.format == nil {
		// Lazy per-line detection is too noisy; a single-line
		// "sample" per line keeps the recognizer cheap and settles
		// quickly on steady formats.
		f.format = timestamp.Detect([]string{line})
	}
	var ts time.Time
	hasTS := false
	if f.format != nil {
		ts, hasTS = f.format.Extract(line)
	}
	f.clusters.Add(line, ts, hasTS)
}

func (f *Follower) publish() error {
	if f.opts.Publish == nil {
		return nil
	}
	return f.opts.Publish(f.clusters.Stats())
}

// reopen follows through a rotation: wait briefly for the new file
// to appear, then start from its beginning.
func (f *Follower) reopen() error {
	f.close()
	for i := 0; i < 10; i++ {
		if err := f.open(); err == nil {
			f.offset = 0
			f.partial = ""
			if f.watcher != nil {
				_ = f.watcher.Add(f.opts.FilePath)
			}
			return f.consume()
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("file %s did not reappear after rotation", f.opts.FilePath)
}

func (f *Follower) open() error {
	file, err := os.Open(f.opts.FilePath)
	if err != nil {
		return err
	}
	f.file = file
	return nil
}

func (f *Follower) seekEnd() error {
	offset, err := f.file.Seek(0, io.SeekEnd)
	f.offset = offset
	return err
}

func (f *Follower) close() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}
