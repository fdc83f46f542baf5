// Package output renders tool results for a terminal, in plain
// text or JSON, with colors gated by TTY detection.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wagok/LogExplorerMCP/internal/cluster"
	"github.com/wagok/LogExplorerMCP/internal/tools"
)

// Format selects the rendering style.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// ParseFormat maps a user-supplied format name to a Format,
// defaulting to text.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// Printer writes rendered results to a single destination.
type Printer struct {
	w      io.Writer
	format Format
	color  bool
}

// NewPrinter creates a Printer. Color is only honored for text
// output on a terminal.
func NewPrinter(w io.Writer, format Format, mode ColorMode) *Printer {
	return &Printer{w: w, format: format, color: shouldColorize(mode, w)}
}

// Print renders any tool result. JSON format dumps the document;
// text format picks a layout per result type.
func (p *Printer) Print(result any) error {
	if p.format == FormatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	switch r := result.(type) {
	case tools.ErrorResult:
		_, err := fmt.Fprintf(p.w, "%s\n", p.paint(colorRed, "error: "+r.Error))
		return err
	case tools.OverviewResult:
		return p.printOverview(r)
	case tools.ClusterResult:
		p.printHeader(fmt.Sprintf("%s — %d lines, %d clusters", r.File, r.TotalLines, len(r.Clusters)))
		return p.printClusters(r.Clusters)
	case tools.DrillResult:
		p.printHeader(fmt.Sprintf("cluster %d (%d lines): %s", r.ClusterID, r.ParentCount, r.ParentTemplate))
		return p.printClusters(r.Subclusters)
	case tools.TimelineResult:
		return p.printTimeline(r)
	case tools.GrepResult:
		return p.printGrep(r)
	case tools.FetchResult:
		return p.printFetch(r)
	}
	_, err := fmt.Fprintf(p.w, "%+v\n", result)
	return err
}

func (p *Printer) printHeader(s string) {
	fmt.Fprintf(p.w, "%s\n", p.paint(colorBold, s))
}

func (p *Printer) printOverview(r tools.OverviewResult) error {
	fmt.Fprintf(p.w, "%s\n", p.paint(colorBold, r.File))
	fmt.Fprintf(p.w, "  size:   %s (%d bytes)\n", r.SizeHuman, r.SizeBytes)
	fmt.Fprintf(p.w, "  lines:  %d\n", r.TotalLines)
	format := "none detected"
	if r.TimestampFormat != nil {
		format = *r.TimestampFormat
	}
	fmt.Fprintf(p.w, "  format: %s\n", format)
	if r.TimeRange != nil {
		fmt.Fprintf(p.w, "  range:  %s .. %s (%s)\n", r.TimeRange.Start, r.TimeRange.End, r.TimeRange.Duration)
	}
	return nil
}

func (p *Printer) printClusters(views []cluster.View) error {
	for _, v := range views {
		fmt.Fprintf(p.w, "[%d] %6d  %5.1f%%  %s\n", v.ID, v.Count, v.Percent, p.paint(colorBold, v.Template))
		for _, ex := range v.Examples {
			fmt.Fprintf(p.w, "       %s\n", p.paint(colorGray, ex))
		}
	}
	return nil
}

func (p *Printer) printTimeline(r tools.TimelineResult) error {
	if r.TimeRange != nil {
		p.printHeader(fmt.Sprintf("%s .. %s, %s buckets", r.TimeRange.Start, r.TimeRange.End, r.BucketSize))
	}
	fmt.Fprintln(p.w, r.Visualization)
	for _, a := range r.Anomalies {
		fmt.Fprintf(p.w, "%s\n", p.paint(colorRed,
			fmt.Sprintf("anomaly at %s: %d lines (%s above mean)", a.Start, a.Count, a.Deviation)))
	}
	return nil
}

func (p *Printer) printGrep(r tools.GrepResult) error {
	p.printHeader(fmt.Sprintf("%d matches for %q", r.TotalMatches, r.Pattern))
	for _, m := range r.Matches {
		for i, b := range m.Before {
			fmt.Fprintf(p.w, "%7d  %s\n", m.LineNumber-len(m.Before)+i, p.paint(colorGray, b))
		}
		fmt.Fprintf(p.w, "%7d: %s\n", m.LineNumber, m.Line)
		for i, a := range m.After {
			fmt.Fprintf(p.w, "%7d  %s\n", m.LineNumber+1+i, p.paint(colorGray, a))
		}
	}
	if r.Hint != "" {
		fmt.Fprintf(p.w, "%s\n", p.paint(colorYellow, r.Hint))
	}
	return nil
}

func (p *Printer) printFetch(r tools.FetchResult) error {
	for _, l := range r.Lines {
		fmt.Fprintf(p.w, "%7d: %s\n", l.LineNumber, l.Line)
	}
	fmt.Fprintf(p.w, "%s\n", p.paint(colorGray,
		fmt.Sprintf("%d lines (offset %d, %d matches scanned)", len(r.Lines), r.Offset, r.TotalScanned)))
	return nil
}
