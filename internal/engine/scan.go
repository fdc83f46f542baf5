package engine

import (
	"context"
	"fmt"
)

// Match is one grep hit with its surrounding context.
type Match struct {
	LineNumber int      `json:"line_number"`
	Line       string   `json:"line"`
	Before     []string `json:"before,omitempty"`
	After      []string `json:"after,omitempty"`
}

// GrepData is the raw result of a counted grep pass.
type GrepData struct {
	TotalMatches int
	Matches      []Match
}

// Grep counts every line matching pattern and captures up to
// maxExamples of them with contextLines of surrounding context.
// Counting continues past the captured window so TotalMatches is
// exact.
func (e *Engine) Grep(ctx context.Context, path, pat string, maxExamples, contextLines int) (GrepData, error) {
	var data GrepData

	match, err := CompileFilter(pat)
	if err != nil {
		return data, err
	}

	f, err := openLog(path)
	if err != nil {
		return data, err
	}
	defer f.Close()

	// Ring of the last contextLines lines for before-context, and
	// the indices of captured matches still owed after-context.
	var before []string
	var pending []int

	lineNo := 0
	scanner := newLineScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return GrepData{}, err
		}
		lineNo++
		line := scanner.Text()

		for i := 0; i < len(pending); {
			idx := pending[i]
			data.Matches[idx].After = append(data.Matches[idx].After, line)
			if len(data.Matches[idx].After) >= contextLines {
				pending = append(pending[:i], pending[i+1:]...)
				continue
			}
			i++
		}

		if match(line) {
			data.TotalMatches++
			if len(data.Matches) < maxExamples {
				m := Match{LineNumber: lineNo, Line: line}
				if contextLines > 0 {
					m.Before = append([]string(nil), before...)
					pending = append(pending, len(data.Matches))
				}
				data.Matches = append(data.Matches, m)
			}
		}

		if contextLines > 0 {
			before = append(before, line)
			if len(before) > contextLines {
				before = before[1:]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return GrepData{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// FetchLine is one raw line with its 1-based number.
type FetchLine struct {
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
}

// FetchData is a window of raw matching lines. TotalScanned counts
// the matches observed up to and including the window; the scan
// stops as soon as the window fills.
type FetchData struct {
	Lines        []FetchLine
	TotalScanned int
}

// Fetch returns matching lines [offset, offset+limit) in match
// order.
func (e *Engine) Fetch(ctx context.Context, path, filter string, offset, limit int) (FetchData, error) {
	var data FetchData

	match, err := CompileFilter(filter)
	if err != nil {
		return data, err
	}

	f, err := openLog(path)
	if err != nil {
		return data, err
	}
	defer f.Close()

	lineNo := 0
	scanner := newLineScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return FetchData{}, err
		}
		lineNo++
		line := scanner.Text()
		if !match(line) {
			continue
		}
		data.TotalScanned++
		if data.TotalScanned <= offset {
			continue
		}
		data.Lines = append(data.Lines, FetchLine{LineNumber: lineNo, Line: line})
		if len(data.Lines) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return FetchData{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
