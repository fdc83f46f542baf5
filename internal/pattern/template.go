package pattern

import "strings"

// Wildcard is the gap marker used in template patterns.
const Wildcard = ".*"

// sentinel is the text of the standalone gap token that marks each
// wildcard position when a template is rebuilt into a token
// sequence for merging. Log lines are assumed not to contain NUL,
// so a sentinel token never matches and never sits inside a matched
// block.
const sentinel = "\x00"

// Template summarizes a set of lines as literal fragments separated
// by wildcard gaps. Pattern is the rendered form; StaticParts holds
// the fragments in order. The pattern never contains two adjacent
// wildcards and the fragments never contain the sentinel.
type Template struct {
	Pattern     string
	StaticParts []string
}

// FromLine builds the initial single-member template: the line
// itself, verbatim.
func FromLine(line string) Template {
	return Template{Pattern: line, StaticParts: []string{line}}
}

// piece is one segment of a composed pattern. Literal fragments
// that happen to spell ".*" must not collapse with real gaps, hence
// the flag instead of string comparison.
type piece struct {
	text string
	wild bool
}

// Extract induces a template from two raw lines. The returned
// similarity is 2*matched/(len(a)+len(b)), where matched counts the
// characters of the static fragments. Zero blocks yield the
// catch-all template and similarity 0.
func Extract(a, b string) (Template, float64) {
	ta := Tokenize(a)
	tb := Tokenize(b)
	blocks := MatchBlocks(ta, tb)
	if len(blocks) == 0 {
		return Template{Pattern: Wildcard}, 0
	}

	var pieces []piece
	if blocks[0].AStart > 0 {
		pieces = append(pieces, piece{wild: true})
	}
	for i, blk := range blocks {
		if i > 0 {
			pieces = append(pieces, piece{wild: true})
		}
		pieces = append(pieces, piece{text: blockText(ta, blk)})
	}
	if blocks[len(blocks)-1].AEnd < len(ta) {
		pieces = append(pieces, piece{wild: true})
	}

	tmpl, matched := compose(pieces)
	return tmpl, similarity(matched, len(a)+len(b))
}

// Merge generalizes t against a new line. The template's static
// parts are tokenized one by one into a synthetic sequence with a
// sentinel gap token at every wildcard position (between parts, and
// before the first or after the last part when the pattern has a
// gap there), then matched against the new line; matched runs whose
// sentinel-stripped text is blank become gaps, the rest become the
// new static parts. A gap of the old pattern therefore never
// disappears from the merged one.
//
// The similarity numerator counts the merged static fragments while
// the denominator mixes the old pattern's length with the line's.
// That asymmetry is deliberate: cluster membership depends on this
// exact form.
func Merge(t Template, line string) (Template, float64) {
	gap := Token{Text: sentinel, Delim: true}
	var ta []Token
	for i, part := range t.StaticParts {
		if i > 0 || strings.HasPrefix(t.Pattern, Wildcard+part) {
			ta = append(ta, gap)
		}
		ta = append(ta, Tokenize(part)...)
	}
	if n := len(t.StaticParts); n > 0 && strings.HasSuffix(t.Pattern, t.StaticParts[n-1]+Wildcard) {
		ta = append(ta, gap)
	}
	tb := Tokenize(line)
	blocks := MatchBlocks(ta, tb)
	if len(blocks) == 0 {
		return Template{Pattern: Wildcard}, 0
	}

	var pieces []piece
	if blocks[0].AStart > 0 {
		pieces = append(pieces, piece{wild: true})
	}
	for i, blk := range blocks {
		if i > 0 {
			pieces = append(pieces, piece{wild: true})
		}
		text := strings.ReplaceAll(blockText(ta, blk), sentinel, "")
		if text == "" {
			// The run fell entirely between static parts.
			pieces = append(pieces, piece{wild: true})
		} else {
			pieces = append(pieces, piece{text: text})
		}
	}
	if blocks[len(blocks)-1].AEnd < len(ta) {
		pieces = append(pieces, piece{wild: true})
	}

	merged, matched := compose(pieces)
	return merged, similarity(matched, len(t.Pattern)+len(line))
}

// compose renders pieces into canonical form, collapsing wildcard
// runs, and returns the template plus the total static character
// count.
func compose(pieces []piece) (Template, int) {
	var sb strings.Builder
	var parts []string
	matched := 0
	prevWild := false
	for _, p := range pieces {
		if p.wild {
			if prevWild {
				continue
			}
			prevWild = true
			sb.WriteString(Wildcard)
			continue
		}
		prevWild = false
		parts = append(parts, p.text)
		matched += len(p.text)
		sb.WriteString(p.text)
	}
	return Template{Pattern: sb.String(), StaticParts: parts}, matched
}

func similarity(matched, denom int) float64 {
	if denom <= 0 {
		return 0
	}
	return 2 * float64(matched) / float64(denom)
}

func blockText(tokens []Token, b Block) string {
	var sb strings.Builder
	for _, t := range tokens[b.AStart:b.AEnd] {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Wildcards counts the gap markers in a pattern; generality is
// monotone in this count under Merge.
func (t Template) Wildcards() int {
	return strings.Count(t.Pattern, Wildcard)
}
