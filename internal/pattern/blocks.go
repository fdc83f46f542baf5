package pattern

import "sort"

// Block records a run of Len equal tokens shared by two token
// sequences: a[AStart:AEnd] equals b[BStart:BEnd] text for text.
// Ends are exclusive.
type Block struct {
	AStart, AEnd int
	BStart, BEnd int
	Len          int
}

type candidate struct {
	Block
	score int
}

// MatchBlocks mines the non-overlapping matching blocks between a
// and b. Candidates are the longest common token runs ending at
// each aligned pair, scored by run length plus the number of
// non-delimiter tokens; candidates without a significant word are
// discarded. Admission is greedy by score, rejecting any candidate
// that overlaps an admitted one on either side, so long
// information-dense blocks win even when the sequences reorder.
// The result is sorted by AStart.
func MatchBlocks(a, b []Token) []Block {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	// dp[i][j] is the length of the longest common token run ending
	// exactly at a[i-1] and b[j-1].
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}

	var cands []candidate
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1].Text != b[j-1].Text {
				continue
			}
			l := dp[i-1][j-1] + 1
			dp[i][j] = l

			c := candidate{Block: Block{
				AStart: i - l, AEnd: i,
				BStart: j - l, BEnd: j,
				Len: l,
			}}
			significant := false
			words := 0
			for k := c.AStart; k < c.AEnd; k++ {
				if a[k].Delim {
					continue
				}
				words++
				if len(a[k].Text) >= 2 {
					significant = true
				}
			}
			if !significant {
				continue
			}
			c.score = l + words
			cands = append(cands, c)
		}
	}

	sort.SliceStable(cands, func(x, y int) bool {
		return cands[x].score > cands[y].score
	})

	usedA := make([]bool, len(a))
	usedB := make([]bool, len(b))
	var admitted []Block

admit:
	for _, c := range cands {
		for k := c.AStart; k < c.AEnd; k++ {
			if usedA[k] {
				continue admit
			}
		}
		for k := c.BStart; k < c.BEnd; k++ {
			if usedB[k] {
				continue admit
			}
		}
		for k := c.AStart; k < c.AEnd; k++ {
			usedA[k] = true
		}
		for k := c.BStart; k < c.BEnd; k++ {
			usedB[k] = true
		}
		admitted = append(admitted, c.Block)
	}

	sort.Slice(admitted, func(x, y int) bool {
		return admitted[x].AStart < admitted[y].AStart
	})

	return admitted
}
