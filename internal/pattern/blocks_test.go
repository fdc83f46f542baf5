package pattern

import "testing"

func TestMatchBlocksOrderedAndDisjoint(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{
			name: "shared prefix and suffix",
			a:    "User john logged in from 192.168.1.1",
			b:    "User admin logged in from 10.0.0.5",
		},
		{
			name: "reordered segments",
			a:    "connect host=db1 port=5432 timeout=30",
			b:    "timeout=30 connect host=db2 port=5433",
		},
		{
			name: "identical",
			a:    "GET /api/users 200",
			b:    "GET /api/users 200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta, tb := Tokenize(tt.a), Tokenize(tt.b)
			blocks := MatchBlocks(ta, tb)

			var usedA, usedB []bool
			usedA = make([]bool, len(ta))
			usedB = make([]bool, len(tb))
			prevStart := -1
			for _, blk := range blocks {
				if blk.AStart <= prevStart {
					t.Errorf("blocks not strictly ordered by AStart: %v", blocks)
				}
				prevStart = blk.AStart
				if blk.AEnd-blk.AStart != blk.Len || blk.BEnd-blk.BStart != blk.Len {
					t.Errorf("inconsistent block lengths: %+v", blk)
				}
				for k := blk.AStart; k < blk.AEnd; k++ {
					if usedA[k] {
						t.Errorf("A position %d used twice", k)
					}
					usedA[k] = true
				}
				for k := blk.BStart; k < blk.BEnd; k++ {
					if usedB[k] {
						t.Errorf("B position %d used twice", k)
					}
					usedB[k] = true
				}
			}
		})
	}
}

func TestMatchBlocksTokensEqual(t *testing.T) {
	ta := Tokenize("error code 42 at offset 9000")
	tb := Tokenize("warn code 42 at offset 1")
	for _, blk := range MatchBlocks(ta, tb) {
		for k := 0; k < blk.Len; k++ {
			if ta[blk.AStart+k].Text != tb[blk.BStart+k].Text {
				t.Errorf("block token mismatch: %q vs %q",
					ta[blk.AStart+k].Text, tb[blk.BStart+k].Text)
			}
		}
	}
}

func TestMatchBlocksRequireSignificantWord(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{name: "only punctuation in common", a: "x=1;y=2", b: "p=3;q=4"},
		{name: "only single letters in common", a: "a b c", b: "a d e"},
		{name: "nothing in common", a: "alpha bravo", b: "charlie delta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if blocks := MatchBlocks(Tokenize(tt.a), Tokenize(tt.b)); len(blocks) != 0 {
				t.Errorf("MatchBlocks(%q, %q) = %v, want none", tt.a, tt.b, blocks)
			}
		})
	}
}

func TestMatchBlocksEmptyInput(t *testing.T) {
	if blocks := MatchBlocks(nil, Tokenize("hello")); blocks != nil {
		t.Errorf("MatchBlocks(nil, b) = %v, want nil", blocks)
	}
	if blocks := MatchBlocks(Tokenize("hello"), nil); blocks != nil {
		t.Errorf("MatchBlocks(a, nil) = %v, want nil", blocks)
	}
}

func TestMatchBlocksPrefersDenseBlocks(t *testing.T) {
	// The long shared run must win over the scattered one-word
	// matches it overlaps.
	a := Tokenize("request failed with timeout after 30 seconds")
	b := Tokenize("request failed with timeout after 90 seconds")
	blocks := MatchBlocks(a, b)
	if len(blocks) == 0 {
		t.Fatal("expected blocks")
	}
	if blocks[0].AStart != 0 || blocks[0].Len != 10 {
		t.Errorf("expected the 10-token leading run first, got %+v", blocks)
	}
	if len(blocks) != 2 {
		t.Errorf("expected the trailing ' seconds' run too, got %+v", blocks)
	}
}
