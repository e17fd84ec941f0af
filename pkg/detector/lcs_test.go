package detector

import "testing"

func TestLCSLength_Identity(t *testing.T) {
	a := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := LCSLength(a, a); got != len(a) {
		t.Errorf("LCSLength(A, A) = %d, want %d", got, len(a))
	}
}

func TestLCSLength_Symmetry(t *testing.T) {
	a := []uint32{1, 2, 3, 4, 5, 6, 7, 8}
	b := []uint32{1, 9, 2, 3, 9, 4, 5, 6}
	if LCSLength(a, b) != LCSLength(b, a) {
		t.Errorf("LCSLength not symmetric: %d vs %d", LCSLength(a, b), LCSLength(b, a))
	}
}

func TestLCSLength(t *testing.T) {
	tests := []struct {
		name string
		a, b []uint32
		want int
	}{
		{"empty both", nil, nil, 0},
		{"empty one", []uint32{1, 2, 3}, nil, 0},
		{"disjoint", []uint32{1, 2, 3}, []uint32{4, 5, 6}, 0},
		{"single common", []uint32{1, 2}, []uint32{1, 9}, 1},
		{"interleaved", []uint32{1, 2, 3, 4, 5, 6, 7, 8}, []uint32{1, 9, 2, 3, 9, 4, 5, 6}, 6},
		{"repeated symbols", []uint32{1, 1, 1}, []uint32{1, 1}, 2},
		{"subsequence not substring", []uint32{1, 5, 2, 5, 3}, []uint32{1, 2, 3}, 3},
		{"different lengths", []uint32{7, 8, 9}, []uint32{0, 7, 0, 8, 0, 9, 0}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LCSLength(tt.a, tt.b); got != tt.want {
				t.Errorf("LCSLength(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// Cross-check Hunt-Szymanski against the classical dynamic program on a
// spread of deterministic sequences.
func TestLCSLength_MatchesDP(t *testing.T) {
	gen := func(seed, n int) []uint32 {
		s := make([]uint32, n)
		state := uint32(seed)*2654435761 + 1
		for i := range s {
			state = state*1664525 + 1013904223
			s[i] = state % 7 // small alphabet to force many matches
		}
		return s
	}

	for seed := 0; seed < 20; seed++ {
		a := gen(seed, 40)
		b := gen(seed+100, 55)
		want := lcsDP(a, b)
		if got := LCSLength(a, b); got != want {
			t.Fatalf("seed %d: LCSLength = %d, DP = %d", seed, got, want)
		}
	}
}

func lcsDP(a, b []uint32) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func TestLCSSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []uint32
		want int
	}{
		{"identical", []uint32{1, 2, 3, 4}, []uint32{1, 2, 3, 4}, 100},
		{"empty", nil, []uint32{1}, 0},
		{"one shared of min two", []uint32{1, 9}, []uint32{1, 8, 7}, 50},
		{"spec scenario three", []uint32{1, 2, 3, 4, 5, 6, 7, 8}, []uint32{1, 9, 2, 3, 9, 4, 5, 6}, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LCSSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("LCSSimilarity = %d, want %d", got, tt.want)
			}
		})
	}
}

// With the min denominator, sim_lcs is 100 whenever the shorter sequence is a
// subsequence of the longer one; at equal lengths that means identical.
func TestLCSSimilarity_FullScore(t *testing.T) {
	a := []uint32{1, 2, 3}
	b := []uint32{1, 2, 3, 4}
	// b fully contains a as a prefix; min denominator still yields 100.
	if got := LCSSimilarity(a, b); got != 100 {
		t.Errorf("prefix containment = %d, want 100 (min denominator)", got)
	}
	c := []uint32{1, 9, 3}
	if got := LCSSimilarity(a, c); got >= 100 {
		t.Errorf("non-identical equal length = %d, want < 100", got)
	}
}
