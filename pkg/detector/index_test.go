package detector

import (
	"testing"

	"github.com/shoei03/nilgo/pkg/models"
)

func seqsOf(tokenLists ...[]uint32) []models.TokenSequence {
	seqs := make([]models.TokenSequence, len(tokenLists))
	for i, tokens := range tokenLists {
		seqs[i] = models.TokenSequence{ID: i, Tokens: tokens}
	}
	return seqs
}

func TestBuildIndex_PartitionBounds(t *testing.T) {
	seqs := seqsOf(
		[]uint32{1, 2, 3},
		[]uint32{1, 2, 3},
		[]uint32{1, 2, 3},
	)
	idx := BuildIndex(seqs, 0, 2, 2)

	if idx.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", idx.Size())
	}
	// Sequence 2 is outside the partition; its postings must not appear.
	postings := idx.Postings(NGrams([]uint32{1, 2, 3}, 2)[0])
	if len(postings) != 2 {
		t.Fatalf("postings = %v, want two entries (ids 0 and 1)", postings)
	}
	for _, local := range postings {
		if local < 0 || local > 1 {
			t.Errorf("posting %d outside partition", local)
		}
	}
}

func TestBuildIndex_PartitionClipped(t *testing.T) {
	seqs := seqsOf([]uint32{1, 2, 3}, []uint32{4, 5, 6})
	idx := BuildIndex(seqs, 1, 10, 2)
	if idx.Size() != 1 {
		t.Errorf("Size() = %d, want 1 (clipped to list end)", idx.Size())
	}
	if idx.Start() != 1 {
		t.Errorf("Start() = %d, want 1", idx.Start())
	}
}

func TestBuildIndex_MultiplicityPreserved(t *testing.T) {
	// (1,2) occurs twice in sequence 0, once in sequence 1.
	seqs := seqsOf(
		[]uint32{1, 2, 1, 2},
		[]uint32{1, 2, 9},
	)
	idx := BuildIndex(seqs, 0, 2, 2)

	gram := NGrams([]uint32{1, 2}, 2)[0]
	postings := idx.Postings(gram)
	counts := map[int32]int{}
	for _, local := range postings {
		counts[local]++
	}
	if counts[0] != 2 || counts[1] != 1 {
		t.Errorf("postings %v: want id 0 twice and id 1 once", postings)
	}
}

func TestBuildIndex_PostingsAscending(t *testing.T) {
	seqs := seqsOf(
		[]uint32{1, 2, 3, 4},
		[]uint32{9, 9, 9, 9},
		[]uint32{1, 2, 3, 4},
		[]uint32{2, 3, 4, 5},
	)
	idx := BuildIndex(seqs, 0, 4, 2)

	for _, g := range NGrams(seqs[0].Tokens, 2) {
		postings := idx.Postings(g)
		for i := 1; i < len(postings); i++ {
			if postings[i] < postings[i-1] {
				t.Fatalf("postings for %#x not ascending: %v", g, postings)
			}
		}
	}
}

func TestBuildIndex_ShortSequencesAbsent(t *testing.T) {
	seqs := seqsOf([]uint32{1}, []uint32{1, 2, 3})
	idx := BuildIndex(seqs, 0, 2, 2)
	for _, g := range NGrams(seqs[1].Tokens, 2) {
		for _, local := range idx.Postings(g) {
			if local == 0 {
				t.Error("sequence shorter than N contributed postings")
			}
		}
	}
}
