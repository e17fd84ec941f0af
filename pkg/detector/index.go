package detector

import "github.com/shoei03/nilgo/pkg/models"

// span addresses one posting list inside the flat postings array.
type span struct {
	off int32
	len int32
}

// Index is the inverted index over one partition [start, start+size) of the
// sequence list. Postings are partition-local ids, ascending, with
// duplicates preserving a gram's multiplicity within a sequence. The flat
// array plus offset table avoids per-bucket allocation.
type Index struct {
	start    int
	size     int
	n        int
	offsets  map[uint64]span
	postings []int32
}

// BuildIndex constructs the inverted index for the partition starting at
// start. The partition is clipped to the end of the sequence list.
func BuildIndex(seqs []models.TokenSequence, start, size, n int) *Index {
	end := start + size
	if end > len(seqs) {
		end = len(seqs)
	}

	idx := &Index{
		start:   start,
		size:    end - start,
		n:       n,
		offsets: make(map[uint64]span),
	}

	// First pass: posting-list sizes per gram hash.
	total := 0
	for j := start; j < end; j++ {
		for _, g := range NGrams(seqs[j].Tokens, n) {
			s := idx.offsets[g]
			s.len++
			idx.offsets[g] = s
			total++
		}
	}

	// Assign offsets, then fill. Filling in ascending j keeps every posting
	// list ordered by local id, which the locator's run-length counting
	// relies on.
	var off int32
	for g, s := range idx.offsets {
		s.off = off
		off += s.len
		s.len = 0
		idx.offsets[g] = s
	}
	idx.postings = make([]int32, total)
	for j := start; j < end; j++ {
		local := int32(j - start)
		for _, g := range NGrams(seqs[j].Tokens, n) {
			s := idx.offsets[g]
			idx.postings[s.off+s.len] = local
			s.len++
			idx.offsets[g] = s
		}
	}

	return idx
}

// Postings returns the posting list for a gram hash, or nil.
func (idx *Index) Postings(gram uint64) []int32 {
	s, ok := idx.offsets[gram]
	if !ok {
		return nil
	}
	return idx.postings[s.off : s.off+s.len]
}

// Start returns the global id of the partition's first sequence.
func (idx *Index) Start() int {
	return idx.start
}

// Size returns the number of sequences indexed.
func (idx *Index) Size() int {
	return idx.size
}
