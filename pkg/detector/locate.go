package detector

import "sort"

// Candidate is a sequence sharing N-grams with the query. ID is the global
// sequence id; Shared counts the query's N-grams present in the candidate,
// capped per gram at both sides' multiplicity.
type Candidate struct {
	ID     int
	Shared int
}

// Locator holds per-worker scratch for candidate counting. The counter map
// is reused across queries by clearing, not reallocating.
type Locator struct {
	shared map[int32]int32
}

// NewLocator creates a locator with its own scratch space. Not safe for
// concurrent use; give each worker its own.
func NewLocator() *Locator {
	return &Locator{shared: make(map[int32]int32)}
}

// Locate walks the query's N-gram multiset against the partition index and
// returns candidates with their shared-gram counts. Only candidates with a
// global id strictly below queryID are returned, so every unordered pair is
// considered exactly once across the partition loop. Results are ordered by
// candidate id ascending.
func (l *Locator) Locate(idx *Index, query map[uint64]int32, queryID int) []Candidate {
	clear(l.shared)

	for gram, mq := range query {
		postings := idx.Postings(gram)
		// Posting lists are runs of equal local ids; a run's length is the
		// gram's multiplicity in that sequence.
		for i := 0; i < len(postings); {
			c := postings[i]
			j := i + 1
			for j < len(postings) && postings[j] == c {
				j++
			}
			run := int32(j - i)
			if run > mq {
				run = mq
			}
			l.shared[c] += run
			i = j
		}
	}

	if len(l.shared) == 0 {
		return nil
	}
	candidates := make([]Candidate, 0, len(l.shared))
	for local, shared := range l.shared {
		id := idx.Start() + int(local)
		if id >= queryID {
			continue
		}
		candidates = append(candidates, Candidate{ID: id, Shared: int(shared)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})
	return candidates
}
