// Package detector implements the three-phase clone-detection pipeline:
// N-gram inverted-index location over id partitions, N-gram similarity
// filtration, and two-tier verification where a pair whose N-gram similarity
// already meets the verification threshold skips the LCS computation
// entirely.
package detector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sourcegraph/conc/pool"

	"github.com/shoei03/nilgo/pkg/config"
	"github.com/shoei03/nilgo/pkg/models"
)

// sinkBuffer bounds the pending-result channel; workers block here when the
// pair-file writer lags.
const sinkBuffer = 1024

// ErrPartitionOverflow signals a partition size that cannot be represented,
// a configuration error for pathological inputs.
var ErrPartitionOverflow = errors.New("partition size overflow")

// WriteError means the pair file could not be written. Fatal; the caller
// exits with the I/O error code.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write pair file: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Summary reports what a detection run emitted.
type Summary struct {
	Pairs    int
	FastPath int
	Verified int
}

// Detector runs the partitioned detection pipeline over a frozen sequence
// list.
type Detector struct {
	cfg *config.Config
}

// New creates a detector.
func New(cfg *config.Config) *Detector {
	return &Detector{cfg: cfg}
}

// Run detects clone pairs across seqs and streams one pair-file line per
// accepted pair to w. The sequence list is treated as frozen and shared
// read-only by every worker. Within a partition, emission order follows
// worker completion; across partitions, all of partition p's pairs precede
// partition p+1's. On cancellation the writer flushes what it has and Run
// returns the context error; the partial pair file is a valid prefix.
func (d *Detector) Run(ctx context.Context, seqs []models.TokenSequence, w io.Writer, onProgress func()) (*Summary, error) {
	summary := &Summary{}
	total := len(seqs)
	if total == 0 {
		return summary, nil
	}

	partitionSize := (total + d.cfg.PartitionCount - 1) / d.cfg.PartitionCount
	if partitionSize <= 0 {
		return nil, fmt.Errorf("%w: %d sequences over %d partitions", ErrPartitionOverflow, total, d.cfg.PartitionCount)
	}

	pairs := make(chan models.ClonePair, sinkBuffer)
	writerDone := make(chan struct{})
	var writeErr error

	// Single exclusive writer; workers hand results over the bounded channel.
	go func() {
		defer close(writerDone)
		bw := bufio.NewWriter(w)
		for pair := range pairs {
			if writeErr == nil {
				if _, err := fmt.Fprintln(bw, pair.Record()); err != nil {
					writeErr = err
					continue
				}
				summary.Pairs++
				if pair.HasLCS {
					summary.Verified++
				} else {
					summary.FastPath++
				}
			}
		}
		if writeErr == nil {
			writeErr = bw.Flush()
		} else {
			bw.Flush()
		}
	}()

	for p := 0; p < d.cfg.PartitionCount; p++ {
		start := p * partitionSize
		if start >= total {
			break
		}
		if ctx.Err() != nil {
			break
		}

		idx := BuildIndex(seqs, start, partitionSize, d.cfg.GramSize)

		queries := make(chan int)
		workers := pool.New().WithMaxGoroutines(d.cfg.Threads)
		for range d.cfg.Threads {
			workers.Go(func() {
				loc := NewLocator()
				for q := range queries {
					d.processQuery(ctx, idx, seqs, q, loc, pairs)
					if onProgress != nil {
						onProgress()
					}
				}
			})
		}

		for q := start + 1; q < total; q++ {
			if ctx.Err() != nil {
				break
			}
			queries <- q
		}
		close(queries)
		workers.Wait()
	}

	close(pairs)
	<-writerDone

	if writeErr != nil {
		return nil, &WriteError{Err: writeErr}
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processQuery locates, filters, and verifies every candidate of one query
// sequence. A candidate failing verification is a negative result, never an
// error.
func (d *Detector) processQuery(ctx context.Context, idx *Index, seqs []models.TokenSequence, q int, loc *Locator, pairs chan<- models.ClonePair) {
	qseq := &seqs[q]
	grams := NGrams(qseq.Tokens, d.cfg.GramSize)
	if len(grams) == 0 {
		return
	}
	qGrams := len(grams)

	for _, cand := range loc.Locate(idx, GramMultiset(grams), q) {
		cseq := &seqs[cand.ID]
		cGrams := cseq.NGramCount(d.cfg.GramSize)
		if cGrams == 0 {
			continue
		}

		sim := NGramSimilarity(cand.Shared, qGrams, cGrams)
		if sim < d.cfg.FiltrationThreshold {
			continue
		}

		pair := models.ClonePair{ID1: cand.ID, ID2: q, NGramSim: sim}
		if sim < d.cfg.VerificationThreshold {
			lcsSim := LCSSimilarity(qseq.Tokens, cseq.Tokens)
			if lcsSim < d.cfg.VerificationThreshold {
				continue
			}
			pair.LCSSim = lcsSim
			pair.HasLCS = true
		}

		select {
		case pairs <- pair:
		case <-ctx.Done():
			return
		}
	}
}
