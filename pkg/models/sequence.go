// Package models defines the data types shared across the clone-detection
// pipeline.
package models

import (
	"fmt"
	"strings"
)

// TokenSequence is the normalized token stream of one function, produced by
// the preprocessor. The id is the sequence's position in the global ordered
// list and is dense starting at 0. Tokens are stable 32-bit hashes of the
// normalized lexical tokens.
type TokenSequence struct {
	ID        int
	FilePath  string
	StartLine int
	EndLine   int
	Tokens    []uint32
}

// Lines returns the inclusive line count of the function.
func (s *TokenSequence) Lines() int {
	return s.EndLine - s.StartLine + 1
}

// NGramCount returns the size of the sequence's N-gram multiset for width n.
func (s *TokenSequence) NGramCount(n int) int {
	if len(s.Tokens) < n {
		return 0
	}
	return len(s.Tokens) - n + 1
}

// CodeBlock is the persisted side-output record for one token sequence.
// Record order in the code-blocks file equals id order. Method metadata is
// optional; tokenizers fill what the grammar exposes.
type CodeBlock struct {
	FilePath   string
	StartLine  int
	EndLine    int
	MethodName string
	ReturnType string
	Params     []string
	CommitHash string
	TokenHash  string
}

// Record renders the code-block line written to the code-blocks file.
func (b *CodeBlock) Record() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s,%d,%d", b.FilePath, b.StartLine, b.EndLine)
	if b.MethodName == "" && b.TokenHash == "" {
		return sb.String()
	}
	fmt.Fprintf(&sb, ",%s,%s,[%s],%s,%s",
		b.MethodName, b.ReturnType, strings.Join(b.Params, " "), b.CommitHash, b.TokenHash)
	return sb.String()
}

// ClonePair is an accepted pair of similar token sequences. ID1 < ID2 always
// holds. LCSSim is only meaningful when HasLCS is true; a pair accepted on
// N-gram similarity alone carries no LCS value.
type ClonePair struct {
	ID1      int
	ID2      int
	NGramSim int
	LCSSim   int
	HasLCS   bool
}

// Record renders the pair-file line: "id1,id2,ngramSim" for fast-path pairs,
// "id1,id2,ngramSim,lcsSim" for LCS-verified ones.
func (p *ClonePair) Record() string {
	if p.HasLCS {
		return fmt.Sprintf("%d,%d,%d,%d", p.ID1, p.ID2, p.NGramSim, p.LCSSim)
	}
	return fmt.Sprintf("%d,%d,%d", p.ID1, p.ID2, p.NGramSim)
}
