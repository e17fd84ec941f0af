// Package preprocess turns a source tree into the ordered list of
// function-level token sequences the detector runs on, persisting one
// code-block record per sequence as it goes.
package preprocess

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/zeebo/blake3"

	"github.com/shoei03/nilgo/pkg/config"
	"github.com/shoei03/nilgo/pkg/fileproc"
	"github.com/shoei03/nilgo/pkg/models"
	"github.com/shoei03/nilgo/pkg/parser"
	"github.com/shoei03/nilgo/pkg/scanner"
	"github.com/shoei03/nilgo/pkg/tokenizer"
)

// Preprocessor enumerates source files, tokenizes them in parallel, and
// merges the per-file results into the dense, deterministically ordered
// sequence list.
type Preprocessor struct {
	cfg  *config.Config
	lang parser.Language
}

// New creates a preprocessor for the configured language.
func New(cfg *config.Config) (*Preprocessor, error) {
	lang, err := parser.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}
	return &Preprocessor{cfg: cfg, lang: lang}, nil
}

// Result is the outcome of a preprocess run.
type Result struct {
	Sequences []models.TokenSequence
	// FilesScanned is the number of source files considered.
	FilesScanned int
	// FunctionsSkipped counts functions below the minLine/minToken bounds.
	FunctionsSkipped int
}

// Run walks the source root, tokenizes every matching file, and returns the
// accepted token sequences in deterministic order: files in walk order,
// functions in source order. A code-block record is appended to the
// code-blocks file for every accepted sequence, record order equal to id
// order. Individual parse failures are logged to stderr and skipped; a
// failure to read the tree or to write the blocks file is fatal.
func (p *Preprocessor) Run(root string, onProgress fileproc.ProgressFunc) (*Result, error) {
	files, err := p.Scan(root)
	if err != nil {
		return nil, err
	}
	return p.Tokenize(files, onProgress)
}

// Scan enumerates the language's source files under root.
func (p *Preprocessor) Scan(root string) ([]string, error) {
	files, err := scanner.New(p.lang, scanner.WithGitignore(p.cfg.Gitignore)).ScanDir(root)
	if err != nil {
		return nil, &SourceError{Root: root, Err: err}
	}
	return files, nil
}

// Tokenize drives the per-language tokenizer over files in parallel and
// merges the results in file order.
func (p *Preprocessor) Tokenize(files []string, onProgress fileproc.ProgressFunc) (*Result, error) {
	blocks, err := os.Create(p.cfg.CodeBlocks)
	if err != nil {
		return nil, &WriteError{Path: p.cfg.CodeBlocks, Err: err}
	}
	defer blocks.Close()
	w := bufio.NewWriter(blocks)

	// Tokenize files in parallel; per-worker tokenizers because tree-sitter
	// parsers are not safe for concurrent use.
	perFile, ok := fileproc.MapIndexed(files, p.cfg.Threads, func(path string) ([]tokenizer.Function, error) {
		tk, err := tokenizer.New(p.lang)
		if err != nil {
			return nil, err
		}
		defer tk.Close()
		return tk.Functions(path)
	}, onProgress, func(path string, err error) {
		color.New(color.FgYellow).Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
	})

	result := &Result{FilesScanned: len(files)}
	for i, fns := range perFile {
		if !ok[i] {
			continue
		}
		for _, fn := range fns {
			if fn.EndLine-fn.StartLine+1 < p.cfg.MinLine || len(fn.Tokens) < p.cfg.MinToken {
				result.FunctionsSkipped++
				continue
			}
			seq := models.TokenSequence{
				ID:        len(result.Sequences),
				FilePath:  files[i],
				StartLine: fn.StartLine,
				EndLine:   fn.EndLine,
				Tokens:    fn.Tokens,
			}
			block := models.CodeBlock{
				FilePath:   seq.FilePath,
				StartLine:  seq.StartLine,
				EndLine:    seq.EndLine,
				MethodName: fn.MethodName,
				ReturnType: fn.ReturnType,
				Params:     fn.Params,
				TokenHash:  SequenceHash(fn.Tokens),
			}
			if _, err := fmt.Fprintln(w, block.Record()); err != nil {
				return nil, &WriteError{Path: p.cfg.CodeBlocks, Err: err}
			}
			result.Sequences = append(result.Sequences, seq)
		}
	}

	if err := w.Flush(); err != nil {
		return nil, &WriteError{Path: p.cfg.CodeBlocks, Err: err}
	}
	return result, nil
}

// SequenceHash fingerprints a token sequence for the code-block record.
func SequenceHash(tokens []uint32) string {
	h := blake3.New()
	var buf [4]byte
	for _, t := range tokens {
		binary.LittleEndian.PutUint32(buf[:], t)
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
