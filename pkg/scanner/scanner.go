// Package scanner finds the source files of one language under a root
// directory.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/shoei03/nilgo/pkg/parser"
)

// Scanner walks a source tree collecting files for one language.
type Scanner struct {
	lang         parser.Language
	useGitignore bool
	matcher      gitignore.Matcher
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithGitignore toggles .gitignore handling (default on).
func WithGitignore(enabled bool) Option {
	return func(s *Scanner) {
		s.useGitignore = enabled
	}
}

// New creates a scanner for the given language.
func New(lang parser.Language, opts ...Option) *Scanner {
	s := &Scanner{lang: lang, useGitignore: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanDir recursively collects the language's source files under root in
// deterministic lexical walk order. The returned paths are absolute.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot read source root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", root)
	}

	if s.useGitignore {
		s.loadGitignore(absRoot)
	}

	files := make([]string, 0, 256)
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if s.isIgnored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !parser.MatchesLanguage(path, s.lang) {
			return nil
		}
		if s.isIgnored(rel, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot read source tree %s: %w", root, err)
	}
	return files, nil
}

// loadGitignore reads the tree's .gitignore patterns, when present.
func (s *Scanner) loadGitignore(root string) {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.matcher = gitignore.NewMatcher(patterns)
}

func (s *Scanner) isIgnored(rel string, isDir bool) bool {
	if s.matcher == nil || rel == "." {
		return false
	}
	return s.matcher.Match(strings.Split(rel, string(filepath.Separator)), isDir)
}
