// Package parser wraps tree-sitter for the languages the detector supports.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
)

// Language represents a supported programming language.
type Language string

const (
	LangJava    Language = "java"
	LangC       Language = "c"
	LangCPP     Language = "cpp"
	LangCSharp  Language = "csharp"
	LangPython  Language = "python"
	LangKotlin  Language = "kotlin"
	LangUnknown Language = "unknown"
)

// ParseLanguage resolves a language option value to a Language.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(s)) {
	case LangJava, LangC, LangCPP, LangCSharp, LangPython, LangKotlin:
		return Language(strings.ToLower(s)), nil
	default:
		return LangUnknown, fmt.Errorf("unknown language: %s", s)
	}
}

// Extensions returns the file extensions scanned for a language.
func Extensions(lang Language) []string {
	switch lang {
	case LangJava:
		return []string{".java"}
	case LangC:
		return []string{".c", ".h"}
	case LangCPP:
		return []string{".cpp", ".hpp"}
	case LangCSharp:
		return []string{".cs"}
	case LangPython:
		return []string{".py"}
	case LangKotlin:
		return []string{".kt"}
	default:
		return nil
	}
}

// Parser wraps a tree-sitter parser bound to one language.
type Parser struct {
	parser *sitter.Parser
	lang   Language
}

// ParseResult contains the parsed AST and the source it was built from.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// New creates a parser for the given language.
func New(lang Language) (*Parser, error) {
	tsLang, err := treeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(tsLang)
	return &Parser{parser: p, lang: lang}, nil
}

// ParseFile parses a source file and returns the AST.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(source, path)
}

// Parse parses source code already in memory.
func (p *Parser) Parse(source []byte, path string) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	return &ParseResult{
		Tree:     tree,
		Language: p.lang,
		Source:   source,
		Path:     path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// treeSitterLanguage returns the tree-sitter grammar for a Language.
func treeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJava:
		return java.GetLanguage(), nil
	case LangC:
		return c.GetLanguage(), nil
	case LangCPP:
		return cpp.GetLanguage(), nil
	case LangCSharp:
		return csharp.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangKotlin:
		return kotlin.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// MatchesLanguage reports whether a file path has one of the language's
// extensions.
func MatchesLanguage(path string, lang Language) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions(lang) {
		if ext == e {
			return true
		}
	}
	return false
}

// NodeVisitor is a function that visits AST nodes. Returning false stops
// descent into the node's children.
type NodeVisitor func(node *sitter.Node) bool

// Walk traverses the AST calling visitor for each node.
func Walk(node *sitter.Node, visitor NodeVisitor) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), visitor)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
