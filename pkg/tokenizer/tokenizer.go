// Package tokenizer extracts normalized function-level token sequences from
// source files. One Tokenizer serves one language; each function in a file
// yields its line range, optional method metadata, and the ordered sequence
// of 32-bit token hashes consumed by the detector.
package tokenizer

import (
	"unicode"

	"github.com/cespare/xxhash/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shoei03/nilgo/pkg/parser"
)

// Function is one function-level record emitted by the tokenizer.
type Function struct {
	StartLine  int
	EndLine    int
	MethodName string
	ReturnType string
	Params     []string
	Tokens     []uint32
}

// Tokenizer walks parse trees of one language and yields function records.
type Tokenizer struct {
	lang   parser.Language
	parser *parser.Parser
}

// New creates a tokenizer for the given language.
func New(lang parser.Language) (*Tokenizer, error) {
	p, err := parser.New(lang)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{lang: lang, parser: p}, nil
}

// Language returns the language this tokenizer is bound to.
func (t *Tokenizer) Language() parser.Language {
	return t.lang
}

// Functions parses a file and returns every function-level record in source
// order.
func (t *Tokenizer) Functions(path string) ([]Function, error) {
	result, err := t.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return t.functionsFromTree(result), nil
}

// FunctionsFromSource tokenizes in-memory source, mainly for tests.
func (t *Tokenizer) FunctionsFromSource(source []byte, path string) ([]Function, error) {
	result, err := t.parser.Parse(source, path)
	if err != nil {
		return nil, err
	}
	return t.functionsFromTree(result), nil
}

func (t *Tokenizer) functionsFromTree(result *parser.ParseResult) []Function {
	funcTypes := functionNodeTypes(t.lang)
	var functions []Function

	parser.Walk(result.Tree.RootNode(), func(node *sitter.Node) bool {
		nodeType := node.Type()
		for _, ft := range funcTypes {
			if nodeType == ft {
				functions = append(functions, Function{
					StartLine:  int(node.StartPoint().Row) + 1,
					EndLine:    int(node.EndPoint().Row) + 1,
					MethodName: functionName(node, result.Source, t.lang),
					ReturnType: returnType(node, result.Source, t.lang),
					Params:     parameterList(node, result.Source, t.lang),
					Tokens:     t.collectTokens(node, result.Source),
				})
				break
			}
		}
		return true
	})

	return functions
}

// collectTokens gathers the leaf tokens of a function subtree, normalizes
// them, and hashes each into its stable 32-bit representation.
func (t *Tokenizer) collectTokens(fn *sitter.Node, source []byte) []uint32 {
	var tokens []uint32
	parser.Walk(fn, func(node *sitter.Node) bool {
		if isComment(node.Type()) {
			return false
		}
		if node.ChildCount() > 0 {
			return true
		}
		for _, tok := range SplitToken(parser.GetNodeText(node, source)) {
			tokens = append(tokens, HashToken(tok))
		}
		return true
	})
	return tokens
}

// Close releases the underlying parser.
func (t *Tokenizer) Close() {
	t.parser.Close()
}

// SplitToken normalizes one lexer token: text that is empty or begins with
// whitespace is dropped, and the remainder is split at boundaries between
// letter/digit runs and single punctuation characters, so "foo(bar)" yields
// "foo", "(", "bar", ")" regardless of how the lexer aggregated it.
func SplitToken(text string) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if unicode.IsSpace(runes[0]) {
		return nil
	}

	var parts []string
	start := -1
	for i, r := range runes {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			parts = append(parts, string(runes[start:i]))
			start = -1
		}
		if !unicode.IsSpace(r) {
			parts = append(parts, string(r))
		}
	}
	if start >= 0 {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}

// HashToken maps a normalized token to its stable 32-bit integer: the low
// half of the XXH64 digest of the token's UTF-8 bytes. Equal token texts
// hash equal within a run and across goroutines.
func HashToken(tok string) uint32 {
	return uint32(xxhash.Sum64String(tok))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
