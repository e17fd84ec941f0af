package tokenizer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shoei03/nilgo/pkg/parser"
)

// functionNodeTypes returns the AST node types that constitute a function
// for each language.
func functionNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	case parser.LangC, parser.LangCPP:
		return []string{"function_definition"}
	case parser.LangCSharp:
		return []string{"method_declaration", "constructor_declaration"}
	case parser.LangPython:
		return []string{"function_definition"}
	case parser.LangKotlin:
		return []string{"function_declaration"}
	default:
		return nil
	}
}

// commentNodeTypes covers the comment node names across all supported
// grammars; a subtree rooted at any of these is negligible.
var commentNodeTypes = map[string]bool{
	"comment":           true,
	"line_comment":      true,
	"block_comment":     true,
	"multiline_comment": true,
}

// isComment reports whether a node type is a comment in any supported grammar.
func isComment(nodeType string) bool {
	return commentNodeTypes[nodeType]
}

// functionName extracts the declared name of a function node, if the grammar
// exposes one.
func functionName(node *sitter.Node, source []byte, lang parser.Language) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return parser.GetNodeText(nameNode, source)
	}
	switch lang {
	case parser.LangC, parser.LangCPP:
		// The name hides inside the declarator chain.
		decl := node.ChildByFieldName("declarator")
		for decl != nil {
			if decl.Type() == "identifier" || decl.Type() == "field_identifier" ||
				decl.Type() == "qualified_identifier" {
				return parser.GetNodeText(decl, source)
			}
			next := decl.ChildByFieldName("declarator")
			if next == nil {
				break
			}
			decl = next
		}
	case parser.LangKotlin:
		// The kotlin grammar has no name field; the identifier is a direct child.
		for i := range int(node.ChildCount()) {
			child := node.Child(i)
			if child.Type() == "simple_identifier" {
				return parser.GetNodeText(child, source)
			}
		}
	}
	return ""
}

// returnType extracts the declared return type when the surface syntax has
// one. Python functions without an annotation and Kotlin functions with an
// inferred type yield the empty string.
func returnType(node *sitter.Node, source []byte, lang parser.Language) string {
	switch lang {
	case parser.LangPython:
		return parser.GetNodeText(node.ChildByFieldName("return_type"), source)
	case parser.LangJava, parser.LangC, parser.LangCPP:
		return parser.GetNodeText(node.ChildByFieldName("type"), source)
	case parser.LangCSharp:
		if t := node.ChildByFieldName("returns"); t != nil {
			return parser.GetNodeText(t, source)
		}
		return parser.GetNodeText(node.ChildByFieldName("type"), source)
	case parser.LangKotlin:
		// `fun f(): T` puts the user_type child after the parameter list.
		for i := range int(node.ChildCount()) {
			child := node.Child(i)
			if child.Type() == "user_type" || child.Type() == "nullable_type" {
				return parser.GetNodeText(child, source)
			}
		}
	}
	return ""
}

// parameterList extracts the declared parameters as trimmed declaration
// strings, without the surrounding parentheses.
func parameterList(node *sitter.Node, source []byte, lang parser.Language) []string {
	params := node.ChildByFieldName("parameters")
	if params == nil && (lang == parser.LangC || lang == parser.LangCPP) {
		if decl := node.ChildByFieldName("declarator"); decl != nil {
			params = decl.ChildByFieldName("parameters")
		}
	}
	if params == nil {
		for i := range int(node.ChildCount()) {
			child := node.Child(i)
			switch child.Type() {
			case "formal_parameters", "parameter_list", "function_value_parameters":
				params = child
			}
			if params != nil {
				break
			}
		}
	}
	if params == nil {
		return nil
	}

	var list []string
	for i := range int(params.NamedChildCount()) {
		child := params.NamedChild(i)
		if isComment(child.Type()) {
			continue
		}
		if text := parser.GetNodeText(child, source); text != "" {
			list = append(list, text)
		}
	}
	return list
}
