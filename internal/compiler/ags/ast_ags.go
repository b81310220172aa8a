package ags

import (
	"strings"
	"unicode/utf8"

	"github.com/edmundito/agsscript/internal/cst"
	"github.com/edmundito/agsscript/internal/script"
)

// astNode is the internal parse tree. Its kinds are as granular as the
// parser needs them to be: every declarator family and every preprocessor
// context has its own kind. project collapses them into the public
// vocabulary of package cst.
type astNode struct {
	// kind is empty for anonymous leaves such as punctuation and keywords.
	kind     string
	token    *script.Token
	children []*astNode
	guard    *cst.Guard
}

func newLeaf(kind string, t *script.Token) *astNode {
	return &astNode{kind: kind, token: t}
}

func newAnonymous(t *script.Token) *astNode {
	return &astNode{token: t}
}

func newNode(kind string, children ...*astNode) *astNode {
	n := &astNode{kind: kind}
	n.add(children...)
	return n
}

// add appends the non-nil children.
func (n *astNode) add(children ...*astNode) *astNode {
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

func (n *astNode) hidden() bool {
	return strings.HasPrefix(n.kind, "_")
}

// count returns the number of nodes of the given kind in the subtree.
func (n *astNode) count(kind string) int {
	total := 0
	if n.kind == kind {
		total = 1
	}
	for _, c := range n.children {
		total = total + c.count(kind)
	}
	return total
}

// equal compares the structure and the token identity of two subtrees.
func (n *astNode) equal(o *astNode) bool {
	if n.kind != o.kind || n.token != o.token || len(n.children) != len(o.children) {
		return false
	}
	for x := range n.children {
		if !n.children[x].equal(o.children[x]) {
			return false
		}
	}
	return true
}

// Internal node kinds that are renamed in the public tree.
var publicKinds = map[string]string{
	"pointer_field_declarator":                 "pointer_declarator",
	"array_field_declarator":                   "array_declarator",
	"function_field_declarator":                "function_declarator",
	"function_import_declarator":               "function_declarator",
	"parameter_import_list":                    "parameter_list",
	"parameter_import_declaration":             "parameter_declaration",
	"default_parameter":                        "init_declarator",
	"switch_body":                              "compound_statement",
	"preproc_ifdef_in_block":                   "preproc_ifdef",
	"preproc_ifdef_in_field_declaration_list":  "preproc_ifdef",
	"preproc_ifdef_in_enumerator_list":         "preproc_ifdef",
	"preproc_ifdef_in_if":                      "preproc_ifdef",
	"preproc_ifver_in_block":                   "preproc_ifver",
	"preproc_ifver_in_field_declaration_list":  "preproc_ifver",
	"preproc_ifver_in_enumerator_list":         "preproc_ifver",
	"preproc_ifver_in_if":                      "preproc_ifver",
	"preproc_region_in_block":                  "preproc_region",
	"preproc_region_in_field_declaration_list": "preproc_region",
	"preproc_region_in_enumerator_list":        "preproc_region",
}

func publicKind(kind string) string {
	if alias, ok := publicKinds[kind]; ok {
		return alias
	}
	return kind
}

// project converts an internal node into its public form. Hidden nodes
// dissolve into their children, so project may return any number of nodes.
func project(n *astNode) []*cst.Node {
	if n.token != nil {
		return []*cst.Node{projectLeaf(n)}
	}
	var children []*cst.Node
	for _, c := range n.children {
		children = append(children, project(c)...)
	}
	if n.hidden() {
		return children
	}
	out := &cst.Node{
		Kind:     publicKind(n.kind),
		Named:    true,
		Children: children,
		Guard:    n.guard,
	}
	if len(children) > 0 {
		out.Span = script.Span{
			Start: children[0].Span.Start,
			End:   children[len(children)-1].Span.End,
		}
	}
	return []*cst.Node{out}
}

func projectLeaf(n *astNode) *cst.Node {
	out := &cst.Node{
		Kind:  publicKind(n.kind),
		Named: n.kind != "",
		Token: n.token,
		Span:  n.token.Span,
	}
	if !out.Named {
		out.Kind = n.token.Value
	}
	for _, seg := range n.token.Escapes {
		out.Children = append(out.Children, escapeSequence(n.token, seg))
	}
	return out
}

// escapeSequence builds the child node for one escape of a literal. Literals
// never span lines, so only the column and offset move.
func escapeSequence(t *script.Token, seg script.Segment) *cst.Node {
	start := t.Span.Start
	start.Column = start.Column + int32(utf8.RuneCountInString(t.Value[:seg.Start]))
	start.Offset = start.Offset + int64(seg.Start)
	value := t.Value[seg.Start:seg.End]
	end := start
	end.Column = end.Column + int32(utf8.RuneCountInString(value))
	end.Offset = end.Offset + int64(len(value))
	span := script.Span{Start: start, End: end}
	return &cst.Node{
		Kind:  "escape_sequence",
		Named: true,
		Token: &script.Token{Span: span, Type: t.Type, Value: value},
		Span:  span,
	}
}

// toCST projects a source_file node into the public tree and attaches the
// trailing comments to the root.
func toCST(root *astNode, trailing []*script.Token) *cst.Node {
	nodes := project(root)
	out := nodes[0]
	out.Trivia = trailing
	return out
}
