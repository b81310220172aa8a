// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package cst is the public concrete syntax tree of an AGS script. Every
// token of the source appears exactly once as a leaf, in source order, so a
// tree can always be turned back into its token stream.
package cst

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/edmundito/agsscript/internal/script"
)

// Node is one vertex of the tree. Leaves carry the Token they were built
// from; anonymous leaves (punctuation and keywords) are not Named and use
// the token text as their Kind.
type Node struct {
	Kind     string
	Named    bool
	Token    *script.Token
	Children []*Node
	Span     script.Span
	// Guard is set on preproc_ifdef, preproc_ifver and preproc_region nodes.
	Guard *Guard
	// Trivia holds comments found after the last token. Only the root
	// carries it.
	Trivia []*script.Token
}

// Guard describes the condition attached to a preprocessor block. It is
// recorded as written and never evaluated.
type Guard struct {
	// Directive is the opening directive, e.g. "#ifndef".
	Directive string
	// Negated is true for #ifndef and #ifnver.
	Negated bool
	// Name is the macro tested by #ifdef and #ifndef.
	Name string
	// Literal is the raw version text tested by #ifver and #ifnver.
	Literal string
	// Version is Literal parsed as a semantic version. Missing minor and
	// patch components are zero.
	Version *semver.Version
	// Description is the optional #region label.
	Description string
}

func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

// Text returns the source text of a leaf, or the space separated text of
// every leaf below n.
func (n *Node) Text() string {
	if n.Token != nil {
		return n.Token.Value
	}
	toks := Tokens(n)
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		parts = append(parts, t.Value)
	}
	return strings.Join(parts, " ")
}

func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first direct child of the given kind, or nil.
func (n *Node) Child(kind string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOf returns every direct child of the given kind.
func (n *Node) ChildrenOf(kind string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Has reports whether n has a direct child of the given kind.
func (n *Node) Has(kind string) bool {
	return n.Child(kind) != nil
}

// String renders the named structure of the tree as an S-expression, the
// same notation tree-sitter corpus tests use.
func (n *Node) String() string {
	var b strings.Builder
	writeSexp(&b, n)
	return b.String()
}

func writeSexp(b *strings.Builder, n *Node) {
	b.WriteByte('(')
	b.WriteString(n.Kind)
	for _, c := range n.Children {
		if !c.Named {
			continue
		}
		b.WriteByte(' ')
		writeSexp(b, c)
	}
	b.WriteByte(')')
}
