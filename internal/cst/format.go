// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

package cst

import (
	"strings"

	"github.com/edmundito/agsscript/internal/script"
)

// Tokens returns the leaf tokens below n in source order. Literal leaves are
// not descended into, so escape sequences are not repeated.
func Tokens(n *Node) []*script.Token {
	var out []*script.Token
	var visit func(*Node)
	visit = func(n *Node) {
		if n.Token != nil {
			out = append(out, n.Token)
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(n)
	return out
}

type FormatOptions struct {
	// Trivia re-emits the comments attached to tokens.
	Trivia bool
	// Indent is the string repeated once per brace level. Defaults to a tab.
	Indent string
}

// Format serialises the tree back into source text. The output is not
// byte-identical to the input but re-parses to the same tree: tokens are
// separated by single spaces, statements and braces start new lines, and
// directive lines are terminated.
func Format(n *Node, opts FormatOptions) string {
	if opts.Indent == "" {
		opts.Indent = "\t"
	}
	f := &formatter{opts: opts}
	for _, t := range Tokens(n) {
		f.token(t)
	}
	if opts.Trivia {
		for _, t := range n.Trivia {
			f.comment(t)
		}
	}
	f.newline()
	return f.b.String()
}

type formatter struct {
	b         strings.Builder
	opts      FormatOptions
	depth     int
	parens    int
	lineStart bool
	started   bool
}

func (f *formatter) newline() {
	if f.started && !f.lineStart {
		f.b.WriteByte('\n')
	}
	f.lineStart = true
}

func (f *formatter) write(s string) {
	if f.lineStart {
		f.b.WriteString(strings.Repeat(f.opts.Indent, f.depth))
	} else if f.started {
		f.b.WriteByte(' ')
	}
	f.b.WriteString(s)
	f.started = true
	f.lineStart = false
}

func (f *formatter) comment(t *script.Token) {
	f.write(t.Value)
	if strings.HasPrefix(t.Value, "//") {
		f.newline()
	}
}

func (f *formatter) token(t *script.Token) {
	if f.opts.Trivia {
		for _, c := range t.Trivia {
			f.comment(c)
		}
	}
	if t.Type.IsDirective() {
		f.newline()
	}
	switch t.Type {
	case script.TokenTypeCurlyClose:
		if f.depth > 0 {
			f.depth = f.depth - 1
		}
		f.newline()
	case script.TokenTypeParenOpen:
		f.parens = f.parens + 1
	case script.TokenTypeParenClose:
		if f.parens > 0 {
			f.parens = f.parens - 1
		}
	}
	f.write(t.Value)
	switch {
	case t.EndsLine:
		f.newline()
	case t.Type == script.TokenTypeCurlyOpen:
		f.depth = f.depth + 1
		f.newline()
	case t.Type == script.TokenTypeCurlyClose:
		f.newline()
	case t.Type == script.TokenTypeSemicolon && f.parens == 0:
		f.newline()
	}
}
