// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package script holds the shared vocabulary of the AGS script toolchain:
// source files, code points, tokens and the iterator contracts that connect
// the lexer to the parser.
package script

import (
	"context"
	"fmt"

	"github.com/edmundito/agsscript/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindScript
	FileKindHeader
)

func (k FileKind) String() string {
	switch k {
	case FileKindNone:
		return "none"
	case FileKindScript:
		return "script"
	case FileKindHeader:
		return "header"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}

// LexerFile is a File that can produce its token stream. Every call to Tokens
// restarts from the beginning of the file body.
type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

// Location is a position in a source file. Line and Column are 1-based and
// Column counts code points. Offset is the 0-based byte offset.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span is the half-open range [Start, End) covered by a token or node.
type Span struct {
	Start Location
	End   Location
}

// Segment is a byte range relative to the start of a token's Value.
type Segment struct {
	Start int
	End   int
}

type Token struct {
	Span  Span
	Type  TokenType
	Value string
	// Escapes marks the escape sequences inside string and char literals.
	Escapes []Segment
	// Trivia holds the comments that precede the token when trivia tracking
	// is enabled.
	Trivia []*Token
	// EndsLine is set on the final token of a preprocessor directive line.
	EndsLine bool
}

func (t *Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Span.Start, t.Type, t.Value)
}
