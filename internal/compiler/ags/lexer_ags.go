// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

package ags

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/iter"
	"github.com/edmundito/agsscript/internal/optional"
	"github.com/edmundito/agsscript/internal/script"
)

const (
	lexerAGSLookahead = 8
	byteOrderMark     = 0xFEFF
)

// LexerAGS implements a tokenizer for AGS script.
type LexerAGS struct {
	reporter exc.Reporter
}

func NewLexerAGS(reporter exc.Reporter) *LexerAGS {
	return &LexerAGS{reporter: reporter}
}

func (self *LexerAGS) Lex(ctx context.Context, f script.File) (script.LexerFile, error) {
	return &lexerFileAGS{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileAGS struct {
	script.File
	reporter exc.Reporter
}

func (self *lexerFileAGS) Tokens(ctx context.Context) (script.Iterator[*script.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBodyCtx(ctx, b), lexerAGSLookahead)
	return &lexerFileAGSTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		line:     1,
		col:      1,
	}, nil
}

// directiveMode tracks what the rest of a directive line may contain. Those
// positions are lexed differently from ordinary code.
type directiveMode uint8

const (
	directiveModeNone directiveMode = iota
	directiveModeDefineName
	directiveModeArg
	directiveModeGuard
	directiveModeVersion
)

type lexerFileAGSTokens struct {
	uri      string
	body     script.Lookahead[script.CodePoint]
	reporter exc.Reporter
	// line, col and offset locate the next unread code point.
	line    int32
	col     int32
	offset  int64
	started bool
	halted  bool
	mode    directiveMode
	last    *script.Token
}

// Halted reports whether a fatal error stopped the token stream early.
func (self *lexerFileAGSTokens) Halted() bool {
	return self.halted
}

func (self *lexerFileAGSTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

func (self *lexerFileAGSTokens) loc() script.Location {
	return script.Location{Line: self.line, Column: self.col, Offset: self.offset}
}

func (self *lexerFileAGSTokens) next(ctx context.Context) optional.Optional[script.CodePoint] {
	point := self.body.Next(ctx)
	self.started = true
	if !point.IsPresent() {
		return point
	}
	r := rune(point.Value())
	size := utf8.RuneLen(r)
	if size < 1 {
		size = 1
	}
	self.offset = self.offset + int64(size)
	if r == '\n' {
		self.line = self.line + 1
		self.col = 1
	} else {
		self.col = self.col + 1
	}
	return point
}

// peek returns the n-th unread code point without consuming it.
func (self *lexerFileAGSTokens) peek(ctx context.Context, n uint8) (rune, bool) {
	if self.started {
		n = n + 1
	}
	v, ok := self.body.Lookahead(ctx, n).Get()
	return rune(v), ok
}

// accept consumes the next code point if it equals r.
func (self *lexerFileAGSTokens) accept(ctx context.Context, r rune) bool {
	if n, ok := self.peek(ctx, 0); ok && n == r {
		_ = self.next(ctx)
		return true
	}
	return false
}

func (self *lexerFileAGSTokens) exc(loc script.Location, code string, message string) exc.Exception {
	return exc.New(exc.Location{URI: self.uri, Location: loc}, code, message)
}

// fail reports a lexical error. It returns true when lexing may continue.
func (self *lexerFileAGSTokens) fail(loc script.Location, code string, message string) bool {
	if self.reporter.Report(self.exc(loc, code, message)) != nil {
		self.halted = true
		return false
	}
	return true
}

func (self *lexerFileAGSTokens) emit(t *script.Token) optional.Optional[*script.Token] {
	self.last = t
	return optional.Some(t)
}

func (self *lexerFileAGSTokens) endLine() {
	if self.last != nil {
		self.last.EndsLine = true
	}
}

func (self *lexerFileAGSTokens) simple(start script.Location, kind script.TokenType, value string) optional.Optional[*script.Token] {
	return self.emit(newToken(start, self.loc(), kind, value))
}

// operator emits the longest of the given spellings that matches. The first
// character has already been consumed.
func (self *lexerFileAGSTokens) operator(ctx context.Context, start script.Location, first rune, kind script.TokenType, alternatives ...operatorAlternative) optional.Optional[*script.Token] {
	for _, alt := range alternatives {
		matched := true
		for x, r := range alt.rest {
			n, ok := self.peek(ctx, uint8(x))
			if !ok || n != r {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		for range alt.rest {
			_ = self.next(ctx)
		}
		return self.simple(start, alt.kind, string(first)+string(alt.rest))
	}
	return self.simple(start, kind, string(first))
}

type operatorAlternative struct {
	rest []rune
	kind script.TokenType
}

func alt(rest string, kind script.TokenType) operatorAlternative {
	return operatorAlternative{rest: []rune(rest), kind: kind}
}

func isIdentifierStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (self *lexerFileAGSTokens) Next(ctx context.Context) optional.Optional[*script.Token] {
	for !self.halted {
		if self.mode != directiveModeNone {
			if t, ok := self.directiveRest(ctx); ok {
				return t
			}
		}
		start := self.loc()
		point := self.next(ctx)
		if !point.IsPresent() {
			return optional.None[*script.Token]()
		}
		r := rune(point.Value())
		switch r {
		case byteOrderMark:
			if start.Offset != 0 {
				if !self.fail(start, exc.CodeUnsupportedFileFormat, "invalid UTF-8 BOM location") {
					return optional.None[*script.Token]()
				}
			}
			self.col = 1
			continue
		case ' ', '\t', '\r', '\n', '\f', '\v':
			continue
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return self.readNumber(ctx, start, r)
		case '"':
			t, ok := self.readString(ctx, start)
			if ok {
				return t
			}
			continue
		case '\'':
			t, ok := self.readChar(ctx, start)
			if ok {
				return t
			}
			continue
		case '#':
			t, ok := self.readDirective(ctx, start)
			if ok {
				return t
			}
			continue
		case '/':
			n, _ := self.peek(ctx, 0)
			switch n {
			case '/':
				_ = self.next(ctx)
				return self.readCommentLine(ctx, start)
			case '*':
				_ = self.next(ctx)
				t, ok := self.readCommentBlock(ctx, start)
				if ok {
					return t
				}
				continue
			}
			return self.operator(ctx, start, r, script.TokenTypeSlash, alt("=", script.TokenTypeDivideEqual))
		case '{':
			return self.simple(start, script.TokenTypeCurlyOpen, "{")
		case '}':
			return self.simple(start, script.TokenTypeCurlyClose, "}")
		case '[':
			return self.simple(start, script.TokenTypeSquareOpen, "[")
		case ']':
			return self.simple(start, script.TokenTypeSquareClose, "]")
		case '(':
			return self.simple(start, script.TokenTypeParenOpen, "(")
		case ')':
			return self.simple(start, script.TokenTypeParenClose, ")")
		case ';':
			return self.simple(start, script.TokenTypeSemicolon, ";")
		case ',':
			return self.simple(start, script.TokenTypeComma, ",")
		case '.':
			return self.simple(start, script.TokenTypeDot, ".")
		case ':':
			return self.operator(ctx, start, r, script.TokenTypeColon, alt(":", script.TokenTypeScope))
		case '=':
			return self.operator(ctx, start, r, script.TokenTypeEqual, alt("=", script.TokenTypeComparison))
		case '!':
			return self.operator(ctx, start, r, script.TokenTypeExclamation, alt("=", script.TokenTypeNotComparison))
		case '<':
			return self.operator(ctx, start, r, script.TokenTypeAngleOpen,
				alt("<=", script.TokenTypeShiftLeftEqual),
				alt("<", script.TokenTypeShiftLeft),
				alt("=", script.TokenTypeLesserEqual))
		case '>':
			return self.operator(ctx, start, r, script.TokenTypeAngleClose,
				alt(">=", script.TokenTypeShiftRightEqual),
				alt(">", script.TokenTypeShiftRight),
				alt("=", script.TokenTypeGreaterEqual))
		case '+':
			return self.operator(ctx, start, r, script.TokenTypePlus,
				alt("+", script.TokenTypeIncrement),
				alt("=", script.TokenTypePlusEqual))
		case '-':
			return self.operator(ctx, start, r, script.TokenTypeMinus,
				alt("-", script.TokenTypeDecrement),
				alt("=", script.TokenTypeMinusEqual))
		case '*':
			return self.operator(ctx, start, r, script.TokenTypeStar, alt("=", script.TokenTypeMultiplyEqual))
		case '%':
			return self.simple(start, script.TokenTypePercent, "%")
		case '&':
			return self.operator(ctx, start, r, script.TokenTypeAmpersand,
				alt("&", script.TokenTypeBinAnd),
				alt("=", script.TokenTypeAmpersandEqual))
		case '|':
			return self.operator(ctx, start, r, script.TokenTypePipe,
				alt("|", script.TokenTypeBinOr),
				alt("=", script.TokenTypePipeEqual))
		case '^':
			return self.operator(ctx, start, r, script.TokenTypeCaret, alt("=", script.TokenTypeCaretEqual))
		default:
			if isIdentifierStart(r) {
				t := self.readIdentifier(ctx, start, r)
				if kind, ok := script.Keywords[t.Value]; ok {
					t.Type = kind
				} else if script.PrimitiveTypes[t.Value] {
					t.Type = script.TokenTypePrimitiveType
				}
				return self.emit(t)
			}
			if !self.fail(start, exc.CodeUnexpectedCharacter, fmt.Sprintf("unexpected character %q", r)) {
				return optional.None[*script.Token]()
			}
		}
	}
	return optional.None[*script.Token]()
}

// skipBlanks consumes spaces and tabs but never a line break.
func (self *lexerFileAGSTokens) skipBlanks(ctx context.Context) {
	for {
		n, ok := self.peek(ctx, 0)
		if !ok || (n != ' ' && n != '\t' && n != '\f' && n != '\v') {
			return
		}
		_ = self.next(ctx)
	}
}

// directiveRest lexes the special positions that follow a directive on the
// same line. It returns false when the position is empty and ordinary
// lexing should resume.
func (self *lexerFileAGSTokens) directiveRest(ctx context.Context) (optional.Optional[*script.Token], bool) {
	mode := self.mode
	self.mode = directiveModeNone
	self.skipBlanks(ctx)
	n, ok := self.peek(ctx, 0)
	atLineEnd := !ok || n == '\n' || (n == '\r' && self.peekIs(ctx, 1, '\n'))
	if n == '/' && (self.peekIs(ctx, 1, '/') || self.peekIs(ctx, 1, '*')) && mode != directiveModeArg {
		atLineEnd = true
	}
	if atLineEnd {
		self.endLine()
		return optional.None[*script.Token](), false
	}
	start := self.loc()
	switch mode {
	case directiveModeDefineName:
		if !isIdentifierStart(n) {
			return optional.None[*script.Token](), false
		}
		_ = self.next(ctx)
		t := self.readIdentifier(ctx, start, n)
		self.mode = directiveModeArg
		return self.emit(t), true
	case directiveModeGuard:
		if !isIdentifierStart(n) {
			return optional.None[*script.Token](), false
		}
		_ = self.next(ctx)
		t := self.readIdentifier(ctx, start, n)
		t.EndsLine = true
		return self.emit(t), true
	case directiveModeVersion:
		if !isDigit(n) {
			return optional.None[*script.Token](), false
		}
		t := self.readVersion(ctx, start)
		t.EndsLine = true
		return self.emit(t), true
	case directiveModeArg:
		t := self.readPreprocArg(ctx, start)
		t.EndsLine = true
		return self.emit(t), true
	}
	return optional.None[*script.Token](), false
}

func (self *lexerFileAGSTokens) peekIs(ctx context.Context, n uint8, r rune) bool {
	v, ok := self.peek(ctx, n)
	return ok && v == r
}

func (self *lexerFileAGSTokens) readIdentifier(ctx context.Context, start script.Location, first rune) *script.Token {
	var builder strings.Builder
	_, _ = builder.WriteRune(first)
	for {
		n, ok := self.peek(ctx, 0)
		if !ok || !isIdentifierPart(n) {
			return newToken(start, self.loc(), script.TokenTypeIdentifier, builder.String())
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(n)
	}
}

func (self *lexerFileAGSTokens) readDigits(ctx context.Context, builder *strings.Builder) {
	for {
		n, ok := self.peek(ctx, 0)
		if !ok || !isDigit(n) {
			return
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(n)
	}
}

// Number = digit { digit } [ "." digit { digit } ]
func (self *lexerFileAGSTokens) readNumber(ctx context.Context, start script.Location, first rune) optional.Optional[*script.Token] {
	var builder strings.Builder
	_, _ = builder.WriteRune(first)
	self.readDigits(ctx, &builder)
	if self.peekIs(ctx, 0, '.') {
		if n, ok := self.peek(ctx, 1); ok && isDigit(n) {
			_ = self.next(ctx)
			_, _ = builder.WriteRune('.')
			self.readDigits(ctx, &builder)
		}
	}
	return self.emit(newToken(start, self.loc(), script.TokenTypeNumber, builder.String()))
}

// Version = digit { digit } [ "." digit { digit } [ "." digit { digit } ] ]
func (self *lexerFileAGSTokens) readVersion(ctx context.Context, start script.Location) *script.Token {
	var builder strings.Builder
	self.readDigits(ctx, &builder)
	for x := 0; x < 2; x = x + 1 {
		if !self.peekIs(ctx, 0, '.') {
			break
		}
		if n, ok := self.peek(ctx, 1); !ok || !isDigit(n) {
			break
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune('.')
		self.readDigits(ctx, &builder)
	}
	return newToken(start, self.loc(), script.TokenTypeVersion, builder.String())
}

// readPreprocArg reads the raw remainder of a directive line. A backslash
// before a line break continues the argument on the next line.
func (self *lexerFileAGSTokens) readPreprocArg(ctx context.Context, start script.Location) *script.Token {
	var builder strings.Builder
	end := self.loc()
	kept := 0
	for {
		n, ok := self.peek(ctx, 0)
		if !ok || n == '\n' {
			break
		}
		if n == '\r' && self.peekIs(ctx, 1, '\n') {
			break
		}
		if n == '\\' && (self.peekIs(ctx, 1, '\n') || (self.peekIs(ctx, 1, '\r') && self.peekIs(ctx, 2, '\n'))) {
			_ = self.next(ctx)
			_, _ = builder.WriteRune('\\')
			for {
				c := self.next(ctx)
				_, _ = builder.WriteRune(rune(c.Value()))
				if rune(c.Value()) == '\n' {
					break
				}
			}
			continue
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(n)
		if n != ' ' && n != '\t' && n != '\r' {
			end = self.loc()
			kept = builder.Len()
		}
	}
	return newToken(start, end, script.TokenTypePreprocArg, builder.String()[:kept])
}

func (self *lexerFileAGSTokens) readDirective(ctx context.Context, start script.Location) (optional.Optional[*script.Token], bool) {
	var builder strings.Builder
	for {
		n, ok := self.peek(ctx, 0)
		if !ok || !isIdentifierPart(n) {
			break
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(n)
	}
	name := builder.String()
	kind, ok := script.Directives[name]
	if !ok {
		self.fail(start, exc.CodeUnknownDirective, fmt.Sprintf("unknown preprocessor directive %q", "#"+name))
		return optional.None[*script.Token](), false
	}
	t := newToken(start, self.loc(), kind, "#"+name)
	switch kind {
	case script.TokenTypeDirectiveDefine:
		self.mode = directiveModeDefineName
	case script.TokenTypeDirectiveError, script.TokenTypeDirectiveRegion:
		self.mode = directiveModeArg
	case script.TokenTypeDirectiveIfdef, script.TokenTypeDirectiveIfndef:
		self.mode = directiveModeGuard
	case script.TokenTypeDirectiveIfver, script.TokenTypeDirectiveIfnver:
		self.mode = directiveModeVersion
	case script.TokenTypeDirectiveEndif, script.TokenTypeDirectiveEndregion:
		t.EndsLine = true
	}
	return self.emit(t), true
}

func (self *lexerFileAGSTokens) readCommentLine(ctx context.Context, start script.Location) optional.Optional[*script.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString("//")
	for {
		n, ok := self.peek(ctx, 0)
		if !ok || n == '\n' || (n == '\r' && self.peekIs(ctx, 1, '\n')) {
			break
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(n)
	}
	// Comments are trivia and must not disturb the directive line marker.
	return optional.Some(newToken(start, self.loc(), script.TokenTypeComment, builder.String()))
}

func (self *lexerFileAGSTokens) readCommentBlock(ctx context.Context, start script.Location) (optional.Optional[*script.Token], bool) {
	var builder strings.Builder
	_, _ = builder.WriteString("/*")
	for {
		n, ok := self.peek(ctx, 0)
		if !ok {
			self.fail(start, exc.CodeUnterminatedComment, "unterminated block comment")
			return optional.None[*script.Token](), false
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(n)
		if n == '*' && self.accept(ctx, '/') {
			_, _ = builder.WriteRune('/')
			return optional.Some(newToken(start, self.loc(), script.TokenTypeComment, builder.String())), true
		}
	}
}

var backslashEscapes = map[rune]bool{
	'[':  true,
	'\\': true,
	'n':  true,
	'r':  true,
	'\'': true,
	'"':  true,
	'%':  true,
}

var formatConversions = map[rune]bool{
	'd': true, 'i': true, 'c': true, 's': true, 'f': true, 'x': true, 'X': true,
	'u': true, 'o': true, 'e': true, 'E': true, 'g': true, 'G': true, 'p': true,
}

// formatLength returns the length of a %-format specifier starting at the
// next unread code point (just after the '%'), or zero if there is none.
func (self *lexerFileAGSTokens) formatLength(ctx context.Context) int {
	var x uint8
	if self.peekIs(ctx, 0, '%') {
		return 1
	}
	for x < lexerAGSLookahead-2 {
		n, ok := self.peek(ctx, x)
		if !ok || !isDigit(n) {
			break
		}
		x = x + 1
	}
	if self.peekIs(ctx, x, '.') {
		x = x + 1
		for x < lexerAGSLookahead-2 {
			n, ok := self.peek(ctx, x)
			if !ok || !isDigit(n) {
				break
			}
			x = x + 1
		}
	}
	if n, ok := self.peek(ctx, x); ok && formatConversions[n] {
		return int(x) + 1
	}
	return 0
}

// readString lexes a string literal after its opening quote. The escape
// sequences are recorded as segments of the token value.
func (self *lexerFileAGSTokens) readString(ctx context.Context, start script.Location) (optional.Optional[*script.Token], bool) {
	var builder strings.Builder
	var escapes []script.Segment
	_, _ = builder.WriteRune('"')
	for {
		n, ok := self.peek(ctx, 0)
		if !ok || n == '\n' {
			self.fail(start, exc.CodeUnterminatedLiteral, "unterminated string literal")
			return optional.None[*script.Token](), false
		}
		escStart := builder.Len()
		here := self.loc()
		_ = self.next(ctx)
		_, _ = builder.WriteRune(n)
		switch n {
		case '"':
			t := newToken(start, self.loc(), script.TokenTypeString, builder.String())
			t.Escapes = escapes
			return self.emit(t), true
		case '[':
			escapes = append(escapes, script.Segment{Start: escStart, End: builder.Len()})
		case '\\':
			e, ok := self.peek(ctx, 0)
			if !ok || e == '\n' {
				continue
			}
			if !backslashEscapes[e] {
				if !self.fail(here, exc.CodeInvalidEscape, fmt.Sprintf("invalid escape sequence \\%c", e)) {
					return optional.None[*script.Token](), false
				}
				continue
			}
			_ = self.next(ctx)
			_, _ = builder.WriteRune(e)
			escapes = append(escapes, script.Segment{Start: escStart, End: builder.Len()})
		case '%':
			size := self.formatLength(ctx)
			if size == 0 {
				continue
			}
			for x := 0; x < size; x = x + 1 {
				c := self.next(ctx)
				_, _ = builder.WriteRune(rune(c.Value()))
			}
			escapes = append(escapes, script.Segment{Start: escStart, End: builder.Len()})
		}
	}
}

// CharLiteral = "'" ( escape | character ) "'"
func (self *lexerFileAGSTokens) readChar(ctx context.Context, start script.Location) (optional.Optional[*script.Token], bool) {
	var builder strings.Builder
	var escapes []script.Segment
	_, _ = builder.WriteRune('\'')
	n, ok := self.peek(ctx, 0)
	if !ok || n == '\n' || n == '\'' {
		self.fail(start, exc.CodeUnterminatedLiteral, "empty or unterminated character literal")
		return optional.None[*script.Token](), false
	}
	here := self.loc()
	_ = self.next(ctx)
	_, _ = builder.WriteRune(n)
	if n == '\\' {
		e, ok := self.peek(ctx, 0)
		if !ok || e == '\n' {
			self.fail(start, exc.CodeUnterminatedLiteral, "unterminated character literal")
			return optional.None[*script.Token](), false
		}
		if !backslashEscapes[e] {
			if !self.fail(here, exc.CodeInvalidEscape, fmt.Sprintf("invalid escape sequence \\%c", e)) {
				return optional.None[*script.Token](), false
			}
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(e)
		escapes = append(escapes, script.Segment{Start: 1, End: builder.Len()})
	}
	if !self.accept(ctx, '\'') {
		self.fail(start, exc.CodeUnterminatedLiteral, "unterminated character literal")
		return optional.None[*script.Token](), false
	}
	_, _ = builder.WriteRune('\'')
	t := newToken(start, self.loc(), script.TokenTypeChar, builder.String())
	t.Escapes = escapes
	return self.emit(t), true
}

func newToken(start script.Location, end script.Location, kind script.TokenType, value string) *script.Token {
	return &script.Token{
		Span:  script.Span{Start: start, End: end},
		Type:  kind,
		Value: value,
	}
}
