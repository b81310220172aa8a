package ags

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/edmundito/agsscript/internal/config"
	"github.com/edmundito/agsscript/internal/cst"
	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/iter"
	"github.com/edmundito/agsscript/internal/optional"
	"github.com/edmundito/agsscript/internal/script"
)

type ParserAGS struct {
	reporter exc.Reporter
	config   config.Config
	logger   *slog.Logger
}

// NewParserAGS creates a parser that reports into reporter. A nil logger
// discards log output.
func NewParserAGS(reporter exc.Reporter, cfg config.Config, logger *slog.Logger) *ParserAGS {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ParserAGS{
		reporter: reporter,
		config:   cfg,
		logger:   logger.With(slog.String("component", "parser")),
	}
}

func (self *ParserAGS) PrepareParse(ctx context.Context, f script.LexerFile) (*parserAGSTokens, error) {
	ft, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	lexer, _ := ft.(haltable)

	var trivia *triviaAttacher
	var stream script.Iterator[*script.Token]
	if self.config.TrackTrivia {
		trivia = &triviaAttacher{iter: ft}
		stream = trivia
	} else {
		// Comments never take part in parse decisions, so when they are not
		// kept they are dropped before the parser sees them.
		stream = iter.NewIteratorFilter(ft, script.Filter[*script.Token](iter.FilterFunc[*script.Token](func(ctx context.Context, t *script.Token) bool {
			return t.Type != script.TokenTypeComment
		})))
	}

	uri := f.Path(ctx)
	return &parserAGSTokens{
		reporter:  self.reporter,
		ctx:       ctx,
		uri:       uri,
		logger:    self.logger.With(slog.String("uri", uri)),
		recover:   self.config.RecoverOnError,
		maxErrors: self.config.MaxErrors,
		lexer:     lexer,
		trivia:    trivia,
		tokens:    iter.NewBuffer(stream),
		scopes:    newValueScopes(),
		loc:       script.Location{Line: 1, Column: 1},
	}, nil
}

// Parse builds the tree of one file. Diagnostics go to the reporter. The
// returned tree is nil when a fatal error was reported; the error is only
// set when parsing could not run at all or was canceled.
func (self *ParserAGS) Parse(ctx context.Context, f script.LexerFile) (*cst.Node, error) {
	p, err := self.PrepareParse(ctx, f)
	if err != nil {
		return nil, err
	}
	tree, err := p.parse()
	if cerr := p.tokens.Close(ctx); cerr != nil && err == nil {
		err = exc.WrapUnknown(exc.Location{URI: p.uri, Location: p.loc}, cerr)
	}
	return tree, err
}

type haltable interface {
	Halted() bool
}

// triviaAttacher moves comments out of the token stream and onto the next
// significant token. Comments that follow the last token are kept for the
// root of the tree.
type triviaAttacher struct {
	iter    script.Iterator[*script.Token]
	pending []*script.Token
}

func (t *triviaAttacher) Next(ctx context.Context) optional.Optional[*script.Token] {
	for {
		tok := t.iter.Next(ctx)
		if !tok.IsPresent() {
			return tok
		}
		v := tok.Value()
		if v.Type == script.TokenTypeComment {
			t.pending = append(t.pending, v)
			continue
		}
		if len(t.pending) > 0 {
			v.Trivia = t.pending
			t.pending = nil
		}
		return tok
	}
}

func (t *triviaAttacher) Close(ctx context.Context) error {
	return t.iter.Close(ctx)
}

type parserAGSTokens struct {
	reporter  exc.Reporter
	ctx       context.Context
	uri       string
	logger    *slog.Logger
	recover   bool
	maxErrors int
	lexer     haltable
	trivia    *triviaAttacher
	tokens    *iter.Buffer[*script.Token]
	scopes    *valueScopes
	// this is the .Span.End of the last consumed token; we keep track of it
	// so that we can give a meaningful location to "unexpected EOF" errors.
	loc         script.Location
	speculating int
	failure     *parseFailure
	errors      int
	// aborted is set once a fatal error was reported and the tree must be
	// discarded. stopped is set when the error limit was reached.
	aborted  bool
	stopped  bool
	canceled bool
}

// parseFailure is the furthest point any parse attempt reached before
// failing, with everything that would have been accepted there.
type parseFailure struct {
	index    int
	token    *script.Token
	loc      script.Location
	expected []string
	code     string
	message  string
	// sticky failures win over failures that got further.
	sticky bool
}

type parserMark struct {
	tokens int
	scopes int
	loc    script.Location
}

func (p *parserAGSTokens) mark() parserMark {
	return parserMark{tokens: p.tokens.Mark(), scopes: p.scopes.mark(), loc: p.loc}
}

func (p *parserAGSTokens) rewind(m parserMark) {
	p.tokens.Reset(m.tokens)
	p.scopes.rollback(m.scopes)
	p.loc = m.loc
}

// speculate runs parse and rewinds every side effect if it fails. Errors are
// never committed while speculating.
func (p *parserAGSTokens) speculate(parse func() *astNode) *astNode {
	start := p.mark()
	p.speculating = p.speculating + 1
	n := parse()
	p.speculating = p.speculating - 1
	if n == nil {
		p.rewind(start)
	}
	return n
}

func (p *parserAGSTokens) peekN(n int) *script.Token {
	return p.tokens.Peek(p.ctx, n).OrElse(nil)
}

func (p *parserAGSTokens) peek() *script.Token {
	return p.peekN(0)
}

// atN reports whether the token n positions ahead has one of the types.
func (p *parserAGSTokens) atN(n int, types ...script.TokenType) bool {
	t := p.peekN(n)
	return t != nil && slices.Contains(types, t.Type)
}

func (p *parserAGSTokens) at(types ...script.TokenType) bool {
	return p.atN(0, types...)
}

func (p *parserAGSTokens) advance() *script.Token {
	maybeToken := p.tokens.Next(p.ctx)
	if !maybeToken.IsPresent() {
		return nil
	}
	p.loc = maybeToken.Value().Span.End
	return maybeToken.Value()
}

// records a failure if the current token isn't of the expected type
// advances on success
func (p *parserAGSTokens) expectOne(expectedType script.TokenType) *script.Token {
	return p.expectOneOf(expectedType.String(), expectedType)
}

// records a failure naming expected if the current token isn't one of the
// given types. advances on success
func (p *parserAGSTokens) expectOneOf(expected string, expectedTypes ...script.TokenType) *script.Token {
	if !p.at(expectedTypes...) {
		p.fail(expected)
		return nil
	}
	return p.advance()
}

// accept consumes the current token as an anonymous leaf if it has the given
// type.
func (p *parserAGSTokens) accept(tt script.TokenType) *astNode {
	if !p.at(tt) {
		return nil
	}
	return newAnonymous(p.advance())
}

// expectLeaf is expectOne wrapped into a leaf. An empty kind makes the leaf
// anonymous.
func (p *parserAGSTokens) expectLeaf(kind string, expected string, expectedTypes ...script.TokenType) *astNode {
	t := p.expectOneOf(expected, expectedTypes...)
	if t == nil {
		return nil
	}
	return newLeaf(kind, t)
}

func (p *parserAGSTokens) expectPunct(tt script.TokenType) *astNode {
	return p.expectLeaf("", tt.String(), tt)
}

func (p *parserAGSTokens) fail(expected ...string) {
	p.record(&parseFailure{expected: expected})
}

func (p *parserAGSTokens) failWith(code string, message string) {
	p.record(&parseFailure{code: code, message: message})
}

func (p *parserAGSTokens) record(f *parseFailure) {
	f.index = p.tokens.Mark()
	f.token = p.peek()
	f.loc = p.loc
	if f.token != nil {
		f.loc = f.token.Span.Start
	}
	cur := p.failure
	switch {
	case cur == nil:
		p.failure = f
	case cur.sticky != f.sticky:
		if f.sticky {
			p.failure = f
		}
	case f.index > cur.index:
		p.failure = f
	case f.index < cur.index:
	case f.code != "" && cur.code == "":
		p.failure = f
	case f.code == "" && cur.code == "":
		for _, e := range f.expected {
			if !slices.Contains(cur.expected, e) {
				cur.expected = append(cur.expected, e)
			}
		}
	}
}

func (p *parserAGSTokens) lexerHalted() bool {
	return p.lexer != nil && p.lexer.Halted()
}

func (p *parserAGSTokens) location(loc script.Location) exc.Location {
	return exc.Location{URI: p.uri, Location: loc}
}

func (p *parserAGSTokens) exception(f *parseFailure) exc.Exception {
	code := f.code
	found := "end of file"
	if f.token != nil {
		found = fmt.Sprintf("%q", f.token.Value)
	}
	if code == "" {
		switch {
		case f.token == nil:
			code = exc.CodeUnexpectedEOF
		case len(f.expected) == 1 && f.expected[0] == script.TokenTypeSemicolon.String():
			code = exc.CodeMissingTerminator
		default:
			code = exc.CodeUnexpectedToken
		}
	}
	return exc.NewSyntax(p.location(f.loc), code, f.message, found, f.expected)
}

// commitFailure reports the furthest failure recorded since the last
// successful item. It returns false when parsing must stop.
func (p *parserAGSTokens) commitFailure() bool {
	f := p.failure
	p.failure = nil
	if p.lexerHalted() {
		// The lexer already reported the cause.
		p.aborted = true
		return false
	}
	if f == nil {
		f = &parseFailure{index: p.tokens.Mark(), token: p.peek(), loc: p.loc}
	}
	p.errors = p.errors + 1
	if p.reporter.Report(p.exception(f)) != nil {
		p.aborted = true
		return false
	}
	if p.maxErrors > 0 && p.errors >= p.maxErrors {
		_ = p.reporter.Report(exc.NewWarning(p.location(f.loc), exc.CodeTooManyErrors, fmt.Sprintf("stopped after %d errors", p.errors)))
		p.logger.Debug("error limit reached", slog.Int("errors", p.errors))
		p.stopped = true
		return false
	}
	return true
}

func (p *parserAGSTokens) recovering() bool {
	return p.recover && p.speculating == 0
}

type syncLevel uint8

const (
	syncTopLevel syncLevel = iota
	syncBlock
	syncFieldList
	syncEnumeratorList
)

var topLevelStarters = []script.TokenType{
	script.TokenTypeKeywordStruct,
	script.TokenTypeKeywordManaged,
	script.TokenTypeKeywordEnum,
	script.TokenTypeKeywordImport,
	script.TokenTypeKeywordExport,
	script.TokenTypeKeywordFunction,
}

var statementStarters = []script.TokenType{
	script.TokenTypeKeywordIf,
	script.TokenTypeKeywordSwitch,
	script.TokenTypeKeywordWhile,
	script.TokenTypeKeywordDo,
	script.TokenTypeKeywordFor,
	script.TokenTypeKeywordReturn,
	script.TokenTypeKeywordBreak,
	script.TokenTypeKeywordContinue,
	script.TokenTypeKeywordCase,
	script.TokenTypeKeywordDefault,
}

// synchronize skips to the next item boundary after a failed item that
// started at start. A terminating ';' (or ',' in enumerator lists) is
// consumed; a closing brace, a directive or a keyword that starts a new item
// is not.
func (p *parserAGSTokens) synchronize(start parserMark, level syncLevel) {
	if p.tokens.Mark() == start.tokens && p.peek() != nil && !p.at(script.TokenTypeCurlyClose) && !p.peek().Type.IsDirective() {
		_ = p.advance()
	}
	for {
		t := p.peek()
		if t == nil || t.Type.IsDirective() {
			return
		}
		switch {
		case t.Type == script.TokenTypeSemicolon:
			_ = p.advance()
			return
		case t.Type == script.TokenTypeComma && level == syncEnumeratorList:
			_ = p.advance()
			return
		case t.Type == script.TokenTypeCurlyClose && level != syncTopLevel:
			return
		case level == syncTopLevel && slices.Contains(topLevelStarters, t.Type):
			return
		case level == syncBlock && slices.Contains(statementStarters, t.Type):
			return
		}
		_ = p.advance()
	}
}

// parseItems appends items to parent until done reports true or the input
// ends. It returns false if parsing must stop. In recovery mode failed items
// are reported and skipped.
func (p *parserAGSTokens) parseItems(parent *astNode, item func() *astNode, level syncLevel, done func() bool) bool {
	for p.peek() != nil && !done() {
		if level == syncTopLevel && p.speculating == 0 {
			if err := p.ctx.Err(); err != nil {
				p.canceled = true
				return false
			}
			p.scopes.commit()
		}
		start := p.mark()
		n := item()
		if n != nil {
			parent.add(n)
			if p.failure != nil && p.failure.index < p.tokens.Mark() {
				p.failure = nil
			}
			continue
		}
		if !p.recovering() || p.stopped {
			return false
		}
		if !p.commitFailure() {
			return false
		}
		p.synchronize(start, level)
		p.logger.Debug("recovered from syntax error", slog.Int("errors", p.errors), slog.String("at", p.loc.String()))
	}
	return true
}

func noTerminator() bool {
	return false
}

// SourceFile = { TopLevelItem }
func (p *parserAGSTokens) parse() (*cst.Node, error) {
	p.logger.Debug("parsing")
	root := newNode("source_file")
	ok := p.parseItems(root, p.parseTopLevelItem, syncTopLevel, noTerminator)
	if p.canceled {
		return nil, exc.Wrap(p.location(p.loc), exc.CodeCanceled, p.ctx.Err())
	}
	if !ok && !p.stopped && !p.aborted {
		_ = p.commitFailure()
		p.aborted = true
	}
	if p.aborted || p.lexerHalted() {
		p.logger.Debug("discarding tree", slog.Int("errors", p.errors))
		return nil, nil
	}
	var trailing []*script.Token
	if p.trivia != nil {
		trailing = p.trivia.pending
	}
	p.logger.Debug("parsed", slog.Int("errors", p.errors), slog.Int("items", len(root.children)))
	return toCST(root, trailing), nil
}

// TopLevelItem = FunctionDefinition | ImportDeclaration | ExportDeclaration
//
//	| EnumDeclaration | StructDeclaration | Declaration | EmptyDeclaration
//	| Preprocessor
func (p *parserAGSTokens) parseTopLevelItem() *astNode {
	t := p.peek()
	if t.Type.IsDirective() {
		return p.parsePreprocessor(contextTopLevel)
	}
	switch t.Type {
	case script.TokenTypeKeywordImport:
		return p.parseImportDeclaration()
	case script.TokenTypeKeywordExport:
		return p.parseExportDeclaration()
	case script.TokenTypeKeywordEnum:
		return p.parseEnumDeclaration()
	case script.TokenTypeKeywordStruct, script.TokenTypeKeywordManaged:
		return p.parseStructDeclaration()
	case script.TokenTypeIdentifier, script.TokenTypePrimitiveType,
		script.TokenTypeKeywordFunction, script.TokenTypeKeywordVoid,
		script.TokenTypeKeywordProtected, script.TokenTypeKeywordStatic:
		return p.choose(
			alternative{name: "function_definition", rank: rankFunctionType, parse: p.parseFunctionHead, then: p.parseFunctionBody},
			alternative{name: "declaration", rank: rankDeclarator, parse: p.parseDeclaration},
			alternative{name: "empty_declaration", rank: rankTypeSpecifier, parse: p.parseEmptyDeclaration},
		)
	}
	p.fail("declaration")
	return nil
}

// BlockItem = Declaration | Statement | EmptyDeclaration | Preprocessor
func (p *parserAGSTokens) parseBlockItem() *astNode {
	t := p.peek()
	if t.Type.IsDirective() {
		return p.parsePreprocessor(contextBlock)
	}
	switch t.Type {
	case script.TokenTypeIdentifier, script.TokenTypePrimitiveType:
		return p.choose(
			alternative{name: "declaration", rank: rankDeclarator, parse: p.parseDeclaration},
			alternative{name: "empty_declaration", rank: rankTypeSpecifier, parse: p.parseEmptyDeclaration},
			alternative{name: "expression_statement", rank: rankExpression, parse: p.parseExpressionStatement},
		)
	}
	return p.parseStatement()
}
