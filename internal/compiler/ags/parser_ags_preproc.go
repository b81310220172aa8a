package ags

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/edmundito/agsscript/internal/cst"
	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/script"
)

// directiveContext is the list a directive appears in. It decides what a
// conditional block may contain.
type directiveContext uint8

const (
	contextTopLevel directiveContext = iota
	contextBlock
	contextFieldList
	contextEnumeratorList
)

func (c directiveContext) suffix() string {
	switch c {
	case contextBlock:
		return "_in_block"
	case contextFieldList:
		return "_in_field_declaration_list"
	case contextEnumeratorList:
		return "_in_enumerator_list"
	}
	return ""
}

func (c directiveContext) expected() string {
	switch c {
	case contextFieldList:
		return "field declaration"
	case contextEnumeratorList:
		return "enumerator"
	}
	return "declaration"
}

func (p *parserAGSTokens) contextItems(c directiveContext) (func() *astNode, syncLevel) {
	switch c {
	case contextBlock:
		return p.parseBlockItem, syncBlock
	case contextFieldList:
		return p.parseFieldItem, syncFieldList
	case contextEnumeratorList:
		return p.parseEnumeratorItem, syncEnumeratorList
	}
	return p.parseTopLevelItem, syncTopLevel
}

var conditionalDirectives = []script.TokenType{
	script.TokenTypeDirectiveIfdef,
	script.TokenTypeDirectiveIfndef,
	script.TokenTypeDirectiveIfver,
	script.TokenTypeDirectiveIfnver,
}

// Preprocessor = Define | Error | Conditional | Region
//
// Define and Error only appear among top level and block items.
func (p *parserAGSTokens) parsePreprocessor(c directiveContext) *astNode {
	t := p.peek()
	switch t.Type {
	case script.TokenTypeDirectiveDefine, script.TokenTypeDirectiveError:
		if c == contextFieldList || c == contextEnumeratorList {
			p.fail(c.expected())
			return nil
		}
		if t.Type == script.TokenTypeDirectiveDefine {
			return p.parseDefine()
		}
		return p.parseError()
	case script.TokenTypeDirectiveIfdef, script.TokenTypeDirectiveIfndef,
		script.TokenTypeDirectiveIfver, script.TokenTypeDirectiveIfnver:
		return p.parseConditional(c)
	case script.TokenTypeDirectiveRegion:
		return p.parseRegion(c)
	}
	p.failWith(exc.CodeUnbalancedDirective, fmt.Sprintf("%q without a matching opening directive", t.Value))
	return nil
}

// Define = "#define" identifier [ preproc_arg ]
func (p *parserAGSTokens) parseDefine() *astNode {
	directive := newAnonymous(p.advance())
	name := p.expectLeaf("identifier", "identifier", script.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	n := newNode("preproc_def", directive, name)
	if p.at(script.TokenTypePreprocArg) {
		n.add(newLeaf("preproc_arg", p.advance()))
	}
	return n
}

// Error = "#error" preproc_arg
func (p *parserAGSTokens) parseError() *astNode {
	directive := newAnonymous(p.advance())
	message := p.expectLeaf("preproc_arg", "message", script.TokenTypePreprocArg)
	if message == nil {
		return nil
	}
	return newNode("preproc_error", directive, message)
}

// parseConditionalOpening parses a conditional directive and its guard into
// a node of the given kind family ("preproc_ifdef" or "preproc_ifver" plus
// suffix).
func (p *parserAGSTokens) parseConditionalOpening(suffix string) *astNode {
	directive := p.advance()
	guard := &cst.Guard{
		Directive: directive.Value,
		Negated: directive.Type == script.TokenTypeDirectiveIfndef ||
			directive.Type == script.TokenTypeDirectiveIfnver,
	}
	if directive.Type == script.TokenTypeDirectiveIfdef || directive.Type == script.TokenTypeDirectiveIfndef {
		name := p.expectLeaf("identifier", "identifier", script.TokenTypeIdentifier)
		if name == nil {
			return nil
		}
		guard.Name = name.token.Value
		n := newNode("preproc_ifdef"+suffix, newAnonymous(directive), name)
		n.guard = guard
		return n
	}
	t := p.peek()
	if t == nil || t.Type != script.TokenTypeVersion {
		p.fail("version")
		return nil
	}
	version, err := semver.NewVersion(t.Value)
	if err != nil {
		p.failWith(exc.CodeInvalidVersion, fmt.Sprintf("invalid version %q: %s", t.Value, err))
		return nil
	}
	guard.Literal = t.Value
	guard.Version = version
	n := newNode("preproc_ifver"+suffix, newAnonymous(directive), newLeaf("version_literal", p.advance()))
	n.guard = guard
	return n
}

// expectTerminator consumes the directive that closes opening, or reports
// the block as unbalanced.
func (p *parserAGSTokens) expectTerminator(opening *script.Token, terminator script.TokenType) *astNode {
	if !p.at(terminator) {
		p.failWith(exc.CodeUnbalancedDirective, fmt.Sprintf("%q at %s is missing its %s", opening.Value, opening.Span.Start, terminator))
		return nil
	}
	return newAnonymous(p.advance())
}

// blockDone returns the terminator test of a directive block. Blocks inside
// braces also end at the closing brace so that a missing terminator is
// reported as such.
func (p *parserAGSTokens) blockDone(c directiveContext, terminator script.TokenType) func() bool {
	return func() bool {
		return p.at(terminator) || (c != contextTopLevel && p.atCurlyClose())
	}
}

// Conditional = ( "#ifdef" | "#ifndef" ) identifier { Item } "#endif"
//
//	| ( "#ifver" | "#ifnver" ) version_literal { Item } "#endif"
func (p *parserAGSTokens) parseConditional(c directiveContext) *astNode {
	opening := p.peek()
	n := p.parseConditionalOpening(c.suffix())
	if n == nil {
		return nil
	}
	item, level := p.contextItems(c)
	if !p.parseItems(n, item, level, p.blockDone(c, script.TokenTypeDirectiveEndif)) {
		return nil
	}
	end := p.expectTerminator(opening, script.TokenTypeDirectiveEndif)
	if end == nil {
		return nil
	}
	return n.add(end)
}

// Region = "#region" [ preproc_arg ] { Item } "#endregion"
func (p *parserAGSTokens) parseRegion(c directiveContext) *astNode {
	opening := p.advance()
	n := newNode("preproc_region"+c.suffix(), newAnonymous(opening))
	n.guard = &cst.Guard{Directive: opening.Value}
	if p.at(script.TokenTypePreprocArg) {
		arg := p.advance()
		n.guard.Description = arg.Value
		n.add(newLeaf("preproc_arg", arg))
	}
	item, level := p.contextItems(c)
	if !p.parseItems(n, item, level, p.blockDone(c, script.TokenTypeDirectiveEndregion)) {
		return nil
	}
	end := p.expectTerminator(opening, script.TokenTypeDirectiveEndregion)
	if end == nil {
		return nil
	}
	return n.add(end)
}

// ifPreprocessorAhead reports whether a conditional block that continues an
// if statement with "else" comes next.
func (p *parserAGSTokens) ifPreprocessorAhead() bool {
	return p.at(conditionalDirectives...) && p.atN(2, script.TokenTypeKeywordElse)
}

// IfPreprocessor = Opening "else" Statement "#endif"
//
// Each branch is kept; which one is live is never decided here.
func (p *parserAGSTokens) parseIfPreprocessor() *astNode {
	opening := p.peek()
	n := p.parseConditionalOpening("_in_if")
	if n == nil {
		return nil
	}
	elseKeyword := p.expectPunct(script.TokenTypeKeywordElse)
	if elseKeyword == nil {
		return nil
	}
	alt := p.parseStatement()
	if alt == nil {
		return nil
	}
	end := p.expectTerminator(opening, script.TokenTypeDirectiveEndif)
	if end == nil {
		return nil
	}
	return n.add(elseKeyword, alt, end)
}
