package ags

import (
	"github.com/edmundito/agsscript/internal/script"
)

// Statement = CompoundStatement | IfStatement | SwitchStatement | WhileStatement
//
//	| DoStatement | ForStatement | ReturnStatement | BreakStatement
//	| ContinueStatement | ExpressionStatement
func (p *parserAGSTokens) parseStatement() *astNode {
	t := p.peek()
	if t == nil {
		p.fail("statement")
		return nil
	}
	switch t.Type {
	case script.TokenTypeCurlyOpen:
		return p.parseCompoundStatement()
	case script.TokenTypeKeywordIf:
		return p.parseIfStatement()
	case script.TokenTypeKeywordSwitch:
		return p.parseSwitchStatement()
	case script.TokenTypeKeywordWhile:
		return p.parseWhileStatement()
	case script.TokenTypeKeywordDo:
		return p.parseDoStatement()
	case script.TokenTypeKeywordFor:
		return p.parseForStatement()
	case script.TokenTypeKeywordReturn:
		return p.parseReturnStatement()
	case script.TokenTypeKeywordBreak:
		return p.parseJumpStatement("break_statement")
	case script.TokenTypeKeywordContinue:
		return p.parseJumpStatement("continue_statement")
	}
	return p.parseExpressionStatement()
}

// CompoundStatement = "{" { BlockItem } "}"
func (p *parserAGSTokens) parseCompoundStatement() *astNode {
	open := p.expectPunct(script.TokenTypeCurlyOpen)
	if open == nil {
		return nil
	}
	n := newNode("compound_statement", open)
	p.scopes.push()
	ok := p.parseItems(n, p.parseBlockItem, syncBlock, p.atCurlyClose)
	p.scopes.pop()
	if !ok {
		return nil
	}
	end := p.expectPunct(script.TokenTypeCurlyClose)
	if end == nil {
		return nil
	}
	return n.add(end)
}

// ExpressionStatement = [ Expression ] ";"
func (p *parserAGSTokens) parseExpressionStatement() *astNode {
	n := newNode("expression_statement")
	if !p.at(script.TokenTypeSemicolon) {
		e := p.parseExpression()
		if e == nil {
			return nil
		}
		n.add(e)
	}
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return n.add(semi)
}

// IfStatement = "if" ParenthesizedExpression Statement { IfPreprocessor }
//
//	[ "else" Statement ]
//
// An else binds to the nearest if that can still take one.
func (p *parserAGSTokens) parseIfStatement() *astNode {
	keyword := newAnonymous(p.advance())
	cond := p.parseParenthesized()
	if cond == nil {
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	n := newNode("if_statement", keyword, cond, body)
	for p.ifPreprocessorAhead() {
		block := p.parseIfPreprocessor()
		if block == nil {
			return nil
		}
		n.add(block)
	}
	if elseKeyword := p.accept(script.TokenTypeKeywordElse); elseKeyword != nil {
		alt := p.parseStatement()
		if alt == nil {
			return nil
		}
		n.add(elseKeyword, alt)
	}
	return n
}

// SwitchStatement = "switch" ParenthesizedExpression SwitchBody
//
// SwitchBody = "{" { CaseStatement | BlockItem } "}"
func (p *parserAGSTokens) parseSwitchStatement() *astNode {
	keyword := newAnonymous(p.advance())
	cond := p.parseParenthesized()
	if cond == nil {
		return nil
	}
	open := p.expectPunct(script.TokenTypeCurlyOpen)
	if open == nil {
		return nil
	}
	body := newNode("switch_body", open)
	p.scopes.push()
	ok := p.parseItems(body, p.parseSwitchItem, syncBlock, p.atCurlyClose)
	p.scopes.pop()
	if !ok {
		return nil
	}
	end := p.expectPunct(script.TokenTypeCurlyClose)
	if end == nil {
		return nil
	}
	return newNode("switch_statement", keyword, cond, body.add(end))
}

func (p *parserAGSTokens) parseSwitchItem() *astNode {
	if p.at(script.TokenTypeKeywordCase, script.TokenTypeKeywordDefault) {
		return p.parseCaseStatement()
	}
	return p.parseBlockItem()
}

func (p *parserAGSTokens) atCaseEnd() bool {
	return p.at(script.TokenTypeKeywordCase, script.TokenTypeKeywordDefault, script.TokenTypeCurlyClose)
}

// CaseStatement = ( "case" Expression | "default" ) ":" { BlockItem }
//
// The statements of a case run until the next label or the end of the
// switch. Falling through is not marked in the tree.
func (p *parserAGSTokens) parseCaseStatement() *astNode {
	label := p.advance()
	n := newNode("case_statement", newAnonymous(label))
	if label.Type == script.TokenTypeKeywordCase {
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		n.add(value)
	}
	colon := p.expectPunct(script.TokenTypeColon)
	if colon == nil {
		return nil
	}
	n.add(colon)
	if !p.parseItems(n, p.parseBlockItem, syncBlock, p.atCaseEnd) {
		return nil
	}
	return n
}

// WhileStatement = "while" ParenthesizedExpression Statement
func (p *parserAGSTokens) parseWhileStatement() *astNode {
	keyword := newAnonymous(p.advance())
	cond := p.parseParenthesized()
	if cond == nil {
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return newNode("while_statement", keyword, cond, body)
}

// DoStatement = "do" Statement "while" ParenthesizedExpression [ ";" ]
func (p *parserAGSTokens) parseDoStatement() *astNode {
	keyword := newAnonymous(p.advance())
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	while := p.expectPunct(script.TokenTypeKeywordWhile)
	if while == nil {
		return nil
	}
	cond := p.parseParenthesized()
	if cond == nil {
		return nil
	}
	return newNode("do_statement", keyword, body, while, cond, p.accept(script.TokenTypeSemicolon))
}

// ForStatement = "for" "(" ( Declaration | [ Expression ] ";" ) [ Expression ] ";"
//
//	[ Expression { "," Expression } ] ")" Statement
func (p *parserAGSTokens) parseForStatement() *astNode {
	keyword := newAnonymous(p.advance())
	open := p.expectPunct(script.TokenTypeParenOpen)
	if open == nil {
		return nil
	}
	n := newNode("for_statement", keyword, open)
	// Names declared in the initializer are local to the loop.
	p.scopes.push()
	defer p.scopes.pop()
	init := p.choose(
		alternative{name: "declaration", rank: rankDeclarator, parse: p.parseDeclaration},
		alternative{name: "expression", rank: rankExpression, parse: p.parseForInit},
	)
	if init == nil {
		return nil
	}
	n.add(init)
	if !p.at(script.TokenTypeSemicolon) {
		cond := p.parseExpression()
		if cond == nil {
			return nil
		}
		n.add(cond)
	}
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	n.add(semi)
	if !p.at(script.TokenTypeParenClose) {
		for {
			update := p.parseExpression()
			if update == nil {
				return nil
			}
			n.add(update)
			comma := p.accept(script.TokenTypeComma)
			if comma == nil {
				p.fail(script.TokenTypeComma.String())
				break
			}
			n.add(comma)
		}
	}
	end := p.expectPunct(script.TokenTypeParenClose)
	if end == nil {
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return n.add(end, body)
}

// parseForInit parses the expression form of a for initializer. Its nodes
// are spliced into the for statement.
func (p *parserAGSTokens) parseForInit() *astNode {
	n := newNode("_for_init")
	if !p.at(script.TokenTypeSemicolon) {
		e := p.parseExpression()
		if e == nil {
			return nil
		}
		n.add(e)
	}
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return n.add(semi)
}

// ReturnStatement = "return" [ Expression ] ";"
func (p *parserAGSTokens) parseReturnStatement() *astNode {
	n := newNode("return_statement", newAnonymous(p.advance()))
	if !p.at(script.TokenTypeSemicolon) {
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		n.add(value)
	}
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return n.add(semi)
}

// BreakStatement = "break" ";"
//
// ContinueStatement = "continue" ";"
func (p *parserAGSTokens) parseJumpStatement(kind string) *astNode {
	keyword := newAnonymous(p.advance())
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return newNode(kind, keyword, semi)
}
