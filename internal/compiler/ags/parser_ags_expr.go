package ags

import (
	"github.com/edmundito/agsscript/internal/script"
)

// Expression = BinaryExpression [ AssignmentOperator Expression ]
func (p *parserAGSTokens) parseExpression() *astNode {
	left := p.parseBinary(precLowestBinary)
	if left == nil {
		return nil
	}
	t := p.peek()
	if t == nil {
		return left
	}
	op, ok := assignmentOperators[t.Type]
	if !ok {
		return left
	}
	operator := newAnonymous(p.advance())
	right := p.parseExpression()
	if right == nil {
		return nil
	}
	return newNode(op.kind, left, operator, right)
}

// parseBinary climbs the precedence table. Every binary operator is left
// associative, so the right operand only takes operators that bind tighter.
func (p *parserAGSTokens) parseBinary(minPrec int) *astNode {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		t := p.peek()
		if t == nil {
			return left
		}
		op, ok := binaryOperators[t.Type]
		if !ok || op.prec < minPrec {
			return left
		}
		operator := newAnonymous(p.advance())
		right := p.parseBinary(op.prec + 1)
		if right == nil {
			return nil
		}
		left = newNode(op.kind, left, operator, right)
	}
}

// UnaryExpression = PrefixOperator UnaryExpression | NewExpression | PostfixExpression
func (p *parserAGSTokens) parseUnary() *astNode {
	t := p.peek()
	if t == nil {
		p.fail("expression")
		return nil
	}
	if op, ok := prefixOperators[t.Type]; ok {
		operator := newAnonymous(p.advance())
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return newNode(op.kind, operator, operand)
	}
	if t.Type == script.TokenTypeKeywordNew {
		return p.parseNewExpression()
	}
	return p.parsePostfix()
}

// NewExpression = "new" ( primitive_type | type_identifier ) [ "[" Expression "]" ]
func (p *parserAGSTokens) parseNewExpression() *astNode {
	n := newNode("new_expression", newAnonymous(p.advance()))
	switch {
	case p.at(script.TokenTypePrimitiveType):
		n.add(newLeaf("primitive_type", p.advance()))
	case p.at(script.TokenTypeIdentifier):
		n.add(newLeaf("type_identifier", p.advance()))
	default:
		p.fail("type")
		return nil
	}
	if !p.at(script.TokenTypeSquareOpen) {
		return n
	}
	open := newAnonymous(p.advance())
	size := p.parseExpression()
	if size == nil {
		return nil
	}
	end := p.expectPunct(script.TokenTypeSquareClose)
	if end == nil {
		return nil
	}
	return n.add(open, size, end)
}

// PostfixExpression = PrimaryExpression { "[" Expression "]" | ArgumentList
//
//	| "." field_identifier | "++" | "--" }
func (p *parserAGSTokens) parsePostfix() *astNode {
	n := p.parsePrimary()
	if n == nil {
		return nil
	}
	for {
		t := p.peek()
		if t == nil {
			return n
		}
		op, ok := postfixOperators[t.Type]
		if !ok {
			return n
		}
		switch t.Type {
		case script.TokenTypeSquareOpen:
			open := newAnonymous(p.advance())
			index := p.parseExpression()
			if index == nil {
				return nil
			}
			end := p.expectPunct(script.TokenTypeSquareClose)
			if end == nil {
				return nil
			}
			n = newNode(op.kind, n, open, index, end)
		case script.TokenTypeParenOpen:
			args := p.parseArgumentList()
			if args == nil {
				return nil
			}
			n = newNode(op.kind, n, args)
		case script.TokenTypeDot:
			dot := newAnonymous(p.advance())
			field := p.expectLeaf("field_identifier", "identifier", script.TokenTypeIdentifier)
			if field == nil {
				return nil
			}
			n = newNode(op.kind, n, dot, field)
		default:
			n = newNode(op.kind, n, newAnonymous(p.advance()))
		}
	}
}

// ArgumentList = "(" [ Expression { "," Expression } ] ")"
func (p *parserAGSTokens) parseArgumentList() *astNode {
	n := newNode("argument_list", newAnonymous(p.advance()))
	if !p.at(script.TokenTypeParenClose) {
		for {
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			n.add(arg)
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
	return n.add(end)
}

// PrimaryExpression = identifier | Literal | ConcatenatedString | "this"
//
//	| ParenthesizedExpression
func (p *parserAGSTokens) parsePrimary() *astNode {
	t := p.peek()
	if t == nil {
		p.fail("expression")
		return nil
	}
	switch t.Type {
	case script.TokenTypeIdentifier:
		return newLeaf("identifier", p.advance())
	case script.TokenTypeString:
		return p.parseStrings()
	case script.TokenTypeKeywordThis:
		return newLeaf("this", p.advance())
	case script.TokenTypeParenOpen:
		return p.parseParenthesized()
	}
	if kind, ok := literalTypes[t.Type]; ok {
		return newLeaf(kind, p.advance())
	}
	p.fail("expression")
	return nil
}

// ConcatenatedString = string_literal string_literal { string_literal }
func (p *parserAGSTokens) parseStrings() *astNode {
	first := newLeaf("string_literal", p.advance())
	if !p.at(script.TokenTypeString) {
		return first
	}
	n := newNode("concatenated_string", first)
	for p.at(script.TokenTypeString) {
		n.add(newLeaf("string_literal", p.advance()))
	}
	return n
}

// ParenthesizedExpression = "(" ( Expression | CommaExpression ) ")"
func (p *parserAGSTokens) parseParenthesized() *astNode {
	open := p.expectPunct(script.TokenTypeParenOpen)
	if open == nil {
		return nil
	}
	inner := p.parseCommaExpression()
	if inner == nil {
		return nil
	}
	end := p.expectPunct(script.TokenTypeParenClose)
	if end == nil {
		return nil
	}
	return newNode("parenthesized_expression", open, inner, end)
}

// CommaExpression = Expression [ "," CommaExpression ]
//
// A single expression is returned as is.
func (p *parserAGSTokens) parseCommaExpression() *astNode {
	left := p.parseExpression()
	if left == nil {
		return nil
	}
	comma := p.accept(script.TokenTypeComma)
	if comma == nil {
		p.fail(script.TokenTypeComma.String())
		return left
	}
	right := p.parseCommaExpression()
	if right == nil {
		return nil
	}
	return newNode("comma_expression", left, comma, right)
}

// InitializerList = "{" [ InitializerItem { "," InitializerItem } [ "," ] ] "}"
func (p *parserAGSTokens) parseInitializerList() *astNode {
	n := newNode("initializer_list", newAnonymous(p.advance()))
	for !p.at(script.TokenTypeCurlyClose) {
		item := p.parseInitializerItem()
		if item == nil {
			return nil
		}
		n.add(item)
		comma := p.accept(script.TokenTypeComma)
		if comma == nil {
			p.fail(script.TokenTypeComma.String())
			break
		}
		n.add(comma)
	}
	end := p.expectPunct(script.TokenTypeCurlyClose)
	if end == nil {
		return nil
	}
	return n.add(end)
}

// InitializerItem = InitializerList | InitializerPair | Expression
func (p *parserAGSTokens) parseInitializerItem() *astNode {
	switch {
	case p.at(script.TokenTypeCurlyOpen):
		return p.parseInitializerList()
	case p.at(script.TokenTypeSquareOpen, script.TokenTypeDot):
		return p.parseInitializerPair()
	}
	return p.parseExpression()
}

// InitializerPair = Designator { Designator } "=" ( Expression | InitializerList )
//
// Designator = "[" Expression "]" | "." field_identifier
func (p *parserAGSTokens) parseInitializerPair() *astNode {
	n := newNode("initializer_pair")
	for p.at(script.TokenTypeSquareOpen, script.TokenTypeDot) {
		if p.at(script.TokenTypeDot) {
			dot := newAnonymous(p.advance())
			field := p.expectLeaf("field_identifier", "identifier", script.TokenTypeIdentifier)
			if field == nil {
				return nil
			}
			n.add(newNode("field_designator", dot, field))
			continue
		}
		open := newAnonymous(p.advance())
		index := p.parseExpression()
		if index == nil {
			return nil
		}
		end := p.expectPunct(script.TokenTypeSquareClose)
		if end == nil {
			return nil
		}
		n.add(newNode("subscript_designator", open, index, end))
	}
	eq := p.expectPunct(script.TokenTypeEqual)
	if eq == nil {
		return nil
	}
	var value *astNode
	if p.at(script.TokenTypeCurlyOpen) {
		value = p.parseInitializerList()
	} else {
		value = p.parseExpression()
	}
	if value == nil {
		return nil
	}
	return n.add(eq, value)
}
