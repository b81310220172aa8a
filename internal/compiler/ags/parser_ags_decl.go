package ags

import (
	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/script"
)

// declaratorFamily selects the node kinds a declarator is built from. The
// families share one shape and only differ in their leaves.
type declaratorFamily uint8

const (
	declaratorFree declaratorFamily = iota
	declaratorField
	// declaratorParameter also accepts a bare "*" with no name.
	declaratorParameter
)

func (f declaratorFamily) identifierKind() string {
	if f == declaratorField {
		return "field_identifier"
	}
	return "identifier"
}

func (f declaratorFamily) pointerKind() string {
	if f == declaratorField {
		return "pointer_field_declarator"
	}
	return "pointer_declarator"
}

func (f declaratorFamily) arrayKind() string {
	if f == declaratorField {
		return "array_field_declarator"
	}
	return "array_declarator"
}

type functionFamily uint8

const (
	functionDefinition functionFamily = iota
	functionField
	functionImport
)

func (f functionFamily) kind() string {
	switch f {
	case functionField:
		return "function_field_declarator"
	case functionImport:
		return "function_import_declarator"
	}
	return "function_declarator"
}

var fieldAccessSpecifiers = []script.TokenType{
	script.TokenTypeKeywordImport,
	script.TokenTypeKeywordAttribute,
	script.TokenTypeKeywordWriteprotected,
	script.TokenTypeKeywordProtected,
	script.TokenTypeKeywordStatic,
	script.TokenTypeKeywordReadonly,
}

var literalTypes = map[script.TokenType]string{
	script.TokenTypeNumber:       "number_literal",
	script.TokenTypeString:       "string_literal",
	script.TokenTypeChar:         "char_literal",
	script.TokenTypeKeywordTrue:  "true",
	script.TokenTypeKeywordFalse: "false",
	script.TokenTypeKeywordNull:  "null",
}

// declaredName returns the first name leaf below a declarator, which is the
// name it declares.
func declaredName(n *astNode) string {
	if n == nil {
		return ""
	}
	if n.token != nil {
		if n.kind == "identifier" || n.kind == "field_identifier" {
			return n.token.Value
		}
		return ""
	}
	if n.kind == "scoped_identifier" || n.kind == "parameter_list" || n.kind == "parameter_import_list" {
		return ""
	}
	for _, c := range n.children {
		if name := declaredName(c); name != "" {
			return name
		}
	}
	return ""
}

// TypeSpecifier = primitive_type | type_identifier
//
// An identifier that is known to name a value is not a type.
func (p *parserAGSTokens) parseTypeSpecifier(allowFunctionType bool) *astNode {
	t := p.peek()
	switch {
	case t == nil:
	case t.Type == script.TokenTypePrimitiveType:
		return newLeaf("primitive_type", p.advance())
	case t.Type == script.TokenTypeIdentifier && !p.scopes.isValue(t.Value):
		return newLeaf("type_identifier", p.advance())
	case allowFunctionType && (t.Type == script.TokenTypeKeywordFunction || t.Type == script.TokenTypeKeywordVoid):
		return newLeaf("function_type", p.advance())
	}
	p.fail("type")
	return nil
}

// Declaration = TypeSpecifier InitDeclarator { "," InitDeclarator } ";"
func (p *parserAGSTokens) parseDeclaration() *astNode {
	typ := p.parseTypeSpecifier(false)
	if typ == nil {
		return nil
	}
	n := newNode("declaration", typ)
	for {
		d := p.parseInitDeclarator()
		if d == nil {
			return nil
		}
		n.add(d)
		p.scopes.declare(declaredName(d))
		comma := p.accept(script.TokenTypeComma)
		if comma == nil {
			break
		}
		n.add(comma)
	}
	p.fail(script.TokenTypeComma.String())
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return n.add(semi)
}

// EmptyDeclaration = TypeSpecifier ";"
func (p *parserAGSTokens) parseEmptyDeclaration() *astNode {
	typ := p.parseTypeSpecifier(false)
	if typ == nil {
		return nil
	}
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return newNode("_empty_declaration", typ, semi)
}

// InitDeclarator = Declarator [ "=" ( InitializerList | Expression ) ]
func (p *parserAGSTokens) parseInitDeclarator() *astNode {
	d := p.parseDeclarator(declaratorFree)
	if d == nil {
		return nil
	}
	eq := p.accept(script.TokenTypeEqual)
	if eq == nil {
		return d
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
	return newNode("init_declarator", d, eq, value)
}

// Declarator = "*" PointerlessDeclarator | PointerlessDeclarator
func (p *parserAGSTokens) parseDeclarator(family declaratorFamily) *astNode {
	star := p.accept(script.TokenTypeStar)
	if star == nil {
		return p.parsePointerlessDeclarator(family)
	}
	if family == declaratorParameter && !p.at(script.TokenTypeIdentifier) {
		return newNode(family.pointerKind(), star)
	}
	inner := p.parsePointerlessDeclarator(family)
	if inner == nil {
		return nil
	}
	return newNode(family.pointerKind(), star, inner)
}

// PointerlessDeclarator = identifier { "[" [ Expression | "*" ] "]" }
func (p *parserAGSTokens) parsePointerlessDeclarator(family declaratorFamily) *astNode {
	d := p.expectLeaf(family.identifierKind(), "identifier", script.TokenTypeIdentifier)
	if d == nil {
		return nil
	}
	for p.at(script.TokenTypeSquareOpen) {
		arr := newNode(family.arrayKind(), d, newAnonymous(p.advance()))
		switch {
		case p.at(script.TokenTypeSquareClose):
		case p.at(script.TokenTypeStar) && p.atN(1, script.TokenTypeSquareClose):
			arr.add(newAnonymous(p.advance()))
		default:
			bound := p.parseExpression()
			if bound == nil {
				return nil
			}
			arr.add(bound)
		}
		end := p.expectPunct(script.TokenTypeSquareClose)
		if end == nil {
			return nil
		}
		d = arr.add(end)
	}
	return d
}

// functionDeclaratorAhead reports whether the next tokens have the shape
//
//	[ "*" ] [ "[" "]" ] [ "noloopcheck" ] identifier [ "::" identifier ] "("
func (p *parserAGSTokens) functionDeclaratorAhead() bool {
	n := 0
	if p.atN(n, script.TokenTypeStar) {
		n = n + 1
	}
	if p.atN(n, script.TokenTypeSquareOpen) && p.atN(n+1, script.TokenTypeSquareClose) {
		n = n + 2
	}
	if p.atN(n, script.TokenTypeKeywordNoloopcheck) {
		n = n + 1
	}
	if !p.atN(n, script.TokenTypeIdentifier) {
		return false
	}
	n = n + 1
	if p.atN(n, script.TokenTypeScope) {
		if !p.atN(n+1, script.TokenTypeIdentifier) {
			return false
		}
		n = n + 2
	}
	return p.atN(n, script.TokenTypeParenOpen)
}

// FunctionDeclarator = [ "*" ] [ "[" "]" ] [ "noloopcheck" ]
//
//	( identifier | ScopedIdentifier ) ParameterList
func (p *parserAGSTokens) parseFunctionDeclarator(family functionFamily) *astNode {
	n := newNode(family.kind())
	if star := p.accept(script.TokenTypeStar); star != nil {
		n.add(newNode("_function_pointer_declarator", star))
	}
	if p.at(script.TokenTypeSquareOpen) {
		open := newAnonymous(p.advance())
		end := p.expectPunct(script.TokenTypeSquareClose)
		if end == nil {
			return nil
		}
		n.add(open, end)
	}
	if p.at(script.TokenTypeKeywordNoloopcheck) {
		n.add(newLeaf("function_qualifier", p.advance()))
	}
	switch family {
	case functionField:
		name := p.expectLeaf("field_identifier", "identifier", script.TokenTypeIdentifier)
		if name == nil {
			return nil
		}
		n.add(name)
	case functionImport:
		name := p.expectLeaf("identifier", "identifier", script.TokenTypeIdentifier)
		if name == nil {
			return nil
		}
		n.add(name)
	default:
		name := p.parseOptionalScopedIdentifier()
		if name == nil {
			return nil
		}
		n.add(name)
	}
	params := p.parseParameterList(family != functionDefinition)
	if params == nil {
		return nil
	}
	return n.add(params)
}

// ScopedIdentifier = type_identifier "::" identifier
func (p *parserAGSTokens) parseOptionalScopedIdentifier() *astNode {
	name := p.expectOneOf("identifier", script.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	if !p.at(script.TokenTypeScope) {
		return newLeaf("identifier", name)
	}
	scope := newAnonymous(p.advance())
	member := p.expectLeaf("identifier", "identifier", script.TokenTypeIdentifier)
	if member == nil {
		return nil
	}
	return newNode("scoped_identifier", newLeaf("type_identifier", name), scope, member)
}

// ParameterList = "(" [ Parameter { "," Parameter } ] ")"
func (p *parserAGSTokens) parseParameterList(imported bool) *astNode {
	open := p.expectPunct(script.TokenTypeParenOpen)
	if open == nil {
		return nil
	}
	kind := "parameter_list"
	if imported {
		kind = "parameter_import_list"
	}
	n := newNode(kind, open)
	if !p.at(script.TokenTypeParenClose) {
		for index := 0; ; index = index + 1 {
			param := p.parseParameter(index, imported)
			if param == nil {
				return nil
			}
			n.add(param)
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

// Parameter = Extender | [ "const" ] TypeSpecifier [ Declarator [ "=" Expression ] ]
//
// Default values are only accepted in imported signatures.
func (p *parserAGSTokens) parseParameter(index int, imported bool) *astNode {
	if p.at(script.TokenTypeKeywordThis) || (p.at(script.TokenTypeKeywordStatic) && p.atN(1, script.TokenTypeIdentifier)) {
		if index > 0 {
			p.failWith(exc.CodeMisplacedExtender, "the extender parameter must be the first parameter")
			return nil
		}
		return p.parseExtender()
	}
	kind := "parameter_declaration"
	if imported {
		kind = "parameter_import_declaration"
	}
	n := newNode(kind)
	if p.at(script.TokenTypeKeywordConst) {
		n.add(newLeaf("type_qualifier", p.advance()))
	}
	typ := p.parseTypeSpecifier(false)
	if typ == nil {
		return nil
	}
	n.add(typ)
	if !p.at(script.TokenTypeStar, script.TokenTypeIdentifier) {
		return n
	}
	d := p.parseDeclarator(declaratorParameter)
	if d == nil {
		return nil
	}
	if imported {
		if eq := p.accept(script.TokenTypeEqual); eq != nil {
			value := p.parseExpression()
			if value == nil {
				return nil
			}
			d = newNode("default_parameter", d, eq, value)
		}
	}
	return n.add(d)
}

// Extender = "this" type_identifier "*" | "static" type_identifier
func (p *parserAGSTokens) parseExtender() *astNode {
	keyword := p.advance()
	typ := p.expectLeaf("type_identifier", "type", script.TokenTypeIdentifier)
	if typ == nil {
		return nil
	}
	n := newNode("extender_parameter", newAnonymous(keyword), typ)
	if keyword.Type == script.TokenTypeKeywordThis {
		star := p.expectPunct(script.TokenTypeStar)
		if star == nil {
			return nil
		}
		n.add(star)
	}
	return n
}

// FunctionSpecifiers = { "protected" | "static" } ( FunctionType | TypeSpecifier )
func (p *parserAGSTokens) parseFunctionSpecifiers(n *astNode) bool {
	for p.at(script.TokenTypeKeywordProtected, script.TokenTypeKeywordStatic) {
		n.add(newLeaf("function_access_specifier", p.advance()))
	}
	typ := p.parseTypeSpecifier(true)
	if typ == nil {
		return false
	}
	n.add(typ)
	return true
}

// parseFunctionHead parses a function definition up to its body and opens
// the scope of its parameters. parseFunctionBody completes it.
func (p *parserAGSTokens) parseFunctionHead() *astNode {
	n := newNode("function_definition")
	if !p.parseFunctionSpecifiers(n) {
		return nil
	}
	decl := p.parseFunctionDeclarator(functionDefinition)
	if decl == nil {
		return nil
	}
	n.add(decl)
	p.scopes.declare(declaredName(decl))
	p.scopes.push()
	for _, c := range decl.children {
		if c.kind != "parameter_list" {
			continue
		}
		for _, param := range c.children {
			p.scopes.declare(declaredName(param))
		}
	}
	return n
}

func (p *parserAGSTokens) parseFunctionBody(head *astNode) *astNode {
	body := p.parseCompoundStatement()
	p.scopes.pop()
	if body == nil {
		return nil
	}
	return head.add(body)
}

// ImportDeclaration = "import" ( FunctionDeclaration | TypeSpecifier Declarator ) ";"
func (p *parserAGSTokens) parseImportDeclaration() *astNode {
	keyword := newAnonymous(p.advance())
	inner := p.choose(
		alternative{name: "function_declaration", rank: rankFunctionType, parse: p.parseFunctionDeclaration},
		alternative{name: "type_declaration", rank: rankTypeSpecifier, parse: p.parseTypeDeclaration},
	)
	if inner == nil {
		return nil
	}
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return newNode("import_declaration", keyword, inner, semi)
}

// FunctionDeclaration = FunctionSpecifiers FunctionImportDeclarator
func (p *parserAGSTokens) parseFunctionDeclaration() *astNode {
	n := newNode("function_declaration")
	if !p.parseFunctionSpecifiers(n) {
		return nil
	}
	decl := p.parseFunctionDeclarator(functionImport)
	if decl == nil {
		return nil
	}
	p.scopes.declare(declaredName(decl))
	return n.add(decl)
}

// TypeDeclaration = TypeSpecifier Declarator
func (p *parserAGSTokens) parseTypeDeclaration() *astNode {
	typ := p.parseTypeSpecifier(false)
	if typ == nil {
		return nil
	}
	d := p.parseDeclarator(declaratorFree)
	if d == nil {
		return nil
	}
	p.scopes.declare(declaredName(d))
	return newNode("_type_declaration", typ, d)
}

// ExportDeclaration = "export" identifier { "," identifier } ";"
func (p *parserAGSTokens) parseExportDeclaration() *astNode {
	n := newNode("export_declaration", newAnonymous(p.advance()))
	for {
		name := p.expectLeaf("identifier", "identifier", script.TokenTypeIdentifier)
		if name == nil {
			return nil
		}
		n.add(name)
		comma := p.accept(script.TokenTypeComma)
		if comma == nil {
			break
		}
		n.add(comma)
	}
	p.fail(script.TokenTypeComma.String())
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return n.add(semi)
}

// EnumDeclaration = "enum" type_identifier EnumeratorList ";"
func (p *parserAGSTokens) parseEnumDeclaration() *astNode {
	keyword := newAnonymous(p.advance())
	name := p.expectLeaf("type_identifier", "identifier", script.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	list := p.parseEnumeratorList()
	if list == nil {
		return nil
	}
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return newNode("enum_declaration", keyword, name, list, semi)
}

// EnumeratorList = "{" { EnumeratorItem } "}"
func (p *parserAGSTokens) parseEnumeratorList() *astNode {
	open := p.expectPunct(script.TokenTypeCurlyOpen)
	if open == nil {
		return nil
	}
	n := newNode("enumerator_list", open)
	if !p.parseItems(n, p.parseEnumeratorItem, syncEnumeratorList, p.atCurlyClose) {
		return nil
	}
	end := p.expectPunct(script.TokenTypeCurlyClose)
	if end == nil {
		return nil
	}
	return n.add(end)
}

func (p *parserAGSTokens) atCurlyClose() bool {
	return p.at(script.TokenTypeCurlyClose)
}

func (p *parserAGSTokens) atDirective() bool {
	t := p.peek()
	return t != nil && t.Type.IsDirective()
}

// EnumeratorItem = Enumerator [ "," ] | Preprocessor
//
// The comma may only be left out before the closing brace or a directive.
func (p *parserAGSTokens) parseEnumeratorItem() *astNode {
	if p.atDirective() {
		return p.parsePreprocessor(contextEnumeratorList)
	}
	e := p.parseEnumerator()
	if e == nil {
		return nil
	}
	if comma := p.accept(script.TokenTypeComma); comma != nil {
		return newNode("_enumerator_item", e, comma)
	}
	if !p.atCurlyClose() && !p.atDirective() {
		p.fail(script.TokenTypeComma.String(), script.TokenTypeCurlyClose.String())
		return nil
	}
	return e
}

// Enumerator = identifier [ "=" ( identifier | Literal | "-" number ) ]
func (p *parserAGSTokens) parseEnumerator() *astNode {
	name := p.expectLeaf("identifier", "enumerator", script.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	n := newNode("enumerator", name)
	if eq := p.accept(script.TokenTypeEqual); eq != nil {
		t := p.peek()
		var value *astNode
		switch {
		case t == nil:
		case t.Type == script.TokenTypeIdentifier:
			value = newLeaf("identifier", p.advance())
		case literalTypes[t.Type] != "":
			value = newLeaf(literalTypes[t.Type], p.advance())
		case t.Type == script.TokenTypeMinus && p.atN(1, script.TokenTypeNumber):
			minus := newAnonymous(p.advance())
			value = newNode("math_expression", minus, newLeaf("number_literal", p.advance()))
		}
		if value == nil {
			p.fail("enumerator value")
			return nil
		}
		n.add(eq, value)
	}
	p.scopes.declare(name.token.Value)
	return n
}

// StructDeclaration = [ "managed" ] "struct" type_identifier
//
//	[ "extends" type_identifier ] [ FieldDeclarationList ] ";"
//
// Leaving out the field list declares the struct ahead of its definition.
func (p *parserAGSTokens) parseStructDeclaration() *astNode {
	n := newNode("struct_declaration")
	if p.at(script.TokenTypeKeywordManaged) {
		n.add(newLeaf("struct_type_qualifier", p.advance()))
	}
	keyword := p.expectPunct(script.TokenTypeKeywordStruct)
	if keyword == nil {
		return nil
	}
	name := p.expectLeaf("type_identifier", "identifier", script.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	n.add(keyword, name)
	if p.at(script.TokenTypeKeywordExtends) {
		extends := newAnonymous(p.advance())
		base := p.expectLeaf("type_identifier", "type", script.TokenTypeIdentifier)
		if base == nil {
			return nil
		}
		n.add(newNode("extends_type", extends, base))
	}
	if p.at(script.TokenTypeCurlyOpen) {
		list := p.parseFieldDeclarationList()
		if list == nil {
			return nil
		}
		n.add(list)
	} else {
		p.fail(script.TokenTypeCurlyOpen.String())
	}
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return n.add(semi)
}

// FieldDeclarationList = "{" { FieldItem } "}"
func (p *parserAGSTokens) parseFieldDeclarationList() *astNode {
	n := newNode("field_declaration_list", newAnonymous(p.advance()))
	if !p.parseItems(n, p.parseFieldItem, syncFieldList, p.atCurlyClose) {
		return nil
	}
	end := p.expectPunct(script.TokenTypeCurlyClose)
	if end == nil {
		return nil
	}
	return n.add(end)
}

// FieldItem = FieldDeclaration | Preprocessor
func (p *parserAGSTokens) parseFieldItem() *astNode {
	if p.atDirective() {
		return p.parsePreprocessor(contextFieldList)
	}
	return p.parseFieldDeclaration()
}

// FieldDeclaration = { FieldAccessSpecifier } ( FunctionType | TypeSpecifier )
//
//	FieldDeclarator { "," FieldDeclarator } ";"
func (p *parserAGSTokens) parseFieldDeclaration() *astNode {
	n := newNode("field_declaration")
	for p.at(fieldAccessSpecifiers...) {
		n.add(newLeaf("field_access_specifier", p.advance()))
	}
	typ := p.parseTypeSpecifier(true)
	if typ == nil {
		return nil
	}
	n.add(typ)
	for {
		var d *astNode
		if p.functionDeclaratorAhead() {
			d = p.parseFunctionDeclarator(functionField)
		} else {
			d = p.parseDeclarator(declaratorField)
		}
		if d == nil {
			return nil
		}
		n.add(d)
		comma := p.accept(script.TokenTypeComma)
		if comma == nil {
			break
		}
		n.add(comma)
	}
	p.fail(script.TokenTypeComma.String())
	semi := p.expectPunct(script.TokenTypeSemicolon)
	if semi == nil {
		return nil
	}
	return n.add(semi)
}
