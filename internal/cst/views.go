// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

package cst

// Typed views over the generic tree. They never copy tokens; every view keeps
// a pointer to the node it was read from.

// StructDeclaration is the view of a struct_declaration node.
type StructDeclaration struct {
	Node    *Node
	Name    string
	Managed bool
	// Extends is the base type name, or empty.
	Extends string
	Fields  []FieldDeclaration
}

// FieldDeclaration is the view of a field_declaration node.
type FieldDeclaration struct {
	Node *Node
	// Access lists the access specifiers in source order.
	Access []string
	Type   string
	Names  []string
	// Method is true when the field declarator has a parameter list.
	Method bool
	// Conditional is true when the field sits inside a preprocessor block.
	Conditional bool
}

// EnumDeclaration is the view of an enum_declaration node.
type EnumDeclaration struct {
	Node        *Node
	Name        string
	Enumerators []Enumerator
}

type Enumerator struct {
	Node *Node
	Name string
	// Value is the explicit value expression, or nil.
	Value       *Node
	Conditional bool
}

// ParameterList is the view of a parameter_list node.
type ParameterList struct {
	Node *Node
	// Extender is the leading `this Type *` parameter, or nil.
	Extender     *Node
	ExtenderType string
	Parameters   []Parameter
}

type Parameter struct {
	Node  *Node
	Const bool
	Type  string
	// Name is empty for unnamed parameters.
	Name    string
	Pointer bool
	Array   bool
	// Default is the default value of an import parameter, or nil.
	Default *Node
}

// FunctionDefinition is the view of a function_definition node.
type FunctionDefinition struct {
	Node *Node
	// Name is the bare function name.
	Name string
	// Scope is the type before `::` in a scoped definition, or empty.
	Scope      string
	ReturnType string
	Access     []string
	Parameters ParameterList
	Body       *Node
}

// ConditionalBlock is the view of a preproc_ifdef, preproc_ifver or
// preproc_region node.
type ConditionalBlock struct {
	Node  *Node
	Guard Guard
	// Items are the children between the guard and the closing directive.
	Items []*Node
}

var typeKinds = map[string]bool{
	"primitive_type":  true,
	"type_identifier": true,
	"function_type":   true,
}

func typeName(n *Node) string {
	for _, c := range n.Children {
		if typeKinds[c.Kind] {
			return c.Text()
		}
	}
	return ""
}

// DeclaratorName returns the declared name below a declarator node. Scoped
// function names are returned as written, e.g. "Character::Walk".
func DeclaratorName(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case "identifier", "field_identifier":
		return n.Text()
	case "scoped_identifier":
		parts := ""
		for _, t := range Tokens(n) {
			parts = parts + t.Value
		}
		return parts
	}
	for _, c := range n.Children {
		switch c.Kind {
		case "identifier", "field_identifier", "scoped_identifier",
			"pointer_declarator", "array_declarator", "function_declarator", "init_declarator":
			return DeclaratorName(c)
		}
	}
	return ""
}

var declaratorKinds = map[string]bool{
	"identifier":          true,
	"field_identifier":    true,
	"pointer_declarator":  true,
	"array_declarator":    true,
	"function_declarator": true,
	"init_declarator":     true,
}

func AsStructDeclaration(n *Node) (StructDeclaration, bool) {
	if n == nil || n.Kind != "struct_declaration" {
		return StructDeclaration{}, false
	}
	s := StructDeclaration{
		Node:    n,
		Managed: n.Has("struct_type_qualifier"),
	}
	if id := n.Child("type_identifier"); id != nil {
		s.Name = id.Text()
	}
	if ext := n.Child("extends_type"); ext != nil {
		if id := ext.Child("type_identifier"); id != nil {
			s.Extends = id.Text()
		}
	}
	if list := n.Child("field_declaration_list"); list != nil {
		s.Fields = collectFields(list.Children, false)
	}
	return s, true
}

func collectFields(children []*Node, conditional bool) []FieldDeclaration {
	var out []FieldDeclaration
	for _, c := range children {
		switch c.Kind {
		case "field_declaration":
			f := FieldDeclaration{
				Node:        c,
				Type:        typeName(c),
				Conditional: conditional,
			}
			for _, cc := range c.Children {
				switch {
				case cc.Kind == "field_access_specifier":
					f.Access = append(f.Access, cc.Text())
				case declaratorKinds[cc.Kind]:
					f.Names = append(f.Names, DeclaratorName(cc))
					if cc.Kind == "function_declarator" {
						f.Method = true
					}
				}
			}
			out = append(out, f)
		case "preproc_ifdef", "preproc_ifver", "preproc_region":
			out = append(out, collectFields(c.Children, true)...)
		}
	}
	return out
}

func AsEnumDeclaration(n *Node) (EnumDeclaration, bool) {
	if n == nil || n.Kind != "enum_declaration" {
		return EnumDeclaration{}, false
	}
	e := EnumDeclaration{Node: n}
	if id := n.Child("type_identifier"); id != nil {
		e.Name = id.Text()
	}
	if list := n.Child("enumerator_list"); list != nil {
		e.Enumerators = collectEnumerators(list.Children, false)
	}
	return e, true
}

func collectEnumerators(children []*Node, conditional bool) []Enumerator {
	var out []Enumerator
	for _, c := range children {
		switch c.Kind {
		case "enumerator":
			named := c.NamedChildren()
			en := Enumerator{Node: c, Conditional: conditional}
			if len(named) > 0 {
				en.Name = named[0].Text()
			}
			if len(named) > 1 {
				en.Value = named[1]
			}
			out = append(out, en)
		case "preproc_ifdef", "preproc_ifver", "preproc_region":
			out = append(out, collectEnumerators(c.Children, true)...)
		}
	}
	return out
}

func AsParameterList(n *Node) (ParameterList, bool) {
	if n == nil || n.Kind != "parameter_list" {
		return ParameterList{}, false
	}
	pl := ParameterList{Node: n}
	for _, c := range n.Children {
		switch c.Kind {
		case "extender_parameter":
			pl.Extender = c
			if id := c.Child("type_identifier"); id != nil {
				pl.ExtenderType = id.Text()
			}
		case "parameter_declaration":
			p := Parameter{
				Node:  c,
				Const: c.Has("type_qualifier"),
				Type:  typeName(c),
			}
			for _, cc := range c.Children {
				if !declaratorKinds[cc.Kind] {
					continue
				}
				p.Name = DeclaratorName(cc)
				d := cc
				if d.Kind == "init_declarator" {
					named := d.NamedChildren()
					if len(named) > 1 {
						p.Default = named[len(named)-1]
					}
					d = named[0]
				}
				p.Pointer = d.Kind == "pointer_declarator"
				p.Array = d.Kind == "array_declarator" || (p.Pointer && d.Has("array_declarator"))
			}
			pl.Parameters = append(pl.Parameters, p)
		}
	}
	return pl, true
}

func AsFunctionDefinition(n *Node) (FunctionDefinition, bool) {
	if n == nil || n.Kind != "function_definition" {
		return FunctionDefinition{}, false
	}
	fd := FunctionDefinition{
		Node:       n,
		ReturnType: typeName(n),
		Body:       n.Child("compound_statement"),
	}
	for _, c := range n.ChildrenOf("function_access_specifier") {
		fd.Access = append(fd.Access, c.Text())
	}
	decl := n.Child("function_declarator")
	if decl == nil {
		return fd, true
	}
	if scoped := decl.Child("scoped_identifier"); scoped != nil {
		if id := scoped.Child("type_identifier"); id != nil {
			fd.Scope = id.Text()
		}
		if id := scoped.Child("identifier"); id != nil {
			fd.Name = id.Text()
		}
	} else if id := decl.Child("identifier"); id != nil {
		fd.Name = id.Text()
	}
	if params, ok := AsParameterList(decl.Child("parameter_list")); ok {
		fd.Parameters = params
	}
	return fd, true
}

func AsConditionalBlock(n *Node) (ConditionalBlock, bool) {
	if n == nil || n.Guard == nil {
		return ConditionalBlock{}, false
	}
	cb := ConditionalBlock{Node: n, Guard: *n.Guard}
	if len(n.Children) < 2 {
		return cb, true
	}
	start := 1
	if n.Kind != "preproc_region" || n.Children[1].Kind == "preproc_arg" {
		start = 2
	}
	end := len(n.Children) - 1
	if start <= end {
		cb.Items = n.Children[start:end]
	}
	return cb, true
}
