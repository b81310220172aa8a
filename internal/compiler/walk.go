package compiler

import (
	"github.com/edmundito/agsscript/internal/cst"
	"github.com/edmundito/agsscript/internal/exc"
)

// DeferredCheck is a struct declaration whose inheritance can only be
// verified once every file is parsed. Declarations without a base are kept
// too so that other files can resolve to them.
type DeferredCheck struct {
	URI    string
	Struct string
	// Base is the extended type, or empty.
	Base string
	// Forward is set for a declaration without a field list.
	Forward  bool
	Location exc.Location
}

// collectDeferred gathers the struct declarations of a tree, including
// those inside preprocessor blocks. Each branch of a conditional is
// collected since none is ever selected.
func collectDeferred(uri string, tree *cst.Node) []DeferredCheck {
	var out []DeferredCheck
	cst.Walk(tree, func(n *cst.Node) bool {
		s, ok := cst.AsStructDeclaration(n)
		if !ok {
			return true
		}
		if s.Name == "" {
			return false
		}
		loc := n.Span.Start
		if ext := n.Child("extends_type"); ext != nil {
			loc = ext.Span.Start
		}
		out = append(out, DeferredCheck{
			URI:      uri,
			Struct:   s.Name,
			Base:     s.Extends,
			Forward:  !n.Has("field_declaration_list"),
			Location: exc.Location{URI: uri, Location: loc},
		})
		return false
	})
	return out
}
