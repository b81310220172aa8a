package ags

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/edmundito/agsscript/internal/exc"
)

// Static ranks of productions that can match the same tokens. A higher rank
// wins whenever it parses at all.
const (
	rankExpression    = 0
	rankTypeSpecifier = 1
	rankDeclarator    = 2
	rankFunctionType  = 3
)

// Kinds that earn the dynamic bonus: a pointer declarator beats a
// multiplication over the same tokens. The grammar gives every competing
// production a distinct rank today, so the bonus only decides between
// alternatives of equal rank.
var dynamicKinds = []string{
	"pointer_declarator",
	"pointer_field_declarator",
	"_function_pointer_declarator",
}

type alternative struct {
	name  string
	rank  int
	parse func() *astNode
	// then, if set, continues the winning alternative outside of
	// speculation, so that its remainder can recover from errors.
	then func(*astNode) *astNode
}

type candidate struct {
	alternative
	node    *astNode
	dynamic int
	length  int
}

func (c *candidate) compare(o *candidate) int {
	if v := cmp.Compare(c.rank, o.rank); v != 0 {
		return v
	}
	if v := cmp.Compare(c.dynamic, o.dynamic); v != 0 {
		return v
	}
	return cmp.Compare(c.length, o.length)
}

func dynamicScore(n *astNode) int {
	score := 0
	for _, kind := range dynamicKinds {
		score = score + n.count(kind)
	}
	return score
}

// choose parses the alternatives speculatively and keeps the best one by
// (rank, dynamic score, tokens consumed). Alternatives of a lower rank than
// a successful one are never tried. Two different trees with the same score
// are an ambiguity error.
func (p *parserAGSTokens) choose(alternatives ...alternative) *astNode {
	sorted := slices.Clone(alternatives)
	slices.SortStableFunc(sorted, func(a alternative, b alternative) int {
		return cmp.Compare(b.rank, a.rank)
	})
	start := p.mark()
	var best *candidate
	var rivals []string
	for x, alt := range sorted {
		if best != nil && alt.rank < best.rank {
			break
		}
		node := p.speculate(alt.parse)
		if node == nil {
			continue
		}
		c := &candidate{
			alternative: alt,
			node:        node,
			dynamic:     dynamicScore(node),
			length:      p.tokens.Mark() - start.tokens,
		}
		last := x == len(sorted)-1 || sorted[x+1].rank < alt.rank
		if best == nil && last {
			return p.finish(c)
		}
		p.rewind(start)
		switch {
		case best == nil:
			best = c
		case c.compare(best) > 0:
			best = c
			rivals = nil
		case c.compare(best) == 0 && !c.node.equal(best.node):
			rivals = append(rivals, c.name)
		}
	}
	if best == nil {
		return nil
	}
	if len(rivals) > 0 {
		p.record(&parseFailure{
			code:    exc.CodeAmbiguousConstruct,
			message: fmt.Sprintf("ambiguous construct: %s or %s", best.name, strings.Join(rivals, " or ")),
			sticky:  true,
		})
		return nil
	}
	// Replay the winner so that its side effects are in place.
	node := p.speculate(best.parse)
	if node == nil {
		return nil
	}
	best.node = node
	return p.finish(best)
}

func (p *parserAGSTokens) finish(c *candidate) *astNode {
	if c.then == nil {
		return c.node
	}
	return c.then(c.node)
}
