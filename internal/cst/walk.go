// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

package cst

// Walk visits n and its descendants in pre-order. Returning false from f
// skips the children of the node just visited.
func Walk(n *Node, f func(*Node) bool) {
	if n == nil {
		return
	}
	if !f(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, f)
	}
}

// WalkPost visits the descendants of n before n itself.
func WalkPost(n *Node, f func(*Node)) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		WalkPost(c, f)
	}
	f(n)
}

// Find returns every node below and including n with the given kind, in
// source order.
func Find(n *Node, kind string) []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}
