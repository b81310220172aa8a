package compiler

import (
	"fmt"
	"strings"

	"github.com/edmundito/agsscript/internal/exc"
)

type extendsChecker struct {
	table    *structTable
	reporter exc.Reporter
}

// check runs the struct inheritance checks over a set of parse results.
// Findings are warnings; results that failed to parse contribute whatever
// they declared before the failure.
func check(results []*Result, r exc.Reporter) {
	c := &extendsChecker{
		table:    &structTable{},
		reporter: r,
	}
	for _, result := range results {
		if result != nil {
			c.table.collect(result.Deferred)
		}
	}
	for _, result := range results {
		if result != nil {
			c.checkUndefined(result.Deferred)
		}
	}
	c.checkCycles()
}

func (c *extendsChecker) checkUndefined(checks []DeferredCheck) {
	for _, check := range checks {
		if check.Base == "" {
			continue
		}
		if _, ok := c.table.lookup(check.Base); !ok {
			c.reporter.Report(exc.NewWarning(check.Location, exc.CodeExtendsUndefined,
				fmt.Sprintf("struct %q extends %q which is not declared in any parsed file", check.Struct, check.Base)))
		}
	}
}

// checkCycles follows the extends chain of every struct. Each cycle is
// reported once, at the declaration where the walk first entered it.
func (c *extendsChecker) checkCycles() {
	done := make(map[string]bool)
	for _, name := range c.table.names() {
		var path []string
		onPath := make(map[string]int)
		current := name
		for current != "" && !done[current] {
			if start, ok := onPath[current]; ok {
				cycle := append(append([]string(nil), path[start:]...), current)
				entry, _ := c.table.lookup(path[start])
				c.reporter.Report(exc.NewWarning(entry.Location, exc.CodeExtendsCycle,
					fmt.Sprintf("struct inheritance cycle: %s", strings.Join(cycle, " -> "))))
				break
			}
			entry, ok := c.table.lookup(current)
			if !ok {
				break
			}
			onPath[current] = len(path)
			path = append(path, current)
			current = entry.Base
		}
		for _, visited := range path {
			done[visited] = true
		}
	}
}
