package rules

import (
	"fmt"
	"strings"

	"github.com/mkstack/mkstack/internal/stack"
)

// Validate performs startup analysis of a rule table against the field
// registry. It runs once at process start, never per resolve call.
//
// Checks:
//  1. rule IDs are unique and non-empty
//  2. every read/written field exists in the registry
//  3. no true authoring cycle: within one priority tier, the
//     writes-feed-reads graph between rules must be acyclic
//
// Cross-tier cycles in the raw field graph (the workers cascade writes
// backend, the backend cascade writes runtime) are deliberately legal:
// the priority order totally decides the contested writes and the
// resolver's iteration guard bounds evaluation. A cycle among rules of
// the same priority has no such tie-break and is an authoring error.
//
// Two rules keyed to different values of the same driving field cannot
// re-trigger each other (their predicates are mutually exclusive, or for
// set members, their writes only remove their own member); no edge is
// drawn between them.
func Validate(reg *stack.Registry, table []Rule) error {
	seen := make(map[string]bool, len(table))
	for _, r := range table {
		if r.ID == "" {
			return fmt.Errorf("rule with empty id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		for _, id := range append(append([]stack.FieldID{}, r.Reads...), r.Writes...) {
			if _, ok := reg.Lookup(id); !ok {
				return fmt.Errorf("rule %q references unknown field %q", r.ID, id)
			}
		}
		if r.When == nil || r.Patch == nil {
			return fmt.Errorf("rule %q has no predicate or patch", r.ID)
		}
	}

	graph := buildTierGraph(table)
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 {
			return fmt.Errorf("rule cycle within one priority tier: %s",
				strings.Join(scc, " -> "))
		}
	}
	return nil
}

// buildTierGraph builds the rule dependency graph used for cycle
// detection: an edge a -> b means a's writes intersect b's reads, both
// rules share a priority tier, and the pair is not exclusive by driving
// value. Self-edges are skipped; a rule repairing its own predicate is
// the normal fire-once shape, not a cycle.
func buildTierGraph(table []Rule) map[string][]string {
	graph := make(map[string][]string, len(table))
	for _, r := range table {
		graph[r.ID] = nil
	}
	for _, a := range table {
		for _, b := range table {
			if a.ID == b.ID || a.Priority != b.Priority {
				continue
			}
			if exclusiveByDriving(a, b) {
				continue
			}
			if fieldsIntersect(a.Writes, b.Reads) {
				graph[a.ID] = append(graph[a.ID], b.ID)
			}
		}
	}
	return graph
}

func exclusiveByDriving(a, b Rule) bool {
	return a.Driving != "" && a.Driving == b.Driving &&
		a.DrivingValue != "" && b.DrivingValue != "" &&
		a.DrivingValue != b.DrivingValue
}

func fieldsIntersect(a, b []stack.FieldID) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Components are returned in reverse topological order; only size matters
// to the caller.
func tarjanSCC(graph map[string][]string) [][]string {
	var (
		index    int
		indices  = map[string]int{}
		lowlinks = map[string]int{}
		onStack  = map[string]bool{}
		stack    []string
		sccs     [][]string
	)

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongconnect(w)
				if lowlinks[w] < lowlinks[v] {
					lowlinks[v] = lowlinks[w]
				}
			} else if onStack[w] && indices[w] < lowlinks[v] {
				lowlinks[v] = indices[w]
			}
		}

		if lowlinks[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := range graph {
		if _, visited := indices[v]; !visited {
			strongconnect(v)
		}
	}
	return sccs
}
