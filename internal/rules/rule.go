// Package rules declares the stack compatibility rule table.
//
// A rule is pure data plus two pure functions: a predicate that reports
// whether the configuration violates the rule, and a patch that lists the
// field mutations needed to repair it. The resolver decides what to do
// with those mutations (apply them in Adaptive mode, reject explicit
// conflicts in Strict mode); rules themselves never distinguish modes.
package rules

import "github.com/mkstack/mkstack/internal/stack"

// Priority tiers, one per driving field. The total order
// backend > runtime > database > db-setup > orm > frontend > addons >
// examples > deploy is what guarantees confluence when two cascades could
// otherwise both claim the same field.
const (
	PriorityBackend  = 100
	PriorityRuntime  = 90
	PriorityDatabase = 80
	PriorityDBSetup  = 70
	PriorityORM      = 60
	PriorityFrontend = 50
	PriorityAddons   = 40
	PriorityExamples = 30
	PriorityDeploy   = 20
)

// Mutation is one field write a rule wants applied.
type Mutation struct {
	Field stack.FieldID
	Value stack.Value
}

// Rule is one row of the compatibility table.
//
// Reads and Writes declare the rule's dependency footprint; they drive the
// startup cycle analysis and must cover everything When inspects and Patch
// can emit. Driving/DrivingValue identify the selection that keys the
// rule: two rules keyed to different values (or different set members) of
// the same driving field can never re-trigger each other and are treated
// as non-interfering by the cycle analysis.
type Rule struct {
	ID       string
	Priority int
	Reads    []stack.FieldID
	Writes   []stack.FieldID

	Driving      stack.FieldID
	DrivingValue string

	// When reports whether the configuration violates the rule.
	When func(stack.Config) bool

	// Patch returns the mutations that repair the violation. Only
	// mismatched fields are emitted; after applying them When must
	// report false.
	Patch func(*stack.Registry, stack.Config) []Mutation

	// Note is the human-readable explanation surfaced with every
	// auto-correction or conflict derived from this rule.
	Note string
}

func reads(ids ...stack.FieldID) []stack.FieldID { return ids }
func writes(ids ...stack.FieldID) []stack.FieldID { return ids }
