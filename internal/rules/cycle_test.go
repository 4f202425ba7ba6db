package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstack/mkstack/internal/stack"
)

func noopRule(id string, priority int, reads, writes []stack.FieldID) Rule {
	return Rule{
		ID:       id,
		Priority: priority,
		Reads:    reads,
		Writes:   writes,
		When:     func(stack.Config) bool { return false },
		Patch:    func(*stack.Registry, stack.Config) []Mutation { return nil },
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	reg := stack.NewRegistry()
	table := []Rule{
		noopRule("dup", 10, nil, nil),
		noopRule("dup", 10, nil, nil),
	}
	err := Validate(reg, table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate rule id")
}

func TestValidate_EmptyID(t *testing.T) {
	reg := stack.NewRegistry()
	err := Validate(reg, []Rule{noopRule("", 10, nil, nil)})
	require.Error(t, err)
}

func TestValidate_UnknownField(t *testing.T) {
	reg := stack.NewRegistry()
	table := []Rule{
		noopRule("bad", 10, []stack.FieldID{"does-not-exist"}, nil),
	}
	err := Validate(reg, table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestValidate_MissingPredicateOrPatch(t *testing.T) {
	reg := stack.NewRegistry()
	err := Validate(reg, []Rule{{ID: "half-built", Priority: 10}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no predicate or patch")
}

func TestValidate_SameTierCycleRejected(t *testing.T) {
	reg := stack.NewRegistry()
	table := []Rule{
		noopRule("a-forces-b", 50,
			[]stack.FieldID{stack.FieldDatabase}, []stack.FieldID{stack.FieldORM}),
		noopRule("b-forces-a", 50,
			[]stack.FieldID{stack.FieldORM}, []stack.FieldID{stack.FieldDatabase}),
	}
	err := Validate(reg, table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle within one priority tier")
}

func TestValidate_CrossTierCycleAllowed(t *testing.T) {
	// The workers/backend shape: two rules that write each other's reads
	// but live in different tiers. Priority decides the winner, so this
	// is legal authoring.
	reg := stack.NewRegistry()
	table := []Rule{
		noopRule("high-writes-low", 90,
			[]stack.FieldID{stack.FieldRuntime}, []stack.FieldID{stack.FieldBackend}),
		noopRule("low-writes-high", 80,
			[]stack.FieldID{stack.FieldBackend}, []stack.FieldID{stack.FieldRuntime}),
	}
	assert.NoError(t, Validate(reg, table))
}

func TestValidate_ExclusiveByDrivingValue(t *testing.T) {
	// Two rules keyed to different values of the same driving field are
	// mutually exclusive and draw no edge, even inside one tier.
	reg := stack.NewRegistry()
	a := noopRule("setup-turso", 70,
		[]stack.FieldID{stack.FieldDBSetup, stack.FieldDatabase}, []stack.FieldID{stack.FieldDatabase})
	a.Driving, a.DrivingValue = stack.FieldDBSetup, "turso"
	b := noopRule("setup-neon", 70,
		[]stack.FieldID{stack.FieldDBSetup, stack.FieldDatabase}, []stack.FieldID{stack.FieldDatabase})
	b.Driving, b.DrivingValue = stack.FieldDBSetup, "neon"

	assert.NoError(t, Validate(reg, []Rule{a, b}))
}

func TestValidate_SelfEdgeSkipped(t *testing.T) {
	// A rule repairing its own predicate reads what it writes. That is
	// the normal fire-once shape, not a cycle.
	reg := stack.NewRegistry()
	r := noopRule("self-repair", 50,
		[]stack.FieldID{stack.FieldFrontend}, []stack.FieldID{stack.FieldFrontend})
	assert.NoError(t, Validate(reg, []Rule{r}))
}

func TestTarjanSCC_FindsComponents(t *testing.T) {
	graph := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
		"d": {"a"},
	}
	sccs := tarjanSCC(graph)

	var largest []string
	for _, scc := range sccs {
		if len(scc) > len(largest) {
			largest = scc
		}
	}
	assert.Len(t, largest, 3)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, largest)
}
