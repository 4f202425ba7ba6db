package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mkstack/mkstack/internal/stack"
)

// scenario is one YAML-driven resolution case: a partial input, the
// fields the resolved configuration must carry, and optionally the exact
// number of recorded changes. Set values are comma-joined; "" is the
// empty set.
type scenario struct {
	Name    string            `yaml:"name"`
	Input   map[string]string `yaml:"input"`
	Expect  map[string]string `yaml:"expect"`
	Changes *int              `yaml:"changes"`
}

type scenarioFile struct {
	Scenarios []scenario `yaml:"scenarios"`
}

func loadScenarios(t *testing.T, path string) []scenario {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var f scenarioFile
	require.NoError(t, yaml.Unmarshal(data, &f))
	require.NotEmpty(t, f.Scenarios)
	return f.Scenarios
}

func parsePartial(t *testing.T, reg *stack.Registry, raw map[string]string) map[stack.FieldID]stack.Value {
	t.Helper()
	partial := make(map[stack.FieldID]stack.Value, len(raw))
	for k, v := range raw {
		id := stack.FieldID(k)
		_, ok := reg.Lookup(id)
		require.True(t, ok, "scenario references unknown field %q", k)
		partial[id] = reg.ParseValue(id, v)
	}
	return partial
}

func TestResolve_Scenarios(t *testing.T) {
	res := newTestResolver(t)
	reg := res.Registry()

	for _, sc := range loadScenarios(t, filepath.Join("testdata", "scenarios.yaml")) {
		t.Run(sc.Name, func(t *testing.T) {
			cfg, errs := reg.Merge(parsePartial(t, reg, sc.Input))
			require.Empty(t, errs)

			got, err := res.Resolve(cfg)
			require.NoError(t, err)

			for k, want := range sc.Expect {
				id := stack.FieldID(k)
				wantVal := reg.ParseValue(id, want)
				assert.True(t, got.Config.ValueOf(id).Equal(wantVal),
					"%s = %s, want %s", id, got.Config.ValueOf(id), wantVal)
			}
			if sc.Changes != nil {
				assert.Len(t, got.Changes, *sc.Changes)
			}

			// Every scenario result must be a fixpoint.
			again, err := res.Resolve(got.Config)
			require.NoError(t, err)
			assert.Empty(t, again.Changes)
		})
	}
}
