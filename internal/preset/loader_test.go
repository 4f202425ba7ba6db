package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstack/mkstack/internal/stack"
)

func writePreset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_PartialSelection(t *testing.T) {
	reg := stack.NewRegistry()
	path := writePreset(t, `
preset: {
	backend:  "hono"
	runtime:  "workers"
	database: "sqlite"
	auth:     false
	frontend: ["nuxt"]
}
`)

	partial, err := Load(path, reg)
	require.NoError(t, err)

	require.Len(t, partial, 5, "omitted fields must be absent, not defaulted")
	assert.Equal(t, stack.Scalar("hono"), partial[stack.FieldBackend])
	assert.Equal(t, stack.Scalar("workers"), partial[stack.FieldRuntime])
	assert.False(t, partial[stack.FieldAuth].AsBool())
	assert.Equal(t, []string{"nuxt"}, partial[stack.FieldFrontend].AsMembers())

	_, present := partial[stack.FieldDatabase]
	assert.True(t, present)
	_, present = partial[stack.FieldORM]
	assert.False(t, present)
}

func TestLoad_HyphenatedFieldNames(t *testing.T) {
	reg := stack.NewRegistry()
	path := writePreset(t, `
preset: {
	"db-setup":        "turso"
	"package-manager": "pnpm"
	"web-deploy":      "workers"
}
`)

	partial, err := Load(path, reg)
	require.NoError(t, err)
	assert.Equal(t, stack.Scalar("turso"), partial[stack.FieldDBSetup])
	assert.Equal(t, stack.Scalar("pnpm"), partial[stack.FieldPackageManager])
	assert.Equal(t, stack.Scalar("workers"), partial[stack.FieldWebDeploy])
}

func TestLoad_EmptyPreset(t *testing.T) {
	reg := stack.NewRegistry()
	path := writePreset(t, `preset: {}`)

	partial, err := Load(path, reg)
	require.NoError(t, err)
	assert.Empty(t, partial)
}

func TestLoad_SetMembersCanonicalized(t *testing.T) {
	reg := stack.NewRegistry()
	path := writePreset(t, `
preset: {
	addons: ["turborepo", "pwa", "pwa"]
}
`)

	partial, err := Load(path, reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"pwa", "turborepo"}, partial[stack.FieldAddons].AsMembers())
}

func TestLoad_SchemaRejectsBadValue(t *testing.T) {
	reg := stack.NewRegistry()
	path := writePreset(t, `
preset: {
	database: "oracle"
}
`)

	_, err := Load(path, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected by schema")
}

func TestLoad_MissingPresetField(t *testing.T) {
	reg := stack.NewRegistry()
	path := writePreset(t, `config: { backend: "hono" }`)

	_, err := Load(path, reg)
	require.Error(t, err)
}

func TestLoad_SyntaxError(t *testing.T) {
	reg := stack.NewRegistry()
	path := writePreset(t, `preset: { backend: `)

	_, err := Load(path, reg)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	reg := stack.NewRegistry()
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"), reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading preset")
}
