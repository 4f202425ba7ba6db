package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_With_Copies(t *testing.T) {
	reg := NewRegistry()
	base := reg.Defaults()

	next := base.With(FieldBackend, Scalar("convex"))
	assert.Equal(t, "convex", next.ScalarOf(FieldBackend))
	assert.Equal(t, "hono", base.ScalarOf(FieldBackend), "With must not mutate the receiver")
	assert.Equal(t, base.Len(), next.Len())
}

func TestConfig_HasAny(t *testing.T) {
	reg := NewRegistry()
	cfg := reg.Defaults() // frontend: tanstack-router

	assert.True(t, cfg.HasAny(FieldFrontend, "nuxt", "tanstack-router"))
	assert.False(t, cfg.HasAny(FieldFrontend, "nuxt", "svelte"))
}

func TestConfig_Equal(t *testing.T) {
	reg := NewRegistry()
	a := reg.Defaults()
	b := reg.Defaults()

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(b.With(FieldDatabase, Scalar("postgres"))))
}

func TestConfig_ZeroValueAccessors(t *testing.T) {
	var cfg Config

	assert.Equal(t, "", cfg.ScalarOf(FieldBackend))
	assert.False(t, cfg.BoolOf(FieldAuth))
	assert.False(t, cfg.Has(FieldAddons, "pwa"))
}
