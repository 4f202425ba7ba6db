package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceTokenGenerator(t *testing.T) {
	g := NewSequenceTokenGenerator("a", "b")

	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
