package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstack/mkstack/internal/resolver"
	"github.com/mkstack/mkstack/internal/rules"
	"github.com/mkstack/mkstack/internal/stack"
)

func newTestResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	reg := stack.NewRegistry()
	res, err := resolver.New(reg, rules.Table(reg))
	require.NoError(t, err)
	return res
}

// script joins one answer per question; an empty answer keeps the
// current value. The registry asks 14 questions in field order.
func script(answers ...string) string {
	return strings.Join(answers, "\n") + "\n"
}

func allDefaults() []string {
	return make([]string, 14)
}

func TestRun_AllEnterKeepsDefaults(t *testing.T) {
	res := newTestResolver(t)
	var out bytes.Buffer

	p := New(strings.NewReader(script(allDefaults()...)), &out, res)
	cfg, changes, err := p.Run(res.Registry().Defaults())
	require.NoError(t, err)

	assert.True(t, cfg.Equal(res.Registry().Defaults()))
	assert.Empty(t, changes)
	assert.Contains(t, out.String(), "Backend framework")
	assert.Contains(t, out.String(), "Package manager")
}

func TestRun_ConvexAnswerCascades(t *testing.T) {
	res := newTestResolver(t)
	var out bytes.Buffer

	answers := allDefaults()
	answers[0] = "convex" // backend question, by literal value
	p := New(strings.NewReader(script(answers...)), &out, res)

	cfg, changes, err := p.Run(res.Registry().Defaults())
	require.NoError(t, err)

	assert.Equal(t, "convex", cfg.ScalarOf(stack.FieldBackend))
	assert.Equal(t, stack.None, cfg.ScalarOf(stack.FieldRuntime))
	assert.Equal(t, stack.None, cfg.ScalarOf(stack.FieldDatabase))
	assert.False(t, cfg.BoolOf(stack.FieldAuth))
	assert.NotEmpty(t, changes)

	// Each cascade is surfaced as a note before the next question.
	assert.Contains(t, out.String(), "note: runtime changed from bun to none")
}

func TestRun_NumericPick(t *testing.T) {
	res := newTestResolver(t)
	var out bytes.Buffer

	// Database question: answer by menu index. The candidate list is the
	// domain filtered through the speculative check; for a default stack
	// every database option survives, so index 2 is postgres.
	answers := allDefaults()
	answers[2] = "2"
	p := New(strings.NewReader(script(answers...)), &out, res)

	cfg, _, err := p.Run(res.Registry().Defaults())
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.ScalarOf(stack.FieldDatabase))
}

func TestRun_BoolAnswers(t *testing.T) {
	res := newTestResolver(t)
	var out bytes.Buffer

	answers := allDefaults()
	answers[4] = "n" // auth
	p := New(strings.NewReader(script(answers...)), &out, res)

	cfg, _, err := p.Run(res.Registry().Defaults())
	require.NoError(t, err)
	assert.False(t, cfg.BoolOf(stack.FieldAuth))
}

func TestRun_MultiNoneAnswer(t *testing.T) {
	res := newTestResolver(t)
	var out bytes.Buffer

	answers := allDefaults()
	answers[9] = "none" // examples
	p := New(strings.NewReader(script(answers...)), &out, res)

	cfg, _, err := p.Run(res.Registry().Defaults())
	require.NoError(t, err)
	assert.Empty(t, cfg.MembersOf(stack.FieldExamples))
}

func TestRun_InvalidAnswerReprompts(t *testing.T) {
	res := newTestResolver(t)
	var out bytes.Buffer

	answers := allDefaults()
	answers[0] = "rails\nhono" // first attempt rejected, second accepted
	p := New(strings.NewReader(script(answers...)), &out, res)

	cfg, _, err := p.Run(res.Registry().Defaults())
	require.NoError(t, err)
	assert.Equal(t, "hono", cfg.ScalarOf(stack.FieldBackend))
	assert.Contains(t, out.String(), "pick one of the listed options")
}

func TestRun_EOFCancels(t *testing.T) {
	res := newTestResolver(t)
	var out bytes.Buffer

	p := New(strings.NewReader(""), &out, res)
	_, _, err := p.Run(res.Registry().Defaults())
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestRun_CancelMidChain(t *testing.T) {
	res := newTestResolver(t)
	var out bytes.Buffer

	// Three answers, then EOF on the fourth question.
	p := New(strings.NewReader("\n\n\n"), &out, res)
	_, _, err := p.Run(res.Registry().Defaults())
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestPick(t *testing.T) {
	candidates := []string{"hono", "express", "none"}

	got, ok := pick(candidates, "2")
	assert.True(t, ok)
	assert.Equal(t, "express", got)

	got, ok = pick(candidates, "none")
	assert.True(t, ok)
	assert.Equal(t, "none", got)

	_, ok = pick(candidates, "9")
	assert.False(t, ok)
	_, ok = pick(candidates, "rails")
	assert.False(t, ok)
}

func TestPickAll(t *testing.T) {
	candidates := []string{"pwa", "tauri", "biome"}

	got, ok := pickAll(candidates, "1, biome")
	require.True(t, ok)
	assert.Equal(t, []string{"pwa", "biome"}, got)

	_, ok = pickAll(candidates, "pwa, eslint")
	assert.False(t, ok)
}
