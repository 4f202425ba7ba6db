// Package testutil holds shared deterministic test doubles.
package testutil

import "sync"

// SequenceTokenGenerator returns predetermined session tokens in order,
// enabling stable response bodies and golden comparison in builder tests.
//
// Thread-safe; panics when the sequence is exhausted so a test that
// creates more sessions than it planned for fails loudly.
type SequenceTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewSequenceTokenGenerator creates a generator that yields tokens in the
// given order.
func NewSequenceTokenGenerator(tokens ...string) *SequenceTokenGenerator {
	return &SequenceTokenGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *SequenceTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("testutil: token sequence exhausted")
	}
	tok := g.tokens[g.idx]
	g.idx++
	return tok
}
