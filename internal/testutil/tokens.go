package testutil

import (
	"fmt"
	"sync"
)

// SequentialTokens hands out pair tokens "<prefix>-1", "<prefix>-2", ...
// It satisfies binding.TokenGenerator.
//
// Pair tokens must be distinct, so unlike a fixed generator every call
// yields a new value; the sequence is still identical across runs.
type SequentialTokens struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialTokens creates a generator. An empty prefix means "pair".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "pair"
	}
	return &SequentialTokens{prefix: prefix}
}

// Generate returns the next token.
func (g *SequentialTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Issued returns how many tokens were generated.
func (g *SequentialTokens) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// Reset restarts the sequence at 1.
func (g *SequentialTokens) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
