package sim

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces transaction tokens for committed operations.
// Tokens correlate a log record with external traces and published events;
// ordering always comes from seq, never from the token.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, which makes
// tokens sortable by creation time - helpful when correlating log records
// with external systems.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens for testing.
//
// This enables deterministic execution and golden trace comparison: tests
// provide a known sequence of tokens and verify exact log output.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal
// mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
// Generate panics once all tokens are consumed - a test that runs more
// operations than it provisioned tokens for is broken.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic(fmt.Sprintf("FixedGenerator: all %d tokens exhausted", len(g.tokens)))
	}
	tok := g.tokens[g.idx]
	g.idx++
	return tok
}

// SeqTokens returns n tokens of the form "op-0001", "op-0002", ...
// Convenience for harness scenarios.
func SeqTokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("op-%04d", i+1)
	}
	return out
}
