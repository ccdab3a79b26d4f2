// Package ids generates identifiers for commitments and merits.
//
// Production code uses UUIDv7, which sorts by creation time. Tests and
// scenarios use Fixed or Sequence generators so that event logs and golden
// memos are byte-identical across runs.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/charsheet/internal/character"
)

// Generator produces identifiers.
type Generator interface {
	Generate() string
}

// UUIDv7 generates time-ordered UUIDv7 strings.
//
// Thread-safety: safe for concurrent use.
type UUIDv7 struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Fixed returns the same identifier every time.
type Fixed struct {
	id string
}

// NewFixed creates a fixed generator. If id is empty, Generate returns
// "fixed-id".
func NewFixed(id string) Fixed {
	if id == "" {
		id = "fixed-id"
	}
	return Fixed{id: id}
}

// Generate returns the fixed identifier.
func (g Fixed) Generate() string {
	return g.id
}

// Sequence generates prefix-1, prefix-2, ... and can be reset for reuse.
//
// Thread-safety: all methods are safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      int64
}

// NewSequence creates a sequence generator. The first call to Generate
// returns prefix-1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Generate returns the next identifier in the sequence.
func (g *Sequence) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts the sequence at 1.
func (g *Sequence) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// Fill assigns a generated ID to mutations that carry one and left it
// empty. Other mutations are returned unchanged.
func Fill(mut character.Mutation, gen Generator) character.Mutation {
	switch m := mut.(type) {
	case character.CommitMotes:
		if m.ID == "" {
			m.ID = gen.Generate()
		}
		return m
	case character.AddMerit:
		if m.ID == "" {
			m.ID = gen.Generate()
		}
		return m
	}
	return mut
}

// FillAll applies Fill to every mutation, in order.
func FillAll(muts []character.Mutation, gen Generator) []character.Mutation {
	out := make([]character.Mutation, len(muts))
	for i, mut := range muts {
		out[i] = Fill(mut, gen)
	}
	return out
}
