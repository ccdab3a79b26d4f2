package store

import (
	"context"
	"fmt"

	"github.com/roach88/charsheet/internal/canonical"
)

// ReplayResult reports whether a stored history reproduces its snapshot.
type ReplayResult struct {
	CharacterID  string
	Cursor       int
	SnapshotHash string
	ReplayHash   string

	// Deterministic is true when two independent replays agree.
	Deterministic bool

	// Match is true when the replayed memo hashes to the snapshot hash.
	Match bool
}

// OK reports whether the replay was deterministic and matched the snapshot.
func (r ReplayResult) OK() bool {
	return r.Deterministic && r.Match
}

// VerifyReplay replays a character's history twice from its base memo and
// compares the canonical memo hashes against each other and against the
// stored snapshot.
func (s *Store) VerifyReplay(ctx context.Context, id string) (ReplayResult, error) {
	result := ReplayResult{CharacterID: id}

	snap, err := s.ReadSnapshot(ctx, id)
	if err != nil {
		return result, fmt.Errorf("verify replay %s: %w", id, err)
	}
	result.SnapshotHash = snap.MemoHash

	var hashes [2]string
	for i := range hashes {
		es, err := s.LoadHistory(ctx, id)
		if err != nil {
			return result, fmt.Errorf("verify replay: %w", err)
		}
		hash, err := canonical.MemoHash(es.Memo())
		if err != nil {
			return result, fmt.Errorf("verify replay %s: %w", id, err)
		}
		hashes[i] = hash
		result.Cursor = es.Cursor()
	}

	result.ReplayHash = hashes[0]
	result.Deterministic = hashes[0] == hashes[1]
	result.Match = hashes[0] == snap.MemoHash && result.Cursor == snap.Cursor
	return result, nil
}

// VerifyAll runs VerifyReplay for every stored character, ordered by ID.
func (s *Store) VerifyAll(ctx context.Context) ([]ReplayResult, error) {
	records, err := s.ListCharacters(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("verify all: %w", err)
	}
	results := make([]ReplayResult, 0, len(records))
	for _, rec := range records {
		result, err := s.VerifyReplay(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
