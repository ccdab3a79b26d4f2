package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/charsheet/internal/canonical"
	"github.com/roach88/charsheet/internal/character"
)

// MutationRecord is one persisted log entry.
type MutationRecord struct {
	CharacterID string
	Seq         int64
	ID          string
	Type        character.Type
	Payload     json.RawMessage
}

// marshalMemo serializes a memo to canonical JSON and returns it with its
// content hash.
func marshalMemo(memo character.Memo) (data string, hash string, err error) {
	raw, err := canonical.Marshal(memo)
	if err != nil {
		return "", "", fmt.Errorf("marshal memo: %w", err)
	}
	hash, err = canonical.MemoHash(memo)
	if err != nil {
		return "", "", fmt.Errorf("hash memo: %w", err)
	}
	return string(raw), hash, nil
}

// unmarshalMemo parses and validates a stored memo.
func unmarshalMemo(data string) (character.Memo, error) {
	memo, err := character.ParseMemo([]byte(data))
	if err != nil {
		return character.Memo{}, fmt.Errorf("unmarshal memo: %w", err)
	}
	return memo, nil
}

// encodeLog converts a mutation log into records with 1-based sequence
// numbers, canonical payloads and content-addressed IDs.
func encodeLog(characterID string, log []character.Mutation) ([]MutationRecord, error) {
	records := make([]MutationRecord, 0, len(log))
	for i, mut := range log {
		env, err := character.Encode(mut)
		if err != nil {
			return nil, fmt.Errorf("encode mutation %d: %w", i+1, err)
		}
		payload := env.Payload
		if len(payload) == 0 {
			payload = json.RawMessage("{}")
		}
		payload, err = canonical.Canonicalize(payload)
		if err != nil {
			return nil, fmt.Errorf("canonicalize mutation %d: %w", i+1, err)
		}
		seq := int64(i + 1)
		id, err := canonical.MutationID(characterID, seq, string(env.Type), payload)
		if err != nil {
			return nil, fmt.Errorf("identify mutation %d: %w", i+1, err)
		}
		records = append(records, MutationRecord{
			CharacterID: characterID,
			Seq:         seq,
			ID:          id,
			Type:        env.Type,
			Payload:     payload,
		})
	}
	return records, nil
}

// decodeRecord verifies a record's content address and decodes it.
func decodeRecord(rec MutationRecord) (character.Mutation, error) {
	id, err := canonical.MutationID(rec.CharacterID, rec.Seq, string(rec.Type), rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("identify mutation %d: %w", rec.Seq, err)
	}
	if id != rec.ID {
		return nil, fmt.Errorf("mutation %d: stored id %s does not match content id %s", rec.Seq, rec.ID, id)
	}
	mut, err := character.Decode(character.Envelope{Type: rec.Type, Payload: rec.Payload})
	if err != nil {
		return nil, fmt.Errorf("decode mutation %d: %w", rec.Seq, err)
	}
	return mut, nil
}
