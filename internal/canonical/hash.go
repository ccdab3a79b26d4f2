package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainMemo     = "charsheet/memo/v1"
	DomainMutation = "charsheet/mutation/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MemoHash computes the content hash of a character memo. Two memos with the
// same hash are identical once canonicalized.
func MemoHash(memo any) (string, error) {
	data, err := Marshal(memo)
	if err != nil {
		return "", fmt.Errorf("MemoHash: %w", err)
	}
	return hashWithDomain(DomainMemo, data), nil
}

// MutationID computes the identity of a logged mutation. The ID is stable
// across restarts and replays given the same inputs.
func MutationID(characterID string, seq int64, mutationType string, payload json.RawMessage) (string, error) {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	obj := map[string]any{
		"character_id": characterID,
		"seq":          seq,
		"type":         mutationType,
		"payload":      payload,
	}
	data, err := Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("MutationID: %w", err)
	}
	return hashWithDomain(DomainMutation, data), nil
}

// MustMutationID is like MutationID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustMutationID(characterID string, seq int64, mutationType string, payload json.RawMessage) string {
	id, err := MutationID(characterID, seq, mutationType, payload)
	if err != nil {
		panic(err)
	}
	return id
}
