package character

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/charsheet/internal/rejection"
)

// Envelope is the serialized form of a mutation: its type tag and its JSON
// payload. It is what the store persists and what documents contain.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps a mutation in an envelope.
func Encode(mut Mutation) (Envelope, error) {
	if mut == nil {
		return Envelope{}, unknownMutation("")
	}
	payload, err := json.Marshal(mut)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", mut.Type(), err)
	}
	return Envelope{Type: mut.Type(), Payload: payload}, nil
}

// Decode unwraps an envelope. Unknown payload fields are rejected.
func Decode(env Envelope) (Mutation, error) {
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, unknownMutation(env.Type)
	}
	return decode(env.Payload)
}

// cloneMutation returns a copy of mut that shares no slices, maps or
// pointers with it.
func cloneMutation(mut Mutation) (Mutation, error) {
	env, err := Encode(mut)
	if err != nil {
		return nil, err
	}
	return Decode(env)
}

func decodeAs[T Mutation](payload []byte) (Mutation, error) {
	var v T
	if len(bytes.TrimSpace(payload)) == 0 {
		return v, nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, rejection.Newf(rejection.CodePayloadInvalid, "decode %s payload: %v", v.Type(), err)
	}
	if dec.More() {
		return nil, rejection.Newf(rejection.CodePayloadInvalid, "decode %s payload: trailing data", v.Type())
	}
	return v, nil
}

// MarshalMutation encodes a mutation as an envelope JSON document.
func MarshalMutation(mut Mutation) ([]byte, error) {
	env, err := Encode(mut)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// UnmarshalMutation decodes an envelope JSON document.
func UnmarshalMutation(data []byte) (Mutation, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, rejection.Newf(rejection.CodePayloadInvalid, "decode mutation: %v", err)
	}
	return Decode(env)
}

// ParseDocument reads a YAML or JSON document holding a single mutation
// envelope or a sequence of them.
func ParseDocument(data []byte) ([]Envelope, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, rejection.Newf(rejection.CodePayloadInvalid, "parse mutation document: %v", err)
	}
	var items []any
	switch v := root.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	case nil:
		return nil, nil
	default:
		return nil, rejection.Newf(rejection.CodePayloadInvalid, "mutation document must be a mapping or a sequence, got %T", root)
	}
	out := make([]Envelope, 0, len(items))
	for i, item := range items {
		env, err := envelopeOf(item)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		out = append(out, env)
	}
	return out, nil
}

// DecodeDocument parses a document and decodes every mutation in it.
func DecodeDocument(data []byte) ([]Mutation, error) {
	envs, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	out := make([]Mutation, 0, len(envs))
	for i, env := range envs {
		mut, err := Decode(env)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		out = append(out, mut)
	}
	return out, nil
}

// envelopeOf converts one generic YAML value into an envelope.
func envelopeOf(item any) (Envelope, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return Envelope{}, rejection.Newf(rejection.CodePayloadInvalid, "mutation must be a mapping, got %T", item)
	}
	for k := range obj {
		if k != "type" && k != "payload" {
			return Envelope{}, rejection.Newf(rejection.CodePayloadInvalid, "unknown mutation field %q", k)
		}
	}
	t, ok := obj["type"].(string)
	if !ok || t == "" {
		return Envelope{}, rejection.New(rejection.CodePayloadInvalid, "mutation type is required")
	}
	env := Envelope{Type: Type(t)}
	if p, ok := obj["payload"]; ok && p != nil {
		payload, err := json.Marshal(p)
		if err != nil {
			return Envelope{}, rejection.Newf(rejection.CodePayloadInvalid, "encode %s payload: %v", t, err)
		}
		env.Payload = payload
	}
	return env, nil
}

// ParseMemo reads a memo from YAML or JSON and validates it. Unknown fields
// are rejected.
func ParseMemo(data []byte) (Memo, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return Memo{}, rejection.Newf(rejection.CodeMemoInvalid, "parse memo: %v", err)
	}
	raw, err := json.Marshal(generic)
	if err != nil {
		return Memo{}, rejection.Newf(rejection.CodeMemoInvalid, "parse memo: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var m Memo
	if err := dec.Decode(&m); err != nil {
		return Memo{}, rejection.Newf(rejection.CodeMemoInvalid, "decode memo: %v", err)
	}
	if err := m.Validate(); err != nil {
		return Memo{}, err
	}
	return m, nil
}
