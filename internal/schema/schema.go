// Package schema validates mutation documents against an embedded CUE
// schema before they are decoded. It catches unknown mutation types, unknown
// payload keys and mistyped values with CUE's own diagnostics; numeric ranges
// and cross-field rules are left to the character engine.
package schema

import (
	_ "embed"
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/rejection"
)

//go:embed mutation.cue
var source string

// Validator checks mutation envelopes. It is not safe for concurrent use
// because CUE contexts are not.
type Validator struct {
	ctx      *cue.Context
	payloads cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(source, cue.Filename("mutation.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile mutation schema: %w", err)
	}
	payloads := root.LookupPath(cue.ParsePath("#Payloads"))
	if err := payloads.Err(); err != nil {
		return nil, fmt.Errorf("compile mutation schema: %w", err)
	}
	return &Validator{ctx: ctx, payloads: payloads}, nil
}

// Types lists the mutation types the schema describes, sorted.
func (v *Validator) Types() ([]character.Type, error) {
	iter, err := v.payloads.Fields()
	if err != nil {
		return nil, fmt.Errorf("list schema types: %w", err)
	}
	var out []character.Type
	for iter.Next() {
		out = append(out, character.Type(iter.Selector().Unquoted()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ValidateEnvelope checks one envelope's type and payload.
func (v *Validator) ValidateEnvelope(env character.Envelope) error {
	def := v.payloads.LookupPath(cue.MakePath(cue.Str(string(env.Type))))
	if !def.Exists() {
		return rejection.Newf(rejection.CodeUnknownMutation, "unknown mutation type %q", env.Type)
	}
	payload := []byte(env.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	data := v.ctx.CompileBytes(payload, cue.Filename(string(env.Type)))
	if err := data.Err(); err != nil {
		return payloadError(env.Type, err)
	}
	if err := def.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return payloadError(env.Type, err)
	}
	return nil
}

// ValidateDocument parses a YAML or JSON mutation document and validates
// every envelope in it. The parsed envelopes are returned for decoding.
func (v *Validator) ValidateDocument(data []byte) ([]character.Envelope, error) {
	envs, err := character.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	for i, env := range envs {
		if err := v.ValidateEnvelope(env); err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
	}
	return envs, nil
}

// payloadError converts CUE diagnostics into a rejection. The first
// diagnostic is the message; the total count is kept as a detail.
func payloadError(t character.Type, err error) error {
	errs := errors.Errors(err)
	msg := err.Error()
	if len(errs) > 0 {
		msg = errs[0].Error()
	}
	return rejection.Newf(rejection.CodePayloadInvalid, "%s payload: %s", t, msg).
		With("type", string(t)).
		With("errors", fmt.Sprint(max(len(errs), 1)))
}
