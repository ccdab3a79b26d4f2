package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/ids"
	"github.com/roach88/charsheet/internal/rejection"
	"github.com/roach88/charsheet/internal/schema"
	"github.com/roach88/charsheet/internal/store"
)

// Harness executes one scenario against a fresh store and event source.
type Harness struct {
	store     *store.Store
	validator *schema.Validator
	ids       *ids.Sequence
	logger    *slog.Logger
	id        string
	es        *character.EventSource
}

// Option configures a harness run.
type Option func(*Harness)

// WithLogger sets the logger for step and event source logs.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. Missing commitment and
// merit IDs are filled from a sequence ("id-1", "id-2", ...) so that runs
// are reproducible. After the last step the stored history is replayed and
// must reproduce the stored snapshot.
//
// Unexpected step outcomes and failed assertions are reported in the
// result. The error is reserved for scenarios that cannot be executed.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	validator, err := schema.New()
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:     st,
		validator: validator,
		ids:       ids.NewSequence("id"),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		id:        scenario.Name,
	}
	for _, opt := range opts {
		opt(h)
	}

	ctx := context.Background()
	base, err := scenario.baseMemo()
	if err != nil {
		return nil, fmt.Errorf("failed to load base memo: %w", err)
	}
	if err := st.CreateCharacter(ctx, h.id, "", base); err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	h.es, err = character.NewEventSource(base, character.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to start history: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	replay, err := st.VerifyReplay(ctx, h.id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify replay: %w", err)
	}
	if !replay.OK() {
		result.AddError(fmt.Sprintf("replay mismatch: snapshot %s, replayed %s (deterministic=%t)",
			replay.SnapshotHash, replay.ReplayHash, replay.Deterministic))
	}

	snap, err := st.ReadSnapshot(ctx, h.id)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	result.Memo = snap.Memo
	result.Cursor = h.es.Cursor()
	for _, mut := range h.es.Log()[:h.es.Cursor()] {
		result.Log = append(result.Log, mut.Type())
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep runs one step, records it and compares the outcome with the
// step's expectation.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	ev := TraceEvent{Step: i}
	var expect Expect
	if step.Expect != nil {
		expect = *step.Expect
	}

	switch {
	case step.Undo, step.Redo:
		ev.Op = OpUndo
		move := h.es.Undo
		if step.Redo {
			ev.Op = OpRedo
			move = h.es.Redo
		}
		moved := move()
		if moved == expect.Noop {
			result.AddError(fmt.Sprintf("step %d: %s moved=%t, expected noop=%t", i, ev.Op, moved, expect.Noop))
		}
		if moved {
			if err := h.store.SaveHistory(ctx, h.id, h.es); err != nil {
				return err
			}
		}

	default:
		doc, op := step.Apply, OpApply
		if step.Check != nil {
			doc, op = step.Check, OpCheck
		}
		ev.Op = op
		mut, typ, rejected := h.decode(doc)
		ev.Type = typ
		if rejected == nil {
			if op == OpCheck {
				rejected = h.es.CheckMutation(mut)
			} else {
				var view *character.Character
				view, rejected = h.es.ApplyMutation(mut)
				if rejected == nil {
					ev.Repaired = view.LastRepair().Labels()
					if err := h.store.SaveHistory(ctx, h.id, h.es); err != nil {
						return err
					}
				}
			}
		}
		if rejected != nil && rejection.CodeOf(rejected) == "" {
			return rejected
		}
		ev.Code = rejection.CodeOf(rejected)
		if ev.Code != expect.Rejected {
			result.AddError(fmt.Sprintf("step %d: %s %s: expected rejection %q, got %q (%v)",
				i, op, typ, expect.Rejected, ev.Code, rejected))
		}
		if expect.Repaired != nil && !equalStrings(ev.Repaired, expect.Repaired) {
			result.AddError(fmt.Sprintf("step %d: %s %s: expected repaired %v, got %v",
				i, op, typ, expect.Repaired, ev.Repaired))
		}
	}

	ev.Cursor = h.es.Cursor()
	result.AddTrace(ev)
	h.logger.Info("scenario step completed",
		"step", i,
		"op", ev.Op,
		"type", ev.Type,
		"code", ev.Code,
		"cursor", ev.Cursor)
	return nil
}

// decode validates a step's mutation against the schema and decodes it.
// Validation failures are returned as rejections so that scenarios can
// expect them.
func (h *Harness) decode(doc map[string]interface{}) (character.Mutation, character.Type, error) {
	env, err := envelope(doc)
	if err != nil {
		return nil, "", err
	}
	if err := h.validator.ValidateEnvelope(env); err != nil {
		return nil, env.Type, err
	}
	mut, err := character.Decode(env)
	if err != nil {
		return nil, env.Type, err
	}
	return ids.Fill(mut, h.ids), env.Type, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
