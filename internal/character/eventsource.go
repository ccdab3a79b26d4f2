package character

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/charsheet/internal/rejection"
)

// EventSource is a base memo plus an append-only, cursor-addressed log of
// mutations. The current view is always the base replayed through
// log[:cursor].
//
// CRITICAL: the base memo is never mutated and views are immutable
// snapshots. A view obtained before an apply, undo or redo keeps describing
// the state it was taken from.
//
// Thread-safety: none. One EventSource per session; callers serialize.
type EventSource struct {
	base   Memo
	log    []Mutation
	cursor int
	view   *Character
	logger *slog.Logger
}

// Option configures an EventSource.
type Option func(*EventSource)

// WithLogger sets the logger used for apply, undo and redo events.
func WithLogger(l *slog.Logger) Option {
	return func(es *EventSource) {
		es.logger = l
	}
}

// NewEventSource starts an empty history on top of base.
func NewEventSource(base Memo, opts ...Option) (*EventSource, error) {
	return RestoreEventSource(base, nil, 0, opts...)
}

// RestoreEventSource rebuilds a history from a persisted base memo, log and
// cursor. Every logged mutation must replay cleanly, including those past
// the cursor.
func RestoreEventSource(base Memo, log []Mutation, cursor int, opts ...Option) (*EventSource, error) {
	root, err := FromMemo(base)
	if err != nil {
		return nil, fmt.Errorf("base memo: %w", err)
	}
	if cursor < 0 || cursor > len(log) {
		return nil, rejection.Newf(rejection.CodeMemoInvalid, "cursor %d outside log of length %d", cursor, len(log))
	}
	owned, err := cloneLog(log)
	if err != nil {
		return nil, err
	}
	es := &EventSource{
		base:   root.memo,
		log:    owned,
		cursor: cursor,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(es)
	}

	view := root
	for i, mut := range es.log {
		next, err := view.next(mut)
		if err != nil {
			return nil, fmt.Errorf("replay mutation %d (%s): %w", i, typeOf(mut), err)
		}
		if i == cursor-1 {
			es.view = next
		}
		view = next
	}
	if cursor == 0 {
		es.view = root
	}
	es.view = es.view.snapshot()
	es.logger.Debug("event source restored",
		"log_length", len(es.log),
		"cursor", es.cursor)
	return es, nil
}

// cloneLog deep-copies every mutation of log.
func cloneLog(log []Mutation) ([]Mutation, error) {
	out := make([]Mutation, 0, len(log))
	for i, mut := range log {
		owned, err := cloneMutation(mut)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		out = append(out, owned)
	}
	return out, nil
}

// snapshot returns a read-only character sharing nothing with c.
func (c *Character) snapshot() *Character {
	return &Character{memo: c.memo.Clone(), readOnly: true, repair: c.repair}
}

// View returns the current read-only character.
func (es *EventSource) View() *Character {
	return es.view
}

// Memo returns an owned copy of the current state.
func (es *EventSource) Memo() Memo {
	return es.view.Memo()
}

// Base returns an owned copy of the base memo.
func (es *EventSource) Base() Memo {
	return es.base.Clone()
}

// Log returns a copy of the full log, including mutations past the cursor.
func (es *EventSource) Log() []Mutation {
	out, err := cloneLog(es.log)
	if err != nil {
		panic(rejection.Invariantf("logged mutation does not encode: %v", err))
	}
	return out
}

// Cursor is the number of active mutations.
func (es *EventSource) Cursor() int {
	return es.cursor
}

// CheckMutation reports whether mut could be applied to the current view.
func (es *EventSource) CheckMutation(mut Mutation) error {
	return es.view.CheckMutation(mut)
}

// ApplyMutation applies mut to the current view, truncates any redo tail
// and appends a copy of mut at the cursor. It returns the new view. Later
// changes to mut do not reach the log.
func (es *EventSource) ApplyMutation(mut Mutation) (*Character, error) {
	owned, err := cloneMutation(mut)
	if err != nil {
		return nil, err
	}
	next, err := es.view.next(owned)
	if err != nil {
		es.logger.Debug("mutation rejected",
			"type", typeOf(mut),
			"cursor", es.cursor,
			"code", rejection.CodeOf(err))
		return nil, err
	}
	dropped := len(es.log) - es.cursor
	es.log = append(es.log[:es.cursor:es.cursor], owned)
	es.cursor++
	es.view = next.snapshot()

	attrs := []any{"type", mut.Type(), "cursor", es.cursor}
	if dropped > 0 {
		attrs = append(attrs, "redo_dropped", dropped)
	}
	if r := next.repair; r.Changed() {
		attrs = append(attrs, "charms_removed", len(r.Charms), "circles_removed", len(r.Circles))
	}
	es.logger.Debug("mutation applied", attrs...)
	return es.view, nil
}

// CanUndo reports whether there is an active mutation to undo.
func (es *EventSource) CanUndo() bool {
	return es.cursor > 0
}

// CanRedo reports whether there is an undone mutation to redo.
func (es *EventSource) CanRedo() bool {
	return es.cursor < len(es.log)
}

// Undo hides the last active mutation and rebuilds the view by replaying
// the base through the remaining log. It reports false when there is
// nothing to undo.
func (es *EventSource) Undo() bool {
	if !es.CanUndo() {
		return false
	}
	es.cursor--
	es.view = es.replay(es.cursor).snapshot()
	es.logger.Debug("undo", "cursor", es.cursor)
	return true
}

// Redo re-applies the next undone mutation. It reports false when there is
// nothing to redo.
func (es *EventSource) Redo() bool {
	if !es.CanRedo() {
		return false
	}
	mut := es.log[es.cursor]
	next, err := es.view.next(mut)
	if err != nil {
		es.fail(es.cursor, mut, err)
	}
	es.cursor++
	es.view = next.snapshot()
	es.logger.Debug("redo", "type", mut.Type(), "cursor", es.cursor)
	return true
}

// replay rebuilds the character from the base through log[:n].
func (es *EventSource) replay(n int) *Character {
	view := &Character{memo: es.base.Clone()}
	for i, mut := range es.log[:n] {
		next, err := view.next(mut)
		if err != nil {
			es.fail(i, mut, err)
		}
		view = next
	}
	return view
}

// fail reports a logged mutation that no longer replays. Logged mutations
// were validated when applied, so this is always an engine bug.
func (es *EventSource) fail(i int, mut Mutation, err error) {
	es.logger.Error("replay failed",
		"index", i,
		"type", mut.Type(),
		"error", err)
	panic(rejection.Invariantf("replay of logged mutation %d (%s) failed: %v", i, mut.Type(), err))
}
