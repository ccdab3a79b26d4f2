package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/charsheet/internal/character"
)

// MoveOptions holds flags for the undo and redo commands.
type MoveOptions struct {
	*RootOptions
	ID    string
	Steps int
}

// MoveResult is the output of the undo and redo commands.
type MoveResult struct {
	Character string `json:"character"`
	Op        string `json:"op"`
	Moved     int    `json:"moved"`
	Cursor    int    `json:"cursor"`
	LogLength int    `json:"log_length"`
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	ID string
}

// HistoryEntry is one logged mutation.
type HistoryEntry struct {
	Seq    int64          `json:"seq"`
	ID     string         `json:"id"`
	Type   character.Type `json:"type"`
	Active bool           `json:"active"`
}

// HistoryResult is the output of the history command.
type HistoryResult struct {
	Character string         `json:"character"`
	Cursor    int            `json:"cursor"`
	Entries   []HistoryEntry `json:"entries"`
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return newMoveCommand(rootOpts, "undo", "Undo the last active mutation")
}

// NewRedoCommand creates the redo command.
func NewRedoCommand(rootOpts *RootOptions) *cobra.Command {
	return newMoveCommand(rootOpts, "redo", "Redo the next undone mutation")
}

func newMoveCommand(rootOpts *RootOptions, op, short string) *cobra.Command {
	opts := &MoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   op,
		Short: short,
		Long: fmt.Sprintf(`%s and save the new cursor.

Undone mutations stay in the log until a new mutation is applied.

Exit codes:
  0 - Cursor moved
  1 - Nothing to %s
  2 - Command error

Examples:
  charsheet %s --id jade
  charsheet %s --id jade --steps 3`, short, op, op, op),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(opts, cmd, op)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "character id (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().IntVar(&opts.Steps, "steps", 1, "number of mutations to move over")

	return cmd
}

func runMove(opts *MoveOptions, cmd *cobra.Command, op string) error {
	ctx := context.Background()
	f := opts.formatter(cmd)
	if opts.Steps < 1 {
		return NewExitError(ExitCommandError, "--steps must be at least 1")
	}

	st, es, err := opts.loadHistory(ctx, cmd, opts.ID)
	if err != nil {
		return err
	}
	defer st.Close()

	move := es.Undo
	if op == "redo" {
		move = es.Redo
	}
	result := MoveResult{Character: opts.ID, Op: op}
	for result.Moved < opts.Steps && move() {
		result.Moved++
	}
	result.Cursor = es.Cursor()
	result.LogLength = len(es.Log())

	if result.Moved == 0 {
		msg := fmt.Sprintf("nothing to %s", op)
		if err := f.Error(ErrCodeNothingToDo, msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	if err := st.SaveHistory(ctx, opts.ID, es); err != nil {
		return WrapExitError(ExitCommandError, "failed to save history", err)
	}

	if opts.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %d, cursor %d/%d\n", op, result.Moved, result.Cursor, result.LogLength)
	return nil
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a character's mutation log",
		Long: `Show the stored mutation log with the cursor position.

Mutations after the cursor are undone and can be redone.

Examples:
  charsheet history --id jade
  charsheet history --id jade --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "character id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.ReadCharacter(ctx, opts.ID)
	if err != nil {
		return notFound(opts.ID, err)
	}
	records, err := st.ReadLog(ctx, opts.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read log", err)
	}

	result := HistoryResult{
		Character: rec.ID,
		Cursor:    rec.Cursor,
		Entries:   make([]HistoryEntry, 0, len(records)),
	}
	for _, r := range records {
		result.Entries = append(result.Entries, HistoryEntry{
			Seq:    r.Seq,
			ID:     r.ID,
			Type:   r.Type,
			Active: r.Seq <= int64(rec.Cursor),
		})
	}

	if opts.Format == "json" {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n", rec.ID, rec.Name)
	if len(result.Entries) == 0 {
		fmt.Fprintln(w, "  no mutations")
		return nil
	}
	for _, e := range result.Entries {
		if e.Seq == int64(result.Cursor)+1 {
			fmt.Fprintln(w, "  ---- cursor ----")
		}
		id := e.ID
		if !opts.Verbose && len(id) > 12 {
			id = id[:12]
		}
		fmt.Fprintf(w, "  %3d  %s  %s\n", e.Seq, id, e.Type)
	}
	if result.Cursor == len(result.Entries) {
		fmt.Fprintln(w, "  ---- cursor ----")
	}
	return nil
}
