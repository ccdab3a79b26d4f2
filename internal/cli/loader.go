package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/store"
)

// Command error codes. Rejected mutations use their rejection code instead.
const (
	ErrCodeNothingToDo  = "E001" // Undo or redo with nothing to move
	ErrCodeReplayFailed = "E002" // Replay did not reproduce the snapshot
	ErrCodeTestFailed   = "E_TEST_FAILED"
)

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns a text logger on stderr. Verbose lowers the level to debug.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := o.LogLevel
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openStore opens the configured database.
func (o *RootOptions) openStore() (*store.Store, error) {
	if o.DB == "" {
		return nil, NewExitError(ExitCommandError, "database path is required (--db or CHARSHEET_DB)")
	}
	st, err := store.Open(o.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// loadHistory opens the store and loads a character's history. The caller
// closes the store.
func (o *RootOptions) loadHistory(ctx context.Context, cmd *cobra.Command, id string) (*store.Store, *character.EventSource, error) {
	st, err := o.openStore()
	if err != nil {
		return nil, nil, err
	}
	es, err := st.LoadHistory(ctx, id, character.WithLogger(o.logger(cmd)))
	if err != nil {
		st.Close()
		return nil, nil, notFound(id, err)
	}
	return st, es, nil
}

// notFound maps a missing character to a command error.
func notFound(id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("character not found: %s", id))
	}
	return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load character %s", id), err)
}

// readInput reads a file, or standard input when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("file not found: %s", path))
		}
		return nil, WrapExitError(ExitCommandError, "failed to read file", err)
	}
	return data, nil
}
