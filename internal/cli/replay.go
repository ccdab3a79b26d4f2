package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/charsheet/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	ID string // optional - specific character only
}

// ReplayCharacterResult holds the replay result for a single character.
type ReplayCharacterResult struct {
	Character     string `json:"character"`
	Cursor        int    `json:"cursor"`
	SnapshotHash  string `json:"snapshot_hash"`
	ReplayHash    string `json:"replay_hash"`
	Deterministic bool   `json:"deterministic"`
	Match         bool   `json:"match"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Characters []ReplayCharacterResult `json:"characters"`
	Total      int                     `json:"total"`
	AllOK      bool                    `json:"all_ok"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay histories and verify their snapshots",
		Long: `Replay stored histories to verify determinism and snapshot integrity.

Each history is replayed twice from its base memo. Both canonical memo
hashes must agree with each other and with the stored snapshot hash.

Exit codes:
  0 - Every history replays to its snapshot
  1 - Verification failed (mismatch or non-deterministic replay)
  2 - Command error (database not found, unknown character, etc.)

Examples:
  charsheet replay
  charsheet replay --id jade
  charsheet replay --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "replay one character only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var results []store.ReplayResult
	if opts.ID != "" {
		r, err := st.VerifyReplay(ctx, opts.ID)
		if err != nil {
			return notFound(opts.ID, err)
		}
		results = []store.ReplayResult{r}
	} else {
		results, err = st.VerifyAll(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay histories", err)
		}
	}

	result := ReplayResult{
		Characters: make([]ReplayCharacterResult, 0, len(results)),
		Total:      len(results),
		AllOK:      true,
	}
	for _, r := range results {
		result.Characters = append(result.Characters, ReplayCharacterResult{
			Character:     r.CharacterID,
			Cursor:        r.Cursor,
			SnapshotHash:  r.SnapshotHash,
			ReplayHash:    r.ReplayHash,
			Deterministic: r.Deterministic,
			Match:         r.Match,
		})
		if !r.OK() {
			result.AllOK = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllOK {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeReplayFailed,
			Message: "replay verification failed",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.AllOK {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if result.Total == 0 {
		fmt.Fprintln(w, "No characters found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d character(s)\n", result.Total)
	fmt.Fprintln(w)

	for _, c := range result.Characters {
		status := "✓"
		if !c.Deterministic || !c.Match {
			status = "✗"
		}

		fmt.Fprintf(w, "%s %s (cursor %d)\n", status, c.Character, c.Cursor)
		if verbose {
			fmt.Fprintf(w, "  Snapshot: %s\n", c.SnapshotHash)
			fmt.Fprintf(w, "  Replayed: %s\n", c.ReplayHash)
		}
		if !c.Deterministic {
			fmt.Fprintln(w, "  Warning: Non-deterministic replay detected!")
		}
		if !c.Match {
			fmt.Fprintln(w, "  Warning: Replay does not match the stored snapshot!")
		}
	}
	fmt.Fprintln(w)

	if result.AllOK {
		fmt.Fprintln(w, "✓ All histories verified")
		return nil
	}

	fmt.Fprintln(w, "✗ Replay verification failed")
	return NewExitError(ExitFailure, "replay verification failed")
}
