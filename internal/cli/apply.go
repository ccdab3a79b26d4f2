package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/ids"
	"github.com/roach88/charsheet/internal/schema"
)

// ApplyOptions holds flags for the apply and check commands.
type ApplyOptions struct {
	*RootOptions
	ID string
}

// AppliedMutation describes one mutation of an apply or check.
type AppliedMutation struct {
	Index    int            `json:"index"`
	Type     character.Type `json:"type"`
	Repaired []string       `json:"repaired,omitempty"`
}

// ApplyResult is the output of the apply and check commands.
type ApplyResult struct {
	Character string            `json:"character"`
	DryRun    bool              `json:"dry_run"`
	Cursor    int               `json:"cursor"`
	Mutations []AppliedMutation `json:"mutations"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <file|->",
		Short: "Apply mutations to a character",
		Long: `Apply a mutation document to a character and save the history.

The document is one mutation envelope or a list of them, in YAML or JSON.
It is validated against the mutation schema, decoded and applied in
order. If any mutation is rejected nothing is saved.

Exit codes:
  0 - All mutations applied
  1 - A mutation was rejected
  2 - Command error (unknown character, unreadable file, etc.)

Examples:
  charsheet apply --id jade exalt.yaml
  echo '{type: set_ability, payload: {ability: war, dots: 3}}' | charsheet apply --id jade -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, cmd, args[0], false)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "character id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file|->",
		Short: "Dry-run mutations against a character",
		Long: `Check a mutation document against a character without saving.

Mutations are checked in order, each against the state the previous ones
would produce.

Examples:
  charsheet check --id jade exalt.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, cmd, args[0], true)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "character id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runApply(opts *ApplyOptions, cmd *cobra.Command, path string, dryRun bool) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	validator, err := schema.New()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load mutation schema", err)
	}
	envs, err := validator.ValidateDocument(data)
	if err != nil {
		return f.Reject("invalid mutation document", err)
	}
	muts := make([]character.Mutation, 0, len(envs))
	for i, env := range envs {
		mut, err := character.Decode(env)
		if err != nil {
			return f.Reject(fmt.Sprintf("invalid mutation %d", i), err)
		}
		muts = append(muts, mut)
	}
	muts = ids.FillAll(muts, ids.UUIDv7{})

	st, es, err := opts.loadHistory(ctx, cmd, opts.ID)
	if err != nil {
		return err
	}
	defer st.Close()

	result := ApplyResult{
		Character: opts.ID,
		DryRun:    dryRun,
		Mutations: make([]AppliedMutation, 0, len(muts)),
	}
	for i, mut := range muts {
		if dryRun {
			if err := es.CheckMutation(mut); err != nil {
				return f.Reject(fmt.Sprintf("mutation %d (%s) rejected", i, mut.Type()), err)
			}
		}
		view, err := es.ApplyMutation(mut)
		if err != nil {
			return f.Reject(fmt.Sprintf("mutation %d (%s) rejected", i, mut.Type()), err)
		}
		result.Mutations = append(result.Mutations, AppliedMutation{
			Index:    i,
			Type:     mut.Type(),
			Repaired: view.LastRepair().Labels(),
		})
	}
	result.Cursor = es.Cursor()

	if !dryRun && len(muts) > 0 {
		if err := st.SaveHistory(ctx, opts.ID, es); err != nil {
			return WrapExitError(ExitCommandError, "failed to save history", err)
		}
	}

	if opts.Format == "json" {
		return f.Success(result)
	}
	return outputApplyText(cmd, result)
}

func outputApplyText(cmd *cobra.Command, result ApplyResult) error {
	w := cmd.OutOrStdout()
	verb := "Applied"
	if result.DryRun {
		verb = "Checked"
	}
	for _, m := range result.Mutations {
		fmt.Fprintf(w, "✓ %s\n", m.Type)
		if len(m.Repaired) > 0 {
			fmt.Fprintf(w, "  removed: %s\n", strings.Join(m.Repaired, ", "))
		}
	}
	fmt.Fprintf(w, "%s %d mutation(s) to %s, cursor %d\n", verb, len(result.Mutations), result.Character, result.Cursor)
	return nil
}
