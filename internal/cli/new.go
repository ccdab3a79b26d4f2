package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/ids"
	"github.com/roach88/charsheet/internal/store"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	ID       string
	Name     string
	From     string
	Campaign string
}

// NewResult is the output of the new command.
type NewResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Campaign string `json:"campaign,omitempty"`
	BaseHash string `json:"base_hash"`
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a character",
		Long: `Create a character with an empty history.

The base memo is a fresh mortal named --name, or a memo document read
from --from (YAML or JSON). Without --id a UUIDv7 is generated.

Examples:
  charsheet new --name "Harmonious Jade"
  charsheet new --id jade --name "Harmonious Jade" --campaign dragon
  charsheet new --id jade --from jade.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "character id (generated when empty)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "name of a fresh mortal")
	cmd.Flags().StringVar(&opts.From, "from", "", "memo document to start from (- for stdin)")
	cmd.Flags().StringVar(&opts.Campaign, "campaign", "", "campaign the character belongs to")
	cmd.MarkFlagsMutuallyExclusive("name", "from")
	cmd.MarkFlagsOneRequired("name", "from")

	return cmd
}

func runNew(opts *NewOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	var base character.Memo
	if opts.From != "" {
		data, err := readInput(cmd, opts.From)
		if err != nil {
			return err
		}
		base, err = character.ParseMemo(data)
		if err != nil {
			return f.Reject("invalid memo", err)
		}
	} else {
		base = character.NewMortalMemo(opts.Name)
	}

	id := opts.ID
	if id == "" {
		id = ids.UUIDv7{}.Generate()
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateCharacter(ctx, id, opts.Campaign, base); err != nil {
		if errors.Is(err, store.ErrCharacterExists) {
			return NewExitError(ExitCommandError, fmt.Sprintf("character already exists: %s", id))
		}
		return f.Reject("failed to create character", err)
	}
	rec, err := st.ReadCharacter(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read character", err)
	}
	f.VerboseLog("created %s at %s", rec.ID, opts.DB)

	result := NewResult{
		ID:       rec.ID,
		Name:     rec.Name,
		Campaign: rec.CampaignID,
		BaseHash: rec.BaseHash,
	}
	if opts.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s (%s)\n", result.ID, result.Name)
	return nil
}
