package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	ID string
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Campaign string
}

// CharacterSummary is one row of the list command.
type CharacterSummary struct {
	ID        string `json:"id"`
	Campaign  string `json:"campaign,omitempty"`
	Name      string `json:"name"`
	Cursor    int    `json:"cursor"`
	LogLength int    `json:"log_length"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a character's current memo",
		Long: `Show the memo at the cursor, replayed from the stored history.

Text output is YAML; JSON output wraps the memo in the standard response.

Examples:
  charsheet show --id jade
  charsheet show --id jade --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "character id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	st, es, err := opts.loadHistory(ctx, cmd, opts.ID)
	if err != nil {
		return err
	}
	defer st.Close()

	memo := es.Memo()
	if opts.Format == "json" {
		return f.Success(memo)
	}
	out, err := yaml.Marshal(memo)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode memo", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored characters",
		Long: `List stored characters, optionally limited to one campaign.

Examples:
  charsheet list
  charsheet list --campaign dragon`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Campaign, "campaign", "", "only list characters of this campaign")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListCharacters(ctx, opts.Campaign)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list characters", err)
	}
	summaries := make([]CharacterSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, CharacterSummary{
			ID:        r.ID,
			Campaign:  r.CampaignID,
			Name:      r.Name,
			Cursor:    r.Cursor,
			LogLength: r.LogLength,
		})
	}

	if opts.Format == "json" {
		return f.Success(summaries)
	}
	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No characters found.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%s  %s  cursor %d/%d", s.ID, s.Name, s.Cursor, s.LogLength)
		if s.Campaign != "" {
			fmt.Fprintf(w, "  [%s]", s.Campaign)
		}
		fmt.Fprintln(w)
	}
	return nil
}
