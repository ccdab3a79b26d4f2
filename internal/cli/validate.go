package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/rejection"
	"github.com/roach88/charsheet/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Memo bool
}

// FileValidation is the validation outcome of one file.
type FileValidation struct {
	File      string    `json:"file"`
	Valid     bool      `json:"valid"`
	Mutations int       `json:"mutations,omitempty"`
	Error     *CLIError `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate mutation documents against the schema",
		Long: `Validate mutation documents against the mutation schema without
touching any character.

With --memo the files are memo documents instead, checked for structure
and rule consistency.

Exit codes:
  0 - All files valid
  1 - One or more files invalid
  2 - Command error

Examples:
  charsheet validate exalt.yaml charms.yaml
  charsheet validate --memo jade.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Memo, "memo", false, "validate memo documents")

	return cmd
}

func runValidate(opts *ValidateOptions, files []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	validator, err := schema.New()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load mutation schema", err)
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		data, err := readInput(cmd, file)
		if err != nil {
			return err
		}
		fv := FileValidation{File: file, Valid: true}
		if opts.Memo {
			err = validateMemo(data)
		} else {
			var envs []character.Envelope
			envs, err = validator.ValidateDocument(data)
			fv.Mutations = len(envs)
		}
		if err != nil {
			fv.Valid = false
			fv.Error = cliError(err)
			result.Valid = false
		}
		f.VerboseLog("validated %s: valid=%t", file, fv.Valid)
		result.Files = append(result.Files, fv)
	}

	if opts.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(w, "✓ %s\n", fv.File)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", fv.File)
			fmt.Fprintf(w, "  [%s] %s\n", fv.Error.Code, fv.Error.Message)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

// validateMemo parses a memo and checks that it forms a legal character.
func validateMemo(data []byte) error {
	memo, err := character.ParseMemo(data)
	if err != nil {
		return err
	}
	_, err = character.FromMemo(memo)
	return err
}

// cliError converts an error into its response form.
func cliError(err error) *CLIError {
	var re *rejection.Error
	if errors.As(err, &re) {
		out := &CLIError{Code: string(re.Code), Message: err.Error()}
		if len(re.Details) > 0 {
			out.Details = re.Details
		}
		return out
	}
	return &CLIError{Code: string(rejection.CodePayloadInvalid), Message: err.Error()}
}
