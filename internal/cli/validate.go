package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/listbind/internal/config"
)

// ValidationError is one configuration problem with its position.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ValidatedBinding summarizes a valid configuration.
type ValidatedBinding struct {
	Name          string `json:"name"`
	Bidirectional bool   `json:"bidirectional"`
	Source        string `json:"source"`
	PinSource     bool   `json:"pin_source"`
	PropertyBind  bool   `json:"property_bind"`
	Strategy      string `json:"strategy,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Binding *ValidatedBinding `json:"binding,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.cue>",
		Short: "Validate a binding configuration",
		Long: `Validate a CUE binding configuration.

The file must define a top-level "binding" struct. Missing fields take
their defaults (bidirectional: true, source: "A"). Errors are reported
with their line and column.

Example:
  listbind validate ./people.cue
  listbind validate ./people.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); err != nil {
		_ = formatter.Error(ErrCodeLoad, fmt.Sprintf("config file not found: %s", path), nil)
		return WrapExitError(ExitCommandError, "config file not found", err)
	}

	formatter.VerboseLog("Loading %s", path)
	loaded, err := config.Load(path)
	if err != nil {
		return outputValidationErrors(formatter, []ValidationError{toValidationError(err)})
	}

	result := ValidationResult{
		Valid: true,
		Binding: &ValidatedBinding{
			Name:          loaded.Name,
			Bidirectional: loaded.Config.Bidirectional,
			Source:        string(loaded.Config.Source),
			PinSource:     loaded.PinSource,
			PropertyBind:  loaded.Config.PropertyBind,
			Strategy:      string(loaded.Config.Strategy),
		},
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ binding %q valid (%s)\n", loaded.Name, loaded.Config)
	return nil
}

func toValidationError(err error) ValidationError {
	var ce *config.CompileError
	if errors.As(err, &ce) {
		ve := ValidationError{Field: ce.Field, Message: ce.Message}
		if ce.Pos.IsValid() {
			ve.Line = ce.Pos.Line()
			ve.Column = ce.Pos.Column()
		}
		return ve
	}
	return ValidationError{Field: "config", Message: err.Error()}
}

func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", len(errs))

	if formatter.Format == "json" {
		if err := formatter.Failure(ErrCodeConfig, errs[0].Message, ValidationResult{Errors: errs}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d:%d\n", e.Line, e.Column)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Field, e.Message)
	}

	return NewExitError(ExitFailure, msg)
}
