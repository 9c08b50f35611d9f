package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/listbind/internal/binding"
)

//go:embed schema.cue
var schemaCUE string

// Binding is a loaded binder configuration.
type Binding struct {
	Name      string
	PinSource bool
	Config    binding.Config
}

// Options converts b into binder options.
func (b *Binding) Options() []binding.Option {
	opts := []binding.Option{
		binding.WithName(b.Name),
		binding.WithConfig(b.Config),
	}
	if b.PinSource {
		opts = append(opts, binding.WithPinnedSource())
	}
	return opts
}

// CompileError is a configuration error with its source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and compiles the CUE file at path.
func Load(path string) (*Binding, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, src)
}

// Parse compiles CUE source. filename is used for error positions only.
func Parse(filename string, src []byte) (*Binding, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if !user.LookupPath(cue.ParsePath("binding")).Exists() {
		return nil, &CompileError{
			Field:   "binding",
			Message: "binding is required",
			Pos:     user.Pos(),
		}
	}

	unified := schema.Unify(user)
	return Compile(unified.LookupPath(cue.ParsePath("binding")))
}

// Compile converts a binding struct value. Absent fields take the same
// defaults as the schema, so v need not have been unified with it.
func Compile(v cue.Value) (*Binding, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	out := &Binding{
		Name:   "binder",
		Config: binding.DefaultConfig(),
	}

	if s, ok, err := stringField(v, "name"); err != nil {
		return nil, err
	} else if ok {
		out.Name = s
	}
	if b, ok, err := boolField(v, "bidirectional"); err != nil {
		return nil, err
	} else if ok {
		out.Config.Bidirectional = b
	}
	if s, ok, err := stringField(v, "source"); err != nil {
		return nil, err
	} else if ok {
		out.Config.Source = binding.Side(s)
	}
	if b, ok, err := boolField(v, "pinSource"); err != nil {
		return nil, err
	} else if ok {
		out.PinSource = b
	}
	if b, ok, err := boolField(v, "propertyBind"); err != nil {
		return nil, err
	} else if ok {
		out.Config.PropertyBind = b
	}
	if s, ok, err := stringField(v, "strategy"); err != nil {
		return nil, err
	} else if ok {
		out.Config.Strategy = binding.Strategy(s)
	}

	if out.Name == "" {
		return nil, &CompileError{Field: "name", Message: "name must not be empty", Pos: v.Pos()}
	}
	if err := out.Config.Validate(); err != nil {
		return nil, &CompileError{
			Field:   "binding",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	return out, nil
}

// lookup returns the field's default when it has one.
func lookup(v cue.Value, field string) (cue.Value, bool) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return f, false
	}
	if d, ok := f.Default(); ok {
		f = d
	}
	return f, true
}

func stringField(v cue.Value, field string) (string, bool, error) {
	f, ok := lookup(v, field)
	if !ok {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", true, &CompileError{Field: field, Message: fmt.Sprintf("%s must be a string", field), Pos: f.Pos()}
	}
	return s, true, nil
}

func boolField(v cue.Value, field string) (bool, bool, error) {
	f, ok := lookup(v, field)
	if !ok {
		return false, false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, true, &CompileError{Field: field, Message: fmt.Sprintf("%s must be a bool", field), Pos: f.Pos()}
	}
	return b, true, nil
}

// formatCUEError returns the first CUE error as a positioned CompileError.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
