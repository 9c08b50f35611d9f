package binding

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Side names one of the two bound lists.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Strategy selects how property edits travel between a bound pair.
type Strategy string

const (
	// StrategyNone disables per-item property propagation.
	StrategyNone Strategy = ""

	// StrategyRecreate replaces the counterpart with a freshly converted
	// item at the same index. Counterpart identity is not preserved.
	StrategyRecreate Strategy = "recreate"

	// StrategyRelay raises the same property notification on the existing
	// counterpart, which must implement observable.PropertyRaiser. No data
	// is copied.
	StrategyRelay Strategy = "relay"

	// StrategyCustom hands the change to caller-supplied PropertyMap
	// functions (see WithCustomMap).
	StrategyCustom Strategy = "custom"
)

// Config is the binding configuration.
type Config struct {
	// Bidirectional allows changes on the non-authoritative list to flow
	// back to the source of truth.
	Bidirectional bool `json:"bidirectional" yaml:"bidirectional"`

	// Source is the authoritative list.
	Source Side `json:"source" yaml:"source" validate:"required,oneof=A B"`

	// PropertyBind enables per-item property propagation.
	PropertyBind bool `json:"property_bind" yaml:"property_bind"`

	// Strategy is required when PropertyBind is set.
	Strategy Strategy `json:"strategy,omitempty" yaml:"strategy,omitempty" validate:"omitempty,oneof=recreate relay custom"`
}

// configValidate is the validator instance for Config.
var configValidate = validator.New()

// DefaultConfig returns a two-way binding with list A as the source of truth
// and property binding off.
func DefaultConfig() Config {
	return Config{
		Bidirectional: true,
		Source:        SideA,
	}
}

// Validate checks field values and cross-field rules.
//
//	if err := cfg.Validate(); err != nil {
//	    return fmt.Errorf("binding config: %w", err)
//	}
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return &Error{
			Code:    ErrCodeInvalidConfiguration,
			Message: "config failed validation",
			Err:     err,
		}
	}
	if c.PropertyBind && c.Strategy == StrategyNone {
		return &Error{
			Code:    ErrCodeInvalidConfiguration,
			Message: "property binding requires a strategy (recreate, relay or custom)",
		}
	}
	return nil
}

// forward reports whether property edits on list A items are propagated.
func (c Config) forward() bool {
	return c.Bidirectional || c.Source == SideA
}

// reverse reports whether property edits on list B items are propagated.
func (c Config) reverse() bool {
	return c.Bidirectional || c.Source == SideB
}

// String renders the config for logs.
func (c Config) String() string {
	dir := "one-way"
	if c.Bidirectional {
		dir = "two-way"
	}
	s := fmt.Sprintf("%s source=%s", dir, c.Source)
	if c.PropertyBind {
		s += fmt.Sprintf(" properties=%s", c.Strategy)
	}
	return s
}
