package common

import (
	"errors"
	"fmt"
)

// ErrStrategyUnknown is returned when a string does not name one of the
// known extraction strategies.
var ErrStrategyUnknown = errors.New("unknown extraction strategy")

// Strategy selects how nodes and edges are pulled out of text during a
// build. Each strategy writes its graph to its own storage namespace, so
// the same corpus can be indexed several ways side by side.
type Strategy string

const (
	// StrategySchema extracts against a fixed label set. Off-schema node
	// labels are coerced to OTHER and relations between unknown labels
	// are dropped.
	StrategySchema Strategy = "schema"
	// StrategyFree extracts whatever the model finds, with no label
	// validation.
	StrategyFree Strategy = "free"
	// StrategyDynamic starts from a seed label set and lets the model
	// add labels as the corpus demands. The default target for queries.
	StrategyDynamic Strategy = "dynamic"
	// StrategyImplicit additionally infers relations that are implied
	// rather than stated in the text.
	StrategyImplicit Strategy = "implicit"
)

// Strategies returns every extraction strategy in build order.
func Strategies() []Strategy {
	return []Strategy{StrategySchema, StrategyFree, StrategyDynamic, StrategyImplicit}
}

// ParseStrategy converts a string into a Strategy. Values that do not name
// a known strategy return an error.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(value) {
	case StrategySchema, StrategyFree, StrategyDynamic, StrategyImplicit:
		return Strategy(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrStrategyUnknown, value)
}

// String implements fmt.Stringer.
func (s Strategy) String() string {
	return string(s)
}
