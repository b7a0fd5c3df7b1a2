// Package devbolt evaluates Git-versioned, file-based feature flags without
// a remote control plane.
//
// Configuration is authored as a YAML document mapping flag names to flag
// definitions. The decision algorithm applies a strict priority chain:
// environment override, global kill switch, targeting rules in declared
// order, percentage rollout, then a default of enabled. Percentage rollouts
// are sticky per user via deterministic SHA-256 bucketing, so every devbolt
// SDK across languages agrees on who is in a rollout.
//
// Most applications use [Client], which discovers the flags file, keeps it
// hot-reloaded, and exposes evaluation plus Prometheus metrics. Libraries
// that already hold a validated [FlagsConfig] can use [Engine] directly.
package devbolt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Operator identifies a targeting rule comparison. The set is closed; the
// validator rejects any operator outside it.
type Operator string

const (
	OperatorEquals             Operator = "equals"
	OperatorNotEquals          Operator = "not_equals"
	OperatorIn                 Operator = "in"
	OperatorNotIn              Operator = "not_in"
	OperatorContains           Operator = "contains"
	OperatorNotContains        Operator = "not_contains"
	OperatorStartsWith         Operator = "starts_with"
	OperatorEndsWith           Operator = "ends_with"
	OperatorGreaterThan        Operator = "greater_than"
	OperatorLessThan           Operator = "less_than"
	OperatorGreaterThanOrEqual Operator = "greater_than_or_equal"
	OperatorLessThanOrEqual    Operator = "less_than_or_equal"
	OperatorMatchesRegex       Operator = "matches_regex"
)

// Operators lists every valid targeting operator.
var Operators = []Operator{
	OperatorEquals,
	OperatorNotEquals,
	OperatorIn,
	OperatorNotIn,
	OperatorContains,
	OperatorNotContains,
	OperatorStartsWith,
	OperatorEndsWith,
	OperatorGreaterThan,
	OperatorLessThan,
	OperatorGreaterThanOrEqual,
	OperatorLessThanOrEqual,
	OperatorMatchesRegex,
}

// Valid reports whether o is a member of the operator set.
func (o Operator) Valid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorIn, OperatorNotIn,
		OperatorContains, OperatorNotContains, OperatorStartsWith,
		OperatorEndsWith, OperatorGreaterThan, OperatorLessThan,
		OperatorGreaterThanOrEqual, OperatorLessThanOrEqual,
		OperatorMatchesRegex:
		return true
	}
	return false
}

// TakesValues reports whether o compares against the rule's "values" list
// rather than its single "value".
func (o Operator) TakesValues() bool {
	return o == OperatorIn || o == OperatorNotIn
}

type valueKind uint8

const (
	kindString valueKind = iota
	kindNumber
	kindBool
)

// Value is a closed scalar variant: string, number, or bool. It models the
// loosely-typed operands of targeting rules and custom context attributes
// with explicit coercion rules instead of cross-type comparison:
//
//   - Equal: kinds must match (all numeric types compare as float64);
//     a string never equals a number or a bool.
//   - String operators stringify both sides: numbers render without
//     trailing zeros ("50", "33.3"), bools render "true"/"false".
//   - Numeric operators coerce: numbers pass through, strings parse as
//     floats, bools become 1/0. Failed coercion fails the rule closed.
type Value struct {
	kind valueKind
	str  string
	num  float64
	b    bool
}

// StringValue returns a string-kinded Value.
func StringValue(s string) Value { return Value{kind: kindString, str: s} }

// NumberValue returns a number-kinded Value.
func NumberValue(f float64) Value { return Value{kind: kindNumber, num: f} }

// BoolValue returns a bool-kinded Value.
func BoolValue(b bool) Value { return Value{kind: kindBool, b: b} }

// valueOf converts a decoded YAML/JSON scalar into a Value.
func valueOf(raw any) (Value, bool) {
	switch v := raw.(type) {
	case string:
		return StringValue(v), true
	case bool:
		return BoolValue(v), true
	case int:
		return NumberValue(float64(v)), true
	case int64:
		return NumberValue(float64(v)), true
	case uint64:
		return NumberValue(float64(v)), true
	case float64:
		return NumberValue(v), true
	case float32:
		return NumberValue(float64(v)), true
	}
	return Value{}, false
}

// Equal reports structural equality between two values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case kindString:
		return v.str == other.str
	case kindNumber:
		return v.num == other.num
	default:
		return v.b == other.b
	}
}

// String renders the value for substring, prefix/suffix, and regex operators.
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// Float coerces the value to a float64 for ordering operators. Strings parse
// with [strconv.ParseFloat]; bools coerce to 1 and 0.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.num, true
	case kindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		f, err := strconv.ParseFloat(v.str, 64)
		return f, err == nil
	}
}

// MarshalJSON renders the underlying scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return json.Marshal(v.num)
	case kindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.str)
	}
}

// Rollout is a percentage-based gradual enablement gate, sticky per
// identifying attribute via bucketing.
type Rollout struct {
	// Percentage of the identifier space that sees the flag enabled, 0-100.
	Percentage float64 `json:"percentage"`
	// Seed overrides the default hash seed, isolating this flag's bucket
	// assignment from other flags that target the same identifiers.
	Seed string `json:"seed,omitempty"`
}

// TargetingRule is a condition-action pair: when the attribute comparison
// holds, evaluation stops with the rule's Enabled outcome.
type TargetingRule struct {
	Attribute   string   `json:"attribute"`
	Operator    Operator `json:"operator"`
	Enabled     bool     `json:"enabled"`
	Value       *Value   `json:"value,omitempty"`  // operand for single-value operators; may hold ""
	Values      []Value  `json:"values,omitempty"` // operand list for in/not_in
	Description string   `json:"description,omitempty"`
}

// FlagConfig is one flag's validated configuration. Instances are never
// mutated after load; reload replaces the whole map.
type FlagConfig struct {
	Enabled      bool            `json:"enabled"`
	Description  string          `json:"description,omitempty"`
	Rollout      *Rollout        `json:"rollout,omitempty"`
	Targeting    []TargetingRule `json:"targeting,omitempty"`
	Environments map[string]bool `json:"environments,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

// FlagsConfig maps flag names to their configuration.
type FlagsConfig map[string]FlagConfig

// EvaluationContext carries caller-supplied attributes for one evaluation.
// The engine never mutates it. Empty UserID/Email/Environment fields are
// treated as unset.
type EvaluationContext struct {
	UserID           string           `json:"userId,omitempty"`
	Email            string           `json:"email,omitempty"`
	Environment      string           `json:"environment,omitempty"`
	CustomAttributes map[string]Value `json:"customAttributes,omitempty"`

	// HashSeedOverride replaces the default bucketing seed when the flag's
	// rollout does not set one. Test escape hatch only.
	HashSeedOverride string `json:"-"`
}

// EvaluationMetadata carries diagnostics about how a result was reached.
type EvaluationMetadata struct {
	Timestamp        time.Time `json:"timestamp"`
	MatchedRuleIndex *int      `json:"matchedRuleIndex,omitempty"` // zero-based index into Targeting
	RolloutBucket    *int      `json:"rolloutBucket,omitempty"`    // 0-99, set whenever the rollout gate ran
	Variant          string    `json:"variant,omitempty"`          // reserved
}

// EvaluationResult is the engine's sole output: the decision plus a stable,
// auditable reason.
type EvaluationResult struct {
	FlagName string             `json:"flagName"`
	Enabled  bool               `json:"enabled"`
	Reason   string             `json:"reason"`
	Metadata EvaluationMetadata `json:"metadata"`
}

func formatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func (r EvaluationResult) String() string {
	return fmt.Sprintf("%s=%t (%s)", r.FlagName, r.Enabled, r.Reason)
}
