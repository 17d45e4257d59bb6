// Package rules runs named cross-field predicates over field text and reports
// structured failures.
//
// The engine never aborts: every rule is evaluated, panicking predicates are
// converted into a generic failure, and the failures come back in rule order.
package rules

import (
	"fmt"
	"strings"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/decimal"
)

// MessageRuleError is the message key of the failure reported for a rule
// whose predicate panicked.
const MessageRuleError = "validation.rule_error"

// Values holds the field texts a predicate sees: only the fields its rule
// declares. Absent fields read as "".
type Values map[string]string

// Get returns the text of field, or "".
func (v Values) Get(field string) string { return v[field] }

// Blank reports whether field is absent, empty or whitespace-only.
func (v Values) Blank(field string) bool { return isBlank(v[field]) }

// Decimal parses field as a decimal literal.
func (v Values) Decimal(field string) (decimal.Decimal, bool) {
	d, err := decimal.Parse(v[field])
	return d, err == nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// Check is a cross-field predicate; true means the values conform.
type Check func(Values) bool

// SkipPolicy decides when a rule is not evaluated at all.
type SkipPolicy uint8

const (
	// SkipAllBlank skips a rule when every declared field is blank. A rule
	// never fires only because some of several optional fields are absent.
	SkipAllBlank SkipPolicy = iota
	// SkipAnyBlank skips a rule as soon as one declared field is blank.
	SkipAnyBlank
	// SkipNever always evaluates the rule.
	SkipNever
)

func (p SkipPolicy) String() string {
	switch p {
	case SkipAllBlank:
		return "all-blank"
	case SkipAnyBlank:
		return "any-blank"
	case SkipNever:
		return "never"
	}
	return fmt.Sprintf("SkipPolicy(%d)", uint8(p))
}

// Rule is a named predicate over a declared subset of fields.
type Rule struct {
	Name    string
	Fields  []string
	Primary string // Field the failure is reported on; defaults to Fields[0].
	Message string // Message key.
	Code    string // Defaults to picfield.CodeBusinessRule.
	// Severity of the reported failure; the zero value is picfield.Error.
	Severity picfield.Severity
	Skip     SkipPolicy
	Check    Check
}

func (r Rule) primary() string {
	if r.Primary != "" {
		return r.Primary
	}
	if len(r.Fields) > 0 {
		return r.Fields[0]
	}
	return ""
}

func (r Rule) skipped(vals Values) bool {
	switch r.Skip {
	case SkipNever:
		return false
	case SkipAnyBlank:
		for _, f := range r.Fields {
			if vals.Blank(f) {
				return true
			}
		}
		return false
	default:
		for _, f := range r.Fields {
			if !vals.Blank(f) {
				return false
			}
		}
		return true
	}
}

// gather copies the declared fields out of values.
func (r Rule) gather(values map[string]string) Values {
	vals := make(Values, len(r.Fields))
	for _, f := range r.Fields {
		if s, ok := values[f]; ok {
			vals[f] = s
		}
	}
	return vals
}

// Evaluate applies r to values. ok is false when the rule passed or was skipped.
func (r Rule) Evaluate(values map[string]string) (f picfield.ValidationFailure, ok bool) {
	vals := r.gather(values)
	if r.skipped(vals) {
		return picfield.ValidationFailure{}, false
	}
	defer func() {
		if p := recover(); p != nil {
			f = picfield.ValidationFailure{
				Field:    r.primary(),
				Code:     picfield.CodeRuleError,
				Message:  MessageRuleError,
				Rule:     r.Name,
				Severity: picfield.Error,
				Cause:    fmt.Errorf("rules: %q panicked: %v", r.Name, p),
			}
			ok = true
		}
	}()
	if r.Check == nil || r.Check(vals) {
		return picfield.ValidationFailure{}, false
	}
	code := r.Code
	if code == "" {
		code = picfield.CodeBusinessRule
	}
	return picfield.ValidationFailure{
		Field:    r.primary(),
		Code:     code,
		Message:  r.Message,
		Rule:     r.Name,
		Severity: r.Severity,
	}, true
}

// Evaluate runs every rule against values and returns all failures in rule
// order. A nil result means every rule passed or was skipped.
func Evaluate(rules []Rule, values map[string]string) picfield.Failures {
	var out picfield.Failures
	for _, r := range rules {
		if f, ok := r.Evaluate(values); ok {
			out = picfield.AppendFailures(out, f)
		}
	}
	return out
}
