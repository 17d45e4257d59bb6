package rules

import (
	"strings"

	"github.com/reoring/picfield/decimal"
	"github.com/reoring/picfield/picture"
)

// Op defines simple comparison operators for If(...).Then(...) and Compare.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	}
	return "?"
}

// Conditional composes conditional execution of checks.
type Conditional struct {
	field string
	op    Op
	want  string
	all   []Conditional // composite AND
	any   []Conditional // composite OR
}

// If builds a conditional that compares field against want using op.
func If(field string, op Op, want string) Conditional {
	return Conditional{field: field, op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition.
func (c Conditional) Holds(v Values) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(v) {
				return true
			}
		}
		return false
	}
	return compare(v.Get(c.field), c.op, c.want)
}

// Then returns a check that runs checks only when the condition holds and
// passes otherwise.
func (c Conditional) Then(checks ...Check) Check {
	inner := And(checks...)
	return func(v Values) bool {
		if !c.Holds(v) {
			return true
		}
		return inner(v)
	}
}

// And passes when every check passes. Nil checks are ignored.
func And(checks ...Check) Check {
	return func(v Values) bool {
		for _, ch := range checks {
			if ch != nil && !ch(v) {
				return false
			}
		}
		return true
	}
}

// Or passes when any check passes. With no non-nil checks it passes.
func Or(checks ...Check) Check {
	return func(v Values) bool {
		seen := false
		for _, ch := range checks {
			if ch == nil {
				continue
			}
			if ch(v) {
				return true
			}
			seen = true
		}
		return !seen
	}
}

// Not inverts a check.
func Not(ch Check) Check { return func(v Values) bool { return !ch(v) } }

// RequireAll passes when none of fields is blank.
func RequireAll(fields ...string) Check {
	return func(v Values) bool {
		for _, f := range fields {
			if v.Blank(f) {
				return false
			}
		}
		return true
	}
}

// Compare compares two fields. Values that both parse as decimals compare
// numerically; otherwise their trimmed texts compare lexically.
func Compare(field string, op Op, other string) Check {
	return func(v Values) bool { return compare(v.Get(field), op, v.Get(other)) }
}

// CompareValue compares field against a constant, like Compare.
func CompareValue(field string, op Op, want string) Check {
	return func(v Values) bool { return compare(v.Get(field), op, want) }
}

// OneOf passes when the trimmed text of field equals one of allowed.
func OneOf(field string, allowed ...string) Check {
	return func(v Values) bool {
		s := strings.TrimSpace(v.Get(field))
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	}
}

// MatchesPicture passes when field matches the compiled picture clause.
func MatchesPicture(field string, c *picture.Clause) Check {
	return func(v Values) bool { return c.Matches(v.Get(field)) }
}

func compare(cur string, op Op, want string) bool {
	a, b := strings.TrimSpace(cur), strings.TrimSpace(want)
	var c int
	da, errA := decimal.Parse(a)
	db, errB := decimal.Parse(b)
	if errA == nil && errB == nil {
		c = da.Cmp(db)
	} else {
		c = strings.Compare(a, b)
	}
	switch op {
	case Eq:
		return c == 0
	case Ne:
		return c != 0
	case Lt:
		return c < 0
	case Le:
		return c <= 0
	case Gt:
		return c > 0
	case Ge:
		return c >= 0
	default:
		return false
	}
}
