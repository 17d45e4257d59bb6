package decimal

import (
	"fmt"
	"strings"

	sd "github.com/shopspring/decimal"
)

// RoundingMode selects how dropped fractional digits are handled.
type RoundingMode uint8

const (
	RoundHalfUp   RoundingMode = iota // Ties away from zero (COBOL ROUNDED).
	RoundHalfEven                     // Ties to the even neighbour (banker's rounding).
	RoundDown                         // Truncate toward zero.
)

func (m RoundingMode) round(d sd.Decimal, places int32) sd.Decimal {
	switch m {
	case RoundHalfEven:
		return d.RoundBank(places)
	case RoundDown:
		return d.Truncate(places)
	default:
		return d.Round(places)
	}
}

func (m RoundingMode) String() string {
	switch m {
	case RoundHalfUp:
		return "half-up"
	case RoundHalfEven:
		return "half-even"
	case RoundDown:
		return "down"
	default:
		return fmt.Sprintf("RoundingMode(%d)", uint8(m))
	}
}

// ParseRoundingMode accepts "half-up", "half-even" and "down" (case-insensitive;
// underscores are accepted in place of dashes).
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "", "half-up":
		return RoundHalfUp, nil
	case "half-even", "bank", "bankers":
		return RoundHalfEven, nil
	case "down", "truncate":
		return RoundDown, nil
	}
	return RoundHalfUp, fmt.Errorf("decimal: unknown rounding mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m RoundingMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RoundingMode) UnmarshalText(text []byte) error {
	v, err := ParseRoundingMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ScaleFromInput makes a Context keep whatever scale the input carries.
const ScaleFromInput = -1

// Context carries the precision and rounding of one formatting site. It is
// passed explicitly to every producing call; there is no process-wide setting.
type Context struct {
	Scale    int // Fractional digits of produced values, or ScaleFromInput.
	Rounding RoundingMode
}

// DefaultContext keeps the input scale and rounds half-up when asked to rescale.
var DefaultContext = Context{Scale: ScaleFromInput, Rounding: RoundHalfUp}

// Parse parses s and applies the context scale.
func (c Context) Parse(s string) (Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return Decimal{}, err
	}
	return c.Apply(d), nil
}

// FromFloat converts f and applies the context scale.
func (c Context) FromFloat(f float64) (Decimal, error) {
	d, err := NewFromFloat(f)
	if err != nil {
		return Decimal{}, err
	}
	return c.Apply(d), nil
}

// FromInt converts i and applies the context scale.
func (c Context) FromInt(i int64) Decimal { return c.Apply(NewFromInt(i)) }

// Apply rescales d to the context scale.
func (c Context) Apply(d Decimal) Decimal {
	if c.Scale < 0 {
		return d
	}
	return d.Rescale(c.Scale, c.Rounding)
}
