// Package decimal implements the exact fixed-point value shared by every codec
// and formatter: an unbounded magnitude, a sign and a non-negative scale.
//
// Values never pass through binary floating point. Zero never carries a sign.
package decimal

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	sd "github.com/shopspring/decimal"

	picfield "github.com/reoring/picfield"
)

// MaxScale bounds the scale (and exponent magnitude) accepted from text input.
const MaxScale = 1000

// Decimal is an immutable fixed-point number. The zero value is 0 with scale 0.
type Decimal struct {
	d     sd.Decimal // exponent is always -scale
	scale int
}

// Zero returns 0 at the given scale.
func Zero(scale int) Decimal {
	checkScale(scale)
	return Decimal{d: sd.New(0, -int32(scale)), scale: scale}
}

// New builds a Decimal from an unscaled magnitude, a sign and a scale. The
// magnitude is copied. It panics when magnitude is negative or scale is out of range.
func New(magnitude *big.Int, negative bool, scale int) Decimal {
	checkScale(scale)
	v := new(big.Int)
	if magnitude != nil {
		if magnitude.Sign() < 0 {
			panic("decimal.New: magnitude must not be negative")
		}
		v.Set(magnitude)
	}
	if negative {
		v.Neg(v)
	}
	return Decimal{d: sd.NewFromBigInt(v, -int32(scale)), scale: scale}
}

// NewFromDigits builds a Decimal from a string of ASCII digits holding the
// unscaled magnitude, as recovered by the packed and zoned codecs.
func NewFromDigits(digits string, negative bool, scale int) (Decimal, error) {
	if digits == "" {
		return Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidDigitCharacter, Pos: 0}
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidDigitCharacter, Input: digits, Pos: i}
		}
	}
	if scale < 0 || scale > MaxScale {
		return Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidNumericLiteral, Input: digits, Pos: -1, Cause: picfield.ErrInvalidGeometry}
	}
	v, _ := new(big.Int).SetString(digits, 10)
	return New(v, negative, scale), nil
}

// NewFromInt returns i with scale 0.
func NewFromInt(i int64) Decimal {
	return Decimal{d: sd.NewFromInt(i), scale: 0}
}

// NewFromFloat converts a float64 using its shortest round-trip decimal text,
// so 0.1 becomes exactly 0.1 at scale 1. NaN and infinities are rejected.
func NewFromFloat(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidNumericLiteral, Input: strconv.FormatFloat(f, 'g', -1, 64), Pos: -1}
	}
	return fromShop(sd.NewFromFloat(f))
}

// Parse reads a decimal literal: optional sign, digits with at most one point,
// and an optional exponent. Surrounding spaces are ignored. The scale is the
// number of fractional digits written (after applying the exponent).
func Parse(s string) (Decimal, error) {
	t := strings.Trim(s, " ")
	if pos := scanLiteral(t); pos >= 0 {
		return Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidNumericLiteral, Input: s, Pos: pos}
	}
	d, err := sd.NewFromString(t)
	if err != nil {
		return Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidNumericLiteral, Input: s, Pos: -1, Cause: err}
	}
	v, err := fromShop(d)
	if err != nil {
		return Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidNumericLiteral, Input: s, Pos: -1, Cause: picfield.ErrInvalidGeometry}
	}
	return v, nil
}

// MustParse is like Parse but panics on malformed input. Use it for constants.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// scanLiteral returns -1 for a well-formed literal, else the offending byte index.
func scanLiteral(s string) int {
	if s == "" {
		return 0
	}
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	digits, point := 0, false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !point:
			point = true
		case (c == 'e' || c == 'E') && digits > 0:
			return scanExponent(s, i+1)
		default:
			return i
		}
	}
	if digits == 0 {
		return len(s)
	}
	return -1
}

func scanExponent(s string, i int) int {
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if i >= len(s) {
		return len(s)
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return i
		}
	}
	return -1
}

func fromShop(d sd.Decimal) (Decimal, error) {
	exp := int(d.Exponent())
	if exp < -MaxScale || exp > MaxScale {
		return Decimal{}, picfield.ErrInvalidGeometry
	}
	scale := 0
	if exp < 0 {
		scale = -exp
	}
	return Decimal{d: d.Round(int32(scale)), scale: scale}, nil
}

func checkScale(scale int) {
	if scale < 0 || scale > MaxScale {
		panic("decimal: scale out of range")
	}
}

// Scale returns the number of implied fractional digits.
func (d Decimal) Scale() int { return d.scale }

// Magnitude returns a copy of the unscaled absolute value.
func (d Decimal) Magnitude() *big.Int {
	return new(big.Int).Abs(d.d.Coefficient())
}

// Digits returns the unscaled magnitude as ASCII digits ("0" for zero).
func (d Decimal) Digits() string { return d.Magnitude().String() }

// IntegerDigits counts the significant digits of the integer part (0 for |d| < 1).
func (d Decimal) IntegerDigits() int {
	q := new(big.Int).Quo(d.Magnitude(), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.scale)), nil))
	if q.Sign() == 0 {
		return 0
	}
	return len(q.String())
}

// IsNegative reports whether d < 0. Zero is never negative.
func (d Decimal) IsNegative() bool { return d.d.Sign() < 0 }

// IsZero reports whether d == 0.
func (d Decimal) IsZero() bool { return d.d.IsZero() }

// Sign returns -1, 0 or +1.
func (d Decimal) Sign() int { return d.d.Sign() }

// String renders d with exactly Scale() fractional digits.
func (d Decimal) String() string { return d.d.StringFixed(int32(d.scale)) }

// StringFixed renders exactly places fractional digits using round-half-up.
func (d Decimal) StringFixed(places int) string {
	return d.StringFixedMode(places, RoundHalfUp)
}

// StringFixedMode renders exactly places fractional digits using mode.
func (d Decimal) StringFixedMode(places int, mode RoundingMode) string {
	return d.Rescale(places, mode).String()
}

// Rescale returns d at the given scale, rounding with mode when digits are dropped.
func (d Decimal) Rescale(scale int, mode RoundingMode) Decimal {
	checkScale(scale)
	if scale == d.scale {
		return d
	}
	r := mode.round(d.d, int32(scale))
	return Decimal{d: r.Round(int32(scale)), scale: scale}
}

// Neg returns -d.
func (d Decimal) Neg() Decimal { return Decimal{d: d.d.Neg(), scale: d.scale} }

// Abs returns |d|.
func (d Decimal) Abs() Decimal { return Decimal{d: d.d.Abs(), scale: d.scale} }

// Add returns d+e at the larger of both scales.
func (d Decimal) Add(e Decimal) Decimal {
	s := max(d.scale, e.scale)
	return Decimal{d: d.d.Add(e.d).Round(int32(s)), scale: s}
}

// Sub returns d-e at the larger of both scales.
func (d Decimal) Sub(e Decimal) Decimal {
	s := max(d.scale, e.scale)
	return Decimal{d: d.d.Sub(e.d).Round(int32(s)), scale: s}
}

// Mul returns d*e at the sum of both scales.
func (d Decimal) Mul(e Decimal) Decimal {
	s := d.scale + e.scale
	checkScale(s)
	return Decimal{d: d.d.Mul(e.d).Round(int32(s)), scale: s}
}

// Cmp compares values after aligning scales: -1 if d < e, 0 if equal, +1 if d > e.
func (d Decimal) Cmp(e Decimal) int { return d.d.Cmp(e.d) }

// Equal reports value equality; 1.50 equals 1.5.
func (d Decimal) Equal(e Decimal) bool { return d.Cmp(e) == 0 }

// Identical reports equality of magnitude, sign and scale.
func (d Decimal) Identical(e Decimal) bool { return d.scale == e.scale && d.Equal(e) }

// MarshalText implements encoding.TextMarshaler.
func (d Decimal) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler, keeping the written scale.
func (d *Decimal) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
