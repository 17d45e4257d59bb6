package decimal_test

import (
	"errors"
	"math"
	"math/big"
	"testing"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/decimal"
)

func TestParse_KeepsWrittenScale(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		scale int
	}{
		{"12.30", "12.30", 2},
		{"-12.5", "-12.5", 1},
		{" 42 ", "42", 0},
		{"+7", "7", 0},
		{".5", "0.5", 1},
		{"5.", "5", 0},
		{"1e3", "1000", 0},
		{"1.5e-3", "0.0015", 4},
		{"-0.00", "0.00", 2},
		{"000123", "123", 0},
	}
	for _, tc := range cases {
		d, err := decimal.Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if d.String() != tc.want || d.Scale() != tc.scale {
			t.Fatalf("parse %q: got %s scale %d, want %s scale %d", tc.in, d.String(), d.Scale(), tc.want, tc.scale)
		}
	}
}

func TestParse_Malformed_NeverZero(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1.2.3", "--1", "1e", "1e+", ".", "-", "1,000", "0x10", "NaN", "12a"} {
		d, err := decimal.Parse(in)
		if err == nil {
			t.Fatalf("expected error for %q, got %s", in, d)
		}
		if !errors.Is(err, picfield.ErrInvalidNumericLiteral) {
			t.Fatalf("expected ErrInvalidNumericLiteral for %q, got %v", in, err)
		}
		var de *picfield.DecodeError
		if !errors.As(err, &de) || de.Kind != picfield.InvalidNumericLiteral {
			t.Fatalf("expected *DecodeError for %q, got %T", in, err)
		}
	}
}

func TestNegativeZero_IsNormalized(t *testing.T) {
	d := decimal.New(big.NewInt(0), true, 2)
	if d.IsNegative() || d.Sign() != 0 {
		t.Fatalf("zero must not be negative: %s", d)
	}
	r := decimal.MustParse("-0.004").Rescale(2, decimal.RoundHalfUp)
	if r.IsNegative() || r.String() != "0.00" {
		t.Fatalf("rounded -0.004 should be 0.00, got %s", r)
	}
}

func TestStringFixed_RoundingModes(t *testing.T) {
	cases := []struct {
		in     string
		places int
		mode   decimal.RoundingMode
		want   string
	}{
		{"2.345", 2, decimal.RoundHalfUp, "2.35"},
		{"-2.345", 2, decimal.RoundHalfUp, "-2.35"},
		{"2.345", 2, decimal.RoundHalfEven, "2.34"},
		{"2.355", 2, decimal.RoundHalfEven, "2.36"},
		{"-2.345", 2, decimal.RoundHalfEven, "-2.34"},
		{"2.349", 2, decimal.RoundDown, "2.34"},
		{"-2.349", 2, decimal.RoundDown, "-2.34"},
		{"1.5", 0, decimal.RoundHalfUp, "2"},
		{"2.5", 0, decimal.RoundHalfEven, "2"},
		{"12.5", 3, decimal.RoundHalfUp, "12.500"},
		{"7", 2, decimal.RoundDown, "7.00"},
	}
	for _, tc := range cases {
		got := decimal.MustParse(tc.in).StringFixedMode(tc.places, tc.mode)
		if got != tc.want {
			t.Fatalf("%s to %d places (%s): got %s, want %s", tc.in, tc.places, tc.mode, got, tc.want)
		}
	}
	if got := decimal.MustParse("0.125").StringFixed(2); got != "0.13" {
		t.Fatalf("StringFixed defaults to half-up, got %s", got)
	}
}

func TestRescale_PreservesScaleInvariant(t *testing.T) {
	d := decimal.MustParse("3.14159").Rescale(3, decimal.RoundHalfUp)
	if d.Scale() != 3 || d.String() != "3.142" || d.Digits() != "3142" {
		t.Fatalf("unexpected rescale: %s scale=%d digits=%s", d, d.Scale(), d.Digits())
	}
}

func TestCompare_ValueBased(t *testing.T) {
	a := decimal.MustParse("1.50")
	b := decimal.MustParse("1.5")
	if !a.Equal(b) || a.Cmp(b) != 0 {
		t.Fatalf("1.50 and 1.5 must be equal")
	}
	if a.Identical(b) {
		t.Fatalf("1.50 and 1.5 differ in scale")
	}
	if decimal.MustParse("-2").Cmp(decimal.MustParse("1.99")) != -1 {
		t.Fatalf("-2 < 1.99")
	}
}

func TestArithmetic_Exact(t *testing.T) {
	sum := decimal.MustParse("1.25").Add(decimal.MustParse("2.5"))
	if sum.String() != "3.75" || sum.Scale() != 2 {
		t.Fatalf("add: %s", sum)
	}
	diff := decimal.MustParse("0.1").Sub(decimal.MustParse("0.3"))
	if diff.String() != "-0.2" {
		t.Fatalf("sub: %s", diff)
	}
	prod := decimal.MustParse("1.5").Mul(decimal.MustParse("-2.25"))
	if prod.String() != "-3.375" || prod.Scale() != 3 {
		t.Fatalf("mul: %s", prod)
	}
	if n := decimal.MustParse("-4.20").Neg(); n.String() != "4.20" {
		t.Fatalf("neg: %s", n)
	}
	if a := decimal.MustParse("-4.20").Abs(); a.String() != "4.20" {
		t.Fatalf("abs: %s", a)
	}
}

func TestIntegerDigits(t *testing.T) {
	cases := map[string]int{"123.45": 3, "0.5": 0, "-9": 1, "0": 0, "1000": 4, "-0.001": 0}
	for in, want := range cases {
		if got := decimal.MustParse(in).IntegerDigits(); got != want {
			t.Fatalf("IntegerDigits(%s) = %d, want %d", in, got, want)
		}
	}
}

func TestNewFromFloat_ShortestText(t *testing.T) {
	d, err := decimal.NewFromFloat(0.1)
	if err != nil || d.String() != "0.1" {
		t.Fatalf("0.1: %v %s", err, d)
	}
	d, err = decimal.NewFromFloat(-12.5)
	if err != nil || d.String() != "-12.5" || d.Scale() != 1 {
		t.Fatalf("-12.5: %v %s", err, d)
	}
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := decimal.NewFromFloat(f); !errors.Is(err, picfield.ErrInvalidNumericLiteral) {
			t.Fatalf("expected error for %v, got %v", f, err)
		}
	}
}

func TestNewFromDigits(t *testing.T) {
	d, err := decimal.NewFromDigits("00123", true, 1)
	if err != nil || d.String() != "-12.3" {
		t.Fatalf("got %v %s", err, d)
	}
	if _, err := decimal.NewFromDigits("12x", false, 0); !errors.Is(err, picfield.ErrInvalidDigitCharacter) {
		t.Fatalf("expected digit error, got %v", err)
	}
}

func TestContext_ExplicitScaleAndRounding(t *testing.T) {
	up := decimal.Context{Scale: 2, Rounding: decimal.RoundHalfUp}
	even := decimal.Context{Scale: 2, Rounding: decimal.RoundHalfEven}

	a, err := up.Parse("1.005")
	if err != nil || a.String() != "1.01" {
		t.Fatalf("half-up: %v %s", err, a)
	}
	b, err := even.Parse("1.005")
	if err != nil || b.String() != "1.00" {
		t.Fatalf("half-even: %v %s", err, b)
	}
	c, err := decimal.DefaultContext.Parse("1.005")
	if err != nil || c.Scale() != 3 {
		t.Fatalf("default keeps input scale: %v %s", err, c)
	}
	if _, err := up.Parse("oops"); err == nil {
		t.Fatalf("expected error")
	}
	if got := up.FromInt(7).String(); got != "7.00" {
		t.Fatalf("FromInt: %s", got)
	}
}

func TestParseRoundingMode(t *testing.T) {
	cases := map[string]decimal.RoundingMode{
		"":          decimal.RoundHalfUp,
		"HALF_UP":   decimal.RoundHalfUp,
		"half-even": decimal.RoundHalfEven,
		"down":      decimal.RoundDown,
	}
	for in, want := range cases {
		got, err := decimal.ParseRoundingMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseRoundingMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := decimal.ParseRoundingMode("ceiling"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestText_Marshalling(t *testing.T) {
	var d decimal.Decimal
	if err := d.UnmarshalText([]byte("-0012.340")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, _ := d.MarshalText()
	if string(b) != "-12.340" {
		t.Fatalf("marshal: %s", b)
	}
	if err := d.UnmarshalText([]byte("x")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestZeroValue(t *testing.T) {
	var d decimal.Decimal
	if d.String() != "0" || !d.IsZero() || d.Scale() != 0 {
		t.Fatalf("zero value: %s", d)
	}
	if z := decimal.Zero(3); z.String() != "0.000" {
		t.Fatalf("Zero(3): %s", z)
	}
}
