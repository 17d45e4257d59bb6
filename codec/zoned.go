package codec

import (
	"context"
	"fmt"
	"strings"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/decimal"
)

// Overpunch characters for the last position of a signed zoned field, indexed by digit.
var (
	overpunchPositive = [10]byte{'{', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I'}
	overpunchNegative = [10]byte{'}', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R'}
)

type overpunch struct {
	digit byte
	neg   bool
	ok    bool
}

// overpunchTable maps a trailing character to its digit and sign. Plain digits
// are unsigned (positive) trailing characters.
var overpunchTable = func() (t [256]overpunch) {
	for d := 0; d < 10; d++ {
		t[overpunchPositive[d]] = overpunch{digit: byte(d), ok: true}
		t[overpunchNegative[d]] = overpunch{digit: byte(d), neg: true, ok: true}
		t['0'+d] = overpunch{digit: byte(d), ok: true}
	}
	return t
}()

// Overpunch returns the trailing character encoding digit with the given
// sign. ok is false when digit is not in 0..9.
func Overpunch(digit byte, negative bool) (c byte, ok bool) {
	if digit > 9 {
		return 0, false
	}
	if negative {
		return overpunchNegative[digit], true
	}
	return overpunchPositive[digit], true
}

// DecodeZoned reads zoned decimal text. Every character except the last must be
// an ASCII digit; the last is looked up in the overpunch table for its digit and sign.
func DecodeZoned(text string, scale int) (decimal.Decimal, error) {
	if text == "" {
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.WidthMismatch, Pos: -1}
	}
	last := len(text) - 1
	for i := 0; i < last; i++ {
		if text[i] < '0' || text[i] > '9' {
			return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidDigitCharacter, Input: text, Pos: i}
		}
	}
	op := overpunchTable[text[last]]
	if !op.ok {
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidOverpunchCharacter, Input: text, Pos: last}
	}
	return decimal.NewFromDigits(text[:last]+string(rune('0'+op.digit)), op.neg, scale)
}

// EncodeZoned writes v's unscaled magnitude right-aligned and zero-padded to
// totalDigits characters, replacing the last character by its overpunch.
func EncodeZoned(v decimal.Decimal, totalDigits int) (string, error) {
	s, err := zonedDigits(v, totalDigits)
	if err != nil {
		return "", err
	}
	last := len(s) - 1
	c, _ := Overpunch(s[last]-'0', v.IsNegative())
	return s[:last] + string(c), nil
}

func zonedDigits(v decimal.Decimal, totalDigits int) (string, error) {
	if totalDigits < 1 {
		return "", fmt.Errorf("codec: zoned digits %d: %w", totalDigits, picfield.ErrInvalidGeometry)
	}
	digits := v.Digits()
	if len(digits) > totalDigits {
		return "", &picfield.EncodeError{Kind: picfield.Overflow, Value: v.String(), Digits: len(digits), Max: totalDigits}
	}
	return strings.Repeat("0", totalDigits-len(digits)) + digits, nil
}

// ZonedField is a zoned display field geometry: PIC S9(Digits-Scale)V9(Scale).
// It implements picfield.Codec[string, decimal.Decimal].
type ZonedField struct {
	Digits   int
	Scale    int
	Unsigned bool // PIC 9 (no S): plain trailing digit; negatives are rejected.
	Rounding decimal.RoundingMode
}

var _ picfield.Codec[string, decimal.Decimal] = ZonedField{}

func (f ZonedField) check() error {
	if f.Digits < 1 || f.Scale < 0 || f.Scale > decimal.MaxScale {
		return fmt.Errorf("codec: zoned field digits=%d scale=%d: %w", f.Digits, f.Scale, picfield.ErrInvalidGeometry)
	}
	return nil
}

func (f ZonedField) Decode(ctx context.Context, text string) (decimal.Decimal, error) {
	if err := f.check(); err != nil {
		return decimal.Decimal{}, err
	}
	if len(text) != f.Digits {
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.WidthMismatch, Input: text, Pos: -1}
	}
	return DecodeZoned(text, f.Scale)
}

func (f ZonedField) Encode(ctx context.Context, v decimal.Decimal) (string, error) {
	if err := f.check(); err != nil {
		return "", err
	}
	r := v.Rescale(f.Scale, f.Rounding)
	if !f.Unsigned {
		return EncodeZoned(r, f.Digits)
	}
	if r.IsNegative() {
		return "", &picfield.EncodeError{Kind: picfield.SignNotAllowed, Value: v.String()}
	}
	return zonedDigits(r, f.Digits)
}
