// Package pic formats and parses COBOL display fields: PIC X (alphanumeric),
// PIC 9 (unsigned numeric) and PIC S9(n)V9(m) (signed numeric with an implied
// point). Formatting never fails on size mismatch except where noted; each
// function documents its truncation and padding policy. Lengths count characters.
package pic

import (
	"fmt"
	"strings"
	"unicode/utf8"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/decimal"
)

// Pad selects the side that receives padding spaces in a PIC X field.
type Pad uint8

const (
	PadRight Pad = iota // Value left-justified, spaces on the right.
	PadLeft             // Value right-justified, spaces on the left.
)

func (p Pad) String() string {
	if p == PadLeft {
		return "left"
	}
	return "right"
}

// ParsePad accepts "left" and "right" ("" means right).
func ParsePad(s string) (Pad, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "right":
		return PadRight, nil
	case "left":
		return PadLeft, nil
	}
	return PadRight, fmt.Errorf("pic: unknown pad side %q", s)
}

// FormatX truncates value to length characters, or pads it with spaces on the
// pad side. Character content is never altered.
func FormatX(value string, length int, pad Pad) string {
	if length <= 0 {
		return ""
	}
	n := utf8.RuneCountInString(value)
	if n >= length {
		if n == length {
			return value
		}
		return string([]rune(value)[:length])
	}
	spaces := strings.Repeat(" ", length-n)
	if pad == PadLeft {
		return spaces + value
	}
	return value + spaces
}

// FormatNine keeps only the ASCII digits of value, left-pads them with zeros to
// length and, when there are more than length digits, keeps the rightmost
// length digits (high-order truncation, as a COBOL MOVE does).
func FormatNine(value string, length int) string {
	if length <= 0 {
		return ""
	}
	digits := onlyDigits(value)
	if len(digits) > length {
		return digits[len(digits)-length:]
	}
	return strings.Repeat("0", length-len(digits)) + digits
}

// FormatNineChecked is FormatNine with an explicit overflow signal instead of
// high-order truncation.
func FormatNineChecked(value string, length int) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("pic: length %d: %w", length, picfield.ErrInvalidGeometry)
	}
	digits := onlyDigits(value)
	if len(digits) > length {
		return "", &picfield.FormatError{Kind: picfield.DigitOverflow, Value: value, Digits: len(digits), Max: length}
	}
	return FormatNine(digits, length), nil
}

func onlyDigits(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b = append(b, s[i])
		}
	}
	return string(b)
}

// FormatS9V9 renders v with integerDigits zero-padded integer positions and
// exactly fractionDigits fraction positions (rounded half-up). A leading "-"
// marks negative values; positives carry no sign. The point is written only
// when fractionDigits > 0.
func FormatS9V9(v decimal.Decimal, integerDigits, fractionDigits int) (string, error) {
	return FormatS9V9Mode(v, integerDigits, fractionDigits, decimal.RoundHalfUp)
}

// FormatS9V9Mode is FormatS9V9 with an explicit rounding mode.
func FormatS9V9Mode(v decimal.Decimal, integerDigits, fractionDigits int, mode decimal.RoundingMode) (string, error) {
	if integerDigits < 0 || fractionDigits < 0 || fractionDigits > decimal.MaxScale {
		return "", fmt.Errorf("pic: S9(%d)V9(%d): %w", integerDigits, fractionDigits, picfield.ErrInvalidGeometry)
	}
	r := v.Rescale(fractionDigits, mode)
	if n := r.IntegerDigits(); n > integerDigits {
		return "", &picfield.FormatError{Kind: picfield.DigitOverflow, Value: v.String(), Digits: n, Max: integerDigits}
	}

	digits := r.Digits()
	if len(digits) < integerDigits+fractionDigits {
		digits = strings.Repeat("0", integerDigits+fractionDigits-len(digits)) + digits
	}
	// Zero at scale 0 is "0"; drop leading zeros beyond the integer positions.
	digits = digits[len(digits)-integerDigits-fractionDigits:]

	b := &strings.Builder{}
	b.Grow(len(digits) + 2)
	if r.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(digits[:integerDigits])
	if fractionDigits > 0 {
		b.WriteByte('.')
		b.WriteString(digits[integerDigits:])
	}
	return b.String(), nil
}

// S9V9Width returns the unsigned width of a FormatS9V9 rendering.
func S9V9Width(integerDigits, fractionDigits int) int {
	if fractionDigits > 0 {
		return integerDigits + fractionDigits + 1
	}
	return integerDigits
}
