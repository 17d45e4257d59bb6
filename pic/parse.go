package pic

import (
	"fmt"
	"strings"
	"unicode/utf8"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/decimal"
)

// ParseX checks that slice is exactly length characters and strips the padding
// spaces FormatX added on the pad side.
func ParseX(slice string, length int, pad Pad) (string, error) {
	if utf8.RuneCountInString(slice) != length {
		return "", &picfield.DecodeError{Kind: picfield.WidthMismatch, Input: slice, Pos: -1}
	}
	if pad == PadLeft {
		return strings.TrimLeft(slice, " "), nil
	}
	return strings.TrimRight(slice, " "), nil
}

// ParseNine reads a PIC 9 slice of exactly length ASCII digits as an integer.
func ParseNine(slice string, length int) (decimal.Decimal, error) {
	return ParseNineScaled(slice, length, 0)
}

// ParseNineScaled reads a PIC 9(n)V9(scale) slice: length ASCII digits whose
// last scale digits are the implied fraction.
func ParseNineScaled(slice string, length, scale int) (decimal.Decimal, error) {
	if scale < 0 || scale > length {
		return decimal.Decimal{}, fmt.Errorf("pic: 9(%d) scale %d: %w", length, scale, picfield.ErrInvalidGeometry)
	}
	if len(slice) != length || length == 0 {
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.WidthMismatch, Input: slice, Pos: -1}
	}
	if pos := firstNonDigit(slice); pos >= 0 {
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidDigitCharacter, Input: slice, Pos: pos}
	}
	return decimal.NewFromDigits(slice, false, scale)
}

// ParseS9V9 inverts FormatS9V9: an optional leading "-", integerDigits digits,
// then "." and fractionDigits digits when fractionDigits > 0.
func ParseS9V9(slice string, integerDigits, fractionDigits int) (decimal.Decimal, error) {
	if integerDigits < 0 || fractionDigits < 0 || integerDigits+fractionDigits == 0 {
		return decimal.Decimal{}, fmt.Errorf("pic: S9(%d)V9(%d): %w", integerDigits, fractionDigits, picfield.ErrInvalidGeometry)
	}
	body, neg := slice, false
	if strings.HasPrefix(body, "-") {
		body, neg = body[1:], true
	}
	if len(body) != S9V9Width(integerDigits, fractionDigits) {
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.WidthMismatch, Input: slice, Pos: -1}
	}
	offset := len(slice) - len(body)
	intPart := body[:integerDigits]
	if pos := firstNonDigit(intPart); pos >= 0 {
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidDigitCharacter, Input: slice, Pos: offset + pos}
	}
	var frac string
	if fractionDigits > 0 {
		if body[integerDigits] != '.' {
			return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidDigitCharacter, Input: slice, Pos: offset + integerDigits}
		}
		frac = body[integerDigits+1:]
		if pos := firstNonDigit(frac); pos >= 0 {
			return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidDigitCharacter, Input: slice, Pos: offset + integerDigits + 1 + pos}
		}
	}
	return decimal.NewFromDigits(intPart+frac, neg, fractionDigits)
}

func firstNonDigit(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return i
		}
	}
	return -1
}
