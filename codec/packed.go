package codec

import (
	"context"
	"fmt"
	"strings"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/decimal"
)

// Sign nibbles.
const (
	SignPositive byte = 0x0C
	SignNegative byte = 0x0D
	SignUnsigned byte = 0x0F
)

// PackedLen returns the byte length of a packed field holding digits digits.
func PackedLen(digits int) int { return digits/2 + 1 }

// DecodePacked reads packed-decimal (COMP-3) bytes. Nibbles are read from most
// to least significant; the final nibble is the sign and every other nibble is
// a digit. scale digits are taken as the fraction.
func DecodePacked(b []byte, scale int) (decimal.Decimal, error) {
	if len(b) == 0 {
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.WidthMismatch, Pos: -1}
	}
	digits := make([]byte, 0, len(b)*2-1)
	var sign byte
	for i, c := range b {
		hi, lo := c>>4, c&0x0f
		if hi > 9 {
			return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidDigitNibble, Input: fmt.Sprintf("%X", b), Pos: i * 2}
		}
		digits = append(digits, '0'+hi)
		if i == len(b)-1 {
			sign = lo
			break
		}
		if lo > 9 {
			return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidDigitNibble, Input: fmt.Sprintf("%X", b), Pos: i*2 + 1}
		}
		digits = append(digits, '0'+lo)
	}

	var neg bool
	switch sign {
	case SignPositive, SignUnsigned:
	case SignNegative:
		neg = true
	default:
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.InvalidSignNibble, Input: fmt.Sprintf("%X", b), Pos: len(b)*2 - 1}
	}
	return decimal.NewFromDigits(string(digits), neg, scale)
}

// EncodePacked writes v's unscaled magnitude (at v's own scale) as packed
// decimal with totalDigits digit nibbles and a C/D sign nibble.
func EncodePacked(v decimal.Decimal, totalDigits int) ([]byte, error) {
	sign := SignPositive
	if v.IsNegative() {
		sign = SignNegative
	}
	return encodePacked(v, totalDigits, sign)
}

func encodePacked(v decimal.Decimal, totalDigits int, sign byte) ([]byte, error) {
	if totalDigits < 1 {
		return nil, fmt.Errorf("codec: packed digits %d: %w", totalDigits, picfield.ErrInvalidGeometry)
	}
	digits := v.Digits()
	if len(digits) > totalDigits {
		return nil, &picfield.EncodeError{Kind: picfield.Overflow, Value: v.String(), Digits: len(digits), Max: totalDigits}
	}
	// An even digit count gets one leading pad nibble so the sign lands in a low nibble.
	n := totalDigits | 1
	padded := strings.Repeat("0", n-len(digits)) + digits

	out := make([]byte, (n+1)/2)
	for i := 0; i < n; i++ {
		nib := padded[i] - '0'
		if i%2 == 0 {
			out[i/2] = nib << 4
		} else {
			out[i/2] |= nib
		}
	}
	out[len(out)-1] |= sign
	return out, nil
}

// PackedField is a COMP-3 field geometry: PIC S9(Digits-Scale)V9(Scale) COMP-3.
// It implements picfield.Codec[[]byte, decimal.Decimal].
type PackedField struct {
	Digits   int
	Scale    int
	Unsigned bool                 // PIC 9 (no S): encode with an F sign nibble and reject negatives.
	Rounding decimal.RoundingMode // Applied when an encoded value has more fraction digits than Scale.
}

var _ picfield.Codec[[]byte, decimal.Decimal] = PackedField{}

// Len returns the field's byte length.
func (f PackedField) Len() int { return PackedLen(f.Digits) }

func (f PackedField) check() error {
	if f.Digits < 1 || f.Scale < 0 || f.Scale > decimal.MaxScale {
		return fmt.Errorf("codec: packed field digits=%d scale=%d: %w", f.Digits, f.Scale, picfield.ErrInvalidGeometry)
	}
	return nil
}

func (f PackedField) Decode(ctx context.Context, b []byte) (decimal.Decimal, error) {
	if err := f.check(); err != nil {
		return decimal.Decimal{}, err
	}
	if len(b) != f.Len() {
		return decimal.Decimal{}, &picfield.DecodeError{Kind: picfield.WidthMismatch, Input: fmt.Sprintf("%X", b), Pos: -1}
	}
	return DecodePacked(b, f.Scale)
}

func (f PackedField) Encode(ctx context.Context, v decimal.Decimal) ([]byte, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	r := v.Rescale(f.Scale, f.Rounding)
	if !f.Unsigned {
		return EncodePacked(r, f.Digits)
	}
	if r.IsNegative() {
		return nil, &picfield.EncodeError{Kind: picfield.SignNotAllowed, Value: v.String()}
	}
	return encodePacked(r, f.Digits, SignUnsigned)
}
