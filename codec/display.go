package codec

import (
	"context"
	"fmt"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/decimal"
	"github.com/reoring/picfield/pic"
)

// DisplayField is a signed display numeric field, PIC S9(IntegerDigits)V9(FractionDigits),
// rendered with a leading "-" for negatives and an explicit point.
// It implements picfield.Codec[string, decimal.Decimal].
type DisplayField struct {
	IntegerDigits  int
	FractionDigits int
	Rounding       decimal.RoundingMode
}

var _ picfield.Codec[string, decimal.Decimal] = DisplayField{}

func (f DisplayField) Decode(ctx context.Context, s string) (decimal.Decimal, error) {
	return pic.ParseS9V9(s, f.IntegerDigits, f.FractionDigits)
}

func (f DisplayField) Encode(ctx context.Context, v decimal.Decimal) (string, error) {
	return pic.FormatS9V9Mode(v, f.IntegerDigits, f.FractionDigits, f.Rounding)
}

// NumericField is an unsigned display numeric field, PIC 9(Length) with Scale
// implied fraction digits. Encoding rejects negatives and overflow instead of
// truncating. It implements picfield.Codec[string, decimal.Decimal].
type NumericField struct {
	Length   int
	Scale    int
	Rounding decimal.RoundingMode
}

var _ picfield.Codec[string, decimal.Decimal] = NumericField{}

func (f NumericField) Decode(ctx context.Context, s string) (decimal.Decimal, error) {
	return pic.ParseNineScaled(s, f.Length, f.Scale)
}

func (f NumericField) Encode(ctx context.Context, v decimal.Decimal) (string, error) {
	if f.Scale < 0 || f.Scale > f.Length || f.Scale > decimal.MaxScale {
		return "", fmt.Errorf("codec: 9(%d) scale %d: %w", f.Length, f.Scale, picfield.ErrInvalidGeometry)
	}
	r := v.Rescale(f.Scale, f.Rounding)
	if r.IsNegative() {
		return "", &picfield.EncodeError{Kind: picfield.SignNotAllowed, Value: v.String()}
	}
	digits := r.Digits()
	if len(digits) > f.Length {
		return "", &picfield.EncodeError{Kind: picfield.Overflow, Value: v.String(), Digits: len(digits), Max: f.Length}
	}
	return pic.FormatNine(digits, f.Length), nil
}
