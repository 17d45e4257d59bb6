package codec

import (
	"context"
	"fmt"
	"unicode/utf8"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/pic"
)

// XField is an alphanumeric display field, PIC X(Length). Decode strips the
// padding; Encode pads like pic.FormatX but rejects values longer than the
// field instead of truncating them.
// It implements picfield.Codec[string, string].
type XField struct {
	Length int
	Pad    pic.Pad
}

var _ picfield.Codec[string, string] = XField{}

func (f XField) check() error {
	if f.Length < 1 {
		return fmt.Errorf("codec: X(%d): %w", f.Length, picfield.ErrInvalidGeometry)
	}
	return nil
}

func (f XField) Decode(ctx context.Context, s string) (string, error) {
	if err := f.check(); err != nil {
		return "", err
	}
	return pic.ParseX(s, f.Length, f.Pad)
}

func (f XField) Encode(ctx context.Context, s string) (string, error) {
	if err := f.check(); err != nil {
		return "", err
	}
	if n := utf8.RuneCountInString(s); n > f.Length {
		return "", &picfield.EncodeError{Kind: picfield.Overflow, Value: s, Digits: n, Max: f.Length}
	}
	return pic.FormatX(s, f.Length, f.Pad), nil
}
