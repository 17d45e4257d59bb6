package picfield_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/codec"
	"github.com/reoring/picfield/decimal"
	"github.com/reoring/picfield/picture"
)

// TestErrorModel_SentinelsAndAs checks that each typed error matches its
// sentinel through errors.Is and can be extracted with errors.As.
func TestErrorModel_SentinelsAndAs(t *testing.T) {
	ctx := context.Background()

	_, err := codec.DecodePacked([]byte{0x12, 0x3A}, 0)
	if !errors.Is(err, picfield.ErrInvalidSignNibble) {
		t.Fatalf("expected invalid sign nibble, got %v", err)
	}
	var de *picfield.DecodeError
	if !errors.As(err, &de) || de.Input != "123A" {
		t.Fatalf("expected DecodeError with hex input, got %#v", err)
	}
	if errors.Is(err, picfield.ErrInvalidDigitNibble) {
		t.Fatalf("DecodeError must only match its own kind")
	}

	_, err = codec.PackedField{Digits: 3}.Encode(ctx, decimal.MustParse("1234"))
	var ee *picfield.EncodeError
	if !errors.As(err, &ee) || !errors.Is(err, picfield.ErrOverflow) || ee.Digits != 4 || ee.Max != 3 {
		t.Fatalf("expected overflow EncodeError, got %#v", err)
	}
	if !strings.Contains(err.Error(), "needs 4 digits, field holds 3") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = codec.PackedField{Digits: 3, Unsigned: true}.Encode(ctx, decimal.MustParse("-1"))
	if !errors.Is(err, picfield.ErrSignNotAllowed) {
		t.Fatalf("expected sign error, got %v", err)
	}

	_, err = picture.Compile("99\x01")
	var pe *picfield.PictureError
	if !errors.As(err, &pe) || !errors.Is(err, picfield.ErrUnrecognizedToken) || pe.Pos != 2 {
		t.Fatalf("expected PictureError at 2, got %#v", err)
	}

	fe := &picfield.FormatError{Kind: picfield.DigitOverflow, Value: "1234", Digits: 4, Max: 3}
	wrapped := fmt.Errorf("field amount: %w", fe)
	if !errors.Is(wrapped, picfield.ErrDigitOverflow) {
		t.Fatalf("wrapped FormatError must match ErrDigitOverflow")
	}
}

func TestErrorModel_Failures(t *testing.T) {
	fs := picfield.Failures{
		picfield.FailureAt("zip", picfield.CodeBusinessRule, "validation.business_rule"),
		picfield.FailureAt("name", picfield.CodeOverflow, "validation.too_long", "max", 10),
	}
	w := picfield.FailureAt("rate", picfield.CodeConfig, "validation.picture_width")
	w.Severity = picfield.Warn
	fs = picfield.AppendFailures(fs, w)

	if got, want := fs.Error(), "business_rule at zip; overflow at name; config at rate"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if len(fs.Errors()) != 2 || len(fs.Warnings()) != 1 || fs.Warnings()[0].Field != "rate" {
		t.Fatalf("severity split: %v / %v", fs.Errors(), fs.Warnings())
	}
	if diff := cmp.Diff(map[string]any{"max": 10}, fs[1].Params); diff != "" {
		t.Fatalf("params (-want +got):\n%s", diff)
	}
	if fs[0].Params != nil {
		t.Fatalf("no params expected, got %v", fs[0].Params)
	}

	more := append(fs, fs...)
	if got := more.Error(); !strings.HasSuffix(got, "; ... (total 6)") {
		t.Fatalf("long summary %q", got)
	}

	got, ok := picfield.AsFailures(fmt.Errorf("record: %w", fs))
	if !ok || len(got) != 3 {
		t.Fatalf("AsFailures: %v %v", ok, got)
	}
	if _, ok := picfield.AsFailures(errors.New("plain")); ok {
		t.Fatalf("plain error is not Failures")
	}
	if _, ok := picfield.AsFailures(nil); ok {
		t.Fatalf("nil is not Failures")
	}
	if picfield.Error.String() != "error" || picfield.Warn.String() != "warn" || picfield.Severity(9).String() != "unknown" {
		t.Fatalf("severity strings")
	}
}

func TestCodecHelpers(t *testing.T) {
	ctx := context.Background()
	f := codec.ZonedField{Digits: 5, Scale: 1}

	if _, ok := picfield.SafeDecode[string, decimal.Decimal](ctx, f, "00*2C"); ok {
		t.Fatalf("malformed zoned text must not decode")
	}
	v, ok := picfield.SafeDecode[string, decimal.Decimal](ctx, f, "0012L")
	if !ok || v.String() != "-12.3" {
		t.Fatalf("SafeDecode = %v %v", v, ok)
	}
	back, err := picfield.RoundTrip[string, decimal.Decimal](ctx, f, decimal.MustParse("-12.3"))
	if err != nil || !back.Equal(decimal.MustParse("-12.3")) {
		t.Fatalf("RoundTrip = %v %v", back, err)
	}
	if _, err := picfield.RoundTrip[string, decimal.Decimal](ctx, f, decimal.MustParse("123456")); !errors.Is(err, picfield.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}
