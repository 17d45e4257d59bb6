package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/codec"
	"github.com/reoring/picfield/decimal"
	"github.com/reoring/picfield/pic"
	"github.com/reoring/picfield/picture"
	"github.com/reoring/picfield/rules"
)

// ErrNonASCII is returned when text destined for a record is not 7-bit ASCII.
// Record offsets count bytes, so text fields must be single-byte.
var ErrNonASCII = errors.New("non-ASCII text in fixed-width record")

// Field is a compiled field: its definition plus resolved geometry.
type Field struct {
	Name    string
	Kind    Kind
	Def     FieldDef
	Offset  int // Byte offset in the record.
	Width   int // Byte width in the record.
	Attr    Attribute
	Picture *picture.Clause // nil without a picture.

	pad      pic.Pad
	rounding decimal.RoundingMode
}

// Record is a compiled layout. It is immutable and safe for concurrent use.
type Record struct {
	name   string
	fields []Field
	index  map[string]int
	width  int
}

// Name returns the layout name.
func (r *Record) Name() string { return r.name }

// Width returns the record length in bytes.
func (r *Record) Width() int { return r.width }

// Fields returns the compiled fields in record order.
func (r *Record) Fields() []Field { return append([]Field(nil), r.fields...) }

// Field looks a field up by name.
func (r *Record) Field(name string) (Field, bool) {
	i, ok := r.index[name]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// Encode renders values into one fixed-width record. Every field is encoded;
// the errors of all failing fields are combined. Numeric fields need a value:
// a blank numeric field is an error, never zero.
func (r *Record) Encode(ctx context.Context, values map[string]string) ([]byte, error) {
	out := make([]byte, 0, r.width)
	var errs error
	for _, f := range r.fields {
		b, err := f.encode(ctx, values[f.Name])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("layout %s: field %q: %w", r.name, f.Name, err))
			b = make([]byte, f.Width)
		}
		out = append(out, b...)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// Decode splits a record into field texts: X fields with padding removed,
// numeric fields as canonical decimal strings at the field scale.
func (r *Record) Decode(ctx context.Context, b []byte) (map[string]string, error) {
	if len(b) != r.width {
		return nil, fmt.Errorf("layout %s: record is %d bytes, want %d: %w", r.name, len(b), r.width, picfield.ErrWidthMismatch)
	}
	out := make(map[string]string, len(r.fields))
	var errs error
	for _, f := range r.fields {
		s, err := f.decode(ctx, b[f.Offset:f.Offset+f.Width])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("layout %s: field %q: %w", r.name, f.Name, err))
			continue
		}
		out[f.Name] = s
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// DecodeAll decodes many records, at most workers at a time (workers < 1
// means one per record). Results keep input order. The first failing record
// cancels the rest and its error is returned with the record index.
func (r *Record) DecodeAll(ctx context.Context, records [][]byte, workers int) ([]map[string]string, error) {
	out := make([]map[string]string, len(records))
	eg, egCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i, b := range records {
		i, b := i, b
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			m, err := r.Decode(egCtx, b)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			out[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks user-entered field texts: required fields, pictures, NUM
// attributes and whether numeric values fit their geometry. Protected fields
// (ASKIP, PROT) are skipped. All failures are returned in field order.
func (r *Record) Validate(ctx context.Context, values map[string]string) picfield.Failures {
	var out picfield.Failures
	for _, f := range r.fields {
		if f.Attr.Protected() {
			continue
		}
		s := values[f.Name]
		if strings.TrimSpace(s) == "" {
			if f.Def.Required {
				out = picfield.AppendFailures(out, picfield.FailureAt(f.Name, picfield.CodeRequired, "validation.required"))
			}
			continue
		}
		if f.Picture != nil {
			if pos := f.Picture.Mismatch(s); pos >= 0 {
				out = picfield.AppendFailures(out, picfield.FailureAt(f.Name, picfield.CodePattern, "validation.pattern",
					"picture", f.Picture.String(), "position", pos))
				continue
			}
		}
		if f.Kind == KindX && f.Attr.Has(NUM) {
			if _, err := decimal.Parse(s); err != nil {
				fl := picfield.FailureAt(f.Name, picfield.CodeInvalidFormat, "validation.numeric")
				fl.Cause = err
				out = picfield.AppendFailures(out, fl)
				continue
			}
		}
		if fl, bad := f.check(ctx, s); bad {
			out = picfield.AppendFailures(out, fl)
		}
	}
	return out
}

// ValidateWith runs Validate and then the cross-field rules, returning both
// sets of failures.
func (r *Record) ValidateWith(ctx context.Context, values map[string]string, rs []rules.Rule) picfield.Failures {
	out := r.Validate(ctx, values)
	if more := rules.Evaluate(rs, values); len(more) > 0 {
		out = picfield.AppendFailures(out, more...)
	}
	return out
}

// check encodes s and maps an encoding error to a failure.
func (f Field) check(ctx context.Context, s string) (picfield.ValidationFailure, bool) {
	if f.Kind == KindX {
		if n := utf8.RuneCountInString(s); n > f.Width {
			return picfield.FailureAt(f.Name, picfield.CodeOverflow, "validation.too_long", "max", f.Width), true
		}
	}
	_, err := f.encode(ctx, s)
	if err == nil {
		return picfield.ValidationFailure{}, false
	}
	var (
		fl    picfield.ValidationFailure
		ee    *picfield.EncodeError
		fe    *picfield.FormatError
		limit int
	)
	switch {
	case errors.As(err, &ee) && ee.Kind == picfield.Overflow:
		limit = ee.Max
	case errors.As(err, &fe):
		limit = fe.Max
	}
	switch {
	case limit > 0:
		fl = picfield.FailureAt(f.Name, picfield.CodeOverflow, "validation.overflow", "max", limit)
	case errors.Is(err, picfield.ErrInvalidNumericLiteral):
		fl = picfield.FailureAt(f.Name, picfield.CodeInvalidFormat, "validation.numeric")
	default:
		fl = picfield.FailureAt(f.Name, picfield.CodeInvalidFormat, "validation.invalid_format")
	}
	fl.Cause = err
	return fl, true
}

func (f Field) encode(ctx context.Context, s string) ([]byte, error) {
	if f.Kind == KindX {
		out, err := codec.XField{Length: f.Width, Pad: f.pad}.Encode(ctx, s)
		if err != nil {
			return nil, err
		}
		if !isASCII(out) {
			return nil, ErrNonASCII
		}
		return []byte(out), nil
	}
	v, err := decimal.Parse(s)
	if err != nil {
		return nil, err
	}
	var text string
	switch f.Kind {
	case KindNine:
		text, err = codec.NumericField{Length: f.Def.Length, Scale: f.Def.Scale, Rounding: f.rounding}.Encode(ctx, v)
	case KindS9V9:
		text, err = codec.DisplayField{IntegerDigits: f.Def.IntegerDigits, FractionDigits: f.Def.FractionDigits, Rounding: f.rounding}.Encode(ctx, v)
		if err == nil && !strings.HasPrefix(text, "-") {
			text = " " + text
		}
	case KindZoned:
		text, err = codec.ZonedField{Digits: f.Def.Digits, Scale: f.Def.Scale, Unsigned: f.Def.Unsigned, Rounding: f.rounding}.Encode(ctx, v)
	case KindPacked:
		return codec.PackedField{Digits: f.Def.Digits, Scale: f.Def.Scale, Unsigned: f.Def.Unsigned, Rounding: f.rounding}.Encode(ctx, v)
	default:
		return nil, fmt.Errorf("unknown kind %q", f.Kind)
	}
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (f Field) decode(ctx context.Context, b []byte) (string, error) {
	if f.Kind == KindPacked {
		v, err := codec.PackedField{Digits: f.Def.Digits, Scale: f.Def.Scale, Unsigned: f.Def.Unsigned}.Decode(ctx, b)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	}
	text := string(b)
	if !isASCII(text) {
		return "", ErrNonASCII
	}
	var (
		v   decimal.Decimal
		err error
	)
	switch f.Kind {
	case KindX:
		return codec.XField{Length: f.Width, Pad: f.pad}.Decode(ctx, text)
	case KindNine:
		v, err = codec.NumericField{Length: f.Def.Length, Scale: f.Def.Scale}.Decode(ctx, text)
	case KindS9V9:
		switch text[0] {
		case ' ':
			text = text[1:]
		case '-':
		default:
			return "", &picfield.DecodeError{Kind: picfield.InvalidDigitCharacter, Input: text, Pos: 0}
		}
		v, err = codec.DisplayField{IntegerDigits: f.Def.IntegerDigits, FractionDigits: f.Def.FractionDigits}.Decode(ctx, text)
	case KindZoned:
		v, err = codec.ZonedField{Digits: f.Def.Digits, Scale: f.Def.Scale, Unsigned: f.Def.Unsigned}.Decode(ctx, text)
	default:
		return "", fmt.Errorf("unknown kind %q", f.Kind)
	}
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
