// Package layout loads fixed-width record layouts (field definitions with COBOL
// geometry, pictures and BMS attributes) and compiles them into Records that
// encode, decode and validate field values.
package layout

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/codec"
	"github.com/reoring/picfield/decimal"
	"github.com/reoring/picfield/pic"
	"github.com/reoring/picfield/picture"
)

// Kind is the storage class of a field.
type Kind string

const (
	KindX      Kind = "X"      // PIC X(length)
	KindNine   Kind = "9"      // PIC 9(length) with optional implied scale
	KindS9V9   Kind = "S9V9"   // PIC S9(integer_digits)V9(fraction_digits), display
	KindPacked Kind = "COMP-3" // packed decimal
	KindZoned  Kind = "ZONED"  // zoned decimal with overpunched sign
)

// ParseKind accepts the canonical names and the aliases PACKED, COMP3 and 9V9.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return KindX, nil
	case "9", "9V9":
		return KindNine, nil
	case "S9V9":
		return KindS9V9, nil
	case "COMP-3", "COMP3", "PACKED":
		return KindPacked, nil
	case "ZONED":
		return KindZoned, nil
	}
	return "", fmt.Errorf("layout: unknown field kind %q", s)
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Numeric reports whether values of this kind are decimals.
func (k Kind) Numeric() bool { return k != KindX }

// FieldDef is one field definition as written in a layout file.
type FieldDef struct {
	Name           string   `yaml:"name" json:"name"`
	Kind           Kind     `yaml:"kind" json:"kind"`
	Length         int      `yaml:"length,omitempty" json:"length,omitempty"`
	IntegerDigits  int      `yaml:"integer_digits,omitempty" json:"integer_digits,omitempty"`
	FractionDigits int      `yaml:"fraction_digits,omitempty" json:"fraction_digits,omitempty"`
	Digits         int      `yaml:"digits,omitempty" json:"digits,omitempty"`
	Scale          int      `yaml:"scale,omitempty" json:"scale,omitempty"`
	Unsigned       bool     `yaml:"unsigned,omitempty" json:"unsigned,omitempty"`
	Picture        string   `yaml:"picture,omitempty" json:"picture,omitempty"`
	Pad            string   `yaml:"pad,omitempty" json:"pad,omitempty"`
	Attributes     []string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Rounding       string   `yaml:"rounding,omitempty" json:"rounding,omitempty"`
	Required       bool     `yaml:"required,omitempty" json:"required,omitempty"`
}

// Layout is a named, ordered list of field definitions.
type Layout struct {
	Name   string     `yaml:"name" json:"name"`
	Fields []FieldDef `yaml:"fields" json:"fields"`
}

// CompileOptions tunes Layout.CompileWith.
type CompileOptions struct {
	// Cache used for picture clauses; nil uses the process-wide cache.
	Cache *picture.Cache
	// Picture compilation options (e.g. repeat counts).
	Picture picture.Options
}

// Compile is CompileWith with default options.
func (l Layout) Compile() (*Record, picfield.Failures, error) {
	return l.CompileWith(CompileOptions{})
}

// CompileWith checks every field definition and builds a Record. Definition
// errors for all fields are combined into the returned error. Non-fatal
// configuration findings (e.g. a picture that matches only empty text) come
// back as Warn-severity failures.
func (l Layout) CompileWith(opt CompileOptions) (*Record, picfield.Failures, error) {
	rec := &Record{name: l.Name, index: make(map[string]int, len(l.Fields))}
	var (
		errs     error
		warnings picfield.Failures
	)
	offset := 0
	for i, def := range l.Fields {
		f, warn, err := compileField(def, opt)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("layout %s: field #%d %q: %w", l.Name, i, def.Name, err))
			continue
		}
		if _, dup := rec.index[f.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("layout %s: field #%d: duplicate name %q", l.Name, i, def.Name))
			continue
		}
		warnings = append(warnings, warn...)
		f.Offset = offset
		offset += f.Width
		rec.index[f.Name] = len(rec.fields)
		rec.fields = append(rec.fields, f)
	}
	if errs != nil {
		return nil, warnings, errs
	}
	rec.width = offset
	return rec, warnings, nil
}

func compileField(def FieldDef, opt CompileOptions) (Field, picfield.Failures, error) {
	f := Field{Name: strings.TrimSpace(def.Name), Def: def}
	if f.Name == "" {
		return f, nil, fmt.Errorf("missing name: %w", picfield.ErrInvalidGeometry)
	}
	var errs error

	mode, err := decimal.ParseRoundingMode(def.Rounding)
	errs = multierr.Append(errs, err)
	f.rounding = mode
	pad, err := pic.ParsePad(def.Pad)
	errs = multierr.Append(errs, err)
	f.pad = pad
	attr, err := ParseAttributes(def.Attributes)
	errs = multierr.Append(errs, err)
	f.Attr = attr

	kind := def.Kind
	if k, err := ParseKind(string(kind)); err == nil {
		kind = k
	}
	switch kind {
	case KindX:
		if def.Length < 1 {
			errs = multierr.Append(errs, geometry("X(%d)", def.Length))
		}
		f.Width = def.Length
	case KindNine:
		if def.Length < 1 || def.Scale < 0 || def.Scale > def.Length {
			errs = multierr.Append(errs, geometry("9(%d) scale %d", def.Length, def.Scale))
		}
		f.Width = def.Length
	case KindS9V9:
		if def.IntegerDigits < 0 || def.FractionDigits < 0 || def.IntegerDigits+def.FractionDigits == 0 || def.FractionDigits > decimal.MaxScale {
			errs = multierr.Append(errs, geometry("S9(%d)V9(%d)", def.IntegerDigits, def.FractionDigits))
		}
		// One leading sign position, blank for non-negative values.
		f.Width = 1 + pic.S9V9Width(def.IntegerDigits, def.FractionDigits)
	case KindPacked, KindZoned:
		if def.Digits < 1 || def.Scale < 0 || def.Scale > def.Digits {
			errs = multierr.Append(errs, geometry("%s digits %d scale %d", kind, def.Digits, def.Scale))
		}
		if kind == KindPacked {
			f.Width = codec.PackedLen(def.Digits)
		} else {
			f.Width = def.Digits
		}
	case "":
		errs = multierr.Append(errs, fmt.Errorf("missing kind"))
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown kind %q", def.Kind))
	}
	f.Kind = kind

	var warnings picfield.Failures
	if def.Picture != "" {
		var c *picture.Clause
		if opt.Cache != nil {
			c, err = opt.Cache.Compile(def.Picture, opt.Picture)
		} else {
			c, err = picture.Cached(def.Picture, opt.Picture)
		}
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			f.Picture = c
			switch {
			case c.ZeroWidthOnly():
				w := picfield.FailureAt(f.Name, picfield.CodeConfig, "validation.zero_width_picture", "picture", def.Picture)
				w.Severity = picfield.Warn
				warnings = append(warnings, w)
			case kind == KindX && c.Width() != f.Width:
				w := picfield.FailureAt(f.Name, picfield.CodeConfig, "validation.picture_width",
					"picture", def.Picture, "width", c.Width(), "length", f.Width)
				w.Severity = picfield.Warn
				warnings = append(warnings, w)
			}
		}
	}
	return f, warnings, errs
}

func geometry(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), picfield.ErrInvalidGeometry)
}
