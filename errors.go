package picfield

import (
	"errors"
	"fmt"
	"strings"
)

// Failure codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired      = "required"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
	CodeOverflow      = "overflow"
	CodeBusinessRule  = "business_rule"
	CodeRuleError     = "rule_error"
	// Configuration problems found while compiling field definitions.
	CodeConfig = "config"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrInvalidNumericLiteral     = errors.New("invalid numeric literal")
	ErrInvalidSignNibble         = errors.New("invalid sign nibble")
	ErrInvalidDigitNibble        = errors.New("invalid digit nibble")
	ErrInvalidOverpunchCharacter = errors.New("invalid overpunch character")
	ErrInvalidDigitCharacter     = errors.New("invalid digit character")
	ErrWidthMismatch             = errors.New("width mismatch")
	ErrOverflow                  = errors.New("value does not fit field")
	ErrSignNotAllowed            = errors.New("negative value in unsigned field")
	ErrDigitOverflow             = errors.New("digit overflow")
	ErrUnrecognizedToken         = errors.New("unrecognized picture token")
	ErrInvalidRepeat             = errors.New("invalid picture repeat count")
	ErrInvalidGeometry           = errors.New("invalid field geometry")
)

// DecodeErrorKind enumerates malformed-input conditions.
type DecodeErrorKind uint8

const (
	InvalidNumericLiteral DecodeErrorKind = iota + 1
	InvalidSignNibble
	InvalidDigitNibble
	InvalidOverpunchCharacter
	InvalidDigitCharacter
	WidthMismatch
)

func (k DecodeErrorKind) sentinel() error {
	switch k {
	case InvalidNumericLiteral:
		return ErrInvalidNumericLiteral
	case InvalidSignNibble:
		return ErrInvalidSignNibble
	case InvalidDigitNibble:
		return ErrInvalidDigitNibble
	case InvalidOverpunchCharacter:
		return ErrInvalidOverpunchCharacter
	case InvalidDigitCharacter:
		return ErrInvalidDigitCharacter
	case WidthMismatch:
		return ErrWidthMismatch
	}
	return nil
}

func (k DecodeErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("DecodeErrorKind(%d)", uint8(k))
}

// DecodeError reports malformed packed, zoned or display input.
type DecodeError struct {
	Kind  DecodeErrorKind
	Input string // Offending input; packed bytes are rendered as upper-case hex.
	Pos   int    // Character or nibble position (-1 when unknown).
	Cause error
}

func (e *DecodeError) Error() string {
	b := &strings.Builder{}
	b.WriteString("decode: ")
	b.WriteString(e.Kind.String())
	if e.Pos >= 0 {
		fmt.Fprintf(b, " at position %d", e.Pos)
	}
	if e.Input != "" {
		fmt.Fprintf(b, " in %q", e.Input)
	}
	if e.Cause != nil {
		fmt.Fprintf(b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *DecodeError) Is(target error) bool { return target != nil && target == e.Kind.sentinel() }
func (e *DecodeError) Unwrap() error        { return e.Cause }

// EncodeErrorKind enumerates conditions where a value does not fit the target geometry.
type EncodeErrorKind uint8

const (
	Overflow EncodeErrorKind = iota + 1
	SignNotAllowed
)

func (k EncodeErrorKind) sentinel() error {
	switch k {
	case Overflow:
		return ErrOverflow
	case SignNotAllowed:
		return ErrSignNotAllowed
	}
	return nil
}

func (k EncodeErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("EncodeErrorKind(%d)", uint8(k))
}

// EncodeError reports a value that cannot be encoded into the requested field.
type EncodeError struct {
	Kind   EncodeErrorKind
	Value  string
	Digits int // Digits required by the value.
	Max    int // Digits available in the field.
}

func (e *EncodeError) Error() string {
	if e.Kind == Overflow {
		return fmt.Sprintf("encode: %s: %s needs %d digits, field holds %d", e.Kind, e.Value, e.Digits, e.Max)
	}
	return fmt.Sprintf("encode: %s: %s", e.Kind, e.Value)
}

func (e *EncodeError) Is(target error) bool { return target != nil && target == e.Kind.sentinel() }

// FormatErrorKind enumerates display-formatting failures.
type FormatErrorKind uint8

const (
	DigitOverflow FormatErrorKind = iota + 1
)

func (k FormatErrorKind) String() string {
	if k == DigitOverflow {
		return ErrDigitOverflow.Error()
	}
	return fmt.Sprintf("FormatErrorKind(%d)", uint8(k))
}

// FormatError reports a value whose integer part exceeds the display field.
type FormatError struct {
	Kind   FormatErrorKind
	Value  string
	Digits int
	Max    int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format: %s: %s has %d integer digits, field holds %d", e.Kind, e.Value, e.Digits, e.Max)
}

func (e *FormatError) Is(target error) bool {
	return target != nil && e.Kind == DigitOverflow && target == ErrDigitOverflow
}

// PictureErrorKind enumerates malformed picture clauses.
type PictureErrorKind uint8

const (
	UnrecognizedToken PictureErrorKind = iota + 1
	InvalidRepeat
)

func (k PictureErrorKind) sentinel() error {
	switch k {
	case UnrecognizedToken:
		return ErrUnrecognizedToken
	case InvalidRepeat:
		return ErrInvalidRepeat
	}
	return nil
}

func (k PictureErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("PictureErrorKind(%d)", uint8(k))
}

// PictureError reports a picture clause that cannot be compiled.
type PictureError struct {
	Kind    PictureErrorKind
	Picture string
	Pos     int // Rune index within Picture.
	Char    rune
}

func (e *PictureError) Error() string {
	return fmt.Sprintf("picture: %s %q at position %d in %q", e.Kind, e.Char, e.Pos, e.Picture)
}

func (e *PictureError) Is(target error) bool { return target != nil && target == e.Kind.sentinel() }

// ValidationFailure is a business-rule or field-format non-conformance. It is
// reported, never raised: validation passes accumulate failures and return them all.
type ValidationFailure struct {
	Field    string // Primary offending field.
	Code     string // One of the codes listed above.
	Message  string // Message key, resolved by i18n at the presentation layer.
	Rule     string // Optional: name of the rule that produced the failure.
	Severity Severity
	Params   map[string]any // Structured parameters (e.g., {"picture":"999", "position":2}).
	Cause    error          // Optional: underlying error.
}

// Failures is a collection of validation failures that implements error.
type Failures []ValidationFailure

// Error summarizes the first few failures.
func (fs Failures) Error() string {
	if len(fs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(fs)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		f := fs[i]
		// e.g. business_rule at zip
		fmt.Fprintf(b, "%s at %s", f.Code, f.Field)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Errors returns only the failures with Error severity.
func (fs Failures) Errors() Failures {
	var out Failures
	for _, f := range fs {
		if f.Severity == Error {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns only the failures with Warn severity.
func (fs Failures) Warnings() Failures {
	var out Failures
	for _, f := range fs {
		if f.Severity == Warn {
			out = append(out, f)
		}
	}
	return out
}

// AppendFailures appends failures to the destination, initializing the slice
// when needed.
func AppendFailures(dst Failures, more ...ValidationFailure) Failures {
	if dst == nil {
		dst = Failures{}
	}
	dst = append(dst, more...)
	return dst
}

// AsFailures extracts Failures from an error using errors.As internally.
func AsFailures(err error) (Failures, bool) {
	if err == nil {
		return nil, false
	}
	var fs Failures
	if errors.As(err, &fs) {
		return fs, true
	}
	return nil, false
}

// FailureAt creates a ValidationFailure for field with the provided code,
// message key and alternating key/value params.
func FailureAt(field, code, msg string, kv ...any) ValidationFailure {
	var m map[string]any
	if len(kv) > 1 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return ValidationFailure{Field: field, Code: code, Message: msg, Params: m}
}
