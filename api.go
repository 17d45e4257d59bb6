package picfield

import "context"

// Codec performs bidirectional conversion between the wire representation A
// (packed bytes, zoned or display text) and the domain representation B.
type Codec[A, B any] interface {
	Decode(ctx context.Context, a A) (B, error) // A (wire) -> B, validating the wire geometry.
	Encode(ctx context.Context, b B) (A, error) // B -> A, failing when B does not fit.
}

// Decode is a convenience wrapper over Codec.Decode.
func Decode[A, B any](ctx context.Context, c Codec[A, B], a A) (B, error) {
	return c.Decode(ctx, a)
}

// Encode is a convenience wrapper over Codec.Encode.
func Encode[A, B any](ctx context.Context, c Codec[A, B], b B) (A, error) {
	return c.Encode(ctx, b)
}

// SafeDecode decodes a, returning (zero, false) on error. It never substitutes
// a default value for malformed input; callers decide what a failed decode means.
func SafeDecode[A, B any](ctx context.Context, c Codec[A, B], a A) (B, bool) {
	v, err := c.Decode(ctx, a)
	if err != nil {
		var zero B
		return zero, false
	}
	return v, true
}

// RoundTrip encodes b and decodes the result again. It is used to check that a
// value survives the field geometry unchanged.
func RoundTrip[A, B any](ctx context.Context, c Codec[A, B], b B) (B, error) {
	a, err := c.Encode(ctx, b)
	if err != nil {
		var zero B
		return zero, err
	}
	return c.Decode(ctx, a)
}
