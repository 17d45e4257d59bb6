// Package picfield provides:
//
// - Exact COBOL field codecs: packed decimal (COMP-3), zoned/overpunch decimal and display
// PIC X / PIC 9 / PIC S9V9 fields, converting to and from arbitrary-precision decimals
// - Picture clause (PICIN) compilation into anchored, exact-width validators
// - A cross-field validation engine that accumulates ValidationFailures
// - A typed error model (DecodeError, EncodeError, FormatError, PictureError)
//
// Design policy:
// - Keep only the error model and the Codec interface in the root package.
// - Decimal arithmetic lives under decimal/, codecs under codec/, display formatting
// under pic/, pictures under picture/, cross-field rules under rules/, record layouts
// under layout/ and the CLI under cmd/picfield.
// - Every operation is pure and synchronous; decimals and compiled pictures are immutable.
// - Malformed input is always reported as an error, never replaced by zero.
//
// Typical usage:
//
//	v, err := decimal.Parse("-12.5")
//	s, err := pic.FormatS9V9(v, 3, 2) // "-012.50"
//
//	b, err := codec.EncodePacked(v, 5)
//	v2, err := codec.DecodePacked(b, 1)
//
//	c := picture.MustCompile("999-99-9999")
//	ok := c.Matches("123-45-6789")
package picfield
