// Package picture compiles COBOL picture (PICIN) clauses into exact-width,
// fully anchored validators.
//
// A clause compiles into a fixed sequence of character classes and literals;
// no regular-expression engine is involved, so characters such as '.', '(' or
// '*' are always plain literals.
package picture

import (
	"strings"
	"unicode"
	"unicode/utf8"

	picfield "github.com/reoring/picfield"
)

// Kind is the category of a picture token.
type Kind uint8

const (
	Digit          Kind = iota + 1 // 9: [0-9]
	Alphanumeric                   // X: [A-Za-z0-9]
	Alphabetic                     // A: [A-Za-z]
	NumericOrSpace                 // Z: [0-9 ]
	Sign                           // S: [+-]
	ImpliedPoint                   // V: zero width
	ScaleFactor                    // P: zero width
	Literal                        // any other character, matched by equality
)

func (k Kind) String() string {
	switch k {
	case Digit:
		return "9"
	case Alphanumeric:
		return "X"
	case Alphabetic:
		return "A"
	case NumericOrSpace:
		return "Z"
	case Sign:
		return "S"
	case ImpliedPoint:
		return "V"
	case ScaleFactor:
		return "P"
	case Literal:
		return "literal"
	}
	return "invalid"
}

// Width returns the number of characters a token of this kind consumes.
func (k Kind) Width() int {
	switch k {
	case ImpliedPoint, ScaleFactor:
		return 0
	default:
		return 1
	}
}

func kindOf(r rune) Kind {
	switch r {
	case '9':
		return Digit
	case 'X':
		return Alphanumeric
	case 'A':
		return Alphabetic
	case 'Z':
		return NumericOrSpace
	case 'S':
		return Sign
	case 'V':
		return ImpliedPoint
	case 'P':
		return ScaleFactor
	default:
		return Literal
	}
}

// Token is one compiled position of a picture.
type Token struct {
	Kind Kind
	Lit  rune // Set only for Literal tokens.
}

func (t Token) String() string {
	if t.Kind == Literal {
		return string(t.Lit)
	}
	return t.Kind.String()
}

// Accepts reports whether r is valid at this token's position.
func (t Token) Accepts(r rune) bool {
	switch t.Kind {
	case Digit:
		return r >= '0' && r <= '9'
	case Alphanumeric:
		return isASCIILetter(r) || (r >= '0' && r <= '9')
	case Alphabetic:
		return isASCIILetter(r)
	case NumericOrSpace:
		return r == ' ' || (r >= '0' && r <= '9')
	case Sign:
		return r == '+' || r == '-'
	case Literal:
		return r == t.Lit
	case ImpliedPoint, ScaleFactor:
		return false
	}
	return false
}

func isASCIILetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// Options tunes compilation.
type Options struct {
	// ExpandRepeats enables COBOL repeat counts: "9(3)" compiles like "999".
	// Parentheses that do not follow a category letter stay literals.
	ExpandRepeats bool
}

// Clause is a compiled picture. It is immutable and safe for concurrent use.
type Clause struct {
	picture string
	tokens  []Token
	cells   []Token // tokens with non-zero width, in order
}

// Compile compiles picture with default options.
func Compile(picture string) (*Clause, error) {
	return CompileWith(picture, Options{})
}

// MustCompile is like Compile but panics on error. Use it for constants.
func MustCompile(picture string) *Clause {
	c, err := Compile(picture)
	if err != nil {
		panic(err)
	}
	return c
}

// CompileWith scans picture left to right. Category letters become character
// classes, V and P become zero-width markers and every other printable
// character becomes a literal. Control characters and invalid UTF-8 fail with
// an UnrecognizedToken PictureError.
func CompileWith(picture string, opt Options) (*Clause, error) {
	runes := make([]rune, 0, len(picture))
	for i, r := range picture {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(picture[i:]); size <= 1 {
				return nil, &picfield.PictureError{Kind: picfield.UnrecognizedToken, Picture: picture, Pos: len(runes), Char: r}
			}
		}
		runes = append(runes, r)
	}

	c := &Clause{picture: picture}
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if unicode.IsControl(r) {
			return nil, &picfield.PictureError{Kind: picfield.UnrecognizedToken, Picture: picture, Pos: i, Char: r}
		}
		tok := Token{Kind: kindOf(r)}
		if tok.Kind == Literal {
			tok.Lit = r
		}
		n := 1
		if opt.ExpandRepeats && tok.Kind != Literal {
			count, next, ok, err := repeatCount(runes, i+1)
			if err != nil {
				return nil, &picfield.PictureError{Kind: picfield.InvalidRepeat, Picture: picture, Pos: i + 1, Char: '('}
			}
			if ok {
				n, i = count, next-1
			}
		}
		for ; n > 0; n-- {
			c.tokens = append(c.tokens, tok)
			if tok.Kind.Width() > 0 {
				c.cells = append(c.cells, tok)
			}
		}
	}
	return c, nil
}

// maxRepeat bounds a single repeat count.
const maxRepeat = 4096

// repeatCount parses "(n)" at runes[i:]. ok is false when no "(" follows;
// err is set for an unterminated, empty, non-numeric, zero or oversized group.
func repeatCount(runes []rune, i int) (count, next int, ok bool, err error) {
	if i >= len(runes) || runes[i] != '(' {
		return 0, i, false, nil
	}
	j := i + 1
	for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
		count = count*10 + int(runes[j]-'0')
		if count > maxRepeat {
			return 0, i, false, picfield.ErrInvalidRepeat
		}
		j++
	}
	if j == i+1 || j >= len(runes) || runes[j] != ')' {
		return 0, i, false, picfield.ErrInvalidRepeat
	}
	if count == 0 {
		return 0, i, false, picfield.ErrInvalidRepeat
	}
	return count, j + 1, true, nil
}

// String returns the picture the clause was compiled from.
func (c *Clause) String() string { return c.picture }

// Tokens returns a copy of the compiled tokens, zero-width markers included.
func (c *Clause) Tokens() []Token { return append([]Token(nil), c.tokens...) }

// Width returns the number of characters a matching text has.
func (c *Clause) Width() int { return len(c.cells) }

// ZeroWidthOnly reports a non-empty picture made only of V/P markers. Such a
// clause matches only "" and is worth a configuration warning upstream.
func (c *Clause) ZeroWidthOnly() bool { return len(c.tokens) > 0 && len(c.cells) == 0 }

// Signed reports whether the picture contains an S token.
func (c *Clause) Signed() bool { return c.count(func(t Token) bool { return t.Kind == Sign }) > 0 }

// Digits counts the 9 positions.
func (c *Clause) Digits() int { return c.count(func(t Token) bool { return t.Kind == Digit }) }

// Scale counts the 9 positions after the implied point (0 without a V).
func (c *Clause) Scale() int {
	n, seen := 0, false
	for _, t := range c.tokens {
		switch {
		case t.Kind == ImpliedPoint:
			seen = true
		case seen && t.Kind == Digit:
			n++
		}
	}
	return n
}

func (c *Clause) count(pred func(Token) bool) int {
	n := 0
	for _, t := range c.tokens {
		if pred(t) {
			n++
		}
	}
	return n
}

// Matches reports whether text has exactly Width() characters and each one is
// accepted by the token at its position.
func (c *Clause) Matches(text string) bool { return c.Mismatch(text) < 0 }

// Mismatch returns the index of the first rejected character, or -1 when text
// matches. A text of the wrong width reports the index where the widths diverge.
func (c *Clause) Mismatch(text string) int {
	i := 0
	for _, r := range text {
		if i >= len(c.cells) {
			return i
		}
		if !c.cells[i].Accepts(r) {
			return i
		}
		i++
	}
	if i != len(c.cells) {
		return i
	}
	return -1
}

// Describe renders the compiled classes, e.g. "[0-9][0-9]-[A-Za-z]".
func (c *Clause) Describe() string {
	b := &strings.Builder{}
	for _, t := range c.cells {
		switch t.Kind {
		case Digit:
			b.WriteString("[0-9]")
		case Alphanumeric:
			b.WriteString("[A-Za-z0-9]")
		case Alphabetic:
			b.WriteString("[A-Za-z]")
		case NumericOrSpace:
			b.WriteString("[0-9 ]")
		case Sign:
			b.WriteString("[+-]")
		case Literal:
			b.WriteRune(t.Lit)
		case ImpliedPoint, ScaleFactor:
		}
	}
	return b.String()
}
