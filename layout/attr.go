package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Attribute is a set of BMS field attribute (ATTRB) codes.
type Attribute uint16

const (
	ASKIP  Attribute = 1 << iota // Autoskip: protected, cursor skips the field.
	PROT                         // Protected.
	UNPROT                       // Unprotected.
	NUM                          // Numeric input only.
	BRT                          // Bright intensity.
	NORM                         // Normal intensity.
	DRK                          // Dark (non-display).
	IC                           // Insert cursor.
	FSET                         // Modified data tag set.
)

// ErrUnknownAttribute is returned for codes outside the BMS ATTRB set.
var ErrUnknownAttribute = errors.New("unknown BMS attribute")

// ErrConflictingAttributes is returned when mutually exclusive codes are combined.
var ErrConflictingAttributes = errors.New("conflicting BMS attributes")

var attributeNames = []struct {
	a    Attribute
	name string
}{
	{ASKIP, "ASKIP"},
	{PROT, "PROT"},
	{UNPROT, "UNPROT"},
	{NUM, "NUM"},
	{BRT, "BRT"},
	{NORM, "NORM"},
	{DRK, "DRK"},
	{IC, "IC"},
	{FSET, "FSET"},
}

// ParseAttribute maps one ATTRB code (case-insensitive) to its Attribute.
func ParseAttribute(code string) (Attribute, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "ASKIP":
		return ASKIP, nil
	case "PROT":
		return PROT, nil
	case "UNPROT":
		return UNPROT, nil
	case "NUM":
		return NUM, nil
	case "BRT":
		return BRT, nil
	case "NORM":
		return NORM, nil
	case "DRK":
		return DRK, nil
	case "IC":
		return IC, nil
	case "FSET":
		return FSET, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAttribute, code)
}

// exclusive groups: at most one member of each may be set.
var exclusive = []Attribute{ASKIP | PROT | UNPROT, BRT | NORM | DRK}

// ParseAttributes combines codes into a set and rejects conflicting
// protection or intensity codes.
func ParseAttributes(codes []string) (Attribute, error) {
	var set Attribute
	for _, c := range codes {
		a, err := ParseAttribute(c)
		if err != nil {
			return 0, err
		}
		set |= a
	}
	for _, g := range exclusive {
		if n := (set & g).count(); n > 1 {
			return 0, fmt.Errorf("%w: %s", ErrConflictingAttributes, set&g)
		}
	}
	return set, nil
}

func (a Attribute) count() int {
	n := 0
	for ; a != 0; a &= a - 1 {
		n++
	}
	return n
}

// Has reports whether every attribute in b is set.
func (a Attribute) Has(b Attribute) bool { return a&b == b }

// Protected reports whether user input is not accepted (ASKIP or PROT).
func (a Attribute) Protected() bool { return a&(ASKIP|PROT) != 0 }

// Codes lists the set codes in declaration order.
func (a Attribute) Codes() []string {
	var out []string
	for _, n := range attributeNames {
		if a&n.a != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

func (a Attribute) String() string { return strings.Join(a.Codes(), ",") }
