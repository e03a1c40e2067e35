package mobile

import (
	"errors"
	"strings"
)

const (
	// Length is the number of digits in a Bhutanese mobile number.
	Length = 8
	// PrefixTashiCell and PrefixBMobile are the two accepted operator prefixes.
	PrefixTashiCell = "77"
	PrefixBMobile   = "17"
)

var (
	errLength = errors.New("must be 8 digits")
	errDigits = errors.New("must contain digits only")
	errPrefix = errors.New("must start with 77 or 17")
)

// Number is a validated mobile number.
type Number string

// Parse validates s as a Bhutanese mobile number. Surrounding whitespace is ignored.
func Parse(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if len(s) != Length {
		return "", errLength
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", errDigits
		}
	}
	switch s[:2] {
	case PrefixTashiCell, PrefixBMobile:
		return Number(s), nil
	}
	return "", errPrefix
}

// Operator returns the carrier that owns the number's prefix.
func (n Number) Operator() string {
	if strings.HasPrefix(string(n), PrefixTashiCell) {
		return "TashiCell"
	}
	return "B-Mobile"
}

func (n Number) String() string { return string(n) }
