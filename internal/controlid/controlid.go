// Package controlid parses Security Hub control identifiers of the form
// <ServicePrefix>.<Number>, e.g. "IAM.5" or "EC2.172".
package controlid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMalformed is wrapped by every error returned for an identifier that
// does not have the <prefix>.<number> shape.
var ErrMalformed = errors.New("malformed control identifier")

var (
	partsPattern  = regexp.MustCompile(`^([A-Za-z0-9]+)\.([0-9]+)$`)
	letterPattern = regexp.MustCompile(`^[A-Za-z]+`)
	digitPattern  = regexp.MustCompile(`[0-9]+$`)
)

// Split returns the service prefix and number of id. Exactly one '.' must
// separate an alphanumeric prefix from a decimal number.
func Split(id string) (prefix, number string, err error) {
	m := partsPattern.FindStringSubmatch(id)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	return m[1], m[2], nil
}

// SortKey orders identifiers by their leading alphabetic run and then by the
// numeric value of their trailing digits.
type SortKey struct {
	Prefix string
	Number int
}

// Less reports whether k orders before o.
func (k SortKey) Less(o SortKey) bool {
	if k.Prefix != o.Prefix {
		return k.Prefix < o.Prefix
	}
	return k.Number < o.Number
}

// Key computes the sort key of id. Identifiers without leading letters or
// without trailing digits are malformed.
func Key(id string) (SortKey, error) {
	prefix := letterPattern.FindString(id)
	digits := digitPattern.FindString(id)
	if prefix == "" || digits == "" {
		return SortKey{}, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return SortKey{}, fmt.Errorf("%w: %q: %v", ErrMalformed, id, err)
	}
	return SortKey{Prefix: prefix, Number: n}, nil
}
