// Package jctnum implements the canonical textual form of jct numbers
// and the scalar literal inference used by the set operation.
//
// A number that is mathematically integral and within int64 range prints
// as a plain decimal integer with no decimal point. Everything else
// prints in shortest round-trip %g form, so that parsing the output
// reproduces the exact IEEE 754 double.
package jctnum

import (
	"errors"
	"math"
	"strconv"

	"github.com/lattice-substrate/jct/jctval"
)

// ErrNotFinite indicates formatting was requested for NaN or Infinity,
// which have no JSON representation.
var ErrNotFinite = errors.New("jctnum: value is not finite (NaN or Infinity)")

// Exact float64 bounds of the int64 range. 2^63 is representable;
// 2^63-1 is not, so the upper comparison is strict.
const (
	minInt64Float = -9223372036854775808.0
	maxInt64Float = 9223372036854775808.0
)

// FormatNumber returns the canonical text of an IEEE 754 double.
func FormatNumber(d float64) (string, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return "", ErrNotFinite
	}
	if IsInt64(d) {
		return strconv.FormatInt(int64(d), 10), nil
	}
	return strconv.FormatFloat(d, 'g', -1, 64), nil
}

// IsInt64 reports whether d is mathematically integral and representable
// as an int64. Negative zero counts as the integer 0.
func IsInt64(d float64) bool {
	return d == math.Trunc(d) && d >= minInt64Float && d < maxInt64Float
}

// InferLiteral converts the textual argument of a set operation into a
// value:
//
//	"true"/"false"  -> boolean
//	"null"          -> null
//	a full float    -> number
//	anything else   -> string, verbatim
//
// The empty string is a string, not a number.
func InferLiteral(s string) *jctval.Value {
	switch s {
	case "true":
		return jctval.Boolean(true)
	case "false":
		return jctval.Boolean(false)
	case "null":
		return jctval.Null()
	}
	if s != "" {
		// Non-finite parses ("inf", "nan") stay strings: the
		// serializer has no representation for them.
		if d, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(d) && !math.IsInf(d, 0) {
			return jctval.Number(d)
		}
	}
	return jctval.Text(s)
}
