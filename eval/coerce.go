package eval

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openxl/xl/value"
)

// toNumber coerces v into the numeric domain: booleans widen to 1/0,
// empty widens to 0, dates participate as their serial.
// Text never implicitly widens to a number — that is a type mismatch.
func toNumber(v value.CellValue) (decimal.Decimal, *Error) {
	switch v.Kind() {
	case value.Number:
		return v.Number(), nil
	case value.Bool:
		if v.Bool() {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case value.Empty:
		return decimal.Zero, nil
	case value.DateTime:
		return v.Serial(), nil
	case value.Error:
		return decimal.Decimal{}, &Error{Kind: Propagated, ErrKind: v.ErrorKind()}
	}
	return decimal.Decimal{}, &Error{Kind: TypeMismatch, Op: "numeric coercion", Have: v.Kind()}
}

// toText coerces v into its display text for '&' concatenation and
// text-function arguments.
func toText(v value.CellValue) (string, *Error) {
	switch v.Kind() {
	case value.Text, value.RichText:
		return v.PlainText(), nil
	case value.Number:
		return v.Number().String(), nil
	case value.Bool:
		if v.Bool() {
			return "TRUE", nil
		}
		return "FALSE", nil
	case value.Empty:
		return "", nil
	case value.DateTime:
		return v.Serial().String(), nil
	case value.Error:
		return "", &Error{Kind: Propagated, ErrKind: v.ErrorKind()}
	}
	return "", &Error{Kind: TypeMismatch, Op: "text coercion", Have: v.Kind()}
}

// toBool coerces v into the logical domain: numbers are truthy iff
// nonzero, text accepts only "TRUE"/"FALSE" case-insensitively, empty is
// false.
func toBool(v value.CellValue) (bool, *Error) {
	switch v.Kind() {
	case value.Bool:
		return v.Bool(), nil
	case value.Number:
		return !v.Number().IsZero(), nil
	case value.Empty:
		return false, nil
	case value.Text:
		switch strings.ToUpper(v.Text()) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
		return false, &Error{Kind: TypeMismatch, Op: "boolean coercion", Have: v.Kind()}
	case value.Error:
		return false, &Error{Kind: Propagated, ErrKind: v.ErrorKind()}
	}
	return false, &Error{Kind: TypeMismatch, Op: "boolean coercion", Have: v.Kind()}
}

// decimalFromText parses a numeric-looking argument string (used for
// text-function arguments like LEFT's character count, which arrive
// already coerced to text by evalTextArgs).
func decimalFromText(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// checkPropagated returns a Propagated error if v itself is an Error
// value; every binary/unary operator checks its operands with this
// before attempting its own coercions.
func checkPropagated(v value.CellValue) *Error {
	if v.Kind() == value.Error {
		return &Error{Kind: Propagated, ErrKind: v.ErrorKind()}
	}
	return nil
}
