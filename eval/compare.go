package eval

import (
	"strings"

	"github.com/openxl/xl/value"
)

// typeRank orders kinds for mixed-type comparison: number and date-time
// < text, rich text and Empty < bool < any other kind.
func typeRank(k value.Kind) int {
	switch k {
	case value.Number, value.DateTime:
		return 0
	case value.Text, value.RichText, value.Empty:
		return 1
	case value.Bool:
		return 2
	}
	return 3
}

// compareValues orders a against b: numeric by value (dates participate
// as serials), text by case-insensitive Unicode code point order, bool
// false < true, and mixed kinds by typeRank. Equality performs no
// epsilon rounding.
func compareValues(a, b value.CellValue) (int, *Error) {
	if err := checkPropagated(a); err != nil {
		return 0, err
	}
	if err := checkPropagated(b); err != nil {
		return 0, err
	}
	ra, rb := typeRank(a.Kind()), typeRank(b.Kind())
	if ra != rb {
		if ra < rb {
			return -1, nil
		}
		return 1, nil
	}
	switch ra {
	case 0:
		an, err := toNumber(a)
		if err != nil {
			return 0, err
		}
		bn, err := toNumber(b)
		if err != nil {
			return 0, err
		}
		return an.Cmp(bn), nil
	case 1:
		at, err := toText(a)
		if err != nil {
			return 0, err
		}
		bt, err := toText(b)
		if err != nil {
			return 0, err
		}
		return strings.Compare(strings.ToUpper(at), strings.ToUpper(bt)), nil
	case 2:
		if a.Bool() == b.Bool() {
			return 0, nil
		}
		if !a.Bool() {
			return -1, nil
		}
		return 1, nil
	}
	return 0, nil
}
