// Package value implements CellValue, the tagged union of everything a
// spreadsheet cell can hold, and its associated error-kind enumeration.
package value

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the CellValue union.
type Kind int

const (
	Empty Kind = iota
	Text
	Number
	Bool
	Error
	DateTime
	RichText
	Formula
)

// ErrorKind enumerates the closed set of spreadsheet error values.
type ErrorKind int

const (
	Div0 ErrorKind = iota
	NA
	Name
	Null
	Num
	Ref
	ValueErr
)

// excelCode is the literal text Excel uses for each error kind.
func (k ErrorKind) excelCode() string {
	switch k {
	case Div0:
		return "#DIV/0!"
	case NA:
		return "#N/A"
	case Name:
		return "#NAME?"
	case Null:
		return "#NULL!"
	case Num:
		return "#NUM!"
	case Ref:
		return "#REF!"
	case ValueErr:
		return "#VALUE!"
	default:
		return "#ERROR!"
	}
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string { return k.excelCode() }

// RichRun is one run of a RichText value: an optional font key (opaque to
// this package; interpreted by the style package) and its text.
type RichRun struct {
	FontKey string // empty means "inherit cell font"
	Text    string
}

// excelEpoch is day zero of the Excel/OOXML serial count, 1899-12-31, so
// that serial 1 = 1900-01-01. Excel's historical (incorrect) 1900 leap day
// is reproduced by Serial and FromSerial themselves, which shift dates
// from excelLeapBugCutover onward by one day.
var excelEpoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

// excelLeapBugCutover is the first real date affected by Excel's belief
// that 1900 was a leap year (it treats 1900-02-29 as having existed).
var excelLeapBugCutover = time.Date(1900, time.March, 1, 0, 0, 0, 0, time.UTC)

// CellValue is the tagged union of values a spreadsheet cell may hold.
// The zero value is Empty.
type CellValue struct {
	kind      Kind
	text      string
	number    decimal.Decimal
	boolean   bool
	errKind   ErrorKind
	dateTime  time.Time
	richText  []RichRun
	formula   string
	cachedVal *CellValue // optional cached result for Formula
}

// Kind reports which variant is populated.
func (v CellValue) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is the Empty variant.
func (v CellValue) IsEmpty() bool { return v.kind == Empty }

// NewEmpty returns the Empty value.
func NewEmpty() CellValue { return CellValue{kind: Empty} }

// NewText wraps a string as a Text value; an empty or whitespace-only
// string widens to Empty.
func NewText(s string) CellValue {
	if strings.TrimSpace(s) == "" {
		return NewEmpty()
	}
	return CellValue{kind: Text, text: s}
}

// Text returns the underlying string; valid only when Kind() == Text.
func (v CellValue) Text() string { return v.text }

// NewNumber wraps an exact decimal as a Number value.
func NewNumber(d decimal.Decimal) CellValue {
	return CellValue{kind: Number, number: d}
}

// NewNumberFromInt widens an integer to a Number value.
func NewNumberFromInt(n int64) CellValue {
	return CellValue{kind: Number, number: decimal.NewFromInt(n)}
}

// NewNumberFromFloat widens a float64 to a Number value.
func NewNumberFromFloat(f float64) CellValue {
	return CellValue{kind: Number, number: decimal.NewFromFloat(f)}
}

// Number returns the underlying decimal; valid only when Kind() == Number.
func (v CellValue) Number() decimal.Decimal { return v.number }

// NewBool wraps a bool as a Bool value.
func NewBool(b bool) CellValue { return CellValue{kind: Bool, boolean: b} }

// Bool returns the underlying bool; valid only when Kind() == Bool.
func (v CellValue) Bool() bool { return v.boolean }

// NewError wraps an ErrorKind as an Error value.
func NewError(k ErrorKind) CellValue { return CellValue{kind: Error, errKind: k} }

// ErrorKind returns the underlying error kind; valid only when Kind() == Error.
func (v CellValue) ErrorKind() ErrorKind { return v.errKind }

// NewDateTime wraps a time.Time as a DateTime value.
func NewDateTime(t time.Time) CellValue { return CellValue{kind: DateTime, dateTime: t} }

// DateTime returns the underlying time; valid only when Kind() == DateTime.
func (v CellValue) DateTime() time.Time { return v.dateTime }

// Serial returns the Excel serial date number for a DateTime value,
// replicating Excel's (historically incorrect) treatment of 1900 as a leap
// year for any date on or after 1900-03-01: one day is added so that
// serial arithmetic matches what Excel itself emits and reads back.
func (v CellValue) Serial() decimal.Decimal {
	d := v.dateTime.Sub(excelEpoch)
	days := d.Hours() / 24
	if !v.dateTime.Before(excelLeapBugCutover) {
		days++
	}
	return decimal.NewFromFloat(days).Round(10)
}

// FromSerial converts an Excel serial date number back into a DateTime
// value, inverting Serial's leap-bug compensation.
func FromSerial(serial decimal.Decimal) CellValue {
	days, _ := serial.Float64()
	if days >= 61 {
		days--
	}
	t := excelEpoch.Add(time.Duration(days*24*float64(time.Hour)))
	return NewDateTime(t)
}

// NewRichText wraps an ordered run sequence as a RichText value.
func NewRichText(runs []RichRun) CellValue {
	return CellValue{kind: RichText, richText: runs}
}

// RichRuns returns the underlying runs; valid only when Kind() == RichText.
func (v CellValue) RichRuns() []RichRun { return v.richText }

// PlainText flattens RichText runs (or returns Text's string, or "" for any
// other kind) for contexts that only need the visible characters.
func (v CellValue) PlainText() string {
	switch v.kind {
	case Text:
		return v.text
	case RichText:
		var b strings.Builder
		for _, r := range v.richText {
			b.WriteString(r.Text)
		}
		return b.String()
	default:
		return ""
	}
}

// NewFormula wraps formula text and an optional cached result.
func NewFormula(expr string, cached *CellValue) CellValue {
	return CellValue{kind: Formula, formula: expr, cachedVal: cached}
}

// FormulaText returns the formula expression text; valid only when
// Kind() == Formula.
func (v CellValue) FormulaText() string { return v.formula }

// CachedValue returns the cached result (nil if none); valid only when
// Kind() == Formula.
func (v CellValue) CachedValue() *CellValue { return v.cachedVal }

// Equal reports structural equality between two CellValues.
func (v CellValue) Equal(o CellValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Empty:
		return true
	case Text:
		return v.text == o.text
	case Number:
		return v.number.Equal(o.number)
	case Bool:
		return v.boolean == o.boolean
	case Error:
		return v.errKind == o.errKind
	case DateTime:
		return v.dateTime.Equal(o.dateTime)
	case RichText:
		if len(v.richText) != len(o.richText) {
			return false
		}
		for i := range v.richText {
			if v.richText[i] != o.richText[i] {
				return false
			}
		}
		return true
	case Formula:
		return v.formula == o.formula
	}
	return false
}
