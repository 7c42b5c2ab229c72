// Package eval implements the formula evaluator: a tree-walking
// interpreter over the formula package's AST with exact-decimal
// arithmetic, short-circuit logical operators, and a closed function
// registry.
package eval

import (
	"fmt"

	"github.com/openxl/xl/depgraph"
	"github.com/openxl/xl/value"
)

// Kind discriminates the closed set of evaluation failures.
type Kind int

const (
	DivByZero Kind = iota
	RefError
	TypeMismatch
	InvalidArgCount
	CycleDetected
	ParseError
	NameNotFound
	NotImplemented
	Propagated
	SpillOverlap
)

// Error is the evaluator's single error type, discriminated by Kind. Only
// the fields relevant to the kind are populated.
type Error struct {
	Kind Kind

	// DivByZero
	Num, Denom string
	// RefError
	Loc, Reason string
	// TypeMismatch
	Op   string
	Have value.Kind
	// InvalidArgCount
	Fn                 string
	Expected, Actual   int
	// CycleDetected
	Path []depgraph.NodeID
	// ParseError
	Err error
	// NameNotFound
	Name string
	// Propagated
	ErrKind value.ErrorKind
}

func (e *Error) Error() string {
	switch e.Kind {
	case DivByZero:
		return fmt.Sprintf("#DIV/0!: %s / %s", e.Num, e.Denom)
	case RefError:
		return fmt.Sprintf("#REF! at %s: %s", e.Loc, e.Reason)
	case TypeMismatch:
		return fmt.Sprintf("#VALUE!: %s does not accept %v", e.Op, e.Have)
	case InvalidArgCount:
		return fmt.Sprintf("%s expects %d argument(s), got %d", e.Fn, e.Expected, e.Actual)
	case CycleDetected:
		return fmt.Sprintf("circular reference through %d cell(s)", len(e.Path))
	case ParseError:
		return fmt.Sprintf("parse error: %v", e.Err)
	case NameNotFound:
		return fmt.Sprintf("#NAME?: %s", e.Name)
	case NotImplemented:
		return fmt.Sprintf("function not implemented: %s", e.Fn)
	case Propagated:
		return fmt.Sprintf("propagated error %s", e.ErrKind)
	case SpillOverlap:
		return "array formula would overwrite a non-empty cell"
	}
	return "evaluation error"
}

// AsCellValue renders e as the CellValue Excel would display for it —
// every kind collapses to the closest #ERROR! code, since a top-level
// evaluation failure always surfaces as an Error CellValue.
func (e *Error) AsCellValue() value.CellValue {
	switch e.Kind {
	case DivByZero:
		return value.NewError(value.Div0)
	case RefError:
		return value.NewError(value.Ref)
	case TypeMismatch:
		return value.NewError(value.ValueErr)
	case InvalidArgCount:
		return value.NewError(value.ValueErr)
	case CycleDetected:
		return value.NewError(value.Num)
	case ParseError:
		return value.NewError(value.Name)
	case NameNotFound:
		return value.NewError(value.Name)
	case NotImplemented:
		return value.NewError(value.Name)
	case Propagated:
		return value.NewError(e.ErrKind)
	case SpillOverlap:
		return value.NewError(value.Num)
	}
	return value.NewError(value.ValueErr)
}
