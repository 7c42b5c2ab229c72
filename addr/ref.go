package addr

import "strings"

// RefKind discriminates the RefType union.
type RefKind int

const (
	KindCell RefKind = iota
	KindRange
	KindQualifiedCell
	KindQualifiedRange
)

// RefType is the tagged union over plain and sheet-qualified cell/range
// references, as produced by parsing an A1 expression.
type RefType struct {
	Kind  RefKind
	Sheet string // set for KindQualifiedCell / KindQualifiedRange
	Cell  ARef
	Range CellRange
}

// Cell builds an unqualified single-cell RefType.
func Cell(r ARef) RefType { return RefType{Kind: KindCell, Cell: r} }

// RangeOf builds an unqualified range RefType.
func RangeOf(r CellRange) RefType { return RefType{Kind: KindRange, Range: r} }

// QualifiedCell builds a sheet-qualified single-cell RefType.
func QualifiedCell(sheet string, r ARef) RefType {
	return RefType{Kind: KindQualifiedCell, Sheet: sheet, Cell: r}
}

// QualifiedRange builds a sheet-qualified range RefType.
func QualifiedRange(sheet string, r CellRange) RefType {
	return RefType{Kind: KindQualifiedRange, Sheet: sheet, Range: r}
}

// A1 renders the reference, including any sheet qualifier.
func (r RefType) A1() string {
	switch r.Kind {
	case KindCell:
		return r.Cell.A1()
	case KindRange:
		return r.Range.A1()
	case KindQualifiedCell:
		return quoteIfNeeded(r.Sheet) + "!" + r.Cell.A1()
	case KindQualifiedRange:
		return quoteIfNeeded(r.Sheet) + "!" + r.Range.A1()
	}
	return ""
}

// ParseRef parses the general A1 grammar: an optional `Sheet!` or
// `'Sheet Name'!` qualifier (with doubled single quotes as the escape for a
// literal quote inside the name) followed by either a cell or a
// start:end range.
func ParseRef(s string) (RefType, error) {
	sheet, rest, err := splitSheetQualifier(s)
	if err != nil {
		return RefType{}, err
	}
	if idx := indexByte(rest, ':'); idx >= 0 {
		rng, err := ParseRange(rest)
		if err != nil {
			return RefType{}, err
		}
		if sheet != "" {
			return QualifiedRange(sheet, rng), nil
		}
		return RangeOf(rng), nil
	}
	cell, err := ParseARef(rest)
	if err != nil {
		return RefType{}, err
	}
	if sheet != "" {
		return QualifiedCell(sheet, cell), nil
	}
	return Cell(cell), nil
}

// splitSheetQualifier extracts a leading `name!` or `'name'!` qualifier.
// If no qualifier is present, sheet is "" and rest is the whole input.
func splitSheetQualifier(s string) (sheet, rest string, err error) {
	if len(s) == 0 {
		return "", s, nil
	}
	if s[0] == '\'' {
		i := 1
		var b strings.Builder
		for i < len(s) {
			if s[i] == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					b.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			b.WriteByte(s[i])
			i++
		}
		if i >= len(s) || s[i] != '!' {
			return "", "", &InvalidRefError{Text: s, Reason: "unterminated quoted sheet name or missing '!'"}
		}
		return b.String(), s[i+1:], nil
	}
	if i := indexByte(s, '!'); i >= 0 {
		return s[:i], s[i+1:], nil
	}
	return "", s, nil
}
