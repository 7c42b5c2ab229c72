package addr

import (
	"strings"

	"golang.org/x/text/cases"
)

// foldCaser performs Unicode full case folding for sheet-name equality, so
// names that differ only by a multi-rune fold (e.g. "Straße" vs
// "STRASSE") compare equal, which strings.EqualFold's simple folding
// does not do.
var foldCaser = cases.Fold()

// SheetName is a validated worksheet name: non-empty, at most 31 code
// units, free of the characters Excel forbids, and never "History"
// case-insensitively (Excel reserves it for its legacy change tracking
// sheet).
type SheetName string

const maxSheetNameLen = 31

var forbiddenSheetChars = "\\/*?:[]"

// ValidateSheetName checks s against SheetName's invariants.
func ValidateSheetName(s string) error {
	if s == "" {
		return &InvalidSheetNameError{Name: s, Reason: "empty"}
	}
	if n := len([]rune(s)); n > maxSheetNameLen {
		return &InvalidSheetNameError{Name: s, Reason: "exceeds 31 characters"}
	}
	if strings.ContainsAny(s, forbiddenSheetChars) {
		return &InvalidSheetNameError{Name: s, Reason: "contains a forbidden character \\ / * ? : [ ]"}
	}
	if strings.EqualFold(s, "History") {
		return &InvalidSheetNameError{Name: s, Reason: `reserved name "History"`}
	}
	return nil
}

// NewSheetName validates and constructs a SheetName.
func NewSheetName(s string) (SheetName, error) {
	if err := ValidateSheetName(s); err != nil {
		return "", err
	}
	return SheetName(s), nil
}

// EqualFold reports whether two sheet names are equal case-insensitively,
// as Excel treats sheet name uniqueness.
func (n SheetName) EqualFold(o SheetName) bool {
	return foldCaser.String(string(n)) == foldCaser.String(string(o))
}

// quoteIfNeeded returns the A1 sheet-qualifier token for name: bare if it
// contains only letters, digits, and underscore and does not start with a
// digit; single-quoted with internal quotes doubled otherwise.
func quoteIfNeeded(name string) string {
	if isBareSheetName(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func isBareSheetName(s string) bool {
	if s == "" {
		return false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
		if !ok {
			return false
		}
	}
	return true
}
