package model

import "fmt"

// OverlappingMergeError reports a merge request that intersects an
// existing merged range.
type OverlappingMergeError struct {
	Requested string
	Existing  string
}

func (e *OverlappingMergeError) Error() string {
	return fmt.Sprintf("model: merge %s overlaps existing merge %s", e.Requested, e.Existing)
}

// SheetNotFoundError reports a lookup or mutation against a sheet name
// that does not exist in the workbook.
type SheetNotFoundError struct {
	Name string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("model: sheet %q not found", e.Name)
}

// DuplicateSheetError reports an insert or rename that would produce two
// sheets with the same name (case-insensitively).
type DuplicateSheetError struct {
	Name string
}

func (e *DuplicateSheetError) Error() string {
	return fmt.Sprintf("model: duplicate sheet name %q", e.Name)
}

// InvalidWorkbookError wraps a structural invariant violation with a
// human-readable reason.
type InvalidWorkbookError struct {
	Reason string
}

func (e *InvalidWorkbookError) Error() string {
	return fmt.Sprintf("model: invalid workbook: %s", e.Reason)
}
