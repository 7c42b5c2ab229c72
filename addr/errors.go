package addr

import "fmt"

// InvalidColumnError reports a column letter string that cannot be parsed.
type InvalidColumnError struct {
	Text string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("addr: invalid column %q", e.Text)
}

// InvalidRowError reports a row number that is absent, malformed, or out of range.
type InvalidRowError struct {
	Text string
}

func (e *InvalidRowError) Error() string {
	return fmt.Sprintf("addr: invalid row %q", e.Text)
}

// InvalidRefError reports a cell reference that fails the A1 grammar.
type InvalidRefError struct {
	Text   string
	Reason string
}

func (e *InvalidRefError) Error() string {
	return fmt.Sprintf("addr: invalid ref %q: %s", e.Text, e.Reason)
}

// InvalidRangeError reports a range whose endpoints cannot both be parsed.
type InvalidRangeError struct {
	Text   string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("addr: invalid range %q: %s", e.Text, e.Reason)
}

// InvalidSheetNameError reports a sheet name that violates SheetName's
// invariants (length, forbidden characters, or the reserved "History" name).
type InvalidSheetNameError struct {
	Name   string
	Reason string
}

func (e *InvalidSheetNameError) Error() string {
	return fmt.Sprintf("addr: invalid sheet name %q: %s", e.Name, e.Reason)
}
