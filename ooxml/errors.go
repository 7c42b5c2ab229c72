// Package ooxml implements the full OOXML (.xlsx) reader and writer: ZIP
// part enumeration, styles/sharedStrings/theme/workbook/worksheet XML
// decoding and encoding, and verbatim pass-through of unmodelled parts.
package ooxml

import "fmt"

// ReadError wraps a failure encountered while parsing an XLSX package.
type ReadError struct {
	Part   string
	Reason string
	Err    error
}

func (e *ReadError) Error() string {
	if e.Part != "" {
		return fmt.Sprintf("ooxml: read %s: %s", e.Part, e.Reason)
	}
	return fmt.Sprintf("ooxml: read: %s", e.Reason)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failure encountered while emitting an XLSX package.
type WriteError struct {
	Part   string
	Reason string
	Err    error
}

func (e *WriteError) Error() string {
	if e.Part != "" {
		return fmt.Sprintf("ooxml: write %s: %s", e.Part, e.Reason)
	}
	return fmt.Sprintf("ooxml: write: %s", e.Reason)
}

func (e *WriteError) Unwrap() error { return e.Err }
