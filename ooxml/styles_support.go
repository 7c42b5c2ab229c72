package ooxml

import (
	"bytes"
	"encoding/xml"

	"github.com/openxl/xl/style"
)

// DecodeStyleSheetBytes decodes a standalone styles.xml document into a
// style.Registry, along with the cellXfs-index -> registry-id mapping
// decodeStyleSheet always produces. theme supplies the workbook's theme
// color slots for resolving theme-indexed colors.
func DecodeStyleSheetBytes(data []byte, theme []uint32) (*style.Registry, []style.ID, error) {
	var ss xlsxStyleSheet
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.Entity = map[string]string{}
	if err := dec.Decode(&ss); err != nil {
		return nil, nil, &ReadError{Part: partStyles, Reason: "malformed styles xml", Err: err}
	}
	reg, ids := decodeStyleSheet(&ss, theme)
	return reg, ids, nil
}

// EncodeStyleSheetBytes serializes reg as a standalone styles.xml document.
func EncodeStyleSheetBytes(reg *style.Registry) ([]byte, error) {
	ss := encodeStyleSheet(reg)
	out, err := xml.Marshal(ss)
	if err != nil {
		return nil, &WriteError{Part: partStyles, Reason: "cannot marshal styles xml", Err: err}
	}
	return append([]byte(xml.Header), out...), nil
}

// EncodeSharedStringsBytes serializes strings as a standalone
// sharedStrings.xml document, in the same order as Strings() returns
// them: a string's position here is its shared-string index, so callers
// that extended an existing table via NewSeededStringTable must write the
// whole, re-seeded table back, not just the strings they added.
func EncodeSharedStringsBytes(strings []string) ([]byte, error) {
	sst := encodeSharedStrings(strings)
	out, err := xml.Marshal(sst)
	if err != nil {
		return nil, &WriteError{Part: partSharedStrings, Reason: "cannot marshal sharedStrings xml", Err: err}
	}
	return append([]byte(xml.Header), out...), nil
}
